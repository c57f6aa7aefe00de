package block

import (
	"testing"

	"github.com/cryptmalloc/encblock/crypto"
)

func newTestContext(t *testing.T) crypto.CryptoContext {
	t.Helper()
	return crypto.NewDevContext(1 << 21)
}

func mustCreate(t *testing.T, ctx crypto.CryptoContext, size int64) *EncryptedBlock {
	t.Helper()
	b, err := CreateFromPlaintextSize(ctx, size, DefaultConfig())
	if err != nil {
		t.Fatalf("CreateFromPlaintextSize(%d): %v", size, err)
	}
	return b
}
