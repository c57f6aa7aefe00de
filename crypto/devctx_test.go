package crypto

import "testing"

func newTestContext(t *testing.T) *DevContext {
	t.Helper()
	return NewDevContext(1 << 21)
}

func TestDevContext_EncryptDecryptRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	if !ctx.IsInitialized() {
		t.Fatalf("context should be initialized")
	}
	for _, v := range []int64{0, 1, 42, 65536, 1048672} {
		ct, err := ctx.Encrypt(v)
		if err != nil {
			t.Fatalf("encrypt(%d): %v", v, err)
		}
		got, err := ctx.Decrypt(ct)
		if err != nil {
			t.Fatalf("decrypt(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip: got %d, want %d", got, v)
		}
	}
}

func TestDevContext_EncryptOutOfRange(t *testing.T) {
	ctx := newTestContext(t)
	if _, err := ctx.Encrypt(-1); err == nil {
		t.Fatalf("expected error for negative plaintext")
	}
	if _, err := ctx.Encrypt(ctx.PlaintextModulus()); err == nil {
		t.Fatalf("expected error for plaintext at modulus")
	}
}

func TestDevContext_HomomorphicAddSubtract(t *testing.T) {
	ctx := newTestContext(t)
	a, err := ctx.Encrypt(100)
	if err != nil {
		t.Fatalf("encrypt a: %v", err)
	}
	b, err := ctx.Encrypt(37)
	if err != nil {
		t.Fatalf("encrypt b: %v", err)
	}

	sum, err := ctx.Add(a, b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	gotSum, err := ctx.Decrypt(sum)
	if err != nil {
		t.Fatalf("decrypt sum: %v", err)
	}
	if gotSum != 137 {
		t.Fatalf("sum: got %d, want 137", gotSum)
	}

	diff, err := ctx.Subtract(a, b)
	if err != nil {
		t.Fatalf("subtract: %v", err)
	}
	gotDiff, err := ctx.Decrypt(diff)
	if err != nil {
		t.Fatalf("decrypt diff: %v", err)
	}
	if gotDiff != 63 {
		t.Fatalf("diff: got %d, want 63", gotDiff)
	}

	zero, err := ctx.Subtract(a, a)
	if err != nil {
		t.Fatalf("subtract self: %v", err)
	}
	gotZero, err := ctx.Decrypt(zero)
	if err != nil {
		t.Fatalf("decrypt zero: %v", err)
	}
	if gotZero != 0 {
		t.Fatalf("a-a: got %d, want 0", gotZero)
	}
}

func TestDevContext_CiphertextBytesRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	ct, err := ctx.Encrypt(12345)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	raw, err := ctx.CiphertextToBytes(ct)
	if err != nil {
		t.Fatalf("to bytes: %v", err)
	}
	back, err := ctx.CiphertextFromBytes(raw)
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}
	v, err := ctx.Decrypt(back)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if v != 12345 {
		t.Fatalf("got %d, want 12345", v)
	}
}

func TestDevContext_NilContextOperationsFail(t *testing.T) {
	var ctx *DevContext
	if ctx.IsInitialized() {
		t.Fatalf("nil context should not report initialized")
	}
	if _, err := ctx.Encrypt(1); err == nil {
		t.Fatalf("expected error on nil context")
	}
}
