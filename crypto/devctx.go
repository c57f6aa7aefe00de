package crypto

import (
	"encoding/binary"
	"math/rand"

	"golang.org/x/crypto/sha3"
)

// DevContext is a development-only CryptoContext. It is NOT semantically
// secure: every ciphertext is a plaintext integer additively masked by a
// fixed, context-local offset derived from a random seed via SHA3-256.
// It exists only so this module's own tests and self-test hooks have a
// concrete CryptoContext to exercise create/split/merge/validate against;
// production deployments must supply a real scheme through the
// CryptoContext interface.
type DevContext struct {
	modulus  int64
	offset   int64
	seed     [32]byte
	initDone bool
}

// NewDevContext builds a DevContext with the given plaintext modulus. The
// modulus must comfortably exceed the largest size value the caller
// intends to encrypt directly (see block.Config.MaxPayloadBytes).
func NewDevContext(modulus int64) *DevContext {
	var seed [32]byte
	_, _ = rand.Read(seed[:])
	digest := sha3.Sum256(seed[:])
	offset := int64(binary.BigEndian.Uint64(digest[:8])) % modulus
	if offset < 0 {
		offset += modulus
	}
	return &DevContext{
		modulus:  modulus,
		offset:   offset,
		seed:     seed,
		initDone: true,
	}
}

func (c *DevContext) IsInitialized() bool {
	return c != nil && c.initDone && c.modulus > 0
}

func (c *DevContext) PlaintextModulus() int64 {
	if c == nil {
		return 0
	}
	return c.modulus
}

func (c *DevContext) mod(v int64) int64 {
	v %= c.modulus
	if v < 0 {
		v += c.modulus
	}
	return v
}

func (c *DevContext) Encrypt(v int64) (Ciphertext, error) {
	if !c.IsInitialized() {
		return nil, ErrUninitialized
	}
	if v < 0 || v >= c.modulus {
		return nil, ErrPlaintextOutOfRange
	}
	masked := c.mod(v + c.offset)
	return int64ToCiphertext(masked), nil
}

func (c *DevContext) Decrypt(ct Ciphertext) (int64, error) {
	if !c.IsInitialized() {
		return 0, ErrUninitialized
	}
	masked, err := ciphertextToInt64(ct)
	if err != nil {
		return 0, err
	}
	return c.mod(masked - c.offset), nil
}

// Add returns a ciphertext decrypting to (decrypt(a)+decrypt(b)) mod m.
// DevContext's masking scheme makes this a closed-form integer operation
// on the masked representations; a real scheme performs the analogous
// operation directly in ciphertext space without ever seeing the offset.
func (c *DevContext) Add(a, b Ciphertext) (Ciphertext, error) {
	if !c.IsInitialized() {
		return nil, ErrUninitialized
	}
	av, err := ciphertextToInt64(a)
	if err != nil {
		return nil, err
	}
	bv, err := ciphertextToInt64(b)
	if err != nil {
		return nil, err
	}
	return int64ToCiphertext(c.mod(av + bv - c.offset)), nil
}

func (c *DevContext) Subtract(a, b Ciphertext) (Ciphertext, error) {
	if !c.IsInitialized() {
		return nil, ErrUninitialized
	}
	av, err := ciphertextToInt64(a)
	if err != nil {
		return nil, err
	}
	bv, err := ciphertextToInt64(b)
	if err != nil {
		return nil, err
	}
	return int64ToCiphertext(c.mod(av - bv + c.offset)), nil
}

func (c *DevContext) CiphertextToBytes(ct Ciphertext) ([]byte, error) {
	if len(ct) != 8 {
		return nil, ErrInvalidCiphertext
	}
	out := make([]byte, 8)
	copy(out, ct)
	return out, nil
}

func (c *DevContext) CiphertextFromBytes(b []byte) (Ciphertext, error) {
	if len(b) != 8 {
		return nil, ErrInvalidCiphertext
	}
	out := make(Ciphertext, 8)
	copy(out, b)
	return out, nil
}

func int64ToCiphertext(v int64) Ciphertext {
	out := make(Ciphertext, 8)
	binary.BigEndian.PutUint64(out, uint64(v))
	return out
}

func ciphertextToInt64(ct Ciphertext) (int64, error) {
	if len(ct) != 8 {
		return 0, ErrInvalidCiphertext
	}
	return int64(binary.BigEndian.Uint64(ct)), nil
}
