// Package crypto defines the narrow homomorphic-encryption interface
// consumed by the block subsystem, plus a development-only implementation
// used by tests and self-test paths.
package crypto

import "fmt"

// Ciphertext is an opaque byte string produced by a CryptoContext's
// encryption of a single integer. Callers must not assume anything about
// its internal structure beyond what CiphertextToBytes/CiphertextFromBytes
// round-trip.
type Ciphertext []byte

// CryptoContext is the homomorphic-encryption collaborator this subsystem
// consumes. It is implemented by a real scheme elsewhere in a consumer's
// stack; DevContext below exists only to unblock this module's own tests
// and self-test hooks.
type CryptoContext interface {
	IsInitialized() bool
	PlaintextModulus() int64
	Encrypt(v int64) (Ciphertext, error)
	Decrypt(c Ciphertext) (int64, error)
	Add(a, b Ciphertext) (Ciphertext, error)
	Subtract(a, b Ciphertext) (Ciphertext, error)
	CiphertextToBytes(c Ciphertext) ([]byte, error)
	CiphertextFromBytes(b []byte) (Ciphertext, error)
}

// ErrUninitialized is returned by operations invoked against a context
// that has not completed setup.
var ErrUninitialized = fmt.Errorf("crypto: context not initialized")

// ErrPlaintextOutOfRange is returned when a value to encrypt is at or
// above the context's plaintext modulus.
var ErrPlaintextOutOfRange = fmt.Errorf("crypto: plaintext value out of range for modulus")

// ErrInvalidCiphertext is returned when a ciphertext byte representation
// is malformed or of unexpected length.
var ErrInvalidCiphertext = fmt.Errorf("crypto: invalid ciphertext encoding")
