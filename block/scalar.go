package block

import "github.com/cryptmalloc/encblock/crypto"

// scalar is the shared representation behind EncryptedSize, EncryptedInt,
// and EncryptedAddress: a ciphertext plus the context it was produced
// under. All three are value types — copying a scalar copies the
// ciphertext byte-slice header and the context pointer, producing an
// independent logical value that still shares the underlying context, per
// the data model's value-like semantics.
type scalar struct {
	ct  crypto.Ciphertext
	ctx crypto.CryptoContext
}

func newScalar(ctx crypto.CryptoContext, v int64, ceiling int64) (scalar, error) {
	if ctx == nil || !ctx.IsInitialized() {
		return scalar{}, blockerr(ErrUninitializedContext, "crypto context not initialized")
	}
	if v < 0 || v >= ceiling {
		return scalar{}, blockerrf(ErrInvalidSize, "plaintext value %d out of range (ceiling %d)", v, ceiling)
	}
	ct, err := ctx.Encrypt(v)
	if err != nil {
		return scalar{}, blockerrf(ErrCryptoFailure, "encrypt: %v", err)
	}
	return scalar{ct: ct, ctx: ctx}, nil
}

func (s scalar) decrypt() (int64, error) {
	if s.ctx == nil || !s.ctx.IsInitialized() {
		return 0, blockerr(ErrUninitializedContext, "crypto context not initialized")
	}
	v, err := s.ctx.Decrypt(s.ct)
	if err != nil {
		return 0, blockerrf(ErrCryptoFailure, "decrypt: %v", err)
	}
	return v, nil
}

func (s scalar) sameContext(other scalar) bool {
	return s.ctx != nil && other.ctx != nil && s.ctx == other.ctx
}

func (s scalar) add(other scalar) (scalar, error) {
	if !s.sameContext(other) {
		return scalar{}, blockerr(ErrUninitializedContext, "operands reference different crypto contexts")
	}
	sum, err := s.ctx.Add(s.ct, other.ct)
	if err != nil {
		return scalar{}, blockerrf(ErrCryptoFailure, "homomorphic add: %v", err)
	}
	return scalar{ct: sum, ctx: s.ctx}, nil
}

func (s scalar) subtract(other scalar) (scalar, error) {
	if !s.sameContext(other) {
		return scalar{}, blockerr(ErrUninitializedContext, "operands reference different crypto contexts")
	}
	diff, err := s.ctx.Subtract(s.ct, other.ct)
	if err != nil {
		return scalar{}, blockerrf(ErrCryptoFailure, "homomorphic subtract: %v", err)
	}
	return scalar{ct: diff, ctx: s.ctx}, nil
}

func (s scalar) toBytes() ([]byte, error) {
	if s.ctx == nil {
		return nil, blockerr(ErrUninitializedContext, "scalar has no crypto context")
	}
	b, err := s.ctx.CiphertextToBytes(s.ct)
	if err != nil {
		return nil, blockerrf(ErrSerializeFailure, "ciphertext to bytes: %v", err)
	}
	return b, nil
}

func scalarFromBytes(ctx crypto.CryptoContext, b []byte) (scalar, error) {
	if ctx == nil || !ctx.IsInitialized() {
		return scalar{}, blockerr(ErrUninitializedContext, "crypto context not initialized")
	}
	ct, err := ctx.CiphertextFromBytes(b)
	if err != nil {
		return scalar{}, blockerrf(ErrDeserializeFailure, "ciphertext from bytes: %v", err)
	}
	return scalar{ct: ct, ctx: ctx}, nil
}

// isZero reports whether the scalar decrypts to exactly zero, the
// equality test used throughout the integrity validation path: rather
// than decrypting a stored tag directly, callers subtract two tags and
// ask whether the difference isZero.
func (s scalar) isZero() (bool, error) {
	v, err := s.decrypt()
	if err != nil {
		return false, err
	}
	return v == 0, nil
}

// EncryptedSize is a ciphertext tagged as holding a block size in bytes.
type EncryptedSize struct{ scalar }

// EncryptedInt is a ciphertext tagged as holding a generic small integer
// (status, timestamp, checksum, MAC, magic).
type EncryptedInt struct{ scalar }

// EncryptedAddress is a ciphertext tagged as holding a link pointer; zero
// means "none".
type EncryptedAddress struct{ scalar }

// NewSize encrypts a plaintext size under ctx.
func NewSize(ctx crypto.CryptoContext, v int64, ceiling int64) (EncryptedSize, error) {
	s, err := newScalar(ctx, v, ceiling)
	return EncryptedSize{s}, err
}

// NewInt encrypts a plaintext integer under ctx.
func NewInt(ctx crypto.CryptoContext, v int64, ceiling int64) (EncryptedInt, error) {
	s, err := newScalar(ctx, v, ceiling)
	return EncryptedInt{s}, err
}

// NewAddress encrypts a plaintext address/link value under ctx; 0 means
// "none".
func NewAddress(ctx crypto.CryptoContext, v int64, ceiling int64) (EncryptedAddress, error) {
	s, err := newScalar(ctx, v, ceiling)
	return EncryptedAddress{s}, err
}

func (s EncryptedSize) Decrypt() (int64, error)    { return s.scalar.decrypt() }
func (s EncryptedSize) Add(o EncryptedSize) (EncryptedSize, error) {
	r, err := s.scalar.add(o.scalar)
	return EncryptedSize{r}, err
}
func (s EncryptedSize) Subtract(o EncryptedSize) (EncryptedSize, error) {
	r, err := s.scalar.subtract(o.scalar)
	return EncryptedSize{r}, err
}
func (s EncryptedSize) IsZero() (bool, error) { return s.scalar.isZero() }

func (s EncryptedInt) Decrypt() (int64, error) { return s.scalar.decrypt() }
func (s EncryptedInt) Add(o EncryptedInt) (EncryptedInt, error) {
	r, err := s.scalar.add(o.scalar)
	return EncryptedInt{r}, err
}
func (s EncryptedInt) Subtract(o EncryptedInt) (EncryptedInt, error) {
	r, err := s.scalar.subtract(o.scalar)
	return EncryptedInt{r}, err
}
func (s EncryptedInt) IsZero() (bool, error) { return s.scalar.isZero() }

func (s EncryptedAddress) Decrypt() (int64, error) { return s.scalar.decrypt() }
func (s EncryptedAddress) Add(o EncryptedAddress) (EncryptedAddress, error) {
	r, err := s.scalar.add(o.scalar)
	return EncryptedAddress{r}, err
}
func (s EncryptedAddress) Subtract(o EncryptedAddress) (EncryptedAddress, error) {
	r, err := s.scalar.subtract(o.scalar)
	return EncryptedAddress{r}, err
}
