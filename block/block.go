package block

import (
	"sync/atomic"
	"unsafe"

	"github.com/cryptmalloc/encblock/crypto"
)

// globalTimestampCounter is the process-wide monotonic counter spec.md
// §4.5 requires in place of wall-clock time: unix epoch seconds would
// overflow the plaintext modulus immediately, so every timestamp this
// module stamps is drawn from this counter instead.
var globalTimestampCounter atomic.Int64

func nextCounter() int64 {
	return globalTimestampCounter.Add(1)
}

// EncryptedBlock is a single allocation unit whose metadata (size,
// status, links, timestamps, integrity tags) lives entirely as
// ciphertexts. The payload is plaintext; confidentiality of payload bytes
// is the consumer's responsibility, not this subsystem's. A block is
// single-owner: callers must not invoke two operations on the same block
// concurrently, and must hand a block off between goroutines only by
// passing its pointer (there is no copy constructor).
type EncryptedBlock struct {
	ctx             crypto.CryptoContext
	cfg             Config
	header          Header
	footer          Footer
	payload         []byte
	payloadCapacity int64
	isLocked        atomic.Bool
}

func ceiling(ctx crypto.CryptoContext) int64 {
	return ctx.PlaintextModulus()
}

// blockAddress derives a stable per-block identity value from b's own
// pointer, reduced into the context's plaintext domain. Split produces
// sibling blocks that must link to each other the way the original's
// `next`/`prev` fields reference neighbors elsewhere (§4.6 step 4);
// since this subsystem does not itself assign memory addresses (callers
// own that, see validator.ChainMember), a block's pointer identity is the
// only address it can offer up for its own sibling link.
func blockAddress(b *EncryptedBlock) int64 {
	modulus := ceiling(b.ctx)
	return int64(uintptr(unsafe.Pointer(b)) % uintptr(modulus))
}

// Create builds a new FREE block of the given encrypted size, per
// spec.md §4.3.
func Create(ctx crypto.CryptoContext, encryptedSize EncryptedSize, cfg Config) (*EncryptedBlock, error) {
	if ctx == nil || !ctx.IsInitialized() {
		return nil, blockerr(ErrUninitializedContext, "crypto context not initialized")
	}
	size, err := encryptedSize.Decrypt()
	if err != nil {
		return nil, err
	}
	if size < cfg.MinBlockSize || size < cfg.HeaderSize+cfg.FooterSize {
		return nil, blockerrf(ErrInvalidSize, "size %d below minimum (min=%d, header+footer=%d)", size, cfg.MinBlockSize, cfg.HeaderSize+cfg.FooterSize)
	}
	payloadSize := size - cfg.HeaderSize - cfg.FooterSize
	if payloadSize > cfg.MaxPayloadBytes {
		return nil, blockerrf(ErrPayloadTooLarge, "payload size %d exceeds ceiling %d", payloadSize, cfg.MaxPayloadBytes)
	}

	b := &EncryptedBlock{
		ctx:             ctx,
		cfg:             cfg,
		payload:         make([]byte, payloadSize),
		payloadCapacity: payloadSize,
	}

	if err := b.initializeHeader(encryptedSize); err != nil {
		return nil, err
	}
	if err := b.initializeFooter(encryptedSize); err != nil {
		return nil, err
	}
	if err := b.RecomputeChecksums(); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateFromPlaintextSize encrypts n under ctx and delegates to Create,
// rejecting n above cfg.MaxPlaintextCreateSize first.
func CreateFromPlaintextSize(ctx crypto.CryptoContext, n int64, cfg Config) (*EncryptedBlock, error) {
	if ctx == nil || !ctx.IsInitialized() {
		return nil, blockerr(ErrUninitializedContext, "crypto context not initialized")
	}
	if n > cfg.MaxPlaintextCreateSize {
		return nil, blockerrf(ErrPlaintextTooLarge, "plaintext size %d exceeds ceiling %d", n, cfg.MaxPlaintextCreateSize)
	}
	encSize, err := NewSize(ctx, n, ceiling(ctx))
	if err != nil {
		return nil, err
	}
	return Create(ctx, encSize, cfg)
}

func (b *EncryptedBlock) initializeHeader(size EncryptedSize) error {
	ctx := b.ctx
	c := ceiling(ctx)

	status, err := NewInt(ctx, int64(StatusFree), c)
	if err != nil {
		return err
	}
	next, err := NewAddress(ctx, 0, c)
	if err != nil {
		return err
	}
	prev, err := NewAddress(ctx, 0, c)
	if err != nil {
		return err
	}
	now := nextCounter()
	tsCreated, err := NewInt(ctx, now, c)
	if err != nil {
		return err
	}
	tsModified, err := NewInt(ctx, now, c)
	if err != nil {
		return err
	}
	checksum, err := NewInt(ctx, 0, c)
	if err != nil {
		return err
	}
	versionField, err := NewSize(ctx, CurrentVersion.Pack(), c)
	if err != nil {
		return err
	}

	b.header = Header{
		Size:         size,
		Status:       status,
		Next:         next,
		Prev:         prev,
		TsCreated:    tsCreated,
		TsModified:   tsModified,
		Checksum:     checksum,
		VersionField: versionField,
	}
	return nil
}

func (b *EncryptedBlock) initializeFooter(size EncryptedSize) error {
	ctx := b.ctx
	c := ceiling(ctx)

	magic, err := NewInt(ctx, b.cfg.MagicNumber, c)
	if err != nil {
		return err
	}
	payloadChecksum, err := NewInt(ctx, 0, c)
	if err != nil {
		return err
	}
	mac, err := NewInt(ctx, 0, c)
	if err != nil {
		return err
	}

	b.footer = Footer{
		Magic:           magic,
		PayloadChecksum: payloadChecksum,
		SizeVerify:      size,
		MAC:             mac,
	}
	return nil
}

// GetStatus decrypts and returns the block's current status.
func (b *EncryptedBlock) GetStatus() (Status, error) {
	v, err := b.header.Status.Decrypt()
	if err != nil {
		return 0, err
	}
	return Status(v), nil
}

// SetStatus transitions the block to status, enforcing the state machine
// in spec.md §4.4, then stamps a new modification timestamp and
// recomputes checksums.
func (b *EncryptedBlock) SetStatus(status Status) error {
	if !IsValidStatus(status) {
		return blockerrf(ErrInvalidTransition, "status %d out of range", status)
	}
	current, err := b.GetStatus()
	if err != nil {
		return err
	}
	if !transitionAllowed(current, status) {
		return blockerrf(ErrInvalidTransition, "invalid transition %s -> %s", current, status)
	}
	encStatus, err := NewInt(b.ctx, int64(status), ceiling(b.ctx))
	if err != nil {
		return err
	}
	b.header.Status = encStatus
	if err := b.UpdateTimestamp(); err != nil {
		return err
	}
	return b.RecomputeChecksums()
}

// IsFree reports whether the block is currently FREE.
func (b *EncryptedBlock) IsFree() (bool, error) {
	s, err := b.GetStatus()
	if err != nil {
		return false, err
	}
	return s == StatusFree, nil
}

// IsAllocated reports whether the block is currently ALLOCATED.
func (b *EncryptedBlock) IsAllocated() (bool, error) {
	s, err := b.GetStatus()
	if err != nil {
		return false, err
	}
	return s == StatusAllocated, nil
}

// GetPlaintextSize decrypts and returns the block's total size in bytes.
func (b *EncryptedBlock) GetPlaintextSize() (int64, error) {
	return b.header.Size.Decrypt()
}

// GetEncryptedSize returns the block's size field without decrypting it.
func (b *EncryptedBlock) GetEncryptedSize() EncryptedSize {
	return b.header.Size
}

// GetPayloadSize returns the plaintext payload capacity in bytes.
func (b *EncryptedBlock) GetPayloadSize() int64 {
	return b.payloadCapacity
}

// SetNext sets the header's next-block link.
func (b *EncryptedBlock) SetNext(next EncryptedAddress) error {
	b.header.Next = next
	return b.RecomputeChecksums()
}

// SetPrev sets the header's prev-block link.
func (b *EncryptedBlock) SetPrev(prev EncryptedAddress) error {
	b.header.Prev = prev
	return b.RecomputeChecksums()
}

// GetNext returns the header's next-block link.
func (b *EncryptedBlock) GetNext() EncryptedAddress { return b.header.Next }

// GetPrev returns the header's prev-block link.
func (b *EncryptedBlock) GetPrev() EncryptedAddress { return b.header.Prev }

// UpdateTimestamp stamps a new modification time from the shared
// monotonic counter, strictly greater than any previously observed value.
func (b *EncryptedBlock) UpdateTimestamp() error {
	ts, err := NewInt(b.ctx, nextCounter(), ceiling(b.ctx))
	if err != nil {
		return err
	}
	b.header.TsModified = ts
	return nil
}

// GetCreationTime decrypts the creation counter value.
func (b *EncryptedBlock) GetCreationTime() (int64, error) {
	return b.header.TsCreated.Decrypt()
}

// GetModificationTime decrypts the modification counter value.
func (b *EncryptedBlock) GetModificationTime() (int64, error) {
	return b.header.TsModified.Decrypt()
}

// PayloadBytes returns the live payload buffer. Callers writing through
// this slice must call RecomputeChecksums afterward, mirroring the
// original get_payload_ptr contract.
func (b *EncryptedBlock) PayloadBytes() []byte {
	return b.payload
}

// GetVersion decrypts the header's packed version field and returns it
// unpacked; a decryption failure is returned as the error.
func (b *EncryptedBlock) GetVersion() (BlockVersion, error) {
	packed, err := b.header.VersionField.Decrypt()
	if err != nil {
		return BlockVersion{}, err
	}
	return UnpackVersion(packed), nil
}

// IsVersionCompatible reports whether the block's version is compatible
// with other, per spec.md §4.2.
func (b *EncryptedBlock) IsVersionCompatible(other BlockVersion) (bool, error) {
	v, err := b.GetVersion()
	if err != nil {
		return false, err
	}
	return v.IsCompatibleWith(other), nil
}

// RecomputeChecksums recomputes the header checksum, payload checksum,
// and MAC from the block's current decrypted state and re-encrypts them,
// per spec.md §4.8.
func (b *EncryptedBlock) RecomputeChecksums() error {
	size, err := b.header.Size.Decrypt()
	if err != nil {
		return err
	}
	status, err := b.header.Status.Decrypt()
	if err != nil {
		return err
	}
	tsCreated, err := b.header.TsCreated.Decrypt()
	if err != nil {
		return err
	}
	tsModified, err := b.header.TsModified.Decrypt()
	if err != nil {
		return err
	}
	modulus := b.cfg.IntegrityModulus

	headerChecksum := computeHeaderChecksum(size, status, tsCreated, tsModified, modulus)
	payloadChecksum := computePayloadChecksum(b.payload, modulus)
	mac := computeMAC(b.cfg.MagicNumber, headerChecksum, payloadChecksum, size, modulus)

	c := ceiling(b.ctx)
	encHeaderChecksum, err := NewInt(b.ctx, headerChecksum, c)
	if err != nil {
		return err
	}
	encPayloadChecksum, err := NewInt(b.ctx, payloadChecksum, c)
	if err != nil {
		return err
	}
	encMAC, err := NewInt(b.ctx, mac, c)
	if err != nil {
		return err
	}

	b.header.Checksum = encHeaderChecksum
	b.footer.PayloadChecksum = encPayloadChecksum
	b.footer.MAC = encMAC
	return nil
}

// VerifyMagicNumber compares the footer's magic ciphertext to the
// canonical constant via homomorphic subtraction and zero-decryption, per
// spec.md §4.8's design note: it never decrypts the stored field directly
// for the comparison.
func (b *EncryptedBlock) VerifyMagicNumber() (bool, error) {
	expected, err := NewInt(b.ctx, b.cfg.MagicNumber, ceiling(b.ctx))
	if err != nil {
		return false, err
	}
	diff, err := b.footer.Magic.Subtract(expected)
	if err != nil {
		return false, err
	}
	return diff.IsZero()
}

// VerifySizeConsistency compares footer.size_verify against header.size
// the same way: homomorphic subtract then zero-decrypt.
func (b *EncryptedBlock) VerifySizeConsistency() (bool, error) {
	diff, err := b.footer.SizeVerify.Subtract(b.header.Size)
	if err != nil {
		return false, err
	}
	return diff.IsZero()
}

func (b *EncryptedBlock) verifyHeaderChecksum() (bool, error) {
	size, err := b.header.Size.Decrypt()
	if err != nil {
		return false, err
	}
	status, err := b.header.Status.Decrypt()
	if err != nil {
		return false, err
	}
	tsCreated, err := b.header.TsCreated.Decrypt()
	if err != nil {
		return false, err
	}
	tsModified, err := b.header.TsModified.Decrypt()
	if err != nil {
		return false, err
	}
	expected := computeHeaderChecksum(size, status, tsCreated, tsModified, b.cfg.IntegrityModulus)
	expectedEnc, err := NewInt(b.ctx, expected, ceiling(b.ctx))
	if err != nil {
		return false, err
	}
	diff, err := b.header.Checksum.Subtract(expectedEnc)
	if err != nil {
		return false, err
	}
	return diff.IsZero()
}

func (b *EncryptedBlock) verifyPayloadChecksum() (bool, error) {
	expected := computePayloadChecksum(b.payload, b.cfg.IntegrityModulus)
	expectedEnc, err := NewInt(b.ctx, expected, ceiling(b.ctx))
	if err != nil {
		return false, err
	}
	diff, err := b.footer.PayloadChecksum.Subtract(expectedEnc)
	if err != nil {
		return false, err
	}
	return diff.IsZero()
}

func (b *EncryptedBlock) verifyMAC() (bool, error) {
	headerChecksum, err := b.header.Checksum.Decrypt()
	if err != nil {
		return false, err
	}
	payloadChecksum, err := b.footer.PayloadChecksum.Decrypt()
	if err != nil {
		return false, err
	}
	size, err := b.header.Size.Decrypt()
	if err != nil {
		return false, err
	}
	expected := computeMAC(b.cfg.MagicNumber, headerChecksum, payloadChecksum, size, b.cfg.IntegrityModulus)
	expectedEnc, err := NewInt(b.ctx, expected, ceiling(b.ctx))
	if err != nil {
		return false, err
	}
	diff, err := b.footer.MAC.Subtract(expectedEnc)
	if err != nil {
		return false, err
	}
	return diff.IsZero()
}

// ValidateIntegrity reports whether the block's integrity checks hold:
// magic, size consistency, header checksum, payload checksum, and MAC.
// Status range, timestamp ordering, and payload capacity are not checked
// here (BlockValidator checks timestamp ordering).
// It is a boolean result, not an error — a failing check is a negative
// finding, not a cryptographic or precondition failure.
func (b *EncryptedBlock) ValidateIntegrity() (bool, error) {
	checks := []func() (bool, error){
		b.VerifyMagicNumber,
		b.VerifySizeConsistency,
		b.verifyHeaderChecksum,
		b.verifyPayloadChecksum,
		b.verifyMAC,
	}
	for _, check := range checks {
		ok, err := check()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Serialize encodes the block into the canonical byte layout; see
// SerializeBlock in serializer.go.
func (b *EncryptedBlock) Serialize() ([]byte, error) {
	return SerializeBlock(b)
}

// SecureWipe zeroes the payload buffer in place.
func (b *EncryptedBlock) SecureWipe() error {
	for i := range b.payload {
		b.payload[i] = 0
	}
	return nil
}

// DebugInfo returns a human-readable snapshot of the block's decrypted
// state for diagnostics, mirroring the original debug_info() contract.
func (b *EncryptedBlock) DebugInfo() string {
	return debugInfo(b)
}

// SelfTest runs ValidateIntegrity and surfaces a descriptive error if the
// block fails any check, mirroring the original self_test() contract
// ("operations should still work" — self_test reports, it does not
// repair).
func (b *EncryptedBlock) SelfTest() error {
	ok, err := b.ValidateIntegrity()
	if err != nil {
		return err
	}
	if !ok {
		return blockerr(ErrCryptoFailure, "self-test failed: block integrity invalid")
	}
	return nil
}
