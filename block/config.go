package block

// Config carries the defensive ceilings and fixed-schema sizes that the
// allocator's block subsystem enforces. These are deliberately struct
// fields with a constructed default rather than untyped constants: the
// 1 MiB payload ceiling and the 786,432-byte plaintext-size ceiling are
// defensive choices, not values derived from the underlying scheme, and a
// consumer embedding a different homomorphic scheme may need different
// numbers.
type Config struct {
	// MagicNumber is the footer constant every valid block must decrypt to.
	MagicNumber int64
	// MinBlockSize is the smallest total size (header+payload+footer) a
	// block may have.
	MinBlockSize int64
	// HeaderSize and FooterSize are the reserved byte counts for the
	// encrypted header and footer records respectively.
	HeaderSize int64
	FooterSize int64
	// MaxPayloadBytes bounds payload_size for EncryptedBlock.Create.
	MaxPayloadBytes int64
	// MaxPlaintextCreateSize bounds the plaintext size argument accepted
	// by CreateFromPlaintextSize.
	MaxPlaintextCreateSize int64
	// IntegrityModulus is the small prime integrity checksums, the
	// payload checksum, and the MAC are reduced modulo. It must be
	// strictly below the CryptoContext's plaintext modulus.
	IntegrityModulus int64
}

// wordSize is the conservative per-slot reservation used to size the
// header and footer records, mirroring the original C++ construction's
// sizeof(void*) estimate.
const wordSize = 8

// DefaultConfig returns the canonical constants from the specification:
// MAGIC=0xBE, MIN_BLOCK_SIZE=128, HEADER_SIZE=8*word, FOOTER_SIZE=4*word,
// a 1 MiB payload ceiling, a 786,432-byte plaintext-size ceiling, and the
// canonical integrity modulus of 65537.
func DefaultConfig() Config {
	return Config{
		MagicNumber:            0xBE,
		MinBlockSize:           128,
		HeaderSize:             8 * wordSize,
		FooterSize:             4 * wordSize,
		MaxPayloadBytes:        1 << 20,
		MaxPlaintextCreateSize: 786432,
		IntegrityModulus:       65537,
	}
}
