package block

import "github.com/cryptmalloc/encblock/crypto"

// BlockSerializer binds a crypto context and config so a caller can
// serialize and deserialize blocks and block chains without passing both
// on every call, mirroring the original BlockSerializer class.
type BlockSerializer struct {
	ctx crypto.CryptoContext
	cfg Config
}

// NewBlockSerializer constructs a BlockSerializer bound to ctx and cfg.
func NewBlockSerializer(ctx crypto.CryptoContext, cfg Config) *BlockSerializer {
	return &BlockSerializer{ctx: ctx, cfg: cfg}
}

// SerializeBlock encodes b into the canonical byte layout described in
// spec.md §4.10: a leading plaintext packed-version field (so an
// incompatible reader can reject the bytes before touching a single
// ciphertext), followed by the eight header scalars, the four footer
// scalars, and the length-prefixed payload.
func SerializeBlock(b *EncryptedBlock) ([]byte, error) {
	version, err := b.header.VersionField.Decrypt()
	if err != nil {
		return nil, err
	}

	w := newWriter()
	w.writeU64LE(uint64(version))

	scalars := []scalar{
		b.header.Size.scalar,
		b.header.Status.scalar,
		b.header.Next.scalar,
		b.header.Prev.scalar,
		b.header.TsCreated.scalar,
		b.header.TsModified.scalar,
		b.header.Checksum.scalar,
		b.header.VersionField.scalar,
		b.footer.Magic.scalar,
		b.footer.PayloadChecksum.scalar,
		b.footer.SizeVerify.scalar,
		b.footer.MAC.scalar,
	}
	for _, s := range scalars {
		raw, err := s.toBytes()
		if err != nil {
			return nil, err
		}
		w.writeLenPrefixed(raw)
	}
	w.writeLenPrefixed(b.payload)
	return w.bytes(), nil
}

// CheckFormatVersion peeks at the leading plaintext version field of a
// serialized block without decoding anything else, so a reader can
// reject an incompatible format before allocating a crypto context's
// worth of ciphertext decodes.
func CheckFormatVersion(data []byte, caller BlockVersion) (bool, error) {
	packed, err := GetSerializedVersion(data)
	if err != nil {
		return false, err
	}
	return UnpackVersion(packed).IsCompatibleWith(caller), nil
}

// GetSerializedVersion reads the leading plaintext packed version field.
func GetSerializedVersion(data []byte) (int64, error) {
	c := newCursor(data)
	v, err := c.readU64LE()
	if err != nil {
		return 0, blockerrf(ErrDeserializeFailure, "reading version: %v", err)
	}
	return int64(v), nil
}

// DeserializeBlock decodes bytes produced by SerializeBlock back into an
// EncryptedBlock bound to ctx. It rejects an incompatible version before
// touching any ciphertext field.
func DeserializeBlock(ctx crypto.CryptoContext, data []byte, cfg Config) (*EncryptedBlock, error) {
	if ctx == nil || !ctx.IsInitialized() {
		return nil, blockerr(ErrUninitializedContext, "crypto context not initialized")
	}
	packed, err := GetSerializedVersion(data)
	if err != nil {
		return nil, err
	}
	if !UnpackVersion(packed).IsCompatibleWith(CurrentVersion) {
		return nil, blockerrf(ErrVersionIncompatible, "serialized version %v incompatible with %v", UnpackVersion(packed), CurrentVersion)
	}

	c := newCursor(data)
	if _, err := c.readU64LE(); err != nil {
		return nil, blockerrf(ErrDeserializeFailure, "%v", err)
	}

	readScalar := func() (scalar, error) {
		raw, err := c.readLenPrefixed()
		if err != nil {
			return scalar{}, blockerrf(ErrDeserializeFailure, "reading scalar: %v", err)
		}
		return scalarFromBytes(ctx, raw)
	}

	size, err := readScalar()
	if err != nil {
		return nil, err
	}
	status, err := readScalar()
	if err != nil {
		return nil, err
	}
	next, err := readScalar()
	if err != nil {
		return nil, err
	}
	prev, err := readScalar()
	if err != nil {
		return nil, err
	}
	tsCreated, err := readScalar()
	if err != nil {
		return nil, err
	}
	tsModified, err := readScalar()
	if err != nil {
		return nil, err
	}
	checksum, err := readScalar()
	if err != nil {
		return nil, err
	}
	versionField, err := readScalar()
	if err != nil {
		return nil, err
	}
	magic, err := readScalar()
	if err != nil {
		return nil, err
	}
	payloadChecksum, err := readScalar()
	if err != nil {
		return nil, err
	}
	sizeVerify, err := readScalar()
	if err != nil {
		return nil, err
	}
	mac, err := readScalar()
	if err != nil {
		return nil, err
	}
	payload, err := c.readLenPrefixed()
	if err != nil {
		return nil, blockerrf(ErrDeserializeFailure, "reading payload: %v", err)
	}

	b := &EncryptedBlock{
		ctx: ctx,
		cfg: cfg,
		header: Header{
			Size:         EncryptedSize{size},
			Status:       EncryptedInt{status},
			Next:         EncryptedAddress{next},
			Prev:         EncryptedAddress{prev},
			TsCreated:    EncryptedInt{tsCreated},
			TsModified:   EncryptedInt{tsModified},
			Checksum:     EncryptedInt{checksum},
			VersionField: EncryptedSize{versionField},
		},
		footer: Footer{
			Magic:           EncryptedInt{magic},
			PayloadChecksum: EncryptedInt{payloadChecksum},
			SizeVerify:      EncryptedSize{sizeVerify},
			MAC:             EncryptedInt{mac},
		},
		payload:         payload,
		payloadCapacity: int64(len(payload)),
	}

	valid, err := b.ValidateIntegrity()
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, blockerr(ErrDeserializeFailure, "deserialized block failed integrity validation")
	}
	return b, nil
}

// SerializeChain encodes an ordered slice of blocks as a count followed
// by each block's SerializeBlock encoding, length-prefixed.
func (s *BlockSerializer) SerializeChain(blocks []*EncryptedBlock) ([]byte, error) {
	w := newWriter()
	w.writeU32LE(uint32(len(blocks)))
	for _, b := range blocks {
		raw, err := SerializeBlock(b)
		if err != nil {
			return nil, err
		}
		w.writeLenPrefixed(raw)
	}
	return w.bytes(), nil
}

// DeserializeChain is the inverse of SerializeChain.
func (s *BlockSerializer) DeserializeChain(data []byte) ([]*EncryptedBlock, error) {
	c := newCursor(data)
	count, err := c.readU32LE()
	if err != nil {
		return nil, blockerrf(ErrDeserializeFailure, "reading chain count: %v", err)
	}
	blocks := make([]*EncryptedBlock, 0, count)
	for i := uint32(0); i < count; i++ {
		raw, err := c.readLenPrefixed()
		if err != nil {
			return nil, blockerrf(ErrDeserializeFailure, "reading chain element %d: %v", i, err)
		}
		b, err := DeserializeBlock(s.ctx, raw, s.cfg)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
