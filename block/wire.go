package block

import "encoding/binary"

// cursor is a read-only binary decoder over a byte slice, grounded on the
// teacher's consensus/wire.go cursor type: a position-tracking reader
// with bounds-checked fixed-width and length-prefixed reads.
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b}
}

func (c *cursor) remaining() int {
	return len(c.b) - c.pos
}

func (c *cursor) readExact(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, blockerrf(ErrDeserializeFailure, "wire: need %d bytes, have %d", n, c.remaining())
	}
	out := c.b[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

func (c *cursor) readU32LE() (uint32, error) {
	b, err := c.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readU64LE() (uint64, error) {
	b, err := c.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readLenPrefixed reads a uint32-LE length followed by that many bytes,
// the length-prefixing convention used throughout the canonical layout
// for variable-length ciphertext and payload fields.
func (c *cursor) readLenPrefixed() ([]byte, error) {
	n, err := c.readU32LE()
	if err != nil {
		return nil, err
	}
	return c.readExact(int(n))
}

// writer is the symmetric binary encoder: a growable byte buffer with the
// same fixed-width and length-prefixed primitives as cursor, so encode
// and decode read as mirror images of each other.
type writer struct {
	buf []byte
}

func newWriter() *writer {
	return &writer{}
}

func (w *writer) bytes() []byte { return w.buf }

func (w *writer) writeU32LE(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) writeU64LE(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) writeLenPrefixed(b []byte) {
	w.writeU32LE(uint32(len(b)))
	w.buf = append(w.buf, b...)
}
