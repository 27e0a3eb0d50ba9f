package columnar

import (
	"github.com/v2pro/plz/countlog"
)

// Reader is a positioned binary reader over a backing byte slice (an
// mmap'd attribute file, see file.go). It is not thread safe. Accessors and
// Analyzers do not keep one: they create a fresh Reader over the shared
// backing slice each time they load a block or subblock.
type Reader struct {
	buf []byte
	pos int64
}

// NewReader wraps a backing byte slice. The slice is normally the mmap'd
// contents of one attribute file (see openAttributeFile).
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Seek repositions the reader. It never validates against EOF eagerly;
// the next Read call fails if the position turns out to be out of range.
func (r *Reader) Seek(offset int64) {
	r.pos = offset
}

// GetPos returns the current position.
func (r *Reader) GetPos() int64 {
	return r.pos
}

// Read copies n bytes starting at the current position into dst and
// advances the position by n.
func (r *Reader) Read(dst []byte, n int) error {
	if r.pos < 0 || r.pos+int64(n) > int64(len(r.buf)) {
		countlog.Error("event!reader.read past end", "pos", r.pos, "n", n, "size", len(r.buf))
		return ErrReadPastEnd
	}
	copy(dst, r.buf[r.pos:r.pos+int64(n)])
	r.pos += int64(n)
	return nil
}

// ReadBytes returns a slice view (no copy) of n bytes at the current
// position, the way the PFOR/bitpack decoders want a contiguous payload
// to unpack in place.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.pos < 0 || r.pos+int64(n) > int64(len(r.buf)) {
		return nil, ErrReadPastEnd
	}
	b := r.buf[r.pos : r.pos+int64(n)]
	r.pos += int64(n)
	return b, nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if r.pos < 0 || r.pos+1 > int64(len(r.buf)) {
		return 0, ErrReadPastEnd
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadU32LE reads a 4-byte little-endian unsigned integer.
func (r *Reader) ReadU32LE() (uint32, error) {
	if r.pos < 0 || r.pos+4 > int64(len(r.buf)) {
		return 0, ErrReadPastEnd
	}
	b := r.buf[r.pos : r.pos+4]
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	r.pos += 4
	return v, nil
}

// ReadU64LE reads an 8-byte little-endian unsigned integer.
func (r *Reader) ReadU64LE() (uint64, error) {
	if r.pos < 0 || r.pos+8 > int64(len(r.buf)) {
		return 0, ErrReadPastEnd
	}
	b := r.buf[r.pos : r.pos+8]
	v := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	r.pos += 8
	return v, nil
}

// UnpackUint32 decodes a LEB128-style varint (spec §4.1).
func (r *Reader) UnpackUint32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 35 {
			return 0, ErrBadDirectory
		}
	}
	return result, nil
}

// UnpackUint64 decodes a LEB128-style varint into a 64-bit value, used by
// the min/max leaf summaries (blocktester.go) whose values can exceed 32 bits.
func (r *Reader) UnpackUint64() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 70 {
			return 0, ErrBadDirectory
		}
	}
	return result, nil
}

// PackUint32 is the encode-side counterpart, used only by test helpers that
// build synthetic attribute files to exercise the decode path.
func PackUint32(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}
