package columnar

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

// IntCodec decodes (and, for test fixtures, encodes) a run of packed 32-
// or 64-bit integers. Selected by name the way spec §4.1 describes
// ("simdfastpfor128", "fastpfor128", ...); the real frame-of-reference/
// bit-packing arithmetic of the PFOR family is an external collaborator
// out of scope here (spec §1) — CreateIntCodec returns a concrete codec
// that satisfies the same narrow contract with a varint-based encoding,
// plus an lz4-framed variant to exercise the same by-name dispatch table
// with a second real compression backend.
type IntCodec interface {
	Name() string
	EncodeUint32(values []uint32) []byte
	DecodeUint32(src []byte, dst []uint32) error
	EncodeUint64(values []uint64) []byte
	DecodeUint64(src []byte, dst []uint64) error
}

// CreateIntCodec mirrors the original CreateIntCodec(sCodec32, sCodec64)
// factory: one codec instance handles both widths for a given attribute,
// picked by the pair of scheme names from Settings.
func CreateIntCodec(codec32, codec64 string) (IntCodec, error) {
	if codec32 == "lz4" || codec64 == "lz4" {
		return &lz4Codec{name: codec32}, nil
	}
	switch codec32 {
	case "simdfastpfor128", "fastpfor128", "":
		return &varintCodec{name: codec32}, nil
	default:
		return nil, ErrCodecUnknown
	}
}

// varintCodec stands in for the PFOR family: each value is unsigned
// LEB128-varint encoded back to back. It round-trips exactly, which is all the decode
// path (spec §8 property 6) requires of its external collaborator.
type varintCodec struct{ name string }

func (c *varintCodec) Name() string { return c.name }

func (c *varintCodec) EncodeUint32(values []uint32) []byte {
	buf := make([]byte, 0, len(values)*2)
	for _, v := range values {
		buf = PackUint32(buf, v)
	}
	return buf
}

func (c *varintCodec) DecodeUint32(src []byte, dst []uint32) error {
	r := NewReader(src)
	for i := range dst {
		v, err := r.UnpackUint32()
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func (c *varintCodec) EncodeUint64(values []uint64) []byte {
	buf := make([]byte, 0, len(values)*2)
	for _, v := range values {
		buf = binary.AppendUvarint(buf, v)
	}
	return buf
}

func (c *varintCodec) DecodeUint64(src []byte, dst []uint64) error {
	pos := 0
	for i := range dst {
		v, n := binary.Uvarint(src[pos:])
		if n <= 0 {
			return ErrBadDirectory
		}
		dst[i] = v
		pos += n
	}
	return nil
}

// lz4Codec frames a varint-encoded stream through lz4 block compression,
// giving the by-name codec registry (spec §4.1) a second concrete scheme
// the same way the settings' m_sCompressionUINT32/64 select among several
// named PFOR variants in the original library.
type lz4Codec struct{ name string }

func (c *lz4Codec) Name() string { return c.name }

func (c *lz4Codec) EncodeUint32(values []uint32) []byte {
	raw := (&varintCodec{}).EncodeUint32(values)
	return lz4Frame(raw)
}

func (c *lz4Codec) DecodeUint32(src []byte, dst []uint32) error {
	raw, err := lz4Unframe(src)
	if err != nil {
		return err
	}
	return (&varintCodec{}).DecodeUint32(raw, dst)
}

func (c *lz4Codec) EncodeUint64(values []uint64) []byte {
	raw := (&varintCodec{}).EncodeUint64(values)
	return lz4Frame(raw)
}

func (c *lz4Codec) DecodeUint64(src []byte, dst []uint64) error {
	raw, err := lz4Unframe(src)
	if err != nil {
		return err
	}
	return (&varintCodec{}).DecodeUint64(raw, dst)
}

func lz4Frame(raw []byte) []byte {
	bound := lz4.CompressBlockBound(len(raw))
	compressed := make([]byte, bound)
	var c lz4.Compressor
	n, err := c.CompressBlock(raw, compressed)
	header := make([]byte, 0, 8)
	header = binary.AppendUvarint(header, uint64(len(raw)))
	if err != nil || n == 0 {
		// incompressible: store raw with a zero-length compressed marker
		header = binary.AppendUvarint(header, 0)
		return append(header, raw...)
	}
	header = binary.AppendUvarint(header, uint64(n))
	return append(header, compressed[:n]...)
}

func lz4Unframe(src []byte) ([]byte, error) {
	rawLen, n1 := binary.Uvarint(src)
	if n1 <= 0 {
		return nil, ErrBadDirectory
	}
	src = src[n1:]
	compLen, n2 := binary.Uvarint(src)
	if n2 <= 0 {
		return nil, ErrBadDirectory
	}
	src = src[n2:]
	if compLen == 0 {
		return src[:rawLen], nil
	}
	raw := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(src[:compLen], raw)
	if err != nil {
		return nil, err
	}
	return raw[:n], nil
}

// decodeValuesPFOR32 reads a varint byte-length prefix, then decodes count
// uint32 values through codec (spec's DecodeValues_PFOR).
func decodeValuesPFOR32(r *Reader, codec IntCodec, count int) ([]uint32, error) {
	byteLen, err := r.UnpackUint32()
	if err != nil {
		return nil, err
	}
	src, err := r.ReadBytes(int(byteLen))
	if err != nil {
		return nil, err
	}
	dst := make([]uint32, count)
	if err := codec.DecodeUint32(src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

func decodeValuesPFOR64(r *Reader, codec IntCodec, count int) ([]uint64, error) {
	byteLen, err := r.UnpackUint32()
	if err != nil {
		return nil, err
	}
	src, err := r.ReadBytes(int(byteLen))
	if err != nil {
		return nil, err
	}
	dst := make([]uint64, count)
	if err := codec.DecodeUint64(src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// decodeValuesDeltaPFOR32 decodes a PFOR-coded delta stream and prefix-sums
// it back into cumulative values. readOffsetTable uses this for a
// subblock's cumulative byte-length table (spec §3/§4.3): offsets grow
// monotonically, so coding them as first differences through the IntCodec
// is smaller than a flat varint per entry.
func decodeValuesDeltaPFOR32(r *Reader, codec IntCodec, count int) ([]uint32, error) {
	deltas, err := decodeValuesPFOR32(r, codec, count)
	if err != nil {
		return nil, err
	}
	var running uint32
	for i, d := range deltas {
		running += d
		deltas[i] = running
	}
	return deltas, nil
}

// encodeValuesPFOR32/encodeValuesDeltaPFOR32 are the encode-side
// counterparts used only by test fixtures that build synthetic blocks.
func encodeValuesPFOR32(codec IntCodec, values []uint32) []byte {
	encoded := codec.EncodeUint32(values)
	buf := PackUint32(nil, uint32(len(encoded)))
	return append(buf, encoded...)
}

func encodeValuesDeltaPFOR32(codec IntCodec, cumulative []uint32) []byte {
	deltas := make([]uint32, len(cumulative))
	var prev uint32
	for i, v := range cumulative {
		deltas[i] = v - prev
		prev = v
	}
	return encodeValuesPFOR32(codec, deltas)
}
