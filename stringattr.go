package columnar

import (
	"github.com/spaolacci/murmur3"
)

// stringBlock is the supplemented STRING attribute's block layout
// (SPEC_FULL.md): per-row byte lengths (PFOR-coded), an optional
// precomputed per-row 64-bit hash table, then the row bytes themselves
// concatenated — a minimal accessor exposing only GetLength/
// GetStringHash, the two STRING operations spec.md's Columnar_i
// Non-goals leave in scope (no substring search, no sorting by value).
type stringBlock struct {
	haveHashes bool
	offsets    []uint32 // cumulative, length numDocsInBlock+1
	hashes     []uint64
	data       []byte
}

func (b *stringBlock) ReadHeader(r *Reader, numDocsInBlock uint32, codec IntCodec) error {
	flag, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.haveHashes = flag != 0

	lengths, err := decodeValuesPFOR32(r, codec, int(numDocsInBlock))
	if err != nil {
		return err
	}
	offsets := make([]uint32, numDocsInBlock+1)
	var total uint32
	for i, l := range lengths {
		total += l
		offsets[i+1] = total
	}
	b.offsets = offsets

	if b.haveHashes {
		hashes := make([]uint64, numDocsInBlock)
		if err := codec.DecodeUint64(mustReadRemainderForHashes(r, numDocsInBlock), hashes); err != nil {
			return err
		}
		b.hashes = hashes
	} else {
		b.hashes = nil
	}

	data, err := r.ReadBytes(int(total))
	if err != nil {
		return err
	}
	b.data = data
	return nil
}

// mustReadRemainderForHashes reads the length-prefixed hash payload the
// same way decodeValuesPFOR64 does, without decoding into a preallocated
// slice of the wrong width (hashes are stored as a freestanding byte run
// ahead of the string data pool).
func mustReadRemainderForHashes(r *Reader, count uint32) []byte {
	byteLen, err := r.UnpackUint32()
	if err != nil {
		return nil
	}
	src, err := r.ReadBytes(int(byteLen))
	if err != nil {
		return nil
	}
	return src
}

func (b *stringBlock) GetLength(rowOffsetInBlock uint32) int {
	return int(b.offsets[rowOffsetInBlock+1] - b.offsets[rowOffsetInBlock])
}

func (b *stringBlock) GetBytes(rowOffsetInBlock uint32) []byte {
	return b.data[b.offsets[rowOffsetInBlock]:b.offsets[rowOffsetInBlock+1]]
}

func (b *stringBlock) GetStringHash(rowOffsetInBlock uint32) (uint64, bool) {
	if !b.haveHashes {
		return 0, false
	}
	return b.hashes[rowOffsetInBlock], true
}

// stringAccessor is the STRING family's Accessor/Iterator combined: a
// STRING attribute never partitions into subblocks for point lookups
// (spec's STRING is block-granular, not filterable via Analyzer).
type stringAccessor struct {
	header *AttributeHeader
	data   []byte
	codec  IntCodec

	curBlockId int
	block      stringBlock
}

func newStringAccessor(header *AttributeHeader, data []byte) (*stringAccessor, error) {
	settings := header.GetSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	if err != nil {
		return nil, err
	}
	return &stringAccessor{header: header, data: data, codec: codec, curBlockId: -1}, nil
}

func (a *stringAccessor) setCurBlock(blockId uint32) error {
	if a.curBlockId == int(blockId) {
		return nil
	}
	a.curBlockId = int(blockId)
	r := NewReader(a.data)
	r.Seek(a.header.GetBlockOffset(blockId))
	return a.block.ReadHeader(r, a.header.GetNumDocs(blockId), a.codec)
}

func (a *stringAccessor) rowOffset(rowId RowId) (uint32, error) {
	blockId := RowId2BlockId(rowId)
	if err := a.setCurBlock(blockId); err != nil {
		return 0, err
	}
	start := RowId(blockId) * rowsPerBlock
	return uint32(rowId - start), nil
}

// GetLength implements the STRING attribute's length lookup.
func (a *stringAccessor) GetLength(rowId RowId) (int, error) {
	off, err := a.rowOffset(rowId)
	if err != nil {
		return 0, err
	}
	return a.block.GetLength(off), nil
}

// GetStringHash implements the STRING attribute's hash lookup, computing
// murmur3 on demand when the block carries no precomputed hash table
// (spec's HaveStringHashes flag).
func (a *stringAccessor) GetStringHash(rowId RowId) (uint64, error) {
	off, err := a.rowOffset(rowId)
	if err != nil {
		return 0, err
	}
	if h, ok := a.block.GetStringHash(off); ok {
		return h, nil
	}
	return murmur3.Sum64(a.block.GetBytes(off)), nil
}
