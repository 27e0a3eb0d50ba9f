package columnar

// MvaPacking enumerates the closed packing tag set for MVA attributes
// (spec §3): CONST, CONSTLEN, TABLE, DELTA_PFOR.
type MvaPacking int

const (
	MvaConst MvaPacking = iota
	MvaConstLen
	MvaTable
	MvaDeltaPFOR
	mvaPackingTotal
)

// storedBlockMvaConst is StoredBlock_MvaConst_T<T> (spec §4.3): every row
// in the block shares the same ascending vector.
type storedBlockMvaConst[T MvaValue] struct {
	values []T
}

func (b *storedBlockMvaConst[T]) ReadHeader(r *Reader, codec IntCodec) error {
	count, err := r.UnpackUint32()
	if err != nil {
		return err
	}
	values, err := decodeValuesPFORGeneric[T](r, codec, int(count))
	if err != nil {
		return err
	}
	applyInverseDeltaFlat(values)
	b.values = values
	return nil
}

func (b *storedBlockMvaConst[T]) GetValues(uint32) []T { return b.values }

// storedBlockMvaConstLen is StoredBlock_MvaConstLen_T<T>: every row in the
// block has the same vector length, stored as per-row first differences
// and reassembled on subblock load.
type storedBlockMvaConstLen[T MvaValue] struct {
	subblockSize int
	rowLen       int
	numSubblocks int
	offsets      []int64
	dataStart    int64

	subblockId int
	rows       [][]T
}

func newStoredBlockMvaConstLen[T MvaValue](subblockSize int) *storedBlockMvaConstLen[T] {
	return &storedBlockMvaConstLen[T]{subblockSize: subblockSize, subblockId: -1}
}

func (b *storedBlockMvaConstLen[T]) ReadHeader(r *Reader, numDocsInBlock uint32, codec IntCodec) error {
	rowLen, err := r.UnpackUint32()
	if err != nil {
		return err
	}
	b.rowLen = int(rowLen)
	b.numSubblocks = numSubblocksFor(int(numDocsInBlock), b.subblockSize)
	offsets, err := readOffsetTable(r, b.numSubblocks, codec)
	if err != nil {
		return err
	}
	b.offsets = offsets
	b.dataStart = r.GetPos()
	b.subblockId = -1
	return nil
}

func (b *storedBlockMvaConstLen[T]) ReadSubblock(subblockId, numValues int, r *Reader, codec IntCodec) error {
	if b.subblockId == subblockId {
		return nil
	}
	b.subblockId = subblockId
	r.Seek(b.dataStart + b.offsets[subblockId])
	flat, err := decodeValuesPFORGeneric[T](r, codec, numValues*b.rowLen)
	if err != nil {
		return err
	}
	rows := make([][]T, numValues)
	for i := 0; i < numValues; i++ {
		rows[i] = flat[i*b.rowLen : (i+1)*b.rowLen]
	}
	applyInverseDeltas(rows)
	b.rows = rows
	return nil
}

func (b *storedBlockMvaConstLen[T]) GetValues(idInSubblock int) []T { return b.rows[idInSubblock] }

// storedBlockMvaTable is StoredBlock_MvaTable_T<T>: a per-subblock
// dictionary of distinct vectors plus bit-packed per-row indices into it,
// for attributes where few distinct MVA sets repeat across many rows.
type storedBlockMvaTable[T MvaValue] struct {
	subblockSize int
	numSubblocks int
	offsets      []int64
	dataStart    int64

	subblockId int
	entries    [][]T
	rowEntry   []uint32
}

func newStoredBlockMvaTable[T MvaValue](subblockSize int) *storedBlockMvaTable[T] {
	return &storedBlockMvaTable[T]{subblockSize: subblockSize, subblockId: -1}
}

func (b *storedBlockMvaTable[T]) ReadHeader(r *Reader, numDocsInBlock uint32, codec IntCodec) error {
	b.numSubblocks = numSubblocksFor(int(numDocsInBlock), b.subblockSize)
	offsets, err := readOffsetTable(r, b.numSubblocks, codec)
	if err != nil {
		return err
	}
	b.offsets = offsets
	b.dataStart = r.GetPos()
	b.subblockId = -1
	return nil
}

func (b *storedBlockMvaTable[T]) ReadSubblock(subblockId, numValues int, r *Reader, codec IntCodec) error {
	if b.subblockId == subblockId {
		return nil
	}
	b.subblockId = subblockId
	r.Seek(b.dataStart + b.offsets[subblockId])

	numEntries, err := r.UnpackUint32()
	if err != nil {
		return err
	}
	lengths := make([]int, numEntries)
	total := 0
	for i := range lengths {
		n, err := r.UnpackUint32()
		if err != nil {
			return err
		}
		lengths[i] = int(n)
		total += int(n)
	}
	flat, err := decodeValuesPFORGeneric[T](r, codec, total)
	if err != nil {
		return err
	}
	entries := make([][]T, numEntries)
	pos := 0
	for i, n := range lengths {
		entries[i] = flat[pos : pos+n]
		pos += n
	}
	applyInverseDeltas(entries)
	b.entries = entries

	bits := CalcNumBits(int(numEntries))
	packedWords := (b.subblockSize*bits + 31) / 32
	raw, err := r.ReadBytes(packedWords * 4)
	if err != nil {
		return err
	}
	encoded := make([]uint32, packedWords)
	for i := range encoded {
		encoded[i] = uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
	}
	indices := make([]uint32, b.subblockSize)
	BitUnpack128(encoded, indices, bits)
	b.rowEntry = indices[:numValues]
	return nil
}

func (b *storedBlockMvaTable[T]) GetValues(idInSubblock int) []T {
	return b.entries[b.rowEntry[idInSubblock]]
}

// storedBlockMvaPFOR is StoredBlock_MvaPFOR_T<T> (the DELTA_PFOR packing):
// each subblock stores its own per-row lengths plus a flattened,
// first-differenced value stream (spec §4.3, §8 property 6).
type storedBlockMvaPFOR[T MvaValue] struct {
	subblockSize int
	numSubblocks int
	offsets      []int64
	dataStart    int64

	subblockId int
	rows       [][]T
}

func newStoredBlockMvaPFOR[T MvaValue](subblockSize int) *storedBlockMvaPFOR[T] {
	return &storedBlockMvaPFOR[T]{subblockSize: subblockSize, subblockId: -1}
}

func (b *storedBlockMvaPFOR[T]) ReadHeader(r *Reader, numDocsInBlock uint32, codec IntCodec) error {
	b.numSubblocks = numSubblocksFor(int(numDocsInBlock), b.subblockSize)
	offsets, err := readOffsetTable(r, b.numSubblocks, codec)
	if err != nil {
		return err
	}
	b.offsets = offsets
	b.dataStart = r.GetPos()
	b.subblockId = -1
	return nil
}

func (b *storedBlockMvaPFOR[T]) ReadSubblock(subblockId, numValues int, r *Reader, codec IntCodec) error {
	if b.subblockId == subblockId {
		return nil
	}
	b.subblockId = subblockId
	r.Seek(b.dataStart + b.offsets[subblockId])

	lengths := make([]int, numValues)
	total := 0
	for i := range lengths {
		n, err := r.UnpackUint32()
		if err != nil {
			return err
		}
		lengths[i] = int(n)
		total += int(n)
	}
	flat, err := decodeValuesPFORGeneric[T](r, codec, total)
	if err != nil {
		return err
	}
	rows := make([][]T, numValues)
	pos := 0
	for i, n := range lengths {
		rows[i] = flat[pos : pos+n]
		pos += n
	}
	applyInverseDeltas(rows)
	b.rows = rows
	return nil
}

func (b *storedBlockMvaPFOR[T]) GetValues(idInSubblock int) []T { return b.rows[idInSubblock] }
