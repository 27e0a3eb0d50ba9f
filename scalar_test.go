package columnar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_scalar_const_block(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	should.NoError(err)

	data := append([]byte{byte(ScalarConst)}, encodeValuesPFOR32(codec, []uint32{42})...)
	header := NewAttributeHeader("price", AttrUint32, 10, settings, []int64{0}, []uint32{10})

	it, err := newScalarIterator[uint32](header, data)
	should.NoError(err)
	for _, rowId := range []RowId{0, 5, 9} {
		v, err := it.Get(rowId)
		should.NoError(err)
		should.Equal(uint32(42), v)
	}
}

func Test_scalar_pfor_block_and_analyzer(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	should.NoError(err)

	values := []uint32{5, 15, 25, 35, 45}
	chunk := encodeValuesPFOR32(codec, values)
	data := append([]byte{byte(ScalarPFOR)}, writeOffsetTable(codec, [][]byte{chunk})...)
	header := NewAttributeHeader("price", AttrUint32, uint32(len(values)), settings, []int64{0}, []uint32{uint32(len(values))})

	it, err := newScalarIterator[uint32](header, data)
	should.NoError(err)
	for i, want := range values {
		got, err := it.Get(RowId(i))
		should.NoError(err)
		should.Equal(want, got)
	}

	filter := &Filter{Type: FilterRange, MinValue: 15, MaxValue: 35, LeftClosed: true, RightClosed: true}
	an, err := newScalarAnalyzer[uint32](header, data, filter, nil)
	should.NoError(err)
	buf := make([]RowId, 10)
	n, err := an.GetNextRowIdBlock(buf)
	should.NoError(err)
	should.Equal([]RowId{1, 2, 3}, buf[:n])
}

func Test_scalar_table_accessor_and_analyzer(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	should.NoError(err)

	// two dictionary entries: 10, 20
	entries := []uint32{10, 20}
	chunk := PackUint32(nil, uint32(len(entries)))
	chunk = append(chunk, encodeValuesPFOR32(codec, entries)...)

	rowEntry := make([]uint32, settings.SubblockSize)
	assignment := []uint32{0, 1, 0, 1, 1}
	copy(rowEntry, assignment)
	bits := CalcNumBits(len(entries))
	packed := BitPack128(rowEntry, bits)
	chunk = append(chunk, wordsToLE(packed)...)

	data := append([]byte{byte(ScalarTable)}, writeOffsetTable(codec, [][]byte{chunk})...)
	header := NewAttributeHeader("tier", AttrUint32, uint32(len(assignment)), settings, []int64{0}, []uint32{uint32(len(assignment))})

	it, err := newScalarIterator[uint32](header, data)
	should.NoError(err)
	want := []uint32{10, 20, 10, 20, 20}
	for i, w := range want {
		got, err := it.Get(RowId(i))
		should.NoError(err)
		should.Equal(w, got)
	}

	filter := &Filter{Type: FilterValues, Values: []int64{20}}
	an, err := newScalarAnalyzer[uint32](header, data, filter, nil)
	should.NoError(err)
	buf := make([]RowId, 10)
	n, err := an.GetNextRowIdBlock(buf)
	should.NoError(err)
	should.Equal([]RowId{1, 3, 4}, buf[:n])

	noMatchFilter := &Filter{Type: FilterValues, Values: []int64{99}}
	an2, err := newScalarAnalyzer[uint32](header, data, noMatchFilter, nil)
	should.NoError(err)
	n2, err := an2.GetNextRowIdBlock(buf)
	should.NoError(err)
	should.Equal(0, n2)
	should.Equal(int64(len(assignment)), an2.GetNumProcessed())
}
