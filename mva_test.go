package columnar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func wordsToLE(words []uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		buf[i*4] = byte(w)
		buf[i*4+1] = byte(w >> 8)
		buf[i*4+2] = byte(w >> 16)
		buf[i*4+3] = byte(w >> 24)
	}
	return buf
}

func Test_mva_const_block_roundtrip(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	should.NoError(err)

	ascending := []uint32{10, 20, 30}
	deltas := []uint32{10, 10, 10}
	data := append([]byte{byte(MvaConst)}, PackUint32(nil, uint32(len(deltas)))...)
	data = append(data, encodeValuesPFOR32(codec, deltas)...)

	header := NewAttributeHeader("tags", AttrUint32Set, 50, settings, []int64{0}, []uint32{50})
	it, err := newMvaIterator[uint32](header, data)
	should.NoError(err)

	for _, rowId := range []RowId{0, 1, 49} {
		values, err := it.Get(rowId)
		should.NoError(err)
		should.Equal(ascending, values)
	}
}

func Test_mva_analyzer_const_any_values(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	codec, _ := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	deltas := []uint32{10, 10, 10} // ascending 10,20,30
	data := append([]byte{byte(MvaConst)}, PackUint32(nil, uint32(len(deltas)))...)
	data = append(data, encodeValuesPFOR32(codec, deltas)...)
	header := NewAttributeHeader("tags", AttrUint32Set, 5, settings, []int64{0}, []uint32{5})

	matchFilter := &Filter{Type: FilterValues, MvaAggr: MvaAggrAny, Values: []int64{20}}
	an, err := newMvaAnalyzer[uint32](header, data, matchFilter, nil)
	should.NoError(err)
	buf := make([]RowId, 10)
	n, err := an.GetNextRowIdBlock(buf)
	should.NoError(err)
	should.Equal([]RowId{0, 1, 2, 3, 4}, buf[:n])

	noMatchFilter := &Filter{Type: FilterValues, MvaAggr: MvaAggrAny, Values: []int64{99}}
	an2, err := newMvaAnalyzer[uint32](header, data, noMatchFilter, nil)
	should.NoError(err)
	n2, err := an2.GetNextRowIdBlock(buf)
	should.NoError(err)
	should.Equal(0, n2)
}

func Test_mva_table_accessor(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	should.NoError(err)

	// two dictionary entries: {1,2} and {5}
	deltas := []uint32{1, 1, 5}
	lengths := []uint32{2, 1}

	chunk := PackUint32(nil, uint32(len(lengths)))
	for _, l := range lengths {
		chunk = PackUint32(chunk, l)
	}
	chunk = append(chunk, encodeValuesPFOR32(codec, deltas)...)

	rowEntry := make([]uint32, settings.SubblockSizeMva)
	assignment := []uint32{0, 1, 0, 1, 0}
	copy(rowEntry, assignment)
	bits := CalcNumBits(len(lengths))
	packed := BitPack128(rowEntry, bits)
	chunk = append(chunk, wordsToLE(packed)...)

	data := append([]byte{byte(MvaTable)}, writeOffsetTable(codec, [][]byte{chunk})...)
	header := NewAttributeHeader("tags", AttrUint32Set, uint32(len(assignment)), settings, []int64{0}, []uint32{uint32(len(assignment))})

	it, err := newMvaIterator[uint32](header, data)
	should.NoError(err)

	v0, err := it.Get(0)
	should.NoError(err)
	should.Equal([]uint32{1, 2}, v0)

	v1, err := it.Get(1)
	should.NoError(err)
	should.Equal([]uint32{5}, v1)

	v2, err := it.Get(2)
	should.NoError(err)
	should.Equal([]uint32{1, 2}, v2)
}

func Test_mva_deltapfor_block_roundtrip(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	codec, err := CreateIntCodec(settings.CompressionUint32, settings.CompressionUint64)
	should.NoError(err)

	// row0: ascending {3,4}; row1: ascending {7}
	lengths := []uint32{2, 1}
	deltas := []uint32{3, 1, 7}

	chunk := []byte{}
	for _, l := range lengths {
		chunk = PackUint32(chunk, l)
	}
	chunk = append(chunk, encodeValuesPFOR32(codec, deltas)...)

	data := append([]byte{byte(MvaDeltaPFOR)}, writeOffsetTable(codec, [][]byte{chunk})...)
	header := NewAttributeHeader("tags", AttrUint32Set, 2, settings, []int64{0}, []uint32{2})

	it, err := newMvaIterator[uint32](header, data)
	should.NoError(err)

	v0, err := it.Get(0)
	should.NoError(err)
	should.Equal([]uint32{3, 4}, v0)

	v1, err := it.Get(1)
	should.NoError(err)
	should.Equal([]uint32{7}, v1)
}
