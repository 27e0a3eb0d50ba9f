package columnar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildBoolBitmapAttribute(numDocs int, predicate func(i int) bool) (*AttributeHeader, []byte) {
	settings := DefaultSettings()
	subblockSize := settings.SubblockSize
	numSubblocks := numSubblocksFor(numDocs, subblockSize)

	data := []byte{byte(BoolBitmap)}
	for sb := 0; sb < numSubblocks; sb++ {
		start := sb * subblockSize
		end := start + subblockSize
		if end > numDocs {
			end = numDocs
		}
		values := make([]uint32, end-start)
		for i := range values {
			if predicate(start + i) {
				values[i] = 1
			}
		}
		data = append(data, encodeBoolBitmapSubblock(values, subblockSize)...)
	}

	header := NewAttributeHeader("flag", AttrBoolean, uint32(numDocs), settings, []int64{0}, []uint32{uint32(numDocs)})
	return header, data
}

func Test_bool_iterator_matches_predicate(t *testing.T) {
	should := require.New(t)
	predicate := func(i int) bool { return i%3 == 0 }
	header, data := buildBoolBitmapAttribute(200, predicate)
	it := newBoolIterator(header, data)

	for _, rowId := range []RowId{0, 1, 2, 127, 128, 199} {
		v, err := it.Get(rowId)
		should.NoError(err)
		want := int64(0)
		if predicate(int(rowId)) {
			want = 1
		}
		should.Equal(want, v, "rowId=%d", rowId)
	}
}

func Test_bool_analyzer_collects_all_matches(t *testing.T) {
	should := require.New(t)
	predicate := func(i int) bool { return i%3 == 0 }
	header, data := buildBoolBitmapAttribute(200, predicate)

	filter := &Filter{Type: FilterValues, Values: []int64{1}}
	an := newBoolAnalyzer(header, data, filter, nil)

	var matches []RowId
	buf := make([]RowId, 37)
	for {
		n, err := an.GetNextRowIdBlock(buf)
		should.NoError(err)
		if n == 0 {
			break
		}
		matches = append(matches, buf[:n]...)
	}

	var want []RowId
	for i := 0; i < 200; i++ {
		if predicate(i) {
			want = append(want, RowId(i))
		}
	}
	should.Equal(want, matches)
}

func Test_bool_analyzer_const_block_skip(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	data := append([]byte{byte(BoolConst)}, 0) // const false
	header := NewAttributeHeader("flag", AttrBoolean, 128, settings, []int64{0}, []uint32{128})

	filter := &Filter{Type: FilterValues, Values: []int64{1}}
	an := newBoolAnalyzer(header, data, filter, nil)

	buf := make([]RowId, 10)
	n, err := an.GetNextRowIdBlock(buf)
	should.NoError(err)
	should.Equal(0, n)
}

// Test_bool_analyzer_num_processed_counts_wholesale_skip covers spec §8
// scenario B: a CONST block skipped wholesale by MoveToBlock still counts
// every one of its rows as processed, even though none were individually
// decoded.
func Test_bool_analyzer_num_processed_counts_wholesale_skip(t *testing.T) {
	should := require.New(t)
	settings := DefaultSettings()
	data := append([]byte{byte(BoolConst)}, 0) // const false
	header := NewAttributeHeader("flag", AttrBoolean, 100, settings, []int64{0}, []uint32{100})

	filter := &Filter{Type: FilterValues, Values: []int64{1}}
	an := newBoolAnalyzer(header, data, filter, nil)

	buf := make([]RowId, 10)
	n, err := an.GetNextRowIdBlock(buf)
	should.NoError(err)
	should.Equal(0, n)
	should.Equal(int64(100), an.GetNumProcessed())
}

func Test_bool_analyzer_hint_row_id_advances_cursor(t *testing.T) {
	should := require.New(t)
	predicate := func(i int) bool { return true }
	header, data := buildBoolBitmapAttribute(300, predicate)

	filter := &Filter{Type: FilterValues, Values: []int64{1}}
	an := newBoolAnalyzer(header, data, filter, nil)

	should.True(an.HintRowID(200))
	buf := make([]RowId, 10)
	n, err := an.GetNextRowIdBlock(buf)
	should.NoError(err)
	should.True(n > 0)
	// HintRowID only guarantees subblock granularity: row 200 falls in the
	// second 128-row subblock, so the cursor lands no earlier than its start.
	should.True(buf[0] >= 128)

	should.False(an.HintRowID(9999))
}
