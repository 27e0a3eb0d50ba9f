package columnar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_value_in_interval_closedness(t *testing.T) {
	should := require.New(t)
	f := &Filter{Type: FilterRange, MinValue: 10, MaxValue: 20, LeftClosed: true, RightClosed: false}
	should.True(ValueInInterval(10, f))
	should.False(ValueInInterval(20, f))
	should.True(ValueInInterval(19, f))
	should.False(ValueInInterval(9, f))

	f2 := &Filter{Type: FilterRange, MinValue: 10, MaxValue: 20, LeftClosed: false, RightClosed: true}
	should.False(ValueInInterval(10, f2))
	should.True(ValueInInterval(20, f2))
}

func Test_is_filter_degenerate(t *testing.T) {
	should := require.New(t)
	should.True(IsFilterDegenerate(&Filter{Type: FilterNone}))
	should.True(IsFilterDegenerate(&Filter{Type: FilterValues, Exclude: true}))
	should.False(IsFilterDegenerate(&Filter{Type: FilterValues, Values: []int64{1}, Exclude: true}))
	should.True(IsFilterDegenerate(&Filter{Type: FilterRange, LeftUnbounded: true, RightUnbounded: true, Exclude: true}))
	should.False(IsFilterDegenerate(&Filter{Type: FilterRange, LeftUnbounded: true, RightUnbounded: true}))
}

func Test_mva_predicate_any_all(t *testing.T) {
	should := require.New(t)
	values := []uint32{2, 4, 6, 8}
	should.True(mvaAnyTestValues(values, []int64{5, 6, 100}))
	should.False(mvaAnyTestValues(values, []int64{5, 7}))
	should.True(mvaAllTestValues([]uint32{3, 3}, []int64{3}))
	should.False(mvaAllTestValues([]uint32{3, 4}, []int64{3}))

	c := closedness{leftClosed: true, rightClosed: false}
	should.True(mvaAnyTestRange(values, 6, 10, c))
	should.False(mvaAnyTestRange(values, 9, 10, c))
	should.True(mvaAllTestRange(values, 1, 9, c))
	should.False(mvaAllTestRange(values, 1, 8, c))

	// exact match on the open lower bound must keep searching forward for
	// a value that satisfies the upper bound, not just check "is there a
	// next element" (6 itself fails the open "> 6" lower bound; 100 fails
	// the closed "<= 7" upper bound, so the whole vector should not match).
	openLeft := closedness{leftClosed: false, rightClosed: true}
	should.False(mvaAnyTestRange([]uint32{6, 100}, 6, 7, openLeft))
	should.True(mvaAnyTestRange([]uint32{6, 7}, 6, 7, openLeft))
}

func Test_apply_inverse_deltas(t *testing.T) {
	should := require.New(t)
	flat := []uint32{3, 2, 5}
	applyInverseDeltaFlat(flat)
	should.Equal([]uint32{3, 5, 10}, flat)

	rows := [][]uint32{{1, 1, 1}, {5, 2}}
	applyInverseDeltas(rows)
	should.Equal([][]uint32{{1, 2, 3}, {5, 7}}, rows)
}
