package columnar

import "encoding/binary"

// BlockTester is the BlockTester_i / MinMaxVec_t equivalent (spec §4.6,
// §6): coarse per-leaf min/max summaries over MinMaxLeafSize consecutive
// rows, letting a caller reject whole leaves before any Analyzer or
// Iterator touches the attribute's actual blocks. It is deliberately a
// narrow min/max-only collaborator — no bloom-filter membership test is
// wired in, since the real library's populate-side bloom API was never
// observed in the retrieved source (see DESIGN.md).
type BlockTester struct {
	leafSize int
	min      []int64
	max      []int64
}

// LoadBlockTester reads numLeaves (min,max) zigzag-varint pairs, one per
// MinMaxLeafSize-row leaf, written alongside the attribute directory.
func LoadBlockTester(r *Reader, leafSize, numLeaves int) (*BlockTester, error) {
	min := make([]int64, numLeaves)
	max := make([]int64, numLeaves)
	for i := 0; i < numLeaves; i++ {
		lo, err := readZigzag(r)
		if err != nil {
			return nil, err
		}
		hi, err := readZigzag(r)
		if err != nil {
			return nil, err
		}
		min[i] = lo
		max[i] = hi
	}
	return &BlockTester{leafSize: leafSize, min: min, max: max}, nil
}

func readZigzag(r *Reader) (int64, error) {
	u, err := r.UnpackUint64()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

func writeZigzag(buf []byte, v int64) []byte {
	u := uint64(v<<1) ^ uint64(v>>63)
	return binary.AppendUvarint(buf, u)
}

// NumLeaves reports how many MinMaxLeafSize-row leaves this attribute has.
func (bt *BlockTester) NumLeaves() int { return len(bt.min) }

// LeafForRow maps a row id to its leaf index.
func (bt *BlockTester) LeafForRow(rowId RowId) int {
	return int(rowId) / bt.leafSize
}

// EarlyReject is Columnar_i's EarlyReject (spec §6): true when leafId's
// [min,max] range cannot possibly intersect the filter, meaning every row
// in that leaf is rejected without decoding a single block.
func (bt *BlockTester) EarlyReject(leafId int, f *Filter) bool {
	if IsFilterDegenerate(f) {
		return false
	}
	if f.Exclude {
		// an excluding filter can still match rows inside a fully-contained
		// range, so min/max alone can't reject it.
		return false
	}
	lo, hi := bt.min[leafId], bt.max[leafId]
	switch f.Type {
	case FilterValues:
		if len(f.Values) == 0 {
			return true
		}
		smallest, largest := f.Values[0], f.Values[len(f.Values)-1]
		return largest < lo || smallest > hi
	case FilterRange, FilterFloatRange:
		return hi < f.effectiveMin() || lo > f.effectiveMax()
	default:
		return false
	}
}

// fullyAccepts reports whether leafId's [min,max] range is wholly contained
// in a non-excluding RANGE filter's bounds, meaning every row in the leaf
// matches without decoding a single block. VALUES filters never qualify: a
// leaf's min/max alone can't certify that every value in between is in the
// list.
func (bt *BlockTester) fullyAccepts(leafId int, f *Filter) bool {
	if f.Exclude || IsFilterDegenerate(f) {
		return false
	}
	if f.Type != FilterRange && f.Type != FilterFloatRange {
		return false
	}
	lo, hi := bt.min[leafId], bt.max[leafId]
	loOk := lo > f.effectiveMin() || (f.LeftClosed && lo == f.effectiveMin())
	hiOk := hi < f.effectiveMax() || (f.RightClosed && hi == f.effectiveMax())
	return loOk && hiOk
}

// FullyAbsorbs is the decision behind CreateAnalyzerOrPrefilter's
// deletedFilterIndices (spec §6): true when every leaf is either fully
// rejected or fully accepted by min/max alone, so the filter can be folded
// entirely into the leaf-level pre-filter and needs no Analyzer at all.
func (bt *BlockTester) FullyAbsorbs(f *Filter) bool {
	for leaf := 0; leaf < bt.NumLeaves(); leaf++ {
		if !bt.EarlyReject(leaf, f) && !bt.fullyAccepts(leaf, f) {
			return false
		}
	}
	return true
}
