package columnar

import "github.com/esdb/biter"

// MatchingSubblocks is the caller-supplied matching-subblocks hint (spec
// §4.6, IteratorHints_t): an ascending set of subblock ids the caller
// already knows are worth visiting, packed 64-per-word the way the
// teacher's segment index batches candidate block ids through
// github.com/esdb/biter so Next (called from each Analyzer's
// GetNextRowIdBlock) can fast-forward across whole words at a time instead
// of testing one id at a time.
type MatchingSubblocks struct {
	words []biter.Bits
}

// NewMatchingSubblocks builds a hint set from an ascending list of global
// subblock ids.
func NewMatchingSubblocks(subblockIds []int) *MatchingSubblocks {
	if len(subblockIds) == 0 {
		return &MatchingSubblocks{}
	}
	maxId := subblockIds[len(subblockIds)-1]
	words := make([]biter.Bits, maxId/64+1)
	for _, id := range subblockIds {
		words[id/64] |= biter.Bits(1) << uint(id%64)
	}
	return &MatchingSubblocks{words: words}
}

// GetBlock reports whether global subblock id idx is one of the hinted
// candidates (spec §4.6, Columnar_i's GetBlock(idx) accessor).
func (m *MatchingSubblocks) GetBlock(idx int) bool {
	wordIdx := idx / 64
	if wordIdx >= len(m.words) {
		return false
	}
	return m.words[wordIdx]&(biter.Bits(1)<<uint(idx%64)) != 0
}

// Next returns the smallest hinted subblock id >= from, implementing
// subblockHints for bool_analyzer.go/mva_analyzer.go/scalar_analyzer.go.
func (m *MatchingSubblocks) Next(from int) (int, bool) {
	wordIdx := from / 64
	bitOff := uint(from % 64)
	for wordIdx < len(m.words) {
		bits := m.words[wordIdx]
		if bitOff > 0 {
			bits &^= biter.Bits(1)<<bitOff - 1
		}
		pos := bits.ScanForward()()
		if pos != biter.NotFound {
			return wordIdx*64 + int(pos), true
		}
		wordIdx++
		bitOff = 0
	}
	return 0, false
}
