package columnar

// FilterType mirrors FilterType_e (spec §4.7).
type FilterType int

const (
	FilterNone FilterType = iota
	FilterValues
	FilterRange
	FilterFloatRange
)

// MvaAggr mirrors MvaAggr_e (spec §4.7).
type MvaAggr int

const (
	MvaAggrNone MvaAggr = iota
	MvaAggrAll
	MvaAggrAny
)

// Filter is the Filter_t equivalent (spec §4.7): what the Analyzer is
// constructed with.
type Filter struct {
	Name    string
	Exclude bool
	Type    FilterType
	MvaAggr MvaAggr

	MinValue      int64
	MaxValue      int64
	LeftUnbounded bool
	RightUnbounded bool
	LeftClosed    bool
	RightClosed   bool

	// Values must be sorted and unique (spec §4.7).
	Values []int64
}

func (f *Filter) closedness() closedness {
	return closedness{leftClosed: f.LeftClosed, rightClosed: f.RightClosed}
}

// effectiveMin/effectiveMax fold LeftUnbounded/RightUnbounded into -inf/+inf
// the way spec §4.7 says the analyzer treats them.
func (f *Filter) effectiveMin() int64 {
	if f.LeftUnbounded {
		return minInt64
	}
	return f.MinValue
}

func (f *Filter) effectiveMax() int64 {
	if f.RightUnbounded {
		return maxInt64
	}
	return f.MaxValue
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

// ValueInInterval tests a single scalar value against a RANGE filter,
// used by the BOOL analyzer's AnalyzeFilter to decide acceptFalse/acceptTrue
// (spec §4.8, AnalyzeFilter for BOOL).
func ValueInInterval(value int64, f *Filter) bool {
	lo, hi := f.effectiveMin(), f.effectiveMax()
	if f.LeftClosed {
		if value < lo {
			return false
		}
	} else if value <= lo {
		return false
	}
	if f.RightClosed {
		if value > hi {
			return false
		}
	} else if value >= hi {
		return false
	}
	return true
}

// IsFilterDegenerate reports whether a filter is degenerate (spec §6,
// Columnar_i.IsFilterDegenerate): a FilterNone filter, an empty Values list
// under Exclude (which accepts every row), or a range unbounded on both
// sides under Exclude (which rejects every row).
func IsFilterDegenerate(f *Filter) bool {
	switch f.Type {
	case FilterNone:
		return true
	case FilterValues:
		return len(f.Values) == 0 && f.Exclude
	case FilterRange, FilterFloatRange:
		return f.LeftUnbounded && f.RightUnbounded && f.Exclude
	default:
		return false
	}
}
