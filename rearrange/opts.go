package rearrange

import "strings"

// Opts is the set of knobs shared by the detection pipeline. The zero value is
// not usable; start from DefaultOpts.
type Opts struct {
	// MinSeqs is the minimum number of queries a group must contain.
	MinSeqs int
	// MinCov is the minimum number of distinct other queries that must support
	// every non-linear junction of a query. A negative value means "derive from
	// MinSeqs": 1 if MinSeqs > 1, else 0.
	MinCov int
	// Types is the set of enabled rearrangement type letters, a subset of
	// "CSNG". The priority order C > S > N > G is fixed regardless of the order
	// the letters appear here.
	Types string
	// MinGap is the minimum reference gap, in bases, for a big-gap (G)
	// rearrangement. It is also the indel size at which alignments are split
	// into gap-free sub-alignments.
	MinGap int
	// MinRev is the minimum backward reference jump, in bases, for a
	// non-colinear (N) rearrangement.
	MinRev int
	// Filter restricts control subtraction to the case query's own type letter
	// when 1. When 0, a control sharing any enabled rearrangement type
	// subtracts the case query.
	Filter int
	// MaxDiff is the max allowed geometric inconsistency, in bases, between two
	// queries witnessing the same rearrangement.
	MaxDiff int
	// MaxMismap drops input alignments whose mismap probability exceeds it.
	MaxMismap float64
	// Shrink emits the deltaic row format instead of the input format.
	Shrink bool
	// Verbose enables progress logging.
	Verbose bool
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	MinSeqs:   2,
	MinCov:    -1, // resolved by EffectiveMinCov
	Types:     "CSNG",
	MinGap:    10000,
	MinRev:    1000,
	Filter:    1,
	MaxDiff:   500,
	MaxMismap: 1.0,
}

// typePriority is the fixed evaluation order of rearrangement types.
const typePriority = "CSNG"

// EnabledTypes returns Opts.Types reordered into priority order, with
// unrecognized letters dropped.
func (o Opts) EnabledTypes() string {
	b := strings.Builder{}
	for _, t := range typePriority {
		if strings.ContainsRune(o.Types, t) {
			b.WriteRune(t)
		}
	}
	return b.String()
}

// EffectiveMinCov resolves the MinCov default: 1 when MinSeqs > 1, else 0.
func (o Opts) EffectiveMinCov() int {
	if o.MinCov >= 0 {
		return o.MinCov
	}
	if o.MinSeqs > 1 {
		return 1
	}
	return 0
}
