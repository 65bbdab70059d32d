package rearrange

import "strings"

// SubAlignment is a gap-free fragment of one query-to-reference alignment.
//
// Coordinates are signed half-open intervals. A sub-alignment is stored
// query-forward: QueryBeg >= 0 and QueryBeg < QueryEnd. RefBeg/RefEnd are
// negative when the query aligns to the reverse reference strand, using the
// convention that the signed interval [b, e) with b < e < 0 denotes the
// forward-strand interval [-e, -b).
type SubAlignment struct {
	// ID is globally unique and assigned in input order, files first.
	ID int
	// QueryIdx is the index of the owning query in the pipeline's query list.
	QueryIdx int

	QueryBeg, QueryEnd int
	RefName            string
	RefBeg, RefEnd     int

	// Neighbors holds IDs of sub-alignments that overlap this one on the
	// reference and belong to other queries. It is cleared after each consumer
	// completes.
	Neighbors []int
}

// Reversed returns the sub-alignment mapped onto the opposite query strand.
// All four endpoints are negated and swapped, so the result is still a pair of
// ascending half-open intervals. Applying Reversed twice is the identity.
func (a SubAlignment) Reversed() SubAlignment {
	a.QueryBeg, a.QueryEnd = -a.QueryEnd, -a.QueryBeg
	a.RefBeg, a.RefEnd = -a.RefEnd, -a.RefBeg
	return a
}

// RefForward reports whether the reference interval is on the forward strand.
func (a SubAlignment) RefForward() bool { return a.RefBeg >= 0 }

// AbsRefBeg and AbsRefEnd give the forward-strand reference interval
// regardless of strand.
func (a SubAlignment) AbsRefBeg() int {
	if a.RefBeg >= 0 {
		return a.RefBeg
	}
	return -a.RefEnd
}

func (a SubAlignment) AbsRefEnd() int {
	if a.RefBeg >= 0 {
		return a.RefEnd
	}
	return -a.RefBeg
}

// RefOverlaps reports whether a and b overlap on the forward reference strand.
func (a SubAlignment) RefOverlaps(b SubAlignment) bool {
	return a.RefName == b.RefName && a.AbsRefBeg() < b.AbsRefEnd() && b.AbsRefBeg() < a.AbsRefEnd()
}

// Query is one input read: its sub-alignments in query order, plus the raw
// alignment text needed to re-emit it.
type Query struct {
	// FileNum is the 1-based index of the source file.
	FileNum int
	Name    string
	// Len is the full query length in bases, or 0 when the input format does
	// not carry it (shrunk rows).
	Len int
	// Type is the rearrangement type letter assigned by Classify, or 0.
	Type byte
	// Alns are the gap-free sub-alignments, sorted by QueryBeg.
	Alns []SubAlignment
	// Texts are the raw input records, one per alignment, in input order.
	// Each element remembers which format it was parsed from.
	Texts []AlignmentText
}

// AlignmentText is one verbatim input record.
type AlignmentText struct {
	Format Format
	// Lines are the record's lines without trailing newlines. A pairwise block
	// has several lines; tabular and shrunk records have one.
	Lines []string
}

// Format identifies one of the three interchangeable input formats.
type Format int

const (
	// FormatPairwise is the "a"/"s" block format.
	FormatPairwise Format = iota
	// FormatTabular is the >= 12 field single-row format.
	FormatTabular
	// FormatShrunk is the 4/5 field deltaic row format.
	FormatShrunk
)

// AlignedLen is the total number of query bases covered by sub-alignments.
func (q *Query) AlignedLen() int {
	n := 0
	for _, a := range q.Alns {
		n += a.QueryEnd - a.QueryBeg
	}
	return n
}

// circularChroms names reference sequences treated as topologically circular,
// and therefore exempt from the non-colinearity test. Defaults match the
// reference outputs.
var circularChroms = map[string]bool{"chrM": true, "M": true}

// unknownChromPrefixes marks chromosome names that do not identify a placed
// chromosome. Defaults match the reference outputs.
var unknownChromPrefixes = []string{"chrUn", "Un"}

// canonicalChrom returns the chromosome name with any "_"-suffixed qualifier
// removed, e.g. "chr1_KI270706v1_random" -> "chr1".
func canonicalChrom(name string) string {
	if i := strings.IndexByte(name, '_'); i >= 0 {
		return name[:i]
	}
	return name
}

// isKnownChrom reports whether name identifies a placed chromosome.
func isKnownChrom(name string) bool {
	for _, p := range unknownChromPrefixes {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	return true
}
