package rearrange

// alnPair is an ordered pair of sub-alignments from one query, x upstream of
// y in query order. adjacent is true when no other sub-alignment of the query
// lies between them.
type alnPair struct {
	x, y     SubAlignment
	adjacent bool
}

// qryDist is the signed query distance across the breakpoint. The y-side
// endpoint is negated so that the distance is a straightforward sum of the
// two facing edges.
func (p alnPair) qryDist() int { return p.x.QueryEnd + -p.y.QueryBeg }

// refGap is the signed reference gap between the facing edges, meaningful
// only when both sides are on the same reference and strand.
func (p alnPair) refGap() int { return p.y.RefBeg - p.x.RefEnd }

// isShared decides whether pairs a and b, from two different queries, witness
// the same rearrangement. b must already be expressed in the strand frame
// chosen for its query (reversed when testing the strand-opposed pairing),
// with b.x overlapping a.x and b.y overlapping a.y on the reference.
//
// allowed restricts the rearrangement types that may be witnessed; it is the
// case query's own type letter during control subtraction with filter=1, and
// the full enabled set otherwise.
func isShared(a, b alnPair, allowed string, opts Opts) bool {
	if a.x.RefName != b.x.RefName || a.y.RefName != b.y.RefName {
		return false
	}
	if a.x.RefForward() != b.x.RefForward() || a.y.RefForward() != b.y.RefForward() {
		return false
	}

	// Geometric consistency: the two breakpoints must lie within maxDiff of
	// each other once both queries are mapped into a common signed frame.
	begDiff := a.x.RefEnd - b.x.RefEnd
	endDiff := a.y.RefBeg - b.y.RefBeg
	if abs((b.qryDist()-a.qryDist())+begDiff-endDiff) > opts.MaxDiff {
		return false
	}

	switch {
	case a.x.RefName != a.y.RefName:
		return typeEnabled(allowed, 'C')
	case a.x.RefForward() != a.y.RefForward():
		return typeEnabled(allowed, 'S')
	}

	gapA, gapB := a.refGap(), b.refGap()
	if gapA < 0 {
		// Non-colinear: both queries jump backward by a comparable amount, and
		// the jumps stay backward when crossed between the queries.
		return typeEnabled(allowed, 'N') &&
			gapB <= -opts.MinRev &&
			withinFactorOfTwo(gapA, gapB) &&
			b.y.RefBeg-a.x.RefEnd < 0 &&
			a.y.RefBeg-b.x.RefEnd < 0
	}
	// Big gap: b must skip a comparable stretch of reference between two
	// sub-alignments that are adjacent in its query.
	return typeEnabled(allowed, 'G') &&
		b.adjacent &&
		gapB >= opts.MinGap &&
		withinFactorOfTwo(gapA, gapB) &&
		b.y.RefBeg-a.x.RefEnd > 0 &&
		a.y.RefBeg-b.x.RefEnd > 0
}

func typeEnabled(allowed string, t byte) bool {
	for i := 0; i < len(allowed); i++ {
		if allowed[i] == t {
			return true
		}
	}
	return false
}

// gapSizeWindowFactor bounds the ratio of two gap magnitudes that still count
// as the same rearrangement. The value matches the reference outputs.
const gapSizeWindowFactor = 2

// withinFactorOfTwo reports whether the two gap magnitudes agree within a
// factor of gapSizeWindowFactor (two).
func withinFactorOfTwo(g1, g2 int) bool {
	m1, m2 := abs(g1), abs(g2)
	return m1 <= gapSizeWindowFactor*m2 && m2 <= gapSizeWindowFactor*m1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// searchShared looks for any shared rearrangement between query A and query
// B. cands[i] holds the indices into b.Alns of the sub-alignments that
// overlap a.Alns[i] on the reference. The return value is +1 when the queries
// witness the rearrangement on the same strand, -1 on opposite strands, and 0
// when no combination qualifies.
func searchShared(a, b *Query, cands [][]int, allowed string, opts Opts) int {
	for xi := range a.Alns {
		if len(cands[xi]) == 0 {
			continue
		}
		for yi := xi + 1; yi < len(a.Alns); yi++ {
			if len(cands[yi]) == 0 {
				continue
			}
			ap := alnPair{x: a.Alns[xi], y: a.Alns[yi], adjacent: yi == xi+1}
			for _, bxi := range cands[xi] {
				for _, byi := range cands[yi] {
					if bxi == byi {
						continue
					}
					var (
						bp      alnPair
						outcome int
					)
					if bxi < byi {
						bp = alnPair{x: b.Alns[bxi], y: b.Alns[byi], adjacent: byi == bxi+1}
						outcome = 1
					} else {
						// Test the strand-opposed pairing: reversing b's query
						// makes bxi the upstream side again.
						bp = alnPair{
							x:        b.Alns[bxi].Reversed(),
							y:        b.Alns[byi].Reversed(),
							adjacent: bxi == byi+1,
						}
						outcome = -1
					}
					if isShared(ap, bp, allowed, opts) {
						return outcome
					}
				}
			}
		}
	}
	return 0
}
