package rearrange

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func pair(x, y SubAlignment, adjacent bool) alnPair {
	return alnPair{x: x, y: y, adjacent: adjacent}
}

func TestIsSharedInterChrom(t *testing.T) {
	opts := DefaultOpts
	ap := pair(aln(0, 5000, "chr1", 100, 5100), aln(5000, 10000, "chr7", 50000, 55000), true)
	bp := pair(aln(0, 5000, "chr1", 90, 5090), aln(5000, 10000, "chr7", 49990, 54990), true)
	expect.True(t, isShared(ap, bp, "CSNG", opts))
	expect.False(t, isShared(ap, bp, "SNG", opts))

	// Shift one breakpoint past maxDiff.
	far := pair(aln(0, 5000, "chr1", 90, 5090), aln(5000, 10000, "chr7", 60000, 65000), true)
	expect.False(t, isShared(ap, far, "CSNG", opts))
}

func TestIsSharedBreakpointShiftStaysConsistent(t *testing.T) {
	opts := DefaultOpts
	// b's breakpoint sits 300 bases later in both query and reference: the
	// same rearrangement seen from a read with a shifted alignment split.
	ap := pair(aln(0, 5000, "chr1", 100, 5100), aln(5000, 10000, "chr7", 50000, 55000), true)
	bp := pair(aln(0, 5300, "chr1", 100, 5400), aln(5300, 10000, "chr7", 50300, 55000), true)
	expect.True(t, isShared(ap, bp, "CSNG", opts))
}

func TestIsSharedNonColinear(t *testing.T) {
	opts := DefaultOpts
	ap := pair(aln(0, 1000, "chr1", 10000, 11000), aln(1000, 2000, "chr1", 5000, 6000), true)
	bp := pair(aln(0, 1000, "chr1", 10020, 11020), aln(1000, 2000, "chr1", 5020, 6020), true)
	expect.True(t, isShared(ap, bp, "N", opts))

	// The backward jumps must agree within a factor of two, even when the
	// breakpoints themselves line up.
	half := pair(aln(0, 1000, "chr1", 10000, 11000), aln(4500, 5500, "chr1", 8500, 9500), true)
	expect.False(t, isShared(ap, half, "N", opts))

	// The jump must clear minRev.
	shallow := pair(aln(0, 1000, "chr1", 10000, 11000), aln(1000, 2000, "chr1", 10500, 11500), true)
	expect.False(t, isShared(shallow, shallow, "N", opts))
}

func TestIsSharedBigGap(t *testing.T) {
	opts := DefaultOpts
	opts.MinGap = 1000
	ap := pair(aln(0, 100, "chr1", 100, 200), aln(100, 200, "chr1", 10000, 10100), true)
	bp := pair(aln(0, 100, "chr1", 120, 220), aln(100, 200, "chr1", 10020, 10120), true)
	expect.True(t, isShared(ap, bp, "G", opts))

	// Non-adjacent b pairs cannot witness a big gap.
	bp.adjacent = false
	expect.False(t, isShared(ap, bp, "G", opts))
}

func TestSearchSharedOutcomeSign(t *testing.T) {
	opts := DefaultOpts
	a := &Query{Name: "a", Alns: []SubAlignment{
		aln(0, 5000, "chr1", 100, 5100),
		aln(5000, 10000, "chr7", 50000, 55000),
	}}
	same := &Query{Name: "same", Alns: []SubAlignment{
		aln(0, 5000, "chr1", 100, 5100),
		aln(5000, 10000, "chr7", 50000, 55000),
	}}
	// The same rearrangement read from the opposite strand: segments come in
	// reverse query order on the reverse reference strand.
	opp := &Query{Name: "opp", Alns: []SubAlignment{
		aln(0, 5000, "chr7", -55000, -50000),
		aln(5000, 10000, "chr1", -5100, -100),
	}}

	cands := [][]int{{0}, {1}}
	expect.EQ(t, searchShared(a, same, cands, "CSNG", opts), 1)

	cands = [][]int{{1}, {0}}
	expect.EQ(t, searchShared(a, opp, cands, "CSNG", opts), -1)

	// No overlap candidates, no witness.
	expect.EQ(t, searchShared(a, same, [][]int{nil, nil}, "CSNG", opts), 0)
}
