package rearrange

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestBuildLinks(t *testing.T) {
	opts := DefaultOpts
	queries := []*Query{
		interChromQuery("r1", 1, 0),
		interChromQuery("r2", 1, 10),
		{Name: "r3", FileNum: 1, Alns: []SubAlignment{
			aln(0, 1000, "chr9", 100000, 101000),
			aln(1000, 2000, "chr12", 500000, 501000),
		}},
	}
	reg := newRegistry(queries)
	reg.fillNeighbors()
	links := buildLinks(reg, opts)
	require.Len(t, links, 1)
	expect.EQ(t, links[0], Link{A: 0, B: 1, Opposed: false})
}

func TestBuildLinksOpposedStrand(t *testing.T) {
	opts := DefaultOpts
	queries := []*Query{
		interChromQuery("r1", 1, 0),
		{Name: "r2", FileNum: 1, Len: 10000, Alns: []SubAlignment{
			aln(0, 5000, "chr7", -55000, -50000),
			aln(5000, 10000, "chr1", -5100, -100),
		}},
	}
	reg := newRegistry(queries)
	reg.fillNeighbors()
	links := buildLinks(reg, opts)
	require.Len(t, links, 1)
	expect.True(t, links[0].Opposed)
}

func TestExtractClumpsStrandConsistency(t *testing.T) {
	// Three queries, two opposed edges: flips must satisfy
	// flip(a) XOR flip(b) == opposed on every link.
	queries := []*Query{
		{Name: "a", Alns: []SubAlignment{aln(0, 10, "chr1", 0, 10)}},
		{Name: "b", Alns: []SubAlignment{aln(0, 10, "chr1", 5, 15)}},
		{Name: "c", Alns: []SubAlignment{aln(0, 10, "chr1", 8, 18)}},
	}
	links := []Link{
		{A: 0, B: 1, Opposed: false},
		{A: 1, B: 2, Opposed: true},
		{A: 0, B: 2, Opposed: true},
	}
	opts := DefaultOpts
	clumps := extractClumps(queries, links, opts)
	require.Len(t, clumps, 1)
	require.Len(t, clumps[0].Entries, 3)

	flips := map[int]bool{}
	for _, e := range clumps[0].Entries {
		flips[e.QueryIdx] = e.Flipped
	}
	for _, l := range links {
		require.Equal(t, l.Opposed, flips[l.A] != flips[l.B], "link %+v", l)
	}
}

func TestExtractClumpsRootFlip(t *testing.T) {
	// A root whose first and last sub-alignments are reverse-strand is
	// flipped so the dominant strand comes out positive.
	queries := []*Query{
		{Name: "a", Alns: []SubAlignment{
			aln(0, 10, "chr1", -20, -10),
			aln(10, 20, "chr1", 100, 110),
			aln(20, 30, "chr1", -220, -210),
		}},
		{Name: "b", Alns: []SubAlignment{aln(0, 10, "chr1", -21, -11)}},
	}
	links := []Link{{A: 0, B: 1, Opposed: false}}
	opts := DefaultOpts
	clumps := extractClumps(queries, links, opts)
	require.Len(t, clumps, 1)
	for _, e := range clumps[0].Entries {
		expect.True(t, e.Flipped)
	}
}

func TestExtractClumpsMinSeqs(t *testing.T) {
	queries := []*Query{
		{Name: "a", Alns: []SubAlignment{aln(0, 10, "chr1", 0, 10)}},
		{Name: "b", Alns: []SubAlignment{aln(0, 10, "chr1", 5, 15)}},
		{Name: "c", Alns: []SubAlignment{aln(0, 10, "chr2", 0, 10)}},
	}
	links := []Link{{A: 0, B: 1, Opposed: false}}
	opts := DefaultOpts
	clumps := extractClumps(queries, links, opts)
	require.Len(t, clumps, 1) // the singleton "c" is below minSeqs

	opts.MinSeqs = 1
	clumps = extractClumps(queries, links, opts)
	require.Len(t, clumps, 2)
}

func TestOrderAndNameClumps(t *testing.T) {
	queries := []*Query{
		{Name: "a", Alns: []SubAlignment{aln(0, 10, "chr2", 100, 200)}},
		{Name: "b", Alns: []SubAlignment{aln(0, 10, "chr2", 120, 220)}},
		{Name: "c", Alns: []SubAlignment{aln(0, 10, "chr1", 500, 600)}},
		{Name: "d", Alns: []SubAlignment{aln(0, 10, "chr1", 520, 620)}},
		{Name: "e", Alns: []SubAlignment{aln(0, 10, "chr1", 540, 640)}},
	}
	clumps := []*Clump{
		{Entries: []ClumpEntry{{0, false}, {1, false}}, comps: []int{1}},
		{Entries: []ClumpEntry{{2, false}, {3, false}, {4, false}}, comps: []int{2}},
	}
	orderAndNameClumps(clumps, queries)
	// Bigger clump first; names follow the final order.
	expect.EQ(t, clumps[0].Name, "group1-3")
	expect.EQ(t, clumps[1].Name, "group2-2")

	// Equal sizes fall back to the smallest reference key.
	clumps = []*Clump{
		{Entries: []ClumpEntry{{0, false}, {1, false}}, comps: []int{1}},
		{Entries: []ClumpEntry{{2, false}, {3, false}}, comps: []int{2}},
	}
	orderAndNameClumps(clumps, queries)
	expect.EQ(t, clumps[0].Entries[0].QueryIdx, 2) // chr1 sorts before chr2
}

func TestOrderAndNameClumpsNumericMode(t *testing.T) {
	queries := []*Query{
		{Name: "group7-2:read1", Alns: []SubAlignment{aln(0, 10, "chr2", 100, 200)}},
		{Name: "group3-5:read9", Alns: []SubAlignment{aln(0, 10, "chr1", 500, 600)}},
		{Name: "merged4-x", Alns: []SubAlignment{aln(0, 10, "chr1", 520, 620)}},
	}
	clumps := []*Clump{
		{Entries: []ClumpEntry{{0, false}}, comps: []int{1}},
		{Entries: []ClumpEntry{{1, false}, {2, false}}, comps: []int{2, 3}},
	}
	orderAndNameClumps(clumps, queries)
	// min group number 3 sorts before 7, and the merged clump reuses the
	// embedded numbers.
	expect.EQ(t, clumps[0].Name, "merge3_4")
	expect.EQ(t, clumps[1].Name, "group2-1")
}

func TestMergeClumpsSharedAlignments(t *testing.T) {
	// Two linked pairs that overlap each other on the reference merge at the
	// second level even without an oracle link between the pairs.
	queries := []*Query{
		interChromQuery("r1", 1, 0),
		interChromQuery("r2", 1, 10),
		{Name: "r3", FileNum: 1, Len: 10000, Alns: []SubAlignment{
			aln(0, 1000, "chr1", 3000, 4000),
			aln(1000, 2000, "chr1", 900000, 901000),
		}},
		{Name: "r4", FileNum: 1, Len: 10000, Alns: []SubAlignment{
			aln(0, 1000, "chr1", 3010, 4010),
			aln(1000, 2000, "chr1", 900010, 901010),
		}},
	}
	reg := newRegistry(queries)
	reg.fillNeighbors()
	links := buildLinks(reg, DefaultOpts)
	clumps := extractClumps(queries, links, DefaultOpts)
	require.Len(t, clumps, 2)
	merged := mergeClumps(clumps, reg)
	require.Len(t, merged, 1)
	require.Len(t, merged[0].Entries, 4)
	expect.EQ(t, merged[0].comps, []int{1, 2})
}
