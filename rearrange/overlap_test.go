package rearrange

import (
	"sort"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestFillNeighborsSymmetry(t *testing.T) {
	queries := []*Query{
		{Name: "r1", Alns: []SubAlignment{
			aln(0, 100, "chr1", 100, 1100),
			aln(100, 200, "chr2", 500, 600),
		}},
		{Name: "r2", Alns: []SubAlignment{
			aln(0, 100, "chr1", 900, 1900),
		}},
		{Name: "r3", Alns: []SubAlignment{
			aln(0, 100, "chr1", 1050, 1200),
			aln(100, 200, "chr2", 550, 650),
		}},
	}
	reg := newRegistry(queries)
	reg.fillNeighbors()

	neighbors := map[int][]int{}
	for _, q := range queries {
		for _, a := range q.Alns {
			ids := append([]int(nil), a.Neighbors...)
			sort.Ints(ids)
			neighbors[a.ID] = ids
		}
	}
	// Overlap is symmetric.
	for id, ns := range neighbors {
		for _, o := range ns {
			found := false
			for _, b := range neighbors[o] {
				if b == id {
					found = true
				}
			}
			require.True(t, found, "asymmetric neighbors: %d %d", id, o)
		}
	}
	// r1 chr1 overlaps both r2 and r3 chr1; same-query overlaps are excluded.
	expect.EQ(t, neighbors[queries[0].Alns[0].ID], []int{2, 3})
	// r2 overlaps both r1 and r3 (900 < 1100 and 1050 < 1900).
	expect.EQ(t, neighbors[queries[1].Alns[0].ID], []int{0, 3})
	// chr2 overlaps pair r1/r3.
	expect.EQ(t, neighbors[queries[0].Alns[1].ID], []int{4})

	reg.clearNeighbors()
	for _, q := range queries {
		for _, a := range q.Alns {
			expect.EQ(t, len(a.Neighbors), 0)
		}
	}
}

func TestControlIndex(t *testing.T) {
	controls := []*Query{
		{Name: "c1", Alns: []SubAlignment{
			aln(0, 100, "chr1", 100, 1100),
			aln(100, 200, "chr1", 5000, 6000),
		}},
		{Name: "c2", Alns: []SubAlignment{
			aln(0, 100, "chr2", 100, 1100),
		}},
	}
	reg := newRegistry(controls)
	index := newControlIndex(reg)

	probe := aln(0, 50, "chr1", 1000, 1200)
	expect.EQ(t, index.overlapping(&probe), []int{0})

	probe = aln(0, 50, "chr1", 1100, 1200)
	require.Len(t, index.overlapping(&probe), 0)

	// Reverse-strand probes overlap on absolute coordinates.
	probe = aln(0, 50, "chr2", -1100, -100)
	expect.EQ(t, index.overlapping(&probe), []int{2})

	probe = aln(0, 50, "chr9", 0, 100)
	require.Len(t, index.overlapping(&probe), 0)
}
