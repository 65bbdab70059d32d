package rearrange

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func interChromQuery(name string, fileNum, shift int) *Query {
	return &Query{
		FileNum: fileNum,
		Name:    name,
		Len:     10000,
		Alns: []SubAlignment{
			aln(0, 5000, "chr1", 100+shift, 5100+shift),
			aln(5000, 10000, "chr7", 50000+shift, 55000+shift),
		},
	}
}

func TestSubtractControlsDropsSharedCases(t *testing.T) {
	opts := DefaultOpts
	cases := []*Query{interChromQuery("r1", 1, 0), interChromQuery("r2", 1, 10)}
	for _, q := range cases {
		q.Type = Classify(q, opts)
	}
	controls := []*Query{interChromQuery("c1", 2, 5)}

	kept, nDropped := subtractControls(cases, controls, opts)
	expect.EQ(t, len(kept), 0)
	expect.EQ(t, nDropped, 2)
}

func TestSubtractControlsTypeRestriction(t *testing.T) {
	opts := DefaultOpts
	opts.MinGap = 1000
	// The case query is G-typed; the control's only rearrangement is
	// inter-chromosome (chr1 -> chr2) and only its chr1 piece overlaps the
	// case, so it witnesses no G jump and nothing is subtracted.
	caseQ := &Query{Name: "r1", FileNum: 1, Alns: []SubAlignment{
		aln(0, 100, "chr1", 100, 200),
		aln(100, 200, "chr1", 10000, 10100),
	}}
	caseQ.Type = Classify(caseQ, opts)
	expect.EQ(t, caseQ.Type, byte('G'))

	control := &Query{Name: "c1", FileNum: 2, Alns: []SubAlignment{
		aln(0, 100, "chr1", 100, 200),
		aln(100, 200, "chr2", 10000, 10100),
	}}
	kept, _ := subtractControls([]*Query{caseQ}, []*Query{control}, opts)
	expect.EQ(t, len(kept), 1)

	// filter=0 searches all enabled types, but the control still witnesses no
	// G-type jump here, so the case survives either way; a G-typed control
	// subtracts it.
	gControl := &Query{Name: "c2", FileNum: 2, Alns: []SubAlignment{
		aln(0, 100, "chr1", 110, 210),
		aln(100, 200, "chr1", 10010, 10110),
	}}
	kept, _ = subtractControls([]*Query{caseQ}, []*Query{gControl}, opts)
	expect.EQ(t, len(kept), 0)
}

func TestSubtractControlsNoControls(t *testing.T) {
	cases := []*Query{interChromQuery("r1", 1, 0)}
	kept, nDropped := subtractControls(cases, nil, DefaultOpts)
	expect.EQ(t, len(kept), 1)
	expect.EQ(t, nDropped, 0)
}

func TestCoverageFilterKeepsMutuallySupportedQueries(t *testing.T) {
	opts := DefaultOpts
	q1 := interChromQuery("r1", 1, 0)
	q2 := interChromQuery("r2", 1, 10)
	kept, nDropped := coverageFilter([]*Query{q1, q2}, opts)
	require.Len(t, kept, 2)
	expect.EQ(t, nDropped, 0)
}

func TestCoverageFilterDropsUnsupportedQueries(t *testing.T) {
	opts := DefaultOpts
	q1 := interChromQuery("r1", 1, 0)
	q2 := interChromQuery("r2", 1, 10)
	// A lone rearranged query in an unrelated region has no supporters.
	q3 := &Query{Name: "r3", FileNum: 1, Alns: []SubAlignment{
		aln(0, 1000, "chr9", 100000, 101000),
		aln(1000, 2000, "chr12", 500000, 501000),
	}}
	kept, nDropped := coverageFilter([]*Query{q1, q2, q3}, opts)
	require.Len(t, kept, 2)
	expect.EQ(t, nDropped, 1)
	expect.EQ(t, kept[0].Name, "r1")
	expect.EQ(t, kept[1].Name, "r2")
}

func TestCoverageFilterMinCovZero(t *testing.T) {
	opts := DefaultOpts
	opts.MinSeqs = 1
	q := interChromQuery("r1", 1, 0)
	kept, nDropped := coverageFilter([]*Query{q}, opts)
	require.Len(t, kept, 1)
	expect.EQ(t, nDropped, 0)
}
