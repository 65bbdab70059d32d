package rearrange

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestRefRangesFuseNearColinear(t *testing.T) {
	opts := DefaultOpts
	opts.MinGap = 1000
	opts.MinRev = 100
	alns := []SubAlignment{
		aln(0, 100, "chr1", 100, 200),
		aln(100, 200, "chr1", 250, 350),    // small forward gap: fuses
		aln(200, 300, "chr1", 10000, 10100), // big gap: new range
		aln(300, 400, "chr2", 0, 100),       // new reference: new range
	}
	expect.EQ(t, refRangesFromFlippedAlns(alns, opts), []string{
		"chr1:100>350",
		"chr1:10000>10100",
		"chr2:0>100",
	})
}

func TestRefRangesReverseStrandText(t *testing.T) {
	alns := []SubAlignment{aln(0, 100, "chr1", -5100, -5000)}
	expect.EQ(t, refRangesFromFlippedAlns(alns, DefaultOpts), []string{"chr1:5100<5000"})
}

func TestRefRangesNoFuseOnBackwardJump(t *testing.T) {
	opts := DefaultOpts
	opts.MinRev = 100
	alns := []SubAlignment{
		aln(0, 100, "chr1", 1000, 1100),
		aln(100, 200, "chr1", 800, 900), // backward >= minRev
	}
	expect.EQ(t, refRangesFromFlippedAlns(alns, opts), []string{
		"chr1:1000>1100",
		"chr1:800>900",
	})
}

func TestWriteGroupsSummaryAndParts(t *testing.T) {
	opts := DefaultOpts
	queries := []*Query{
		{
			Name: "read1", FileNum: 1, Len: 10000,
			Alns: []SubAlignment{
				aln(0, 5000, "chr1", 100, 5100),
				aln(5000, 10000, "chr7", 50000, 55000),
			},
			Texts: []AlignmentText{{Format: FormatTabular, Lines: []string{
				"1000 chr1 100 5000 + 200000 read1 0 5000 + 10000 5000",
			}}},
		},
		{
			Name: "read2", FileNum: 1, Len: 10000,
			Alns: []SubAlignment{
				aln(0, 5000, "chr7", -55000, -50000),
				aln(5000, 10000, "chr1", -5100, -100),
			},
			Texts: []AlignmentText{{Format: FormatTabular, Lines: []string{
				"1000 chr7 50000 5000 + 159000 read2 0 5000 - 10000 5000",
			}}},
		},
	}
	clumps := []*Clump{{
		Name:    "group1-2",
		Entries: []ClumpEntry{{0, false}, {1, true}},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteGroups(&buf, clumps, queries, opts))
	lines := strings.Split(buf.String(), "\n")
	expect.EQ(t, lines[0], "# group1-2")
	expect.EQ(t, lines[1], "# read1 chr1:100>5100 chr7:50000>55000")
	// read2 is emitted flipped: tag appended, segments on the forward strand.
	expect.EQ(t, lines[2], "# read2- chr1:100>5100 chr7:50000>55000")
	expect.EQ(t, lines[4], "# PART read1")
	require.Contains(t, buf.String(), "# PART read2-")
	require.Contains(t, buf.String(), "1000 chr7 50000 5000 + 159000 read2- 0 5000 + 10000 5000")
}

func TestWriteGroupsWrapsLongSummaries(t *testing.T) {
	opts := DefaultOpts
	var alns []SubAlignment
	for i := 0; i < 12; i++ {
		alns = append(alns, aln(i*100, i*100+100, "chr11", 40000000+i*100000, 40000000+i*100000+100))
	}
	q := &Query{Name: "longread", FileNum: 1, Alns: alns}
	clumps := []*Clump{{Name: "group1-1", Entries: []ClumpEntry{{0, false}}}}
	var buf bytes.Buffer
	require.NoError(t, WriteGroups(&buf, clumps, []*Query{q}, opts))
	for _, line := range strings.Split(buf.String(), "\n") {
		expect.LE(t, len(line), maxSummaryCols)
		if strings.HasPrefix(line, "#  ") {
			expect.True(t, strings.Contains(line, "chr11:"))
		}
	}
}

func TestWriteGroupsShrink(t *testing.T) {
	opts := DefaultOpts
	opts.Shrink = true
	q := &Query{
		Name: "read1", FileNum: 1, Len: 10000,
		Alns: []SubAlignment{
			aln(0, 5000, "chr1", 100, 5100),
			aln(5000, 10000, "chr1", 50000, 55000),
		},
	}
	clumps := []*Clump{{Name: "group1-1", Entries: []ClumpEntry{{0, false}}}}
	var buf bytes.Buffer
	require.NoError(t, WriteGroups(&buf, clumps, []*Query{q}, opts))
	require.Contains(t, buf.String(), "0 5000 100 0 chr1\n0 5000 44900 0\n")

	// The shrunk output reparses to the same sub-alignments.
	qs := readQueries(t, buf.String(), DefaultOpts)
	require.Len(t, qs, 1)
	expect.EQ(t, qs[0].Name, "read1")
	require.Len(t, qs[0].Alns, 2)
	expect.EQ(t, qs[0].Alns[0].RefBeg, 100)
	expect.EQ(t, qs[0].Alns[1].RefBeg, 50000)
}
