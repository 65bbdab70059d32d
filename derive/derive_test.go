package derive

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

const sampleGroups = `# bio-rearrange -min-seqs 2 case.maf
# group1-2
# readA+ chr1:500>1500 chr5:2000>3000
# readB- chr1:502>1498 chr5:2005>2995
# PART readA+
1000 chr1 500 1000 + 200000 readA+ 0 1000 + 2000 1000
# PART readB-
1000 chr1 502 996 + 200000 readB- 0 996 + 2000 996
# group2-2
# readC chr5:8000>9000 chr1:500>1500
# PART readC
1000 chr5 8000 1000 + 159000 readC 0 1000 + 2000 1000
`

func TestParseRearrangements(t *testing.T) {
	rs, err := ParseRearrangements(strings.NewReader(sampleGroups))
	require.NoError(t, err)
	require.Len(t, rs, 2)
	expect.EQ(t, rs[0].Name, "group1-2")
	expect.EQ(t, rs[0].Segments, []Segment{
		{Chrom: "chr1", Beg: 500, End: 1500},
		{Chrom: "chr5", Beg: 2000, End: 3000},
	})
	expect.EQ(t, rs[1].Name, "group2-2")
	expect.EQ(t, rs[1].Segments, []Segment{
		{Chrom: "chr5", Beg: 8000, End: 9000},
		{Chrom: "chr1", Beg: 500, End: 1500},
	})
}

func TestParseRearrangementsContinuation(t *testing.T) {
	const input = `# group1-2
# readA chr1:500>1500 chr5:2000>3000
#  chr9:4000<3000
# readB chr1:500>1500
# PART readA
`
	rs, err := ParseRearrangements(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rs, 1)
	expect.EQ(t, rs[0].Segments, []Segment{
		{Chrom: "chr1", Beg: 500, End: 1500},
		{Chrom: "chr5", Beg: 2000, End: 3000},
		{Chrom: "chr9", Beg: 4000, End: 3000},
	})
}

func TestParseRangeToken(t *testing.T) {
	seg, ok, err := parseRangeToken("chr1:100>200")
	require.NoError(t, err)
	require.True(t, ok)
	expect.EQ(t, seg, Segment{Chrom: "chr1", Beg: 100, End: 200})
	expect.True(t, seg.Forward())

	seg, ok, err = parseRangeToken("chr1:5100<5000")
	require.NoError(t, err)
	require.True(t, ok)
	expect.EQ(t, seg, Segment{Chrom: "chr1", Beg: 5100, End: 5000})
	expect.False(t, seg.Forward())
	expect.EQ(t, seg.Mid(), 5050)
	expect.EQ(t, seg.Span(), 100)

	_, ok, err = parseRangeToken("notarange")
	require.NoError(t, err)
	expect.False(t, ok)

	_, _, err = parseRangeToken("chr1:100>100")
	require.Error(t, err)
	require.Contains(t, err.Error(), "zero-length")

	_, _, err = parseRangeToken("chr1:200>100")
	require.Error(t, err)
}

func TestParseRearrangementsZeroLengthFatal(t *testing.T) {
	const input = `# group1-1
# readA chr1:100>100
`
	_, err := ParseRearrangements(strings.NewReader(input))
	require.Error(t, err)
}

func TestFilterGroups(t *testing.T) {
	rs := []Rearrangement{
		{Name: "group1-2"},
		{Name: "group2-3"},
		{Name: "merge3_4"},
	}
	expect.EQ(t, len(FilterGroups(rs, "")), 3)
	got := FilterGroups(rs, "2")
	require.Len(t, got, 1)
	expect.EQ(t, got[0].Name, "group2-3")
	got = FilterGroups(rs, "group1-2,merge3_4")
	require.Len(t, got, 2)
}
