package rearrange

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// maxSummaryCols is the wrap width of the group summary paragraphs.
const maxSummaryCols = 79

// summaryContinuation prefixes wrapped summary lines.
const summaryContinuation = "#  "

// orientedAlns returns q's sub-alignments in emission orientation: as stored
// when not flipped, otherwise reversed in order with every sub-alignment
// mapped onto the opposite strand.
func orientedAlns(q *Query, flipped bool) []SubAlignment {
	out := make([]SubAlignment, len(q.Alns))
	if !flipped {
		copy(out, q.Alns)
		return out
	}
	for i, a := range q.Alns {
		out[len(q.Alns)-1-i] = a.Reversed()
	}
	return out
}

// refRangesFromFlippedAlns fuses runs of near-colinear sub-alignments into
// reference ranges. Consecutive sub-alignments on the same reference and
// strand fuse when the reference gap and query gap are both under minGap,
// any backward jump is under minRev, and the reference end makes forward
// progress.
func refRangesFromFlippedAlns(alns []SubAlignment, opts Opts) []string {
	var ranges []string
	for i := 0; i < len(alns); {
		beg := alns[i].RefBeg
		end := alns[i].RefEnd
		name := alns[i].RefName
		j := i + 1
		for ; j < len(alns); j++ {
			x, y := alns[j-1], alns[j]
			if !sameRefStrand(x, y) {
				break
			}
			refGap := y.RefBeg - x.RefEnd
			qryGap := y.QueryBeg - x.QueryEnd
			if refGap >= opts.MinGap || qryGap >= opts.MinGap ||
				refGap <= -opts.MinRev || x.RefEnd >= y.RefEnd {
				break
			}
			end = y.RefEnd
		}
		ranges = append(ranges, rangeText(name, beg, end))
		i = j
	}
	return ranges
}

// rangeText renders a signed reference interval: "chrom:beg>end" on the
// forward strand, "chrom:beg<end" with descending coordinates on the
// reverse strand.
func rangeText(name string, beg, end int) string {
	if beg >= 0 {
		return name + ":" + strconv.Itoa(beg) + ">" + strconv.Itoa(end)
	}
	return name + ":" + strconv.Itoa(-beg) + "<" + strconv.Itoa(-end)
}

// QueryRefRanges returns the fused reference range texts of q in emission
// orientation.
func QueryRefRanges(q *Query, flipped bool, opts Opts) []string {
	return refRangesFromFlippedAlns(orientedAlns(q, flipped), opts)
}

// groupWriter emits retained clumps with a sticky error.
type groupWriter struct {
	w    *bufio.Writer
	opts Opts
	err  error
}

func (g *groupWriter) line(s string) {
	if g.err != nil {
		return
	}
	if _, err := g.w.WriteString(s); err != nil {
		g.err = err
		return
	}
	g.err = g.w.WriteByte('\n')
}

// wrapped writes one summary line, wrapping at maxSummaryCols with the
// standard continuation prefix.
func (g *groupWriter) wrapped(first string, words []string) {
	cur := first
	for _, w := range words {
		if len(cur)+1+len(w) > maxSummaryCols && cur != summaryContinuation {
			g.line(cur)
			cur = summaryContinuation + w
			continue
		}
		cur += " " + w
	}
	g.line(cur)
}

func (g *groupWriter) query(q *Query, flipped bool) {
	name := q.Name
	if flipped {
		name = FlipName(name)
	}
	g.line("# PART " + name)
	if g.opts.Shrink {
		for _, row := range shrunkRows(orientedAlns(q, flipped)) {
			g.line(row)
		}
		g.line("")
		return
	}
	for _, t := range q.Texts {
		if flipped {
			t = FlipAlignmentText(t)
		}
		for _, l := range t.Lines {
			g.line(l)
		}
		if t.Format == FormatPairwise {
			g.line("")
		}
	}
	if len(q.Texts) > 0 && q.Texts[len(q.Texts)-1].Format != FormatPairwise {
		g.line("")
	}
}

// shrunkRows encodes sub-alignments as deltaic rows: each row is
// (qryInc, qryLen, refIncOrBeg, refLenDiff[, refName]), the reference name
// appearing only when it changes.
func shrunkRows(alns []SubAlignment) []string {
	var (
		rows             []string
		prevQE, prevRE   int
		prevName         string
	)
	for _, a := range alns {
		qryLen := a.QueryEnd - a.QueryBeg
		f := []string{
			strconv.Itoa(a.QueryBeg - prevQE),
			strconv.Itoa(qryLen),
		}
		if a.RefName != prevName {
			f = append(f,
				strconv.Itoa(a.RefBeg),
				strconv.Itoa((a.RefEnd-a.RefBeg)-qryLen),
				a.RefName)
		} else {
			f = append(f,
				strconv.Itoa(a.RefBeg-prevRE),
				strconv.Itoa((a.RefEnd-a.RefBeg)-qryLen))
		}
		rows = append(rows, strings.Join(f, " "))
		prevQE, prevRE, prevName = a.QueryEnd, a.RefEnd, a.RefName
	}
	return rows
}

// WriteGroups writes the retained clumps: per clump a summary paragraph, then
// one "# PART" section per query with the (optionally strand-flipped)
// alignment text, or shrunk rows when opts.Shrink is set.
func WriteGroups(w io.Writer, clumps []*Clump, queries []*Query, opts Opts) error {
	g := &groupWriter{w: bufio.NewWriter(w), opts: opts}
	for _, c := range clumps {
		g.line("# " + c.Name)
		for _, e := range c.Entries {
			q := queries[e.QueryIdx]
			name := q.Name
			if e.Flipped {
				name = FlipName(name)
			}
			g.wrapped("# "+name, refRangesFromFlippedAlns(orientedAlns(q, e.Flipped), opts))
		}
		g.line("")
		for _, e := range c.Entries {
			g.query(queries[e.QueryIdx], e.Flipped)
		}
	}
	if g.err != nil {
		return g.err
	}
	return g.w.Flush()
}
