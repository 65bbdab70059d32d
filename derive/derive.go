// Package derive reconstructs candidate derived chromosomes from the grouped
// rearrangements emitted by bio-rearrange. Each group's reference ranges form
// an oriented segment list; matching the segment endpoints per chromosome
// links groups into chains, and each chain yields the parts of one derived
// sequence.
package derive

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Opts is the set of knobs of the derivation engine.
type Opts struct {
	// All enumerates every maximum matching instead of the greedy one.
	All bool
	// Groups restricts the input to a comma-separated list of group names or
	// numbers. Empty means all groups.
	Groups string
	// MaxLen splits derived segments longer than this many bases.
	MaxLen int
	// Verbose enables progress logging.
	Verbose bool
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{MaxLen: 1000000}

// Segment is one oriented reference range. Beg > End means the segment runs
// on the reverse strand.
type Segment struct {
	Chrom    string
	Beg, End int
}

// Forward reports whether the segment runs on the forward strand.
func (s Segment) Forward() bool { return s.Beg < s.End }

// Reversed returns the segment running the opposite way.
func (s Segment) Reversed() Segment {
	s.Beg, s.End = s.End, s.Beg
	return s
}

// Mid is the segment midpoint.
func (s Segment) Mid() int { return (s.Beg + s.End) / 2 }

// Span is the segment length in bases.
func (s Segment) Span() int {
	if s.Beg < s.End {
		return s.End - s.Beg
	}
	return s.Beg - s.End
}

// lo and hi bound the segment on the forward strand.
func (s Segment) lo() int {
	if s.Beg < s.End {
		return s.Beg
	}
	return s.End
}

func (s Segment) hi() int {
	if s.Beg < s.End {
		return s.End
	}
	return s.Beg
}

// Rearrangement is one group parsed from the summary: the group name and the
// oriented segments of its leading query.
type Rearrangement struct {
	Name     string
	Segments []Segment
}

// parseRangeToken parses "chrom:beg>end" (forward) or "chrom:beg<end"
// (reverse, descending coordinates) into a Segment. ok is false when the
// token does not have the shape of a range at all; malformed coordinates and
// zero-length segments are errors.
func parseRangeToken(tok string) (Segment, bool, error) {
	ci := strings.LastIndexByte(tok, ':')
	if ci <= 0 {
		return Segment{}, false, nil
	}
	rest := tok[ci+1:]
	oi := strings.IndexAny(rest, "<>")
	if oi <= 0 || oi == len(rest)-1 {
		return Segment{}, false, nil
	}
	beg, err := strconv.Atoi(rest[:oi])
	if err != nil {
		return Segment{}, true, errors.Errorf("bad range coordinate in %q", tok)
	}
	end, err := strconv.Atoi(rest[oi+1:])
	if err != nil {
		return Segment{}, true, errors.Errorf("bad range coordinate in %q", tok)
	}
	if beg == end {
		return Segment{}, true, errors.Errorf("zero-length segment %q", tok)
	}
	fwd := rest[oi] == '>'
	if fwd != (beg < end) {
		return Segment{}, true, errors.Errorf("range direction disagrees with coordinates in %q", tok)
	}
	return Segment{Chrom: tok[:ci], Beg: beg, End: end}, true, nil
}

// ParseRearrangements reads the grouped output of bio-rearrange. Every group
// header opens a rearrangement; the first query summary line (plus its "#  "
// continuations) supplies the segments. "# PART" sections and alignment
// bodies are skipped.
func ParseRearrangements(r io.Reader) ([]Rearrangement, error) {
	var (
		rs         []Rearrangement
		open       bool // a group header has been seen
		collecting bool // the group's first summary line is being extended
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "#") {
			continue
		}
		cont := strings.HasPrefix(line, "#  ")
		f := strings.Fields(line)
		if len(f) < 2 {
			continue
		}
		if f[1] == "PART" {
			open, collecting = false, false
			continue
		}
		if cont {
			if !collecting {
				continue
			}
			segs, err := parseRangeTokens(f[1:])
			if err != nil {
				return nil, err
			}
			if segs == nil {
				collecting = false
				continue
			}
			cur := &rs[len(rs)-1]
			cur.Segments = append(cur.Segments, segs...)
			continue
		}
		if len(f) == 2 {
			rs = append(rs, Rearrangement{Name: f[1]})
			open, collecting = true, false
			continue
		}
		// A candidate query summary: "# name range range ...". Lines whose
		// trailing tokens are not ranges (e.g. the command echo) are skipped.
		// Only the group's first summary contributes segments.
		if !open || len(rs) == 0 {
			continue
		}
		if len(rs[len(rs)-1].Segments) > 0 {
			collecting = false
			continue
		}
		segs, err := parseRangeTokens(f[2:])
		if err != nil {
			return nil, err
		}
		if segs == nil {
			continue
		}
		rs[len(rs)-1].Segments = append(rs[len(rs)-1].Segments, segs...)
		collecting = true
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	var out []Rearrangement
	for _, r := range rs {
		if len(r.Segments) > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

// parseRangeTokens parses a run of range tokens. It returns nil (and no
// error) when the first token is not range-shaped.
func parseRangeTokens(toks []string) ([]Segment, error) {
	var segs []Segment
	for i, tok := range toks {
		seg, shaped, err := parseRangeToken(tok)
		if err != nil {
			return nil, err
		}
		if !shaped {
			if i == 0 {
				return nil, nil
			}
			return nil, errors.Errorf("expected a range, got %q", tok)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// FilterGroups keeps the rearrangements selected by the comma-separated
// filter. An id matches a group by full name or by the number embedded in
// it.
func FilterGroups(rs []Rearrangement, groups string) []Rearrangement {
	if groups == "" {
		return rs
	}
	want := map[string]bool{}
	for _, id := range strings.Split(groups, ",") {
		if id = strings.TrimSpace(id); id != "" {
			want[id] = true
		}
	}
	num := func(name string) string {
		i := 0
		for i < len(name) && (name[i] < '0' || name[i] > '9') {
			i++
		}
		j := i
		for j < len(name) && name[j] >= '0' && name[j] <= '9' {
			j++
		}
		return name[i:j]
	}
	var out []Rearrangement
	for _, r := range rs {
		if want[r.Name] || want[num(r.Name)] {
			out = append(out, r)
		}
	}
	return out
}
