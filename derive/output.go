package derive

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
)

// groupParts groups parts by proximity: two parts connect when any pair of
// their segments lies within maxLen on the same chromosome. Each connected
// component becomes one output section, in order of its smallest part index.
func groupParts(parts []Part, maxLen int) [][]Part {
	near := func(a, b Part) bool {
		for _, sa := range a.Segments {
			for _, sb := range b.Segments {
				if sa.Chrom != sb.Chrom {
					continue
				}
				gap := 0
				if sb.lo() > sa.hi() {
					gap = sb.lo() - sa.hi()
				} else if sa.lo() > sb.hi() {
					gap = sa.lo() - sb.hi()
				}
				if gap <= maxLen {
					return true
				}
			}
		}
		return false
	}

	visited := make([]bool, len(parts))
	var groups [][]Part
	for i := range parts {
		if visited[i] {
			continue
		}
		visited[i] = true
		comp := []int{i}
		for qi := 0; qi < len(comp); qi++ {
			for j := range parts {
				if visited[j] {
					continue
				}
				if near(parts[comp[qi]], parts[j]) {
					visited[j] = true
					comp = append(comp, j)
				}
			}
		}
		g := make([]Part, len(comp))
		for k, idx := range comp {
			g[k] = parts[idx]
		}
		groups = append(groups, g)
	}
	return groups
}

// writeParts emits the proximity groups as "# PART <label>" sections. Each
// part prints its name, ":CIRCULAR" tagged when the chain closed on itself,
// followed by one tab-separated row per segment: chrom, begin, a > or <
// direction mark, end.
func writeParts(w *tsv.Writer, parts []Part, labelPrefix string, maxLen int) error {
	for gi, g := range groupParts(parts, maxLen) {
		w.WriteString("# PART " + labelPrefix + strconv.Itoa(gi+1))
		if err := w.EndLine(); err != nil {
			return err
		}
		for _, p := range g {
			name := p.Name
			if p.Circular {
				name += ":CIRCULAR"
			}
			w.WriteString(name)
			if err := w.EndLine(); err != nil {
				return err
			}
			for _, s := range p.Segments {
				mark := ">"
				if !s.Forward() {
					mark = "<"
				}
				w.WriteString(s.Chrom)
				w.WriteString(strconv.Itoa(s.Beg))
				w.WriteString(mark)
				w.WriteString(strconv.Itoa(s.End))
				if err := w.EndLine(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Run matches the rearrangement endpoints, walks the chains, and writes the
// derived parts to w. With opts.All every maximum matching combination is
// emitted in its own "# PART m-k" sections.
func Run(w io.Writer, rs []Rearrangement, opts Opts) error {
	rs = FilterGroups(rs, opts.Groups)
	out := tsv.NewWriter(w)
	combos := matchEndpoints(rs, opts)
	for mi, es := range combos {
		chains := orientChains(walkChains(len(rs), es), rs)
		parts := derivedParts(chains, rs, opts.MaxLen)
		prefix := ""
		if opts.All {
			prefix = strconv.Itoa(mi+1) + "-"
		}
		if err := writeParts(out, parts, prefix, opts.MaxLen); err != nil {
			return err
		}
	}
	return out.Flush()
}
