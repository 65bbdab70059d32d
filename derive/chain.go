package derive

import "strconv"

// chainLink is one rearrangement in a chain, possibly flipped end for end.
type chainLink struct {
	r       int
	flipped bool
}

// chain is a walked sequence of connected rearrangements.
type chain struct {
	links    []chainLink
	circular bool
}

// walkChains partitions the n rearrangements into chains following the
// matched end pairs. From every unused rearrangement the walk first extends
// backward from end 0, then forward from end 1. A chain that reconnects to
// its starting rearrangement is circular.
func walkChains(n int, es []edge) []chain {
	conn := map[endKey]endKey{}
	for _, e := range es {
		conn[e.upper] = e.lower
		conn[e.lower] = e.upper
	}
	used := make([]bool, n)
	var chains []chain
	for start := 0; start < n; start++ {
		if used[start] {
			continue
		}
		used[start] = true
		c := chain{links: []chainLink{{r: start}}}

		// Backward from end 0.
		cur := endKey{start, 0}
		for {
			peer, ok := conn[cur]
			if !ok {
				break
			}
			if peer.r == start {
				c.circular = true
				break
			}
			used[peer.r] = true
			if peer.side == 1 {
				c.links = append([]chainLink{{r: peer.r}}, c.links...)
				cur = endKey{peer.r, 0}
			} else {
				c.links = append([]chainLink{{r: peer.r, flipped: true}}, c.links...)
				cur = endKey{peer.r, 1}
			}
		}
		if !c.circular {
			// Forward from end 1.
			cur = endKey{start, 1}
			for {
				peer, ok := conn[cur]
				if !ok {
					break
				}
				if peer.r == start {
					c.circular = true
					break
				}
				used[peer.r] = true
				if peer.side == 0 {
					c.links = append(c.links, chainLink{r: peer.r})
					cur = endKey{peer.r, 1}
				} else {
					c.links = append(c.links, chainLink{r: peer.r, flipped: true})
					cur = endKey{peer.r, 0}
				}
			}
		}
		chains = append(chains, c)
	}
	return chains
}

// reverseChain reverses the link order and flips every link. Applying it
// twice is the identity.
func reverseChain(c chain) chain {
	out := chain{circular: c.circular, links: make([]chainLink, len(c.links))}
	for i, l := range c.links {
		out.links[len(c.links)-1-i] = chainLink{r: l.r, flipped: !l.flipped}
	}
	return out
}

// normalizeChain settles the chain orientation: when both outer ends face
// the reverse strand the chain is reversed, keeping the dominant strand
// positive.
func normalizeChain(c chain, rs []Rearrangement) chain {
	first := orientedSegments(rs[c.links[0].r], c.links[0].flipped)
	last := orientedSegments(rs[c.links[len(c.links)-1].r], c.links[len(c.links)-1].flipped)
	if !first[0].Forward() && !last[len(last)-1].Forward() {
		return reverseChain(c)
	}
	return c
}

// orientChains applies normalizeChain to every chain.
func orientChains(chains []chain, rs []Rearrangement) []chain {
	for i, c := range chains {
		chains[i] = normalizeChain(c, rs)
	}
	return chains
}

// orientedSegments returns a rearrangement's segments in chain orientation.
func orientedSegments(r Rearrangement, flipped bool) []Segment {
	out := make([]Segment, len(r.Segments))
	if !flipped {
		copy(out, r.Segments)
		return out
	}
	for i, s := range r.Segments {
		out[len(r.Segments)-1-i] = s.Reversed()
	}
	return out
}

// derivedSegments concatenates a chain's oriented segments. Adjacent links
// share their matched end segment; the two copies merge into one segment
// keeping the outer endpoints.
func derivedSegments(c chain, rs []Rearrangement) []Segment {
	var segs []Segment
	for i, l := range c.links {
		ls := orientedSegments(rs[l.r], l.flipped)
		if i == 0 {
			segs = append(segs, ls...)
			continue
		}
		segs[len(segs)-1].End = ls[0].End
		segs = append(segs, ls[1:]...)
	}
	return segs
}

// Part is one emitted piece of a derived sequence.
type Part struct {
	Name     string
	Circular bool
	Segments []Segment
}

// stubFraction is the divisor of maxLen giving the stub length kept on each
// side when a long segment is cut. The value matches the reference outputs.
const stubFraction = 3

// splitLongSegments cuts every segment longer than maxLen into two stubs of
// maxLen/3 bases, breaking the derived sequence at the former adjacency.
func splitLongSegments(segs []Segment, maxLen int) [][]Segment {
	stub := maxLen / stubFraction
	parts := [][]Segment{nil}
	for _, s := range segs {
		if s.Span() <= maxLen {
			parts[len(parts)-1] = append(parts[len(parts)-1], s)
			continue
		}
		dir := 1
		if !s.Forward() {
			dir = -1
		}
		head := Segment{Chrom: s.Chrom, Beg: s.Beg, End: s.Beg + dir*stub}
		tail := Segment{Chrom: s.Chrom, Beg: s.End - dir*stub, End: s.End}
		parts[len(parts)-1] = append(parts[len(parts)-1], head)
		parts = append(parts, []Segment{tail})
	}
	return parts
}

// derivedParts names and splits every chain's derived sequence. Chains are
// named der1, der2, ... in chain order; a chain split by a long segment gets
// an a, b, ... suffix per piece and loses any circular label.
func derivedParts(chains []chain, rs []Rearrangement, maxLen int) []Part {
	var parts []Part
	for ci, c := range chains {
		base := "der" + strconv.Itoa(ci+1)
		pieces := splitLongSegments(derivedSegments(c, rs), maxLen)
		if len(pieces) == 1 {
			parts = append(parts, Part{Name: base, Circular: c.circular, Segments: pieces[0]})
			continue
		}
		for pi, segs := range pieces {
			parts = append(parts, Part{Name: base + string(rune('a'+pi)), Segments: segs})
		}
	}
	return parts
}
