package derive

import (
	"sort"

	"github.com/grailbio/base/log"
)

// endKey identifies one end of a rearrangement: side 0 is the first
// segment's free edge, side 1 the last segment's.
type endKey struct {
	r    int // rearrangement index
	side int // 0 or 1
}

// endpointNode is one rearrangement end projected onto its chromosome. mid
// is the midpoint of the end segment. lower is true when the free edge faces
// increasing coordinates, i.e. the node is the lower end of the chromosome
// piece above it.
type endpointNode struct {
	chrom string
	mid   int
	lower bool
	key   endKey
}

// edge joins an upper end with a lower end chosen by the matcher.
type edge struct{ upper, lower endKey }

// endpointNodes builds the per-chromosome node lists, sorted by position with
// upper ends before lower ends at equal positions.
func endpointNodes(rs []Rearrangement) map[string][]endpointNode {
	nodes := map[string][]endpointNode{}
	for ri, r := range rs {
		for side := 0; side < 2; side++ {
			seg := r.Segments[0]
			if side == 1 {
				seg = r.Segments[len(r.Segments)-1]
			}
			nodes[seg.Chrom] = append(nodes[seg.Chrom], endpointNode{
				chrom: seg.Chrom,
				mid:   seg.Mid(),
				lower: seg.Forward() == (side == 1),
				key:   endKey{ri, side},
			})
		}
	}
	for _, ns := range nodes {
		sort.Slice(ns, func(i, j int) bool {
			if ns[i].mid != ns[j].mid {
				return ns[i].mid < ns[j].mid
			}
			if ns[i].lower != ns[j].lower {
				return !ns[i].lower
			}
			if ns[i].key.r != ns[j].key.r {
				return ns[i].key.r < ns[j].key.r
			}
			return ns[i].key.side < ns[j].key.side
		})
	}
	return nodes
}

// countMatchings counts the distinct maximum matchings of one chromosome's
// node sequence. The DP state is the number of currently open upper ends;
// a lower end may match any open upper end or stay unmatched, and states
// with fewer total matches at the same open count are dominated.
func countMatchings(ns []endpointNode) int {
	type cell struct {
		matches int
		count   int
	}
	states := map[int]cell{0: {0, 1}}
	for _, n := range ns {
		next := map[int]cell{}
		merge := func(k int, c cell) {
			old, ok := next[k]
			switch {
			case !ok || c.matches > old.matches:
				next[k] = c
			case c.matches == old.matches:
				old.count += c.count
				next[k] = old
			}
		}
		for k, c := range states {
			if !n.lower {
				merge(k+1, c)
				continue
			}
			// Unmatched lower end.
			merge(k, c)
			if k > 0 {
				merge(k-1, cell{c.matches + 1, c.count * k})
			}
		}
		states = next
	}
	best, total := -1, 0
	for _, c := range states {
		if c.matches > best {
			best, total = c.matches, c.count
		} else if c.matches == best {
			total += c.count
		}
	}
	return total
}

// greedyMatching pairs each lower end with the most recently opened upper
// end. On this graph class the LIFO pairing is always a maximum matching.
func greedyMatching(ns []endpointNode) []edge {
	var (
		stack []endKey
		es    []edge
	)
	for _, n := range ns {
		if !n.lower {
			stack = append(stack, n.key)
			continue
		}
		if len(stack) == 0 {
			continue
		}
		es = append(es, edge{upper: stack[len(stack)-1], lower: n.key})
		stack = stack[:len(stack)-1]
	}
	return es
}

// allMatchings enumerates every maximum matching of one chromosome's node
// sequence by backtracking over the same choices the counting DP considers.
func allMatchings(ns []endpointNode) [][]edge {
	var (
		results [][]edge
		best    int
	)
	var walk func(i int, open []endKey, cur []edge)
	walk = func(i int, open []endKey, cur []edge) {
		if i == len(ns) {
			if len(cur) > best {
				best = len(cur)
				results = results[:0]
			}
			if len(cur) == best {
				results = append(results, append([]edge(nil), cur...))
			}
			return
		}
		n := ns[i]
		if !n.lower {
			walk(i+1, append(append([]endKey(nil), open...), n.key), cur)
			return
		}
		for oi, u := range open {
			rest := make([]endKey, 0, len(open)-1)
			rest = append(rest, open[:oi]...)
			rest = append(rest, open[oi+1:]...)
			walk(i+1, rest, append(append([]edge(nil), cur...), edge{upper: u, lower: n.key}))
		}
		// Leave this lower end unmatched.
		walk(i+1, open, cur)
	}
	walk(0, nil, nil)
	return results
}

// matchEndpoints computes the edge set over all chromosomes. Without
// opts.All it uses the greedy matching and warns when a chromosome admits
// more than one maximum matching. With opts.All it returns the cartesian
// product of every chromosome's maximum matchings.
func matchEndpoints(rs []Rearrangement, opts Opts) [][]edge {
	nodes := endpointNodes(rs)
	chroms := make([]string, 0, len(nodes))
	for c := range nodes {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)

	if !opts.All {
		var es []edge
		for _, c := range chroms {
			ns := nodes[c]
			if n := countMatchings(ns); n > 1 {
				log.Error.Printf("%s: %d maximum matchings, using the greedy one (rerun with -all to enumerate)", c, n)
			} else if opts.Verbose {
				log.Printf("%s: %d maximum matching(s)", c, n)
			}
			es = append(es, greedyMatching(ns)...)
		}
		return [][]edge{es}
	}

	combos := [][]edge{nil}
	for _, c := range chroms {
		perChrom := allMatchings(nodes[c])
		var next [][]edge
		for _, base := range combos {
			for _, m := range perChrom {
				e := append(append([]edge(nil), base...), m...)
				next = append(next, e)
			}
		}
		combos = next
	}
	return combos
}
