package rearrange

import (
	"container/heap"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Link records that two queries witness the same rearrangement. Opposed is
// true when the witnessing pairs lie on opposite query strands.
type Link struct {
	A, B    int // query indices, A < B
	Opposed bool
}

// buildLinks runs the oracle over every query pair that overlaps on the
// reference, using the symmetric neighbor lists filled by reg.fillNeighbors.
// One link is emitted per witnessing pair.
func buildLinks(reg *registry, opts Opts) []Link {
	enabled := opts.EnabledTypes()
	var links []Link
	for qi, q := range reg.queries {
		// Candidate sub-alignments per peer query, keyed by peer index.
		// Only peers with a larger index are searched, so each unordered
		// pair is decided exactly once.
		cands := map[int][][]int{}
		for i := range q.Alns {
			for _, id := range q.Alns[i].Neighbors {
				ref := reg.refs[id]
				if ref.queryIdx <= qi {
					continue
				}
				c, ok := cands[ref.queryIdx]
				if !ok {
					c = make([][]int, len(q.Alns))
					cands[ref.queryIdx] = c
				}
				c[i] = append(c[i], ref.alnIdx)
			}
		}
		peers := make([]int, 0, len(cands))
		for pi := range cands {
			peers = append(peers, pi)
		}
		sort.Ints(peers)
		for _, pi := range peers {
			for i := range cands[pi] {
				sort.Ints(cands[pi][i])
			}
			if outcome := searchShared(q, reg.queries[pi], cands[pi], enabled, opts); outcome != 0 {
				links = append(links, Link{A: qi, B: pi, Opposed: outcome < 0})
			}
		}
	}
	return links
}

// ClumpEntry is one query's membership in a clump, with the strand chosen
// for emission.
type ClumpEntry struct {
	QueryIdx int
	Flipped  bool
}

// Clump is a connected component of the link graph with a consistent strand
// choice per query.
type Clump struct {
	Name    string
	Entries []ClumpEntry
	// comps are the 1-based first-level component numbers merged into this
	// clump, in extraction order.
	comps []int
}

// clumpNode is a heap item of the priority-first traversal.
type clumpNode struct {
	priority nodePriority
	queryIdx int
	flipped  bool
}

// nodePriority orders traversal: highest degree first, then longest aligned
// query, then input order.
type nodePriority struct {
	degree     int
	alignedLen int
	queryIdx   int
}

func (p nodePriority) better(o nodePriority) bool {
	if p.degree != o.degree {
		return p.degree > o.degree
	}
	if p.alignedLen != o.alignedLen {
		return p.alignedLen > o.alignedLen
	}
	return p.queryIdx < o.queryIdx
}

type nodeHeap []clumpNode

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].priority.better(h[j].priority) }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(clumpNode)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// extractClumps partitions linked queries into connected components. Each
// component is discovered by a priority-first traversal; every query inherits
// flip = parentFlip XOR linkOpposed, and the root is flipped when both its
// first and last sub-alignments lie on the reverse strand, keeping the
// dominant strand positive. Components smaller than minSeqs are dropped.
func extractClumps(queries []*Query, links []Link, opts Opts) []*Clump {
	type edge struct {
		peer    int
		opposed bool
	}
	adj := make([][]edge, len(queries))
	for _, l := range links {
		adj[l.A] = append(adj[l.A], edge{l.B, l.Opposed})
		adj[l.B] = append(adj[l.B], edge{l.A, l.Opposed})
	}
	prio := make([]nodePriority, len(queries))
	for qi, q := range queries {
		prio[qi] = nodePriority{degree: len(adj[qi]), alignedLen: q.AlignedLen(), queryIdx: qi}
	}
	roots := make([]int, len(queries))
	for i := range roots {
		roots[i] = i
	}
	sort.Slice(roots, func(i, j int) bool { return prio[roots[i]].better(prio[roots[j]]) })

	visited := make([]bool, len(queries))
	var clumps []*Clump
	compNum := 0
	for _, root := range roots {
		if visited[root] {
			continue
		}
		rootQ := queries[root]
		rootFlip := len(rootQ.Alns) > 0 &&
			!rootQ.Alns[0].RefForward() && !rootQ.Alns[len(rootQ.Alns)-1].RefForward()

		h := &nodeHeap{{prio[root], root, rootFlip}}
		visited[root] = true
		c := &Clump{}
		for h.Len() > 0 {
			n := heap.Pop(h).(clumpNode)
			c.Entries = append(c.Entries, ClumpEntry{n.queryIdx, n.flipped})
			for _, e := range adj[n.queryIdx] {
				if visited[e.peer] {
					continue
				}
				visited[e.peer] = true
				heap.Push(h, clumpNode{prio[e.peer], e.peer, n.flipped != e.opposed})
			}
		}
		if len(c.Entries) < opts.MinSeqs {
			continue
		}
		compNum++
		c.comps = []int{compNum}
		clumps = append(clumps, c)
	}
	return clumps
}

// mergeClumps runs a second-level clumping: two clumps are linked whenever a
// sub-alignment of one overlaps a sub-alignment of the other on the
// reference (a cross-query neighbor edge). Linked clumps merge into one.
func mergeClumps(clumps []*Clump, reg *registry) []*Clump {
	clumpOf := make([]int, len(reg.queries))
	for i := range clumpOf {
		clumpOf[i] = -1
	}
	for ci, c := range clumps {
		for _, e := range c.Entries {
			clumpOf[e.QueryIdx] = ci
		}
	}
	adj := make([]map[int]bool, len(clumps))
	for ci := range adj {
		adj[ci] = map[int]bool{}
	}
	for _, q := range reg.queries {
		for i := range q.Alns {
			a := &q.Alns[i]
			ca := clumpOf[a.QueryIdx]
			if ca < 0 {
				continue
			}
			for _, id := range a.Neighbors {
				cb := clumpOf[reg.refs[id].queryIdx]
				if cb < 0 || cb == ca {
					continue
				}
				adj[ca][cb] = true
				adj[cb][ca] = true
			}
		}
	}

	visited := make([]bool, len(clumps))
	var merged []*Clump
	for ci := range clumps {
		if visited[ci] {
			continue
		}
		visited[ci] = true
		queue := []int{ci}
		m := &Clump{}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			m.Entries = append(m.Entries, clumps[cur].Entries...)
			m.comps = append(m.comps, clumps[cur].comps...)
			peers := make([]int, 0, len(adj[cur]))
			for p := range adj[cur] {
				peers = append(peers, p)
			}
			sort.Ints(peers)
			for _, p := range peers {
				if !visited[p] {
					visited[p] = true
					queue = append(queue, p)
				}
			}
		}
		sort.Ints(m.comps)
		merged = append(merged, m)
	}
	return merged
}

// retainCoveringClumps keeps only clumps whose queries cover every case file.
func retainCoveringClumps(clumps []*Clump, queries []*Query, numCaseFiles int) []*Clump {
	var kept []*Clump
	for _, c := range clumps {
		files := map[int]bool{}
		for _, e := range c.Entries {
			files[queries[e.QueryIdx].FileNum] = true
		}
		if len(files) == numCaseFiles {
			kept = append(kept, c)
		}
	}
	return kept
}

var groupNameRE = regexp.MustCompile(`^(?:group|merged?)(\d+)-`)

// orderAndNameClumps sorts the clumps into emission order and assigns their
// group/merge names.
//
// When every query name already carries a group tag (the input came from an
// earlier grouping run), clumps are ordered by their minimum embedded group
// number and merge names reuse those numbers. Otherwise clumps are ordered by
// descending size, ties broken by the smallest (refName, refBeg, refEnd) over
// their queries, and merge names use first-level component numbers.
func orderAndNameClumps(clumps []*Clump, queries []*Query) {
	numericMode := len(clumps) > 0
	for _, c := range clumps {
		for _, e := range c.Entries {
			if !groupNameRE.MatchString(queries[e.QueryIdx].Name) {
				numericMode = false
				break
			}
		}
	}

	minGroupNum := func(c *Clump) int {
		min := -1
		for _, e := range c.Entries {
			m := groupNameRE.FindStringSubmatch(queries[e.QueryIdx].Name)
			if m == nil {
				continue
			}
			n, _ := strconv.Atoi(m[1])
			if min < 0 || n < min {
				min = n
			}
		}
		return min
	}
	minSortKey := func(c *Clump) (string, int, int) {
		var (
			name     string
			beg, end int
			have     bool
		)
		for _, e := range c.Entries {
			for _, a := range queries[e.QueryIdx].Alns {
				n, b, en := a.RefName, a.AbsRefBeg(), a.AbsRefEnd()
				if !have || n < name || (n == name && (b < beg || (b == beg && en < end))) {
					name, beg, end, have = n, b, en, true
				}
			}
		}
		return name, beg, end
	}

	if numericMode {
		sort.SliceStable(clumps, func(i, j int) bool { return minGroupNum(clumps[i]) < minGroupNum(clumps[j]) })
	} else {
		sort.SliceStable(clumps, func(i, j int) bool {
			ci, cj := clumps[i], clumps[j]
			if len(ci.Entries) != len(cj.Entries) {
				return len(ci.Entries) > len(cj.Entries)
			}
			ni, bi, ei := minSortKey(ci)
			nj, bj, ej := minSortKey(cj)
			if ni != nj {
				return ni < nj
			}
			if bi != bj {
				return bi < bj
			}
			return ei < ej
		})
	}

	for k, c := range clumps {
		if len(c.comps) > 1 {
			ids := c.comps
			if numericMode {
				seen := map[int]bool{}
				ids = ids[:0:0]
				for _, e := range c.Entries {
					if m := groupNameRE.FindStringSubmatch(queries[e.QueryIdx].Name); m != nil {
						n, _ := strconv.Atoi(m[1])
						if !seen[n] {
							seen[n] = true
							ids = append(ids, n)
						}
					}
				}
				sort.Ints(ids)
			}
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = strconv.Itoa(id)
			}
			c.Name = "merge" + strings.Join(parts, "_")
		} else {
			c.Name = "group" + strconv.Itoa(k+1) + "-" + strconv.Itoa(len(c.Entries))
		}
	}
}
