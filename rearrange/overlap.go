package rearrange

import (
	"sort"

	"github.com/biogo/store/interval"
)

// alnRef locates a sub-alignment within the pipeline's query list.
type alnRef struct {
	queryIdx, alnIdx int
}

// registry numbers every sub-alignment of queries and provides ID lookup.
// IDs are assigned in input order: queries in file order, sub-alignments in
// query order.
type registry struct {
	queries []*Query
	refs    []alnRef
}

func newRegistry(queries []*Query) *registry {
	r := &registry{queries: queries}
	for qi, q := range queries {
		for ai := range q.Alns {
			q.Alns[ai].ID = len(r.refs)
			q.Alns[ai].QueryIdx = qi
			r.refs = append(r.refs, alnRef{qi, ai})
		}
	}
	return r
}

func (r *registry) aln(id int) *SubAlignment {
	ref := r.refs[id]
	return &r.queries[ref.queryIdx].Alns[ref.alnIdx]
}

func (r *registry) query(id int) *Query {
	return r.queries[r.refs[id].queryIdx]
}

// fillNeighbors records, on every sub-alignment, the IDs of sub-alignments
// from other queries that overlap it on the forward reference strand. The
// relation is symmetric: a in Neighbors(b) iff b in Neighbors(a).
//
// Implementation is a sweep over (refName, absRefBeg)-sorted sub-alignments;
// the active set is pruned whenever a new element starts at or past an active
// element's end, so the cost is O(n log n + overlapCount).
func (r *registry) fillNeighbors() {
	ids := make([]int, len(r.refs))
	for i := range ids {
		ids[i] = i
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.aln(ids[i]), r.aln(ids[j])
		if a.RefName != b.RefName {
			return a.RefName < b.RefName
		}
		return a.AbsRefBeg() < b.AbsRefBeg()
	})
	var active []int
	for _, id := range ids {
		a := r.aln(id)
		kept := active[:0]
		for _, oid := range active {
			o := r.aln(oid)
			if o.RefName != a.RefName || o.AbsRefEnd() <= a.AbsRefBeg() {
				continue
			}
			kept = append(kept, oid)
			if o.QueryIdx != a.QueryIdx {
				o.Neighbors = append(o.Neighbors, id)
				a.Neighbors = append(a.Neighbors, oid)
			}
		}
		active = append(kept, id)
	}
}

// clearNeighbors drops all neighbor lists, bounding memory between consumers.
func (r *registry) clearNeighbors() {
	for _, q := range r.queries {
		for i := range q.Alns {
			q.Alns[i].Neighbors = nil
		}
	}
}

// treeEntry adapts a sub-alignment to biogo's interval tree.
type treeEntry struct {
	id       int
	beg, end int
}

func (e treeEntry) Overlap(b interval.IntRange) bool { return e.end > b.Start && e.beg < b.End }
func (e treeEntry) ID() uintptr                      { return uintptr(e.id) }
func (e treeEntry) Range() interval.IntRange         { return interval.IntRange{Start: e.beg, End: e.end} }

// controlIndex answers "which control sub-alignments overlap this case
// sub-alignment" with one interval tree per reference name.
type controlIndex struct {
	reg   *registry // registry of the control queries
	trees map[string]*interval.IntTree
}

// newControlIndex indexes all control sub-alignments.
func newControlIndex(reg *registry) *controlIndex {
	ci := &controlIndex{reg: reg, trees: map[string]*interval.IntTree{}}
	for _, q := range reg.queries {
		for i := range q.Alns {
			a := &q.Alns[i]
			t, ok := ci.trees[a.RefName]
			if !ok {
				t = &interval.IntTree{}
				ci.trees[a.RefName] = t
			}
			_ = t.Insert(treeEntry{id: a.ID, beg: a.AbsRefBeg(), end: a.AbsRefEnd()}, true)
		}
	}
	for _, t := range ci.trees {
		t.AdjustRanges()
	}
	return ci
}

// overlapping returns the IDs of control sub-alignments overlapping a.
func (ci *controlIndex) overlapping(a *SubAlignment) []int {
	t, ok := ci.trees[a.RefName]
	if !ok {
		return nil
	}
	var ids []int
	for _, m := range t.Get(treeEntry{beg: a.AbsRefBeg(), end: a.AbsRefEnd()}) {
		ids = append(ids, m.(treeEntry).id)
	}
	sort.Ints(ids)
	return ids
}
