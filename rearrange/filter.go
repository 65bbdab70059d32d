package rearrange

import (
	"runtime"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// subtractControls drops every case query that shares a rearrangement with
// any control query. With filter=1 the search is restricted to the case
// query's own type letter; otherwise any enabled type counts.
//
// Each case query is independent of the others, so the searches run in
// parallel; the result is identical to a serial scan.
func subtractControls(cases []*Query, controls []*Query, opts Opts) ([]*Query, int) {
	if len(controls) == 0 {
		return cases, 0
	}
	ctrlReg := newRegistry(controls)
	index := newControlIndex(ctrlReg)
	enabled := opts.EnabledTypes()

	dropped := make([]bool, len(cases))
	parallelism := runtime.NumCPU()
	_ = traverse.Each(parallelism, func(job int) error {
		for qi := job; qi < len(cases); qi += parallelism {
			q := cases[qi]
			// Candidate control sub-alignments, grouped by control query.
			cands := map[int][][]int{}
			for i := range q.Alns {
				for _, id := range index.overlapping(&q.Alns[i]) {
					ref := ctrlReg.refs[id]
					c, ok := cands[ref.queryIdx]
					if !ok {
						c = make([][]int, len(q.Alns))
						cands[ref.queryIdx] = c
					}
					c[i] = append(c[i], ref.alnIdx)
				}
			}
			allowed := enabled
			if opts.Filter == 1 {
				allowed = string(q.Type)
			}
			ctrlIdxs := make([]int, 0, len(cands))
			for ci := range cands {
				ctrlIdxs = append(ctrlIdxs, ci)
			}
			sort.Ints(ctrlIdxs)
			for _, ci := range ctrlIdxs {
				if searchShared(q, controls[ci], cands[ci], allowed, opts) != 0 {
					dropped[qi] = true
					break
				}
			}
		}
		return nil
	})

	kept := cases[:0]
	nDropped := 0
	for qi, q := range cases {
		if dropped[qi] {
			nDropped++
			continue
		}
		kept = append(kept, q)
	}
	return kept, nDropped
}

// nonLinearJunction reports whether the adjacent sub-alignment pair (x, y)
// is a rearrangement junction under the enabled types.
func nonLinearJunction(x, y SubAlignment, enabled string, opts Opts) bool {
	if x.RefName != y.RefName {
		return typeEnabled(enabled, 'C') &&
			isKnownChrom(x.RefName) && isKnownChrom(y.RefName) &&
			canonicalChrom(x.RefName) != canonicalChrom(y.RefName)
	}
	if x.RefForward() != y.RefForward() {
		return typeEnabled(enabled, 'S')
	}
	gap := y.RefBeg - x.RefEnd
	if gap <= -opts.MinRev {
		return typeEnabled(enabled, 'N') && !circularChroms[x.RefName]
	}
	return typeEnabled(enabled, 'G') && gap >= opts.MinGap
}

// coverageFilter iteratively removes queries that have a non-linear junction
// supported by fewer than minCov distinct other queries. Support is counted
// by a restricted oracle that only pairs each sub-alignment with its
// previous-in-query neighbor (previous vs next when the strands oppose).
func coverageFilter(queries []*Query, opts Opts) ([]*Query, int) {
	minCov := opts.EffectiveMinCov()
	if minCov <= 0 {
		return queries, 0
	}
	enabled := opts.EnabledTypes()
	nDropped := 0
	for round := 1; ; round++ {
		// support[qi][j] is the set of query indices supporting the junction
		// between alns j and j+1 of queries[qi].
		support := make([]map[int]map[int]bool, len(queries))
		for qi := range queries {
			support[qi] = map[int]map[int]bool{}
		}
		addSupport := func(qi, junction, peer int) {
			s, ok := support[qi][junction]
			if !ok {
				s = map[int]bool{}
				support[qi][junction] = s
			}
			s[peer] = true
		}

		type sweepItem struct{ qi, ai int }
		var items []sweepItem
		for qi, q := range queries {
			for ai := range q.Alns {
				items = append(items, sweepItem{qi, ai})
			}
		}
		sort.Slice(items, func(i, j int) bool {
			a := queries[items[i].qi].Alns[items[i].ai]
			b := queries[items[j].qi].Alns[items[j].ai]
			if a.RefName != b.RefName {
				return a.RefName < b.RefName
			}
			return a.AbsRefBeg() < b.AbsRefBeg()
		})

		var active []sweepItem
		for _, it := range items {
			a := queries[it.qi].Alns[it.ai]
			kept := active[:0]
			for _, o := range active {
				oa := queries[o.qi].Alns[o.ai]
				if oa.RefName != a.RefName || oa.AbsRefEnd() <= a.AbsRefBeg() {
					continue
				}
				kept = append(kept, o)
				if o.qi != it.qi {
					addJumpIfShared(queries, o, it, addSupport, enabled, opts)
				}
			}
			active = append(kept, it)
		}

		removed := 0
		kept := queries[:0]
		for qi, q := range queries {
			ok := true
			for j := 0; j+1 < len(q.Alns); j++ {
				if !nonLinearJunction(q.Alns[j], q.Alns[j+1], enabled, opts) {
					continue
				}
				if len(support[qi][j]) < minCov {
					ok = false
					break
				}
			}
			if ok {
				kept = append(kept, q)
			} else {
				removed++
			}
		}
		if opts.Verbose {
			log.Printf("coverage round %d: removed %d of %d queries", round, removed, len(queries))
		}
		queries = kept
		nDropped += removed
		if removed == 0 {
			return queries, nDropped
		}
	}
}

// addJumpIfShared applies the restricted oracle to one overlapping
// cross-query sub-alignment pair. On a hit, each query's junction records the
// other query as a supporter.
func addJumpIfShared(queries []*Query, o, n struct{ qi, ai int }, addSupport func(qi, junction, peer int), enabled string, opts Opts) {
	A, B := queries[o.qi], queries[n.qi]
	ai, bi := o.ai, n.ai
	if ai == 0 {
		return
	}
	ap := alnPair{x: A.Alns[ai-1], y: A.Alns[ai], adjacent: true}
	if A.Alns[ai].RefForward() == B.Alns[bi].RefForward() {
		if bi == 0 {
			return
		}
		bp := alnPair{x: B.Alns[bi-1], y: B.Alns[bi], adjacent: true}
		if isShared(ap, bp, enabled, opts) {
			addSupport(o.qi, ai-1, n.qi)
			addSupport(n.qi, bi-1, o.qi)
		}
		return
	}
	if bi+1 >= len(B.Alns) {
		return
	}
	bp := alnPair{x: B.Alns[bi+1].Reversed(), y: B.Alns[bi].Reversed(), adjacent: true}
	if isShared(ap, bp, enabled, opts) {
		addSupport(o.qi, ai-1, n.qi)
		addSupport(n.qi, bi, o.qi)
	}
}
