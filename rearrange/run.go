package rearrange

import (
	"io"

	"github.com/grailbio/base/log"
)

// RunClumps executes the detection pipeline up to emission: classification,
// control subtraction, coverage filtering, linking, clumping, ordering and
// naming. cases holds the parsed queries of each case file in file order;
// controls holds all control queries. It returns the retained clumps and the
// surviving queries the clump entries index into.
func RunClumps(cases [][]*Query, controls []*Query, opts Opts) ([]*Clump, []*Query, Stats) {
	stats := Stats{ControlQueries: len(controls)}

	// Flatten the case files, keeping file order, and classify.
	var queries []*Query
	for _, fileQueries := range cases {
		for _, q := range fileQueries {
			stats.CaseQueries++
			q.Type = Classify(q, opts)
			if q.Type == 0 {
				stats.DroppedUntyped++
				continue
			}
			queries = append(queries, q)
		}
	}
	if opts.Verbose {
		log.Printf("Stats: %d of %d case queries rearranged", len(queries), stats.CaseQueries)
	}

	queries, stats.DroppedControlShared = subtractControls(queries, controls, opts)
	if opts.Verbose {
		log.Printf("Stats: %d queries after control subtraction", len(queries))
	}

	queries, stats.DroppedLowCoverage = coverageFilter(queries, opts)
	if opts.Verbose {
		log.Printf("Stats: %d queries after coverage filter", len(queries))
	}

	reg := newRegistry(queries)
	reg.fillNeighbors()
	links := buildLinks(reg, opts)
	stats.Links = len(links)

	clumps := extractClumps(queries, links, opts)
	nExtracted := len(clumps)
	clumps = mergeClumps(clumps, reg)
	reg.clearNeighbors()
	clumps = retainCoveringClumps(clumps, queries, len(cases))
	stats.Clumps = len(clumps)
	if n := nExtracted - len(clumps); n > 0 {
		stats.ClumpsDropped = n
	}
	orderAndNameClumps(clumps, queries)
	if opts.Verbose {
		log.Printf("Stats: %d links, %d clumps", len(links), len(clumps))
	}
	return clumps, queries, stats
}

// Run is RunClumps followed by emission of the retained clumps to w.
func Run(w io.Writer, cases [][]*Query, controls []*Query, opts Opts) (Stats, error) {
	clumps, queries, stats := RunClumps(cases, controls, opts)
	if err := WriteGroups(w, clumps, queries, opts); err != nil {
		return stats, err
	}
	return stats, nil
}
