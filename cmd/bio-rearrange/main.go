package main

// bio-rearrange detects structural rearrangements in long-read alignments,
// subtracts rearrangements shared with control reads, and groups the case
// reads that share the same rearrangement.
//
// Usage:
//
//	bio-rearrange [flags] caseFile... [: controlFile...]
//
// A literal ":" argument separates case files from control files. "-" reads
// stdin; files ending in .gz are decompressed transparently. The groups are
// written to stdout, prefixed by an echo of the command.

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sv/rearrange"
	"golang.org/x/sync/errgroup"
)

type rearrangeFlags struct {
	rioOutputPath string
}

// openInput opens path for reading, decompressing .gz transparently. The
// returned closer is a no-op for stdin.
func openInput(ctx context.Context, path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	return r, func() error { return in.Close(ctx) }, nil
}

// parseFiles reads every path concurrently, keeping file order. fileNumBase
// is the 1-based index of the first path. The per-file reader counters come
// back merged into one Stats.
func parseFiles(ctx context.Context, paths []string, fileNumBase int, opts rearrange.Opts) ([][]*rearrange.Query, rearrange.Stats, error) {
	queries := make([][]*rearrange.Query, len(paths))
	fileStats := make([]rearrange.Stats, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i := range paths {
		i := i
		g.Go(func() error {
			in, closeIn, err := openInput(gctx, paths[i])
			if err != nil {
				return err
			}
			r := rearrange.NewReader(in, fileNumBase+i, opts)
			qs, err := r.ReadQueries()
			if err != nil {
				_ = closeIn()
				return fmt.Errorf("%s: %v", paths[i], err)
			}
			queries[i] = qs
			fileStats[i] = rearrange.Stats{DroppedMismap: r.DroppedMismap}
			return closeIn()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, rearrange.Stats{}, err
	}
	stats := rearrange.Stats{}
	for _, s := range fileStats {
		stats = stats.Merge(s)
	}
	return queries, stats, nil
}

func main() {
	opts := rearrange.DefaultOpts
	flags := rearrangeFlags{}
	flag.IntVar(&opts.MinSeqs, "min-seqs", rearrange.DefaultOpts.MinSeqs, "Minimum number of reads per group.")
	flag.IntVar(&opts.MinCov, "min-cov", rearrange.DefaultOpts.MinCov,
		"Minimum number of other reads supporting each rearranged junction. Negative means 1 when -min-seqs > 1, else 0.")
	flag.StringVar(&opts.Types, "types", rearrange.DefaultOpts.Types,
		"Enabled rearrangement types, a subset of CSNG.")
	flag.IntVar(&opts.MinGap, "min-gap", rearrange.DefaultOpts.MinGap, "Minimum reference gap, in bases, of a big-gap rearrangement.")
	flag.IntVar(&opts.MinRev, "min-rev", rearrange.DefaultOpts.MinRev, "Minimum backward reference jump, in bases, of a non-colinear rearrangement.")
	flag.IntVar(&opts.Filter, "filter", rearrange.DefaultOpts.Filter,
		"1 restricts control subtraction to the case read's own rearrangement type, 0 allows any enabled type.")
	flag.IntVar(&opts.MaxDiff, "max-diff", rearrange.DefaultOpts.MaxDiff, "Max breakpoint disagreement, in bases, between reads sharing a rearrangement.")
	flag.Float64Var(&opts.MaxMismap, "max-mismap", rearrange.DefaultOpts.MaxMismap, "Drop alignments with mismap probability above this value.")
	flag.BoolVar(&opts.Shrink, "shrink", false, "Emit the compact deltaic row format.")
	flag.BoolVar(&opts.Verbose, "v", false, "Verbose progress logging.")
	flag.StringVar(&flags.rioOutputPath, "rio-output", "", "If set, also dump the groups to this recordio file.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	args := flag.Args()
	var casePaths, controlPaths []string
	if sep := indexOf(args, ":"); sep >= 0 {
		casePaths, controlPaths = args[:sep], args[sep+1:]
	} else {
		casePaths = args
	}
	if len(casePaths) == 0 {
		log.Fatalf("no case files; usage: %s [flags] caseFile... [: controlFile...]", os.Args[0])
	}

	cases, caseStats, err := parseFiles(ctx, casePaths, 1, opts)
	if err != nil {
		log.Fatalf("read cases: %v", err)
	}
	controlsByFile, controlStats, err := parseFiles(ctx, controlPaths, len(casePaths)+1, opts)
	if err != nil {
		log.Fatalf("read controls: %v", err)
	}
	var controls []*rearrange.Query
	for _, qs := range controlsByFile {
		controls = append(controls, qs...)
	}

	clumps, queries, stats := rearrange.RunClumps(cases, controls, opts)
	stats = stats.Merge(caseStats).Merge(controlStats)

	out := bufio.NewWriter(os.Stdout)
	fmt.Fprintf(out, "# %s\n", strings.Join(os.Args, " "))
	if err := rearrange.WriteGroups(out, clumps, queries, opts); err != nil {
		log.Fatalf("write groups: %v", err)
	}
	if err := out.Flush(); err != nil {
		log.Fatalf("write groups: %v", err)
	}

	if flags.rioOutputPath != "" {
		w := newGroupRioWriter(ctx, flags.rioOutputPath, opts)
		for _, c := range clumps {
			w.Write(c, queries)
		}
		w.Close(ctx)
	}
	log.Printf("Stats: %+v", stats)
}

func indexOf(args []string, want string) int {
	for i, a := range args {
		if a == want {
			return i
		}
	}
	return -1
}
