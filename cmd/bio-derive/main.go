package main

// bio-derive reconstructs candidate derived chromosomes from the grouped
// rearrangements written by bio-rearrange.
//
// Usage:
//
//	bio-derive [flags] rearrangementsFile
//
// "-" reads stdin; files ending in .gz are decompressed transparently. The
// derived parts are written to stdout as "# PART" sections of tab-separated
// segment rows.

import (
	"flag"
	"io"
	"os"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sv/derive"
)

func main() {
	opts := derive.DefaultOpts
	flag.BoolVar(&opts.All, "all", false, "Enumerate every maximum endpoint matching, not just the greedy one.")
	flag.StringVar(&opts.Groups, "groups", "", "Comma-separated group names or numbers to keep. Empty keeps all.")
	flag.IntVar(&opts.MaxLen, "max-len", derive.DefaultOpts.MaxLen, "Split derived segments longer than this many bases.")
	flag.BoolVar(&opts.Verbose, "v", false, "Verbose progress logging.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flag.NArg() != 1 {
		log.Fatalf("exactly one argument (<rearrangementsFile>) is required")
	}
	path := flag.Arg(0)

	var (
		in      io.Reader
		closeIn = func() error { return nil }
	)
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := file.Open(ctx, path)
		if err != nil {
			log.Fatalf("open %s: %v", path, err)
		}
		in = f.Reader(ctx)
		if u := compress.NewReaderPath(in, f.Name()); u != nil {
			in = u
		}
		closeIn = func() error { return f.Close(ctx) }
	}

	rs, err := derive.ParseRearrangements(in)
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	if err := closeIn(); err != nil {
		log.Fatalf("close %s: %v", path, err)
	}
	if opts.Verbose {
		log.Printf("Stats: %d rearrangement groups", len(rs))
	}
	if err := derive.Run(os.Stdout, rs, opts); err != nil {
		log.Fatalf("write: %v", err)
	}
}
