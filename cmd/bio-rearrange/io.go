package main

// This file defines groupRioWriter and groupRioReader. The writer dumps the
// retained groups into a recordio file so downstream tooling can reload them
// without reparsing alignment text; the reader reads them back.

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/grailbio/sv/rearrange"
)

const (
	// <fileVersionHeader, fileVersion> is stored in a recordio header.
	fileVersionHeader = "rearrangeversion"
	fileVersion       = "REARRANGE_V1"
)

// groupFileTrailer is stored in the trailer section of the recordio file.
type groupFileTrailer struct {
	// Opts is the list of options used to produce the groups.
	Opts rearrange.Opts
	// NumGroups is the number of records in the file.
	NumGroups int
}

// rioQuery is one query of a dumped group.
type rioQuery struct {
	Name    string
	FileNum int
	Flipped bool
	Ranges  []string
}

// rioGroup is the record type: one retained clump.
type rioGroup struct {
	Name    string
	Queries []rioQuery
}

func encodeGOB(gw *gob.Encoder, v interface{}) {
	if err := gw.Encode(v); err != nil {
		panic(err)
	}
}

func decodeGOB(gr *gob.Decoder, v interface{}) {
	if err := gr.Decode(v); err != nil {
		panic(err)
	}
}

type groupRioWriter struct {
	out  file.File
	w    recordio.Writer
	opts rearrange.Opts
	n    int
}

func newGroupRioWriter(ctx context.Context, outPath string, opts rearrange.Opts) *groupRioWriter {
	recordiozstd.Init()
	out, err := file.Create(ctx, outPath)
	if err != nil {
		log.Panicf("rio open %v: %v", outPath, err)
	}
	w := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(fileVersionHeader, fileVersion)
	w.AddHeader(recordio.KeyTrailer, true)
	return &groupRioWriter{out: out, w: w, opts: opts}
}

// Write adds one group. Any error will crash the process.
func (w *groupRioWriter) Write(c *rearrange.Clump, queries []*rearrange.Query) {
	rec := rioGroup{Name: c.Name}
	for _, e := range c.Entries {
		q := queries[e.QueryIdx]
		name := q.Name
		if e.Flipped {
			name = rearrange.FlipName(name)
		}
		rec.Queries = append(rec.Queries, rioQuery{
			Name:    name,
			FileNum: q.FileNum,
			Flipped: e.Flipped,
			Ranges:  rearrange.QueryRefRanges(q, e.Flipped, w.opts),
		})
	}
	b := bytes.NewBuffer(nil)
	encodeGOB(gob.NewEncoder(b), rec)
	w.w.Append(b.Bytes())
	w.n++
}

// Close closes the writer. It must be called exactly once, after writing all
// the groups.
func (w *groupRioWriter) Close(ctx context.Context) {
	b := bytes.NewBuffer(nil)
	encodeGOB(gob.NewEncoder(b), groupFileTrailer{Opts: w.opts, NumGroups: w.n})
	w.w.SetTrailer(b.Bytes())
	if err := w.w.Finish(); err != nil {
		log.Panic("close", err)
	}
	if err := w.out.Close(ctx); err != nil {
		log.Panic("close", err)
	}
}

// groupRioReader reads a file produced by groupRioWriter.
type groupRioReader struct {
	in      file.File
	r       recordio.Scanner
	trailer groupFileTrailer

	g rioGroup // last group read by Scan
}

func newGroupRioReader(ctx context.Context, inPath string) *groupRioReader {
	in, err := file.Open(ctx, inPath)
	if err != nil {
		log.Panicf("open %s: %v", inPath, err)
	}
	recordiozstd.Init()
	r := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	versionFound := false
	for _, kv := range r.Header() {
		if kv.Key == fileVersionHeader {
			if kv.Value.(string) != fileVersion {
				log.Panicf("group file version mismatch, got %v, expect %v",
					kv.Value.(string), fileVersion)
			}
			versionFound = true
			break
		}
	}
	if !versionFound {
		log.Panic(fileVersionHeader + " not found")
	}
	trailer := groupFileTrailer{}
	decodeGOB(gob.NewDecoder(bytes.NewReader(r.Trailer())), &trailer)
	return &groupRioReader{in: in, r: r, trailer: trailer}
}

// Opts returns the options written in the recordio file.
func (r *groupRioReader) Opts() rearrange.Opts { return r.trailer.Opts }

// Scan reads the next group.
func (r *groupRioReader) Scan() bool {
	if !r.r.Scan() {
		return false
	}
	r.g = rioGroup{}
	decodeGOB(gob.NewDecoder(bytes.NewReader(r.r.Get().([]byte))), &r.g)
	return true
}

// Get yields the current group.
//
// REQUIRES: Last Scan call returned true.
func (r *groupRioReader) Get() rioGroup { return r.g }

// Close closes the reader. It must be called exactly once.
func (r *groupRioReader) Close(ctx context.Context) {
	if err := r.r.Err(); err != nil {
		log.Panic(err)
	}
	if err := r.in.Close(ctx); err != nil {
		log.Panic(err)
	}
}
