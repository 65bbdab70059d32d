package rearrange

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Reader parses a stream of query-to-reference alignments. Three formats are
// recognized, interleaved at record granularity:
//
//   - a pairwise block: an "a ..." line followed by two "s ..." rows
//     (reference then query) and optional "q"/"p" metadata rows;
//   - a tabular row: a digit-led line with >= 12 whitespace-separated fields;
//   - a shrunk row: a digit-led line with 4 or 5 fields encoding a delta from
//     the previous row of the same query.
//
// Consecutive records with the same (query name, query length) are grouped
// into one Query. Alignments whose mismap probability exceeds Opts.MaxMismap
// are dropped silently.
type Reader struct {
	sc      *bufio.Scanner
	fileNum int
	opts    Opts

	pending    string // one line of lookahead
	hasPending bool

	// Shrunk rows carry no query name; it comes from the most recent
	// "# PART name" line, and the coordinate delta state resets whenever a new
	// query starts.
	partName              string
	prevQryEnd, prevRefEnd int
	prevRefName            string

	forceNewQuery bool

	// DroppedMismap counts alignments discarded by the mismap threshold.
	DroppedMismap int
}

// NewReader returns a Reader over r. fileNum is the 1-based index of the
// source file, recorded on every Query.
func NewReader(r io.Reader, fileNum int, opts Opts) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	return &Reader{sc: sc, fileNum: fileNum, opts: opts}
}

func (r *Reader) nextLine() (string, bool) {
	if r.hasPending {
		r.hasPending = false
		return r.pending, true
	}
	if r.sc.Scan() {
		return r.sc.Text(), true
	}
	return "", false
}

func (r *Reader) pushBack(line string) {
	r.pending = line
	r.hasPending = true
}

// record is one parsed alignment.
type record struct {
	name   string
	length int
	spans  []alnSpan
	text   AlignmentText
}

// ReadQueries consumes the whole stream and returns its queries in input
// order. Sub-alignments are normalized to query-forward coordinates and
// sorted by query position. IDs are not assigned here; the pipeline numbers
// sub-alignments after all files are read.
func (r *Reader) ReadQueries() ([]*Query, error) {
	var (
		queries []*Query
		cur     *Query
	)
	flush := func() {
		if cur != nil && len(cur.Alns) > 0 {
			sortByQueryBeg(cur.Alns)
			queries = append(queries, cur)
		}
		cur = nil
	}
	add := func(rec *record) {
		if cur != nil && (cur.Name != rec.name || cur.Len != rec.length || r.forceNewQuery) {
			flush()
		}
		r.forceNewQuery = false
		if cur == nil {
			cur = &Query{FileNum: r.fileNum, Name: rec.name, Len: rec.length}
		}
		for _, s := range rec.spans {
			a := SubAlignment{
				QueryBeg: s.qryBeg, QueryEnd: s.qryEnd,
				RefName: s.ref, RefBeg: s.refBeg, RefEnd: s.refEnd,
			}
			if a.QueryBeg < 0 {
				a = a.Reversed()
			}
			cur.Alns = append(cur.Alns, a)
		}
		cur.Texts = append(cur.Texts, rec.text)
	}

	for {
		line, ok := r.nextLine()
		if !ok {
			break
		}
		switch {
		case line == "" || strings.TrimSpace(line) == "":
			r.forceNewQuery = true
			r.prevQryEnd, r.prevRefEnd, r.prevRefName = 0, 0, ""
		case strings.HasPrefix(line, "#"):
			f := strings.Fields(line)
			if len(f) == 3 && f[1] == "PART" {
				r.partName = f[2]
				r.forceNewQuery = true
				r.prevQryEnd, r.prevRefEnd, r.prevRefName = 0, 0, ""
			}
		case strings.HasPrefix(line, "a"):
			rec, keep, err := r.parsePairwise(line)
			if err != nil {
				return nil, err
			}
			if !keep {
				r.DroppedMismap++
				continue
			}
			add(rec)
		case line[0] >= '0' && line[0] <= '9':
			f := strings.Fields(line)
			switch {
			case len(f) == 4 || len(f) == 5:
				rec, err := r.parseShrunk(line, f)
				if err != nil {
					return nil, err
				}
				add(rec)
			case len(f) >= 12:
				rec, keep, err := r.parseTabular(line, f)
				if err != nil {
					return nil, err
				}
				if !keep {
					r.DroppedMismap++
					continue
				}
				add(rec)
			default:
				return nil, errors.E("unrecognized alignment row " + strconv.Quote(line))
			}
		default:
			r.forceNewQuery = true
		}
	}
	flush()
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return queries, nil
}

// parseInt aborts with a diagnostic naming the offending token.
func parseInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.E("non-numeric field " + strconv.Quote(tok))
	}
	return v, nil
}

func parseMismap(tok string) (float64, bool, error) {
	if !strings.HasPrefix(tok, "mismap=") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(tok[len("mismap="):], 64)
	if err != nil {
		return 0, false, errors.E("bad mismap value " + strconv.Quote(tok))
	}
	return v, true, nil
}

// signedBeg maps a strand-local start to the signed coordinate convention:
// forward-strand starts are unchanged, reverse-strand starts become negative
// by subtracting the sequence length.
func signedBeg(beg, seqLen int, strand string) int {
	if strand == "-" {
		return beg - seqLen
	}
	return beg
}

// sRow is one parsed "s" line of a pairwise block.
type sRow struct {
	name   string
	beg    int // signed
	span   int
	seqLen int
	seq    string
}

func parseSRow(line string) (sRow, error) {
	f := strings.Fields(line)
	if len(f) != 7 {
		return sRow{}, errors.E("malformed s row " + strconv.Quote(line))
	}
	beg, err := parseInt(f[2])
	if err != nil {
		return sRow{}, err
	}
	span, err := parseInt(f[3])
	if err != nil {
		return sRow{}, err
	}
	if f[4] != "+" && f[4] != "-" {
		return sRow{}, errors.E("bad strand " + strconv.Quote(f[4]))
	}
	seqLen, err := parseInt(f[5])
	if err != nil {
		return sRow{}, err
	}
	return sRow{
		name:   f[1],
		beg:    signedBeg(beg, seqLen, f[4]),
		span:   span,
		seqLen: seqLen,
		seq:    f[6],
	}, nil
}

func (r *Reader) parsePairwise(aLine string) (*record, bool, error) {
	mismap := 0.0
	for _, tok := range strings.Fields(aLine)[1:] {
		v, ok, err := parseMismap(tok)
		if err != nil {
			return nil, false, err
		}
		if ok {
			mismap = v
		}
	}
	lines := []string{aLine}
	var srows []sRow
	for {
		line, ok := r.nextLine()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		c := line[0]
		if c != 's' && c != 'q' && c != 'p' {
			r.pushBack(line)
			break
		}
		lines = append(lines, line)
		if c == 's' {
			row, err := parseSRow(line)
			if err != nil {
				return nil, false, err
			}
			srows = append(srows, row)
		}
	}
	if len(srows) != 2 {
		return nil, false, errors.E("pairwise block needs 2 s rows, got " + strconv.Itoa(len(srows)))
	}
	if mismap > r.opts.MaxMismap {
		return nil, false, nil
	}
	ref, qry := srows[0], srows[1]
	if len(ref.seq) != len(qry.seq) {
		return nil, false, errors.E("pairwise rows differ in length in block for " + qry.name)
	}
	spans := splitPairwise(ref.beg, qry.beg, ref.seq, qry.seq, r.opts.MinGap)
	for i := range spans {
		spans[i].ref = ref.name
	}
	return &record{
		name:   qry.name,
		length: qry.seqLen,
		spans:  spans,
		text:   AlignmentText{Format: FormatPairwise, Lines: lines},
	}, true, nil
}

func (r *Reader) parseTabular(line string, f []string) (*record, bool, error) {
	var nums [4]int
	for i, fi := range []int{2, 3, 7, 8} {
		v, err := parseInt(f[fi])
		if err != nil {
			return nil, false, err
		}
		nums[i] = v
	}
	refSeqLen, err := parseInt(f[5])
	if err != nil {
		return nil, false, err
	}
	qrySeqLen, err := parseInt(f[10])
	if err != nil {
		return nil, false, err
	}
	mismap := 0.0
	for _, tok := range f[12:] {
		v, ok, err := parseMismap(tok)
		if err != nil {
			return nil, false, err
		}
		if ok {
			mismap = v
		}
	}
	if mismap > r.opts.MaxMismap {
		return nil, false, nil
	}
	refBeg := signedBeg(nums[0], refSeqLen, f[4])
	qryBeg := signedBeg(nums[2], qrySeqLen, f[9])
	spans, err := splitTabular(refBeg, qryBeg, f[11], r.opts.MinGap)
	if err != nil {
		return nil, false, err
	}
	for i := range spans {
		spans[i].ref = f[1]
	}
	return &record{
		name:   f[6],
		length: qrySeqLen,
		spans:  spans,
		text:   AlignmentText{Format: FormatTabular, Lines: []string{line}},
	}, true, nil
}

func (r *Reader) parseShrunk(line string, f []string) (*record, error) {
	var nums [4]int
	for i := 0; i < 4; i++ {
		v, err := parseInt(f[i])
		if err != nil {
			return nil, err
		}
		nums[i] = v
	}
	qryBeg := r.prevQryEnd + nums[0]
	qryEnd := qryBeg + nums[1]
	var refBeg int
	refName := r.prevRefName
	if len(f) == 5 {
		refName = f[4]
		refBeg = nums[2]
	} else {
		if refName == "" {
			return nil, errors.E("shrunk row with no inherited reference name " + strconv.Quote(line))
		}
		refBeg = r.prevRefEnd + nums[2]
	}
	refEnd := refBeg + nums[1] + nums[3]
	if qryEnd <= qryBeg || refEnd <= refBeg {
		return nil, errors.E("empty shrunk segment " + strconv.Quote(line))
	}
	r.prevQryEnd, r.prevRefEnd, r.prevRefName = qryEnd, refEnd, refName
	name := r.partName
	if name == "" {
		name = "query" + strconv.Itoa(r.fileNum)
	}
	return &record{
		name:   name,
		length: 0,
		spans:  []alnSpan{{qryBeg, qryEnd, refBeg, refEnd, refName}},
		text:   AlignmentText{Format: FormatShrunk, Lines: []string{line}},
	}, nil
}

func sortByQueryBeg(alns []SubAlignment) {
	sort.SliceStable(alns, func(i, j int) bool { return alns[i].QueryBeg < alns[j].QueryBeg })
}
