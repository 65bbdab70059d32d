package rearrange

import (
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// alnSpan is the coordinate tuple of one gap-free piece, before it is wrapped
// into a SubAlignment. Coordinates follow the signed convention of
// SubAlignment, except the query side may still be negative here (the reader
// normalizes to query-forward afterwards).
type alnSpan struct {
	qryBeg, qryEnd int
	refBeg, refEnd int
	ref            string
}

// splitPairwise splits a gapped pairwise alignment at every reference indel of
// minGap or more bases. The triggering gap is a run of '-' in the query row;
// the cut region is then extended greedily through adjacent gaps on either
// side in both rows.
func splitPairwise(refBeg, qryBeg int, refSeq, qrySeq string, minGap int) []alnSpan {
	n := len(refSeq)
	// Locate the cut regions.
	type cut struct{ beg, end int }
	var cuts []cut
	for i := 0; i < n; {
		if qrySeq[i] != '-' {
			i++
			continue
		}
		j := i
		for j < n && qrySeq[j] == '-' {
			j++
		}
		if j-i >= minGap {
			s, e := i, j
			for s > 0 && (refSeq[s-1] == '-' || qrySeq[s-1] == '-') {
				s--
			}
			for e < n && (refSeq[e] == '-' || qrySeq[e] == '-') {
				e++
			}
			if len(cuts) > 0 && s <= cuts[len(cuts)-1].end {
				cuts[len(cuts)-1].end = e
			} else {
				cuts = append(cuts, cut{s, e})
			}
		}
		i = j
	}

	var (
		pieces         []alnSpan
		refPos, qryPos = refBeg, qryBeg
		segRef, segQry = refBeg, qryBeg
		ci             = 0
	)
	flush := func() {
		if qryPos > segQry && refPos > segRef {
			pieces = append(pieces, alnSpan{qryBeg: segQry, qryEnd: qryPos, refBeg: segRef, refEnd: refPos})
		}
	}
	for i := 0; i < n; i++ {
		if ci < len(cuts) && i == cuts[ci].beg {
			flush()
		}
		if refSeq[i] != '-' {
			refPos++
		}
		if qrySeq[i] != '-' {
			qryPos++
		}
		if ci < len(cuts) && i == cuts[ci].end-1 {
			segRef, segQry = refPos, qryPos
			ci++
		}
	}
	flush()
	return pieces
}

// splitTabular splits a tabular alignment row at every gap element whose
// reference side is minGap or more bases. The gap descriptor is a
// comma-separated list of aligned block sizes and ref:qry gap pairs.
func splitTabular(refBeg, qryBeg int, blocks string, minGap int) ([]alnSpan, error) {
	var (
		pieces         []alnSpan
		refPos, qryPos = refBeg, qryBeg
		segRef, segQry = refBeg, qryBeg
	)
	flush := func() {
		if qryPos > segQry && refPos > segRef {
			pieces = append(pieces, alnSpan{qryBeg: segQry, qryEnd: qryPos, refBeg: segRef, refEnd: refPos})
		}
	}
	for _, el := range strings.Split(blocks, ",") {
		if el == "" {
			continue
		}
		if i := strings.IndexByte(el, ':'); i >= 0 {
			refGap, err := strconv.Atoi(el[:i])
			if err != nil {
				return nil, errors.E("bad gap element " + strconv.Quote(el))
			}
			qryGap, err := strconv.Atoi(el[i+1:])
			if err != nil {
				return nil, errors.E("bad gap element " + strconv.Quote(el))
			}
			if refGap >= minGap {
				flush()
				refPos += refGap
				qryPos += qryGap
				segRef, segQry = refPos, qryPos
			} else {
				refPos += refGap
				qryPos += qryGap
			}
			continue
		}
		size, err := strconv.Atoi(el)
		if err != nil {
			return nil, errors.E("bad block size " + strconv.Quote(el))
		}
		refPos += size
		qryPos += size
	}
	flush()
	return pieces, nil
}
