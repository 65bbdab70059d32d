package rearrange

// Classify assigns a rearrangement type letter to q, or 0 when no enabled
// type triggers. Types are tested in the fixed priority order C > S > N > G
// over the query-forward, query-sorted sub-alignments:
//
//	C  two sub-alignments on different known chromosomes
//	S  two sub-alignments on the same reference on opposite query strands
//	N  a later-in-query sub-alignment starting at least minRev bases before
//	   the end of an earlier one on the same reference and strand
//	G  two adjacent-in-query sub-alignments on the same reference and strand
//	   separated by a reference gap of at least minGap
func Classify(q *Query, opts Opts) byte {
	for _, t := range []byte(opts.EnabledTypes()) {
		var hit bool
		switch t {
		case 'C':
			hit = hasInterChrom(q.Alns)
		case 'S':
			hit = hasInterStrand(q.Alns)
		case 'N':
			hit = hasNonColinear(q.Alns, opts.MinRev)
		case 'G':
			hit = hasBigGap(q.Alns, opts.MinGap)
		}
		if hit {
			return t
		}
	}
	return 0
}

func hasInterChrom(alns []SubAlignment) bool {
	for i := range alns {
		if !isKnownChrom(alns[i].RefName) {
			continue
		}
		for j := i + 1; j < len(alns); j++ {
			if !isKnownChrom(alns[j].RefName) {
				continue
			}
			if canonicalChrom(alns[i].RefName) != canonicalChrom(alns[j].RefName) {
				return true
			}
		}
	}
	return false
}

func hasInterStrand(alns []SubAlignment) bool {
	for i := range alns {
		for j := i + 1; j < len(alns); j++ {
			if alns[i].RefName == alns[j].RefName &&
				alns[i].RefForward() != alns[j].RefForward() {
				return true
			}
		}
	}
	return false
}

func hasNonColinear(alns []SubAlignment, minRev int) bool {
	for i := range alns {
		if circularChroms[alns[i].RefName] {
			continue
		}
		for j := i + 1; j < len(alns); j++ {
			if !sameRefStrand(alns[i], alns[j]) {
				continue
			}
			if alns[j].RefBeg-alns[i].RefEnd <= -minRev {
				return true
			}
		}
	}
	return false
}

func hasBigGap(alns []SubAlignment, minGap int) bool {
	for i := 0; i+1 < len(alns); i++ {
		if !sameRefStrand(alns[i], alns[i+1]) {
			continue
		}
		if alns[i+1].RefBeg-alns[i].RefEnd >= minGap {
			return true
		}
	}
	return false
}

func sameRefStrand(a, b SubAlignment) bool {
	return a.RefName == b.RefName && a.RefForward() == b.RefForward()
}
