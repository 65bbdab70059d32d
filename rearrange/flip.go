package rearrange

import "strings"

// FlipName toggles the trailing +/- strand tag of a query name. Names with
// no tag carry an implicit "+", so the first flip appends "-".
func FlipName(name string) string {
	switch {
	case strings.HasSuffix(name, "+"):
		return name[:len(name)-1] + "-"
	case strings.HasSuffix(name, "-"):
		return name[:len(name)-1] + "+"
	default:
		return name + "-"
	}
}

// chunks splits a line into alternating token and whitespace-run slices whose
// concatenation is the original line. The first chunk is a token unless the
// line starts with whitespace.
func chunks(line string) []string {
	var out []string
	i := 0
	for i < len(line) {
		j := i
		if line[i] == ' ' || line[i] == '\t' {
			for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
				j++
			}
		} else {
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
		}
		out = append(out, line[i:j])
		i = j
	}
	return out
}

// tokenIndexes returns the chunk indexes that hold tokens, in order.
func tokenIndexes(ch []string) []int {
	var idx []int
	for i, c := range ch {
		if c != "" && c[0] != ' ' && c[0] != '\t' {
			idx = append(idx, i)
		}
	}
	return idx
}

// setToken replaces token t of the chunked line and, when the replacement is
// longer, steals the growth from the following whitespace run so later
// columns keep their position. It reports whether the growth could not be
// absorbed locally.
func setToken(ch []string, toks []int, t int, repl string) bool {
	i := toks[t]
	d := len(repl) - len(ch[i])
	ch[i] = repl
	if d <= 0 {
		return false
	}
	if i+1 < len(ch) && len(ch[i+1]) > d {
		ch[i+1] = ch[i+1][d:]
		return false
	}
	return true
}

// widenAfterToken grows the whitespace run after token t by d spaces.
func widenAfterToken(ch []string, toks []int, t, d int) {
	i := toks[t]
	if i+1 < len(ch) {
		ch[i+1] = strings.Repeat(" ", d) + ch[i+1]
	}
}

func toggleStrand(s string) string {
	if s == "+" {
		return "-"
	}
	return "+"
}

// FlipAlignmentText maps an alignment record onto the opposite query strand:
// the query row's strand letter is negated and the query renamed with a
// toggled strand tag. Other rows are padded as needed to keep the columns
// aligned. Applying the flip twice restores the record byte for byte, modulo
// the +/- tag of an initially untagged name.
func FlipAlignmentText(t AlignmentText) AlignmentText {
	switch t.Format {
	case FormatPairwise:
		return AlignmentText{Format: t.Format, Lines: flipPairwiseBlock(t.Lines)}
	case FormatTabular:
		return AlignmentText{Format: t.Format, Lines: []string{flipTabularRow(t.Lines[0])}}
	default:
		// Shrunk rows are regenerated from sub-alignments, never text-flipped.
		return t
	}
}

func flipPairwiseBlock(lines []string) []string {
	// The query row is the second "s" line of the block.
	qryLine := -1
	nS := 0
	for i, l := range lines {
		if strings.HasPrefix(l, "s ") || strings.HasPrefix(l, "s\t") {
			nS++
			if nS == 2 {
				qryLine = i
				break
			}
		}
	}
	if qryLine < 0 {
		return lines
	}
	qch := chunks(lines[qryLine])
	qtoks := tokenIndexes(qch)
	if len(qtoks) < 7 {
		return lines
	}
	oldName := qch[qtoks[1]]
	newName := FlipName(oldName)
	qch[qtoks[4]] = toggleStrand(qch[qtoks[4]])
	widen := setToken(qch, qtoks, 1, newName)
	d := len(newName) - len(oldName)

	out := make([]string, len(lines))
	for i, l := range lines {
		if i == qryLine {
			out[i] = strings.Join(qch, "")
			continue
		}
		c := l[0]
		if c != 's' && c != 'q' && c != 'p' {
			out[i] = l
			continue
		}
		ch := chunks(l)
		toks := tokenIndexes(ch)
		if len(toks) < 2 {
			out[i] = l
			continue
		}
		if c == 'q' && ch[toks[1]] == oldName {
			// Quality rows name the query too.
			setToken(ch, toks, 1, newName)
		} else if widen && d > 0 {
			widenAfterToken(ch, toks, 1, d)
		}
		out[i] = strings.Join(ch, "")
	}
	return out
}

func flipTabularRow(line string) string {
	ch := chunks(line)
	toks := tokenIndexes(ch)
	if len(toks) < 12 {
		return line
	}
	ch[toks[9]] = toggleStrand(ch[toks[9]])
	setToken(ch, toks, 6, FlipName(ch[toks[6]]))
	return strings.Join(ch, "")
}
