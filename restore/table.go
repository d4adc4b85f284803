package restore

import (
	"regexp"
	"strings"
)

// tableMerger joins table blocks that a page break split apart. A table
// chain may run across arbitrarily many pages: between the pieces sit
// only page-marker headings and blank text blocks, and every piece
// repeats the header row (and usually the separator row) at the top.
type tableMerger struct {
	pageMarker *regexp.Regexp
}

func newTableMerger() *tableMerger {
	return &tableMerger{
		pageMarker: regexp.MustCompile(`(?i)^#{1,6}\s+Page\s+\d+`),
	}
}

func (m *tableMerger) apply(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	i := 0
	for i < len(blocks) {
		b := blocks[i]
		if b.Kind != BlockTable {
			out = append(out, b)
			i++
			continue
		}

		acc := append([]string(nil), b.Lines...)
		j := i + 1
		for j < len(blocks) {
			next := blocks[j]
			if isEmptyTextBlock(next) || m.isPageMarker(next) {
				j++
				continue
			}
			if next.Kind == BlockTable && columnCount(acc[0]) == columnCount(next.Lines[0]) {
				acc = append(acc, skipHeaderAndSeparator(next.Lines)...)
				j++
				continue
			}
			break
		}
		out = append(out, Block{Kind: BlockTable, Lines: acc})
		i = j
	}
	return out
}

// isPageMarker reports whether b is a heading block whose text denotes
// a page boundary, e.g. "# Page 12".
func (m *tableMerger) isPageMarker(b Block) bool {
	if b.Kind != BlockHeading {
		return false
	}
	text := strings.TrimSpace(strings.Join(b.Lines, " "))
	return m.pageMarker.MatchString(text)
}

// columnCount is the number of delimiter characters in a table line.
// Two lines with equal counts have the same column structure.
func columnCount(line string) int {
	return strings.Count(line, "|")
}

// skipHeaderAndSeparator drops the header row of a table fragment, and
// the separator row immediately after it when present, leaving only
// the body rows to append onto the preceding fragment.
func skipHeaderAndSeparator(lines []string) []string {
	rest := lines[1:]
	if len(rest) > 0 && isSeparatorRow(rest[0]) {
		rest = rest[1:]
	}
	return rest
}

// isSeparatorRow reports whether a line is a table separator such as
// "|---|:---:|---|".
func isSeparatorRow(line string) bool {
	s := strings.ReplaceAll(line, " ", "")
	if !strings.HasPrefix(s, "|") || !strings.HasSuffix(s, "|") {
		return false
	}
	if len(s) < 2 {
		return true
	}
	inner := s[1 : len(s)-1]
	for _, r := range inner {
		switch r {
		case '-', ':', '|':
		default:
			return false
		}
	}
	return true
}

// reassemble drops page-marker blocks and flattens the remaining
// blocks back into one string, one blank line between blocks.
func (p *Pipeline) reassemble(blocks []Block) string {
	var out []string
	for _, b := range blocks {
		if p.merger.isPageMarker(b) {
			continue
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, b.Lines...)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
