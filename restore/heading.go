package restore

import (
	"regexp"
	"strings"
)

// headingUnifier repairs headings the transcriber split across two
// lines, for example:
//
//	# 8
//	Nested Vector Interrupt Controller (NVIC)
//
// becomes
//
//	# 8 Nested Vector Interrupt Controller (NVIC)
//
// The walk rebuilds a fresh block sequence with a cursor: SCAN emits
// blocks as-is, and a single-line heading whose text is a bare numeric
// label switches to MERGE_PENDING, absorbing blank lines and then the
// spilled text from the following blocks. The merge ends when a line
// refuses, or as soon as real text has joined the label.
type headingUnifier struct {
	bareNumeric    *regexp.Regexp
	bullet         *regexp.Regexp
	numericHeading *regexp.Regexp
	leadingMarkers *regexp.Regexp
}

func newHeadingUnifier() *headingUnifier {
	return &headingUnifier{
		bareNumeric:    regexp.MustCompile(`^#{1,6}\s+\d+(?:\.\d+)*$`),
		bullet:         regexp.MustCompile(`^#{0,6}\s*\d+(?:[.)])\s`),
		numericHeading: regexp.MustCompile(`^(#{0,6})\s*(\d+(?:\.\d+)*)(.*)$`),
		leadingMarkers: regexp.MustCompile(`^[#\s]+`),
	}
}

func (u *headingUnifier) apply(in []Block) []Block {
	// Work on a copy; blocks shrink from the front as lines are consumed.
	work := make([]Block, len(in))
	for i, b := range in {
		work[i] = Block{Kind: b.Kind, Lines: append([]string(nil), b.Lines...)}
	}

	out := make([]Block, 0, len(work))
	for len(work) > 0 {
		b := work[0]
		work = work[1:]

		if b.Kind != BlockHeading {
			out = append(out, b)
			continue
		}

		// A split heading inside an accumulated heading block shows up
		// as a bare numeric first line followed by the spilled text.
		for len(b.Lines) > 1 && u.isBareNumeric(b.Lines[0]) && u.absorbable(b.Lines[1]) {
			merged := u.join(b.Lines[0], b.Lines[1])
			b.Lines = append([]string{merged}, b.Lines[2:]...)
		}

		if len(b.Lines) == 1 && u.isBareNumeric(b.Lines[0]) {
			// MERGE_PENDING: absorb the first line of the following
			// blocks, re-examining after every consumed line. Blank
			// lines join as nothing, so the walk keeps going past them;
			// once real text lands the label is no longer bare numeric
			// and the merge ends. A fully consumed block is dropped, a
			// partially consumed one stays as the next block to scan.
			for len(work) > 0 && u.isBareNumeric(b.Lines[0]) {
				next := &work[0]
				if !u.absorbable(next.Lines[0]) {
					break
				}
				b.Lines[0] = u.join(b.Lines[0], next.Lines[0])
				next.Lines = next.Lines[1:]
				if allBlank(next.Lines) {
					work = work[1:]
				}
			}
		}

		out = append(out, b)
	}
	return out
}

// isBareNumeric reports whether a heading line is markers plus a pure
// dotted numeric label with no trailing text, e.g. "# 8" or "## 8.1.2".
func (u *headingUnifier) isBareNumeric(line string) bool {
	return u.bareNumeric.MatchString(strings.TrimSpace(line))
}

// absorbable reports whether a line may be merged into a pending
// numeric heading. Lines ending in terminal punctuation, bulleted
// numeric items, and numeric headings all refuse: they are content in
// their own right, not the tail of a split heading.
func (u *headingUnifier) absorbable(line string) bool {
	line = strings.TrimRight(line, " \t")
	if line != "" {
		switch line[len(line)-1] {
		case '.', '!', '?':
			return false
		}
	}
	stripped := strings.TrimLeft(line, " \t")
	if u.bullet.MatchString(stripped) {
		return false
	}
	if u.numericHeading.MatchString(stripped) {
		return false
	}
	return true
}

// join appends the consumed line onto the heading text, dropping any
// heading markers the transcriber put in front of the tail.
func (u *headingUnifier) join(heading, tail string) string {
	tail = strings.TrimSpace(u.leadingMarkers.ReplaceAllString(strings.TrimRight(tail, " \t"), ""))
	return strings.TrimSpace(strings.TrimSpace(heading) + " " + tail)
}

// headingNormalizer rewrites heading markers from the numbering
// embedded in each line: "8.1 Title" carries one dot, so it becomes a
// level-2 heading "## 8.1 Title". Lines that merely look numeric (bit
// ranges like "31:22", bare hex like "0xFFAB", bulleted list items)
// are demoted to plain text instead. The pass is line-local and
// idempotent.
type headingNormalizer struct {
	bullet         *regexp.Regexp
	numericHeading *regexp.Regexp
	leadingMarkers *regexp.Regexp
}

func newHeadingNormalizer() *headingNormalizer {
	return &headingNormalizer{
		bullet:         regexp.MustCompile(`^#{0,6}\s*\d+(?:[.)])\s`),
		numericHeading: regexp.MustCompile(`^(#{0,6})\s*(\d+(?:\.\d+)*)(.*)$`),
		leadingMarkers: regexp.MustCompile(`^[#\s]+`),
	}
}

func (n *headingNormalizer) apply(text string) string {
	lines := strings.Split(text, "\n")
	fixed := make([]string, 0, len(lines))

	for _, line := range lines {
		fixed = append(fixed, n.fixLine(line))
	}
	return strings.Join(fixed, "\n")
}

func (n *headingNormalizer) fixLine(line string) string {
	stripped := strings.TrimSpace(line)

	// A line ending in terminal punctuation is prose, never a heading.
	if stripped != "" {
		switch stripped[len(stripped)-1] {
		case '.', '!', '?', ',':
			return n.leadingMarkers.ReplaceAllString(line, "")
		}
	}

	// Bulleted numeric items ("1. Text", "2) Text") are list items.
	if n.bullet.MatchString(stripped) {
		return n.leadingMarkers.ReplaceAllString(line, "")
	}

	if m := n.numericHeading.FindStringSubmatch(stripped); m != nil {
		// A colon anywhere marks a bit-range or address annotation
		// ("31:22 Reserved"), not a section number.
		if strings.Contains(stripped, ":") {
			return n.leadingMarkers.ReplaceAllString(line, "")
		}

		numeric := m[2]
		rest := strings.TrimRight(m[3], " \t")

		if rest != "" {
			// Number glued straight onto text ("0xFFAB") is not a
			// section label.
			if !strings.HasPrefix(rest, " ") {
				return n.leadingMarkers.ReplaceAllString(line, "")
			}
			// Register-field rows and continuation numbers start with
			// punctuation or another digit after the label.
			switch strings.TrimLeft(rest, " \t")[0] {
			case ':', '-', '<', '>', '&',
				'0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
				return n.leadingMarkers.ReplaceAllString(line, "")
			}
		}

		level := strings.Count(numeric, ".") + 1
		markers := strings.Repeat("#", level)
		if rest != "" {
			return markers + " " + numeric + rest
		}
		return markers + " " + numeric
	}

	// A '#' line matching none of the numeric rules is a transcription
	// artifact; demote it.
	if strings.HasPrefix(stripped, "#") {
		return n.leadingMarkers.ReplaceAllString(line, "")
	}
	return line
}
