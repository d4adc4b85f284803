package restore

import (
	"regexp"
	"strings"
)

// LineKind is the classification of a single raw line.
type LineKind int

const (
	// LineText is any line that is neither a table row nor a heading.
	LineText LineKind = iota
	// LineHeading is a line whose trimmed form starts with '#'.
	LineHeading
	// LineTableRow is a line containing at least two column delimiters.
	LineTableRow
)

// classifier decides what kind of line a raw transcription line is.
// The rules overlap (a stray '#' in front of a table row, a pipe inside
// prose) so they are evaluated in a fixed priority order: table row
// first, then heading, then text. A line matching the table rule is a
// table row even if it also starts with '#'.
type classifier struct {
	leadingMarkers *regexp.Regexp
}

func newClassifier() *classifier {
	return &classifier{
		leadingMarkers: regexp.MustCompile(`^[#\s]+`),
	}
}

// Classify returns the kind of a single line.
func (c *classifier) Classify(line string) LineKind {
	if strings.Count(line, "|") >= 2 {
		return LineTableRow
	}
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return LineHeading
	}
	return LineText
}

// NormalizeTableRow repairs a table row line so that it starts and ends
// with the column delimiter and carries no stray heading markers.
func (c *classifier) NormalizeTableRow(line string) string {
	line = c.leadingMarkers.ReplaceAllString(line, "")

	if !strings.HasPrefix(strings.TrimSpace(line), "|") {
		line = "| " + strings.TrimLeft(line, " \t")
	}
	if !strings.HasSuffix(strings.TrimRight(line, " \t"), "|") {
		line = strings.TrimRight(line, " \t") + " |"
	}
	return line
}

// stripLeadingMarkers removes heading markers and the whitespace around
// them from the start of a line.
func (c *classifier) stripLeadingMarkers(line string) string {
	return c.leadingMarkers.ReplaceAllString(line, "")
}
