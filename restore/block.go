package restore

import "strings"

// BlockKind is the classification of a contiguous run of lines.
type BlockKind int

const (
	// BlockText is a run of plain text lines (including blank lines).
	BlockText BlockKind = iota
	// BlockHeading is a run of heading lines.
	BlockHeading
	// BlockTable is a run of table row lines.
	BlockTable
)

// Block is a contiguous run of same-kind lines. A block never has an
// empty Lines slice; the segmenter only emits non-empty blocks.
type Block struct {
	Kind  BlockKind
	Lines []string
}

// segment splits raw markdown into typed blocks. Consecutive lines of
// the same classification accumulate into the current block; a change
// in classification closes the block and opens a new one. Table rows
// are normalized on the way in so every table line starts and ends
// with the delimiter.
func (p *Pipeline) segment(raw string) []Block {
	lines := strings.Split(raw, "\n")
	// Split leaves a trailing empty element for input ending in a
	// newline; drop it so it does not become a phantom text line.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var blocks []Block
	var cur []string
	curKind := BlockText

	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, Block{Kind: curKind, Lines: cur})
			cur = nil
		}
	}

	for _, line := range lines {
		var kind BlockKind
		switch p.classify.Classify(line) {
		case LineTableRow:
			kind = BlockTable
			line = p.classify.NormalizeTableRow(line)
		case LineHeading:
			kind = BlockHeading
		default:
			kind = BlockText
		}

		if kind != curKind {
			flush()
			curKind = kind
		}
		cur = append(cur, line)
	}
	flush()

	return blocks
}

// isEmptyTextBlock reports whether b is a text block consisting only of
// blank lines.
func isEmptyTextBlock(b Block) bool {
	if b.Kind != BlockText {
		return false
	}
	for _, ln := range b.Lines {
		if strings.TrimSpace(ln) != "" {
			return false
		}
	}
	return true
}

// allBlank reports whether every line in lines is empty or whitespace.
func allBlank(lines []string) bool {
	for _, ln := range lines {
		if strings.TrimSpace(ln) != "" {
			return false
		}
	}
	return true
}
