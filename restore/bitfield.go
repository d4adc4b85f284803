package restore

import (
	"regexp"
	"strings"
)

// bitfieldRepairer folds orphaned register-field rows back into the
// table they fell out of. The transcriber sometimes emits a bit-range
// label and its "Reserved" description as loose lines directly after a
// table:
//
//	| 31:11 | Reserved |  |  |
//
//	10:9
//
//	Reserved
//
// The pair becomes a synthetic four-column row appended to the table.
// Several orphaned pairs in a row are all absorbed.
type bitfieldRepairer struct {
	bitRange *regexp.Regexp
}

func newBitfieldRepairer() *bitfieldRepairer {
	return &bitfieldRepairer{
		bitRange: regexp.MustCompile(`^\s*\d+:\d+\s*$`),
	}
}

func (r *bitfieldRepairer) apply(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	var table []string
	inTable := false

	i := 0
	for i < len(lines) {
		line := lines[i]

		if isTableLine(line) {
			inTable = true
			table = append(table, line)
			i++
			continue
		}

		if !inTable {
			out = append(out, line)
			i++
			continue
		}

		// Leaving a table: absorb any orphaned bit-range/Reserved pairs
		// before emitting it.
		inTable = false
		for {
			for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
				i++
			}
			if i+1 >= len(lines) {
				break
			}
			if !r.bitRange.MatchString(lines[i]) {
				break
			}

			numericAt := i
			bitRange := strings.TrimSpace(lines[i])
			i++
			for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
				i++
			}
			if i < len(lines) && strings.EqualFold(strings.TrimSpace(lines[i]), "reserved") {
				i++
				for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
					i++
				}
				table = append(table, "| "+bitRange+" | Reserved |  |  |")
			} else {
				// Not the full pattern: rewind so the numeric line is
				// emitted as ordinary text.
				i = numericAt
				break
			}
		}

		out = append(out, table...)
		table = table[:0]

		// Separate the table from what follows with a single blank
		// line, unless the next non-blank line is itself a table row
		// (the fragments must stay contiguous for the cell folder).
		peek := i
		for peek < len(lines) && strings.TrimSpace(lines[peek]) == "" {
			peek++
		}
		if peek >= len(lines) || !isTableLine(lines[peek]) {
			if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
				out = append(out, "")
			}
		}
		// lines[i] is re-examined by the next loop iteration.
	}

	if inTable && len(table) > 0 {
		out = append(out, table...)
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
	}

	return strings.Join(out, "\n")
}

// isTableLine reports whether a line belongs to a table for the repair
// scan. Only the leading delimiter matters here; truncated rows still
// count.
func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}
