package restore

import "strings"

// cellBreak joins the pieces of a cell that was wrapped across lines.
const cellBreak = "<br>"

// overflowJoin separates excess trailing cells merged into the final
// column of an over-wide row.
const overflowJoin = " / "

// cellFolder re-parses every table row by row and repairs rows the
// transcriber split across lines. The header row establishes the column
// count and the row after it must match exactly; from the third row on,
// handling is lenient: a row whose only non-blank cell is the last
// column is a continuation of the previous row's last cell, short rows
// are padded, and over-wide rows have their tail merged into the final
// column.
type cellFolder struct {
	blankContinues bool
}

func newCellFolder(blankContinues bool) *cellFolder {
	return &cellFolder{blankContinues: blankContinues}
}

func (f *cellFolder) apply(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	var table [][]string
	cols := 0
	rowIdx := 0
	inTable := false

	flush := func() {
		for _, row := range table {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = strings.TrimSpace(c)
			}
			out = append(out, "| "+strings.Join(cells, " | ")+" |")
		}
		table = table[:0]
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if !isStrictTableRow(line) {
			if inTable && f.blankContinues && strings.TrimSpace(line) == "" {
				// Blank lines inside a continuing table are skipped
				// when the table resumes past them.
				j := i + 1
				for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
					j++
				}
				if j < len(lines) && isStrictTableRow(lines[j]) {
					continue
				}
			}
			if inTable {
				flush()
				inTable = false
				rowIdx = 0
				cols = 0
				// One blank line after the table; when the closing line
				// is itself blank it serves as that separator.
				if strings.TrimSpace(line) != "" &&
					len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
					out = append(out, "")
				}
			}
			out = append(out, line)
			continue
		}

		cells := splitCells(line)

		if !inTable {
			inTable = true
			table = append(table, cells)
			cols = len(cells)
			rowIdx = 1
			continue
		}

		if rowIdx == 1 {
			// Separator or second header row: strict. A mismatch closes
			// the table and starts a new one from this row.
			if len(cells) == cols {
				table = append(table, cells)
				rowIdx++
			} else {
				flush()
				out = append(out, "")
				table = append(table, cells)
				cols = len(cells)
				rowIdx = 1
			}
			continue
		}

		switch {
		case len(cells) == cols:
			if isContinuation(cells) {
				foldInto(table, cells[len(cells)-1])
			} else {
				table = append(table, cells)
			}

		case len(cells) < cols:
			if isContinuation(cells) {
				if len(cells) > 0 {
					foldInto(table, cells[len(cells)-1])
				}
			} else {
				for len(cells) < cols {
					cells = append(cells, "")
				}
				table = append(table, cells)
			}

		default:
			// Over-wide: merge the excess tail into the final column.
			merged := append([]string(nil), cells[:cols-1]...)
			tail := make([]string, 0, len(cells)-cols+1)
			for _, c := range cells[cols-1:] {
				tail = append(tail, strings.TrimSpace(c))
			}
			merged = append(merged, strings.Join(tail, overflowJoin))
			if isContinuation(merged) {
				foldInto(table, merged[len(merged)-1])
			} else {
				table = append(table, merged)
			}
		}
		rowIdx++
	}

	if inTable {
		flush()
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
	}

	return strings.Join(out, "\n")
}

// isStrictTableRow reports whether a line both starts and ends with the
// delimiter, the shape the folder requires to parse cells reliably.
func isStrictTableRow(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "|") && strings.HasSuffix(s, "|") && len(s) > 1
}

// splitCells splits a table line into its cell contents, dropping the
// empty fields produced by the boundary delimiters.
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) <= 2 {
		return nil
	}
	return parts[1 : len(parts)-1]
}

// isContinuation reports whether every cell except the last is blank,
// the signature of a wrapped cell rather than a real row.
func isContinuation(cells []string) bool {
	if len(cells) == 0 {
		return true
	}
	for _, c := range cells[:len(cells)-1] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// foldInto appends text to the last cell of the last buffered row.
// Both sides of the break are trimmed so the padding inside "| cell |"
// never leaks into the joined content.
func foldInto(table [][]string, text string) {
	row := table[len(table)-1]
	row[len(row)-1] = strings.TrimRight(row[len(row)-1], " \t") + cellBreak + strings.TrimSpace(text)
}
