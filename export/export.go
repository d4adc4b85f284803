// Package export pulls the recovered markdown tables out of a document
// and writes them to an xlsx workbook, one sheet per table.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is one markdown table found in a document.
type Table struct {
	// Title is the text of the nearest heading above the table, "" when
	// the table has none.
	Title string
	// Rows holds the cell values, separator rows removed.
	Rows [][]string
}

// ExtractTables scans a markdown document for tables. A table is a
// maximal run of consecutive lines that start and end with a pipe;
// alignment separator rows are dropped.
func ExtractTables(markdown string) []Table {
	var tables []Table
	var current [][]string
	lastHeading := ""
	currentTitle := ""

	flush := func() {
		if len(current) > 0 {
			tables = append(tables, Table{Title: currentTitle, Rows: current})
			current = nil
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if isTableRow(trimmed) {
			if len(current) == 0 {
				currentTitle = lastHeading
			}
			if !isSeparatorRow(trimmed) {
				current = append(current, splitCells(trimmed))
			}
			continue
		}

		flush()
		if strings.HasPrefix(trimmed, "#") {
			lastHeading = strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		}
	}
	flush()

	return tables
}

func isTableRow(trimmed string) bool {
	return len(trimmed) > 1 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

func isSeparatorRow(trimmed string) bool {
	inner := strings.Trim(strings.ReplaceAll(trimmed, " ", ""), "|")
	if inner == "" {
		return false
	}
	for _, r := range inner {
		if r != '-' && r != ':' && r != '|' {
			return false
		}
	}
	return true
}

func splitCells(trimmed string) []string {
	parts := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts[1 : len(parts)-1] {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// WriteXLSX writes the tables into an xlsx workbook at path. Sheets are
// named after the table titles, deduplicated and trimmed to the xlsx
// sheet-name limits.
func WriteXLSX(tables []Table, path string) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for i, table := range tables {
		name := sheetName(table.Title, i, used)
		used[name] = true

		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("naming sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("creating sheet: %w", err)
			}
		}

		for rowIdx, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("cell coordinates: %w", err)
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// maxSheetName is the xlsx limit on sheet name length.
const maxSheetName = 31

// sheetName derives a legal, unique sheet name from a table title.
func sheetName(title string, index int, used map[string]bool) string {
	name := title
	// Characters xlsx forbids in sheet names.
	for _, c := range []string{"[", "]", ":", "*", "?", "/", "\\"} {
		name = strings.ReplaceAll(name, c, "")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Table %d", index+1)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}

	if !used[name] {
		return name
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate := name
		if len(candidate)+len(suffix) > maxSheetName {
			candidate = candidate[:maxSheetName-len(suffix)]
		}
		candidate += suffix
		if !used[candidate] {
			return candidate
		}
	}
}
