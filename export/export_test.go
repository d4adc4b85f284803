package export

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractTables(t *testing.T) {
	md := strings.Join([]string{
		"# 8 Interrupt Controller",
		"",
		"Some prose.",
		"",
		"## 8.1 Register Map",
		"",
		"| Offset | Name |",
		"| --- | --- |",
		"| 0x00 | CTRL |",
		"| 0x04 | STAT |",
		"",
		"More prose.",
		"",
		"| A | B | C |",
		"| 1 | 2 | 3 |",
	}, "\n")

	tables := ExtractTables(md)
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}

	if tables[0].Title != "8.1 Register Map" {
		t.Errorf("title = %q", tables[0].Title)
	}
	wantRows := [][]string{
		{"Offset", "Name"},
		{"0x00", "CTRL"},
		{"0x04", "STAT"},
	}
	if !reflect.DeepEqual(tables[0].Rows, wantRows) {
		t.Errorf("rows = %v, want %v", tables[0].Rows, wantRows)
	}

	// Second table has no separator row and inherits the last heading.
	if tables[1].Title != "8.1 Register Map" {
		t.Errorf("second title = %q", tables[1].Title)
	}
	if len(tables[1].Rows) != 2 {
		t.Errorf("second table rows = %v", tables[1].Rows)
	}
}

func TestExtractTablesNone(t *testing.T) {
	if tables := ExtractTables("# Heading\n\nJust prose.\n"); len(tables) != 0 {
		t.Errorf("got %d tables, want 0", len(tables))
	}
}

func TestExtractTablesAtEOF(t *testing.T) {
	tables := ExtractTables("| A | B |\n| 1 | 2 |")
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if len(tables[0].Rows) != 2 {
		t.Errorf("rows = %v", tables[0].Rows)
	}
	if tables[0].Title != "" {
		t.Errorf("title = %q, want empty", tables[0].Title)
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}

	tests := []struct {
		title string
		index int
		want  string
	}{
		{"8.1 Register Map", 0, "8.1 Register Map"},
		{"", 1, "Table 2"},
		{"a/b:c*d?e", 2, "abcde"},
		{strings.Repeat("x", 40), 3, strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		if got := sheetName(tt.title, tt.index, used); got != tt.want {
			t.Errorf("sheetName(%q, %d) = %q, want %q", tt.title, tt.index, got, tt.want)
		}
	}
}

func TestSheetNameDeduplicates(t *testing.T) {
	used := map[string]bool{"Registers": true, "Registers (2)": true}
	if got := sheetName("Registers", 0, used); got != "Registers (3)" {
		t.Errorf("got %q, want Registers (3)", got)
	}
}

func TestWriteXLSXRoundtrip(t *testing.T) {
	tables := []Table{
		{Title: "Register Map", Rows: [][]string{{"Offset", "Name"}, {"0x00", "CTRL"}}},
		{Title: "Bit Fields", Rows: [][]string{{"Bits", "Name"}, {"31:1", "Reserved"}, {"0", "EN"}}},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteXLSX(tables, path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("sheets = %v, want 2", sheets)
	}
	if sheets[0] != "Register Map" || sheets[1] != "Bit Fields" {
		t.Errorf("sheet names = %v", sheets)
	}

	rows, err := f.GetRows("Bit Fields")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"Bits", "Name"}, {"31:1", "Reserved"}, {"0", "EN"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestWriteXLSXEmpty(t *testing.T) {
	if err := WriteXLSX(nil, filepath.Join(t.TempDir(), "out.xlsx")); err == nil {
		t.Fatal("expected error for no tables")
	}
}
