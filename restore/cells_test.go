package restore

import (
	"strings"
	"testing"
)

func TestCellFolderContinuationRow(t *testing.T) {
	f := newCellFolder(false)

	raw := strings.Join([]string{
		"| Field | Description |",
		"| --- | --- |",
		"| EN | Enable bit |",
		"|  | set to start the counter |",
		"",
		"After the table",
	}, "\n")

	want := strings.Join([]string{
		"| Field | Description |",
		"| --- | --- |",
		"| EN | Enable bit<br>set to start the counter |",
		"",
		"After the table",
	}, "\n")

	if got := f.apply(raw); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestCellFolderFoldsRepeatedContinuations(t *testing.T) {
	f := newCellFolder(false)

	raw := strings.Join([]string{
		"| Field | Description |",
		"| --- | --- |",
		"| EN | Enable bit |",
		"|  | set to start |",
		"|  | the counter |",
		"",
	}, "\n")

	got := f.apply(raw)
	if !strings.Contains(got, "| EN | Enable bit<br>set to start<br>the counter |") {
		t.Errorf("repeated continuations not folded:\n%s", got)
	}
}

func TestCellFolderPadsShortRows(t *testing.T) {
	f := newCellFolder(false)

	raw := strings.Join([]string{
		"| A | B | C |",
		"| --- | --- | --- |",
		"| 1 | 2 |",
		"",
	}, "\n")

	got := f.apply(raw)
	if !strings.Contains(got, "| 1 | 2 |  |") {
		t.Errorf("short row not padded:\n%s", got)
	}
}

func TestCellFolderTruncatesWideRows(t *testing.T) {
	f := newCellFolder(false)

	raw := strings.Join([]string{
		"| A | B | C |",
		"| --- | --- | --- |",
		"| 1 | 2 | 3 | 4 |",
		"",
	}, "\n")

	got := f.apply(raw)
	if !strings.Contains(got, "| 1 | 2 | 3 / 4 |") {
		t.Errorf("wide row not merged into last column:\n%s", got)
	}
}

func TestCellFolderShortContinuation(t *testing.T) {
	f := newCellFolder(false)

	raw := strings.Join([]string{
		"| A | B | C |",
		"| --- | --- | --- |",
		"| 1 | 2 | start |",
		"|  | rest |",
		"",
	}, "\n")

	got := f.apply(raw)
	if !strings.Contains(got, "| 1 | 2 | start<br>rest |") {
		t.Errorf("short continuation not folded:\n%s", got)
	}
}

func TestCellFolderSeparatorMismatchStartsNewTable(t *testing.T) {
	f := newCellFolder(false)

	raw := strings.Join([]string{
		"| A | B |",
		"| 1 | 2 | 3 |",
		"| 4 | 5 | 6 |",
		"",
	}, "\n")

	want := strings.Join([]string{
		"| A | B |",
		"",
		"| 1 | 2 | 3 |",
		"| 4 | 5 | 6 |",
		"",
	}, "\n")

	if got := f.apply(raw); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestCellFolderSingleBlankAfterTable(t *testing.T) {
	f := newCellFolder(false)

	// Closing on a blank line must yield exactly one blank before the
	// following text, closing on text must insert exactly one.
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "blank line closes",
			raw:  "| A | B |\n| 1 | 2 |\n\ntext",
			want: "| A | B |\n| 1 | 2 |\n\ntext",
		},
		{
			name: "text closes directly",
			raw:  "| A | B |\n| 1 | 2 |\ntext",
			want: "| A | B |\n| 1 | 2 |\n\ntext",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.apply(tt.raw); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCellFolderBlankLinesContinueTables(t *testing.T) {
	raw := strings.Join([]string{
		"| A | B |",
		"| --- | --- |",
		"| 1 | 2 |",
		"",
		"| 3 | 4 |",
		"",
		"After",
	}, "\n")

	t.Run("disabled splits at the blank", func(t *testing.T) {
		f := newCellFolder(false)
		want := strings.Join([]string{
			"| A | B |",
			"| --- | --- |",
			"| 1 | 2 |",
			"",
			"| 3 | 4 |",
			"",
			"After",
		}, "\n")
		if got := f.apply(raw); got != want {
			t.Errorf("got:\n%q\nwant:\n%q", got, want)
		}
	})

	t.Run("enabled bridges the blank", func(t *testing.T) {
		f := newCellFolder(true)
		want := strings.Join([]string{
			"| A | B |",
			"| --- | --- |",
			"| 1 | 2 |",
			"| 3 | 4 |",
			"",
			"After",
		}, "\n")
		if got := f.apply(raw); got != want {
			t.Errorf("got:\n%q\nwant:\n%q", got, want)
		}
	})
}

// The folder never drops a non-empty table and every emitted row has
// exactly the table's column count.
func TestCellFolderRowInvariants(t *testing.T) {
	f := newCellFolder(false)

	inputs := []string{
		"| A | B |\n| --- | --- |\n| 1 | 2 |\n|  | tail |\n",
		"| A | B | C |\n| --- | --- | --- |\n| 1 |\n| 1 | 2 | 3 | 4 | 5 |\n",
		"| only | header |\n",
	}

	for _, raw := range inputs {
		got := f.apply(raw)
		rows := 0
		cols := -1
		for _, line := range strings.Split(got, "\n") {
			if !isStrictTableRow(line) {
				continue
			}
			rows++
			if cols < 0 {
				cols = len(splitCells(line))
				continue
			}
			if n := len(splitCells(line)); n != cols {
				t.Errorf("row %q has %d cells, table has %d (input %q)", line, n, cols, raw)
			}
		}
		if rows < 1 {
			t.Errorf("no rows emitted for input %q:\n%s", raw, got)
		}
	}
}
