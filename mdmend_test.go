package mdmend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestConverter(t *testing.T) Converter {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DisableCache = true
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Vision.Provider != "openai" || cfg.Vision.Model != "gpt-4o" {
		t.Errorf("vision = %+v", cfg.Vision)
	}
	if cfg.FallbackModel != "gpt-4o-mini" {
		t.Errorf("fallback = %q", cfg.FallbackModel)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("retries = %d", cfg.MaxRetries)
	}
	if cfg.DPI != 200 {
		t.Errorf("dpi = %d", cfg.DPI)
	}
}

func TestResolveCachePath(t *testing.T) {
	cfg := Config{CachePath: "/tmp/custom.db"}
	if got := cfg.resolveCachePath(); got != "/tmp/custom.db" {
		t.Errorf("explicit path not honored: %q", got)
	}

	cfg = Config{}
	got := cfg.resolveCachePath()
	if !strings.Contains(got, ".mdmend") {
		t.Errorf("default path = %q, want under ~/.mdmend", got)
	}
}

func TestNewInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisableCache = true
	cfg.Vision.Provider = "doesnotexist"

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewInvalidRetries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisableCache = true
	cfg.MaxRetries = -1

	_, err := New(cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestRestore(t *testing.T) {
	c := newTestConverter(t)

	input := "# Page 1\n\n# 8\nNested Vector Interrupt Controller\n\n| A | B |\n|---|---|\n| 1 | 2 |\n\n# Page 2\n\n| A | B |\n|---|---|\n| 3 | 4 |\n"

	got, err := c.Restore(input)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(strings.ToLower(got), "page") {
		t.Errorf("page markers survived: %q", got)
	}
	if !strings.Contains(got, "# 8 Nested Vector Interrupt Controller") {
		t.Errorf("split heading not unified: %q", got)
	}
	// One merged table: the second header/separator pair is gone.
	if strings.Count(got, "| A | B |") != 1 {
		t.Errorf("table fragments not merged: %q", got)
	}
	if !strings.Contains(got, "| 1 | 2 |\n| 3 | 4 |") {
		t.Errorf("rows not contiguous: %q", got)
	}
}

func TestRestoreEmptyInput(t *testing.T) {
	c := newTestConverter(t)

	if _, err := c.Restore(""); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestExportTables(t *testing.T) {
	c := newTestConverter(t)

	md := "## Registers\n\n| Offset | Name |\n| --- | --- |\n| 0x00 | CTRL |\n"
	path := filepath.Join(t.TempDir(), "out.xlsx")

	n, err := c.ExportTables(md, path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("table count = %d, want 1", n)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestExportTablesNone(t *testing.T) {
	c := newTestConverter(t)

	_, err := c.ExportTables("just prose", filepath.Join(t.TempDir(), "out.xlsx"))
	if !errors.Is(err, ErrNoTables) {
		t.Fatalf("err = %v, want ErrNoTables", err)
	}
}

func TestConvertMissingPDF(t *testing.T) {
	c := newTestConverter(t)

	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	if !errors.Is(err, ErrPDFNotFound) {
		t.Fatalf("err = %v, want ErrPDFNotFound", err)
	}
}
