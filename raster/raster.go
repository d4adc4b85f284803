// Package raster turns PDF pages into PNG images for vision
// transcription. It shells out to pdftocairo, which handles scanned
// pages far better than any pure-Go renderer.
package raster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultDPI renders a letter/A4 page at roughly 1700px on the long
// edge, enough for vision models to read register-table footnotes.
const DefaultDPI = 200

// Config configures the rasterizer.
type Config struct {
	// Binary is the pdftocairo executable. Defaults to "pdftocairo"
	// resolved via PATH.
	Binary string `json:"binary"`
	// DPI is the render resolution.
	DPI int `json:"dpi"`
	// MaxEdge caps the longer edge of each page image in pixels.
	// Zero disables downscaling.
	MaxEdge int `json:"max_edge"`
	// NoAntialias disables subpixel antialiasing. Antialiasing is on by
	// default; it noticeably improves small table text at low DPI.
	NoAntialias bool `json:"no_antialias"`
}

// Page is one rendered page image on disk.
type Page struct {
	Number int
	Path   string
}

// Rasterizer renders PDF pages to PNG files.
type Rasterizer struct {
	cfg Config
}

// New creates a Rasterizer, applying defaults for unset fields.
func New(cfg Config) *Rasterizer {
	if cfg.Binary == "" {
		cfg.Binary = "pdftocairo"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	return &Rasterizer{cfg: cfg}
}

// CheckBinary verifies the pdftocairo binary is resolvable. Called up
// front so a missing poppler install fails before any API spend.
func (r *Rasterizer) CheckBinary() error {
	if _, err := exec.LookPath(r.cfg.Binary); err != nil {
		return fmt.Errorf("pdftocairo not found (install poppler-utils): %w", err)
	}
	return nil
}

// Rasterize renders every page of the PDF into outDir and returns the
// pages in order. Page images are named page-NNN.png by pdftocairo.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, outDir string) ([]Page, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}

	prefix := filepath.Join(outDir, "page")
	args := []string{
		"-png",
		"-r", strconv.Itoa(r.cfg.DPI),
	}
	if !r.cfg.NoAntialias {
		args = append(args, "-antialias", "subpixel")
	}
	args = append(args, pdfPath, prefix)

	slog.Info("raster: rendering pdf", "pdf", pdfPath, "dpi", r.cfg.DPI, "out", outDir)

	cmd := exec.CommandContext(ctx, r.cfg.Binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftocairo: %w: %s", err, strings.TrimSpace(string(output)))
	}

	pages, err := collectPages(prefix)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftocairo produced no page images for %s", pdfPath)
	}

	if r.cfg.MaxEdge > 0 {
		for _, p := range pages {
			if err := downscalePNG(p.Path, r.cfg.MaxEdge); err != nil {
				return nil, fmt.Errorf("downscaling page %d: %w", p.Number, err)
			}
		}
	}

	slog.Info("raster: rendered", "pages", len(pages))
	return pages, nil
}

// collectPages gathers pdftocairo output files. pdftocairo zero-pads
// the page number to a uniform width, so a lexical sort is also a
// numeric sort; the parsed suffix is kept as the page number anyway.
func collectPages(prefix string) ([]Page, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	pages := make([]Page, 0, len(matches))
	for _, m := range matches {
		n, err := pageNumber(m)
		if err != nil {
			continue // foreign file in the output dir
		}
		pages = append(pages, Page{Number: n, Path: m})
	}
	return pages, nil
}

func pageNumber(path string) (int, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0, fmt.Errorf("no page suffix in %s", path)
	}
	return strconv.Atoi(base[idx+1:])
}
