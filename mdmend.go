// Package mdmend reconstructs clean, structured markdown from scanned
// technical PDFs: pages are rendered to images, transcribed by a vision
// model, and the page-by-page output is repaired into a single coherent
// document (merged tables, unified headings, normalized levels).
package mdmend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mdmend/export"
	"mdmend/llm"
	"mdmend/raster"
	"mdmend/restore"
	"mdmend/store"
	"mdmend/transcribe"
)

// Converter is the main entry point.
type Converter interface {
	// Convert renders, transcribes, and restores a PDF. The Result
	// carries both the raw page-by-page transcription and the restored
	// document.
	Convert(ctx context.Context, pdfPath string, opts ...ConvertOption) (*Result, error)

	// Restore runs only the structural repair pipeline over raw
	// page-by-page markdown.
	Restore(raw string) (string, error)

	// ExportTables extracts the markdown tables from a document and
	// writes them to an xlsx workbook. Returns the table count.
	ExportTables(markdown, xlsxPath string) (int, error)

	// Close releases the transcription cache.
	Close() error
}

// Result is the outcome of a Convert.
type Result struct {
	// Raw is the page-by-page transcription ("# Page N" wrapped).
	Raw string `json:"raw"`
	// Markdown is the restored document.
	Markdown string `json:"markdown"`

	Pages        int           `json:"pages"`
	CachedPages  int           `json:"cached_pages"`
	FailedPages  []int         `json:"failed_pages,omitempty"`
	HasTextLayer bool          `json:"has_text_layer"`
	Elapsed      time.Duration `json:"elapsed"`
}

// ConvertOption configures a single conversion.
type ConvertOption func(*convertOptions)

type convertOptions struct {
	pageDir   string
	skipCache bool
}

// WithPageDir keeps the rendered page images in dir instead of a
// temporary directory, for inspection.
func WithPageDir(dir string) ConvertOption {
	return func(o *convertOptions) { o.pageDir = dir }
}

// WithFreshTranscription bypasses cache reads for this conversion (the
// cache is still written).
func WithFreshTranscription() ConvertOption {
	return func(o *convertOptions) { o.skipCache = true }
}

// converter is the concrete implementation of Converter.
type converter struct {
	cfg         Config
	cache       *store.Store // nil when caching is disabled
	rasterizer  *raster.Rasterizer
	transcriber *transcribe.Transcriber
	fresh       *transcribe.Transcriber // cache-less twin for WithFreshTranscription
	pipeline    *restore.Pipeline
}

// New creates a Converter with the given configuration.
func New(cfg Config) (Converter, error) {
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	if cfg.DPI < 0 {
		return nil, fmt.Errorf("%w: dpi must not be negative", ErrInvalidConfig)
	}

	visionLLM, err := llm.NewProvider(llm.Config{
		Provider: cfg.Vision.Provider,
		Model:    cfg.Vision.Model,
		BaseURL:  cfg.Vision.BaseURL,
		APIKey:   cfg.Vision.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vision provider: %w", err)
	}

	var cache *store.Store
	if !cfg.DisableCache {
		cache, err = store.New(cfg.resolveCachePath())
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
	}

	rasterizer := raster.New(raster.Config{
		Binary:  cfg.PdftocairoPath,
		DPI:     cfg.DPI,
		MaxEdge: cfg.MaxImageEdge,
	})

	tcfg := transcribe.Config{
		PrimaryModel:  cfg.Vision.Model,
		FallbackModel: cfg.FallbackModel,
		MaxRetries:    cfg.MaxRetries,
		MaxTokens:     cfg.MaxTokens,
	}

	c := &converter{
		cfg:        cfg,
		cache:      cache,
		rasterizer: rasterizer,
		fresh:      transcribe.New(visionLLM, nil, tcfg),
		pipeline: restore.New(restore.Options{
			BlankLinesContinueTables: cfg.BlankLinesContinueTables,
		}),
	}
	if cache != nil {
		c.transcriber = transcribe.New(visionLLM, cache, tcfg)
	} else {
		c.transcriber = c.fresh
	}
	return c, nil
}

func (c *converter) Convert(ctx context.Context, pdfPath string, opts ...ConvertOption) (*Result, error) {
	var o convertOptions
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()

	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPDFNotFound, pdfPath)
	}
	if err := c.rasterizer.CheckBinary(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	docHash, err := store.HashFile(pdfPath)
	if err != nil {
		return nil, err
	}

	info, err := raster.Probe(pdfPath)
	if err != nil {
		// A probe failure is not fatal; pdftocairo may still cope with
		// PDFs the pure-Go reader rejects.
		slog.Warn("convert: pdf probe failed", "pdf", pdfPath, "error", err)
	}
	if info.HasTextLayer {
		slog.Warn("convert: pdf already has a text layer, vision OCR may be unnecessary", "pdf", pdfPath)
	}

	pageDir := o.pageDir
	if pageDir == "" {
		tmp, err := os.MkdirTemp("", "mdmend-pages-")
		if err != nil {
			return nil, fmt.Errorf("creating page dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		pageDir = tmp
	}

	pages, err := c.rasterizer.Rasterize(ctx, pdfPath, pageDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterizeFailed, err)
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	if c.cache != nil {
		if err := c.cache.RegisterDocument(ctx, docHash, pdfPath, len(pages)); err != nil {
			slog.Warn("convert: registering document failed", "error", err)
		}
	}

	tr := c.transcriber
	if o.skipCache {
		tr = c.fresh
	}

	raw, stats, err := tr.Document(ctx, docHash, pages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	res := &Result{
		Raw:          raw,
		Markdown:     c.pipeline.Process(raw),
		Pages:        stats.Pages,
		CachedPages:  stats.Cached,
		FailedPages:  stats.FailedPages,
		HasTextLayer: info.HasTextLayer,
		Elapsed:      time.Since(start),
	}

	slog.Info("convert: done",
		"pdf", pdfPath,
		"pages", res.Pages,
		"cached", res.CachedPages,
		"failed", len(res.FailedPages),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func (c *converter) Restore(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyInput
	}
	return c.pipeline.Process(raw), nil
}

func (c *converter) ExportTables(markdown, xlsxPath string) (int, error) {
	tables := export.ExtractTables(markdown)
	if len(tables) == 0 {
		return 0, ErrNoTables
	}
	if err := export.WriteXLSX(tables, xlsxPath); err != nil {
		return 0, err
	}
	return len(tables), nil
}

func (c *converter) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}
