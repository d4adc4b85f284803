// Package transcribe turns rendered page images into markdown through a
// vision model, with retries, a fallback model, and a transcription
// cache so interrupted runs resume where they stopped.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mdmend/llm"
	"mdmend/raster"
	"mdmend/store"
)

// Config configures a Transcriber.
type Config struct {
	// PrimaryModel handles every page first.
	PrimaryModel string `json:"primary_model"`
	// FallbackModel takes over after the primary exhausts its retries.
	FallbackModel string `json:"fallback_model"`
	// MaxRetries is the attempt count per model.
	MaxRetries int `json:"max_retries"`
	// MaxTokens caps the completion size per page. Zero leaves it to
	// the provider.
	MaxTokens int `json:"max_tokens"`
}

// Cache is the subset of the store used by the transcriber. A nil Cache
// disables caching.
type Cache interface {
	GetPage(ctx context.Context, docHash string, page int, model string) (string, bool, error)
	PutPage(ctx context.Context, t store.Transcription) error
}

// Stats summarises a document transcription run.
type Stats struct {
	Pages            int
	Cached           int
	FailedPages      []int
	PromptTokens     int
	CompletionTokens int
}

// Transcriber runs per-page vision OCR.
type Transcriber struct {
	provider llm.Provider
	cache    Cache
	cfg      Config
}

// New creates a Transcriber. cache may be nil.
func New(provider llm.Provider, cache Cache, cfg Config) *Transcriber {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Transcriber{provider: provider, cache: cache, cfg: cfg}
}

// Document transcribes every page and assembles the raw page-by-page
// markdown: each page wrapped as "# Page <n>" followed by its body. A
// page that fails on both models gets a visible failure marker instead
// of aborting the whole document.
func (t *Transcriber) Document(ctx context.Context, docHash string, pages []raster.Page) (string, Stats, error) {
	var sb strings.Builder
	stats := Stats{Pages: len(pages)}

	for _, p := range pages {
		body, fromCache, err := t.page(ctx, docHash, p)
		if err != nil {
			return "", stats, err
		}
		if fromCache {
			stats.Cached++
		}
		if body == "" {
			stats.FailedPages = append(stats.FailedPages, p.Number)
			body = t.failureMarker()
		}
		fmt.Fprintf(&sb, "# Page %d\n\n%s\n\n", p.Number, body)
	}

	return sb.String(), stats, nil
}

// page returns the markdown body for one page, consulting the cache
// first. An empty body with a nil error means both models failed.
func (t *Transcriber) page(ctx context.Context, docHash string, p raster.Page) (string, bool, error) {
	if t.cache != nil {
		for _, model := range []string{t.cfg.PrimaryModel, t.cfg.FallbackModel} {
			if model == "" {
				continue
			}
			md, ok, err := t.cache.GetPage(ctx, docHash, p.Number, model)
			if err != nil {
				return "", false, err
			}
			if ok {
				slog.Debug("transcribe: cache hit", "page", p.Number, "model", model)
				return md, true, nil
			}
		}
	}

	png, err := os.ReadFile(p.Path)
	if err != nil {
		return "", false, fmt.Errorf("reading page image: %w", err)
	}

	slog.Info("transcribe: processing page", "page", p.Number)

	md, model := t.attempt(ctx, p.Number, png)
	if md == "" {
		return "", false, ctx.Err()
	}

	if t.cache != nil {
		if err := t.cache.PutPage(ctx, store.Transcription{
			DocHash:  docHash,
			Page:     p.Number,
			Model:    model,
			Markdown: md,
		}); err != nil {
			slog.Warn("transcribe: cache write failed", "page", p.Number, "error", err)
		}
	}
	return md, false, nil
}

// attempt tries the primary model up to MaxRetries times, then the
// fallback model up to MaxRetries times. Returns the extracted markdown
// and the model that produced it, or "" when every attempt failed.
func (t *Transcriber) attempt(ctx context.Context, pageNum int, png []byte) (string, string) {
	models := []string{t.cfg.PrimaryModel}
	if t.cfg.FallbackModel != "" && t.cfg.FallbackModel != t.cfg.PrimaryModel {
		models = append(models, t.cfg.FallbackModel)
	}

	for _, model := range models {
		for attempt := 1; attempt <= t.cfg.MaxRetries; attempt++ {
			if ctx.Err() != nil {
				return "", ""
			}
			if attempt > 1 || model != t.cfg.PrimaryModel {
				slog.Info("transcribe: retrying page", "page", pageNum, "model", model, "attempt", attempt)
			}
			md, err := t.transcribeOnce(ctx, model, pageNum, png)
			if err != nil {
				slog.Warn("transcribe: attempt failed", "page", pageNum, "model", model, "error", err)
				continue
			}
			if md != "" {
				return md, model
			}
			slog.Warn("transcribe: response had no markdown block", "page", pageNum, "model", model)
		}
	}
	return "", ""
}

func (t *Transcriber) transcribeOnce(ctx context.Context, model string, pageNum int, png []byte) (string, error) {
	img := llm.PNGPart(png)
	img.ImageURL.Detail = "high"

	resp, err := t.provider.ChatWithImages(ctx, llm.VisionChatRequest{
		Model: model,
		Messages: []llm.VisionMessage{
			{
				Role: "user",
				Content: []llm.ContentPart{
					llm.TextPart(buildPrompt(pageNum)),
					img,
				},
			},
		},
		MaxTokens: t.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return extractMarkdown(resp.Content), nil
}

// failureMarker is the page body written when every attempt fails; it
// keeps the document intact and the failure visible in the output.
func (t *Transcriber) failureMarker() string {
	return fmt.Sprintf(
		"> (FAILED after all attempts, including fallback model '%s')\n\nNo valid Markdown block found.",
		t.cfg.FallbackModel,
	)
}
