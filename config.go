package mdmend

import (
	"os"
	"path/filepath"
)

// Config holds all configuration for a Converter.
type Config struct {
	// CachePath is the full path to the SQLite transcription cache.
	// If empty, defaults to ~/.mdmend/cache.db.
	CachePath string `json:"cache_path"`

	// DisableCache turns the transcription cache off entirely.
	DisableCache bool `json:"disable_cache"`

	// Vision is the provider used for page transcription.
	Vision LLMConfig `json:"vision"`

	// FallbackModel takes over when the vision model fails a page.
	FallbackModel string `json:"fallback_model"`

	// MaxRetries is the transcription attempt count per model.
	MaxRetries int `json:"max_retries"`

	// MaxTokens caps the per-page completion size. Zero leaves it to
	// the provider.
	MaxTokens int `json:"max_tokens"`

	// Rasterization
	PdftocairoPath string `json:"pdftocairo_path"` // binary override
	DPI            int    `json:"dpi"`
	MaxImageEdge   int    `json:"max_image_edge"`  // pixel cap on page images, 0 = off

	// Restoration
	BlankLinesContinueTables bool `json:"blank_lines_continue_tables"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider"` // ollama, lmstudio, openrouter, openai, groq, xai, gemini, custom
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
}

// DefaultConfig returns a Config matching the documented defaults:
// OpenAI gpt-4o with a gpt-4o-mini fallback, cache in ~/.mdmend/.
func DefaultConfig() Config {
	return Config{
		Vision: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
		},
		FallbackModel: "gpt-4o-mini",
		MaxRetries:    3,
		DPI:           200,
		MaxImageEdge:  2000,
	}
}

// resolveCachePath computes the final cache database path.
func (c *Config) resolveCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cache.db" // fallback to cwd
	}
	return filepath.Join(home, ".mdmend", "cache.db")
}
