package main

import (
	"encoding/json"
	"fmt"
	"os"

	"mdmend"
)

// loadConfig builds the effective configuration: defaults, then the
// optional JSON config file, then MDMEND_* environment overrides.
func loadConfig(path string) (mdmend.Config, error) {
	cfg := mdmend.DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides applies MDMEND_* environment variables on top of
// the loaded configuration.
func applyEnvOverrides(cfg *mdmend.Config) {
	if v := os.Getenv("MDMEND_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("MDMEND_VISION_PROVIDER"); v != "" {
		cfg.Vision.Provider = v
	}
	if v := os.Getenv("MDMEND_VISION_MODEL"); v != "" {
		cfg.Vision.Model = v
	}
	if v := os.Getenv("MDMEND_VISION_BASE_URL"); v != "" {
		cfg.Vision.BaseURL = v
	}
	if v := os.Getenv("MDMEND_VISION_API_KEY"); v != "" {
		cfg.Vision.APIKey = v
	}
	if v := os.Getenv("MDMEND_FALLBACK_MODEL"); v != "" {
		cfg.FallbackModel = v
	}
	if v := os.Getenv("MDMEND_PDFTOCAIRO"); v != "" {
		cfg.PdftocairoPath = v
	}

	// Fallback: check well-known provider env vars for API keys.
	if cfg.Vision.APIKey == "" {
		switch cfg.Vision.Provider {
		case "openai":
			cfg.Vision.APIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			cfg.Vision.APIKey = os.Getenv("GROQ_API_KEY")
		case "gemini":
			cfg.Vision.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openrouter":
			cfg.Vision.APIKey = os.Getenv("OPENROUTER_API_KEY")
		}
	}
}
