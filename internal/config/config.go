// Package config handles run configuration and service credentials.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pdfshelf/shelf/internal/identity"
	"github.com/pdfshelf/shelf/internal/pdfdoc"
	"github.com/pdfshelf/shelf/internal/resolve"
)

// Environment variables for service credentials, loadable from a .env file.
const (
	EnvCrossrefMailto = "SHELF_CROSSREF_MAILTO"
	EnvS2APIKey       = "SHELF_S2_API_KEY"
)

// Config is the run configuration, optionally loaded from a JSON file.
type Config struct {
	Scheme           string  `json:"scheme"`            // "year" or "author"
	PageCap          int     `json:"page_cap"`          // pages sampled per document
	QualityThreshold float64 `json:"quality_threshold"` // local score below which lookups run
	RateInterval     string  `json:"rate_interval"`     // min interval between lookup requests
	LookupMode       string  `json:"lookup_mode"`       // "fanout" or "first"
	DisableLookups   bool    `json:"disable_lookups"`
	LogLevel         string  `json:"log_level"`
	LogFormat        string  `json:"log_format"` // "text" or "json"
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Scheme:           string(identity.SchemeYear),
		PageCap:          pdfdoc.DefaultPageCap,
		QualityThreshold: resolve.DefaultThreshold,
		RateInterval:     "1s",
		LookupMode:       string(resolve.ModeFanOut),
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads configuration from a JSON file, filling unset fields with
// defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Scheme == "" {
		cfg.Scheme = def.Scheme
	}
	if cfg.PageCap == 0 {
		cfg.PageCap = def.PageCap
	}
	if cfg.QualityThreshold == 0 {
		cfg.QualityThreshold = def.QualityThreshold
	}
	if cfg.RateInterval == "" {
		cfg.RateInterval = def.RateInterval
	}
	if cfg.LookupMode == "" {
		cfg.LookupMode = def.LookupMode
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := identity.ParseScheme(c.Scheme); err != nil {
		return err
	}
	if c.PageCap < 1 {
		return fmt.Errorf("page_cap must be positive, got %d", c.PageCap)
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 1 {
		return fmt.Errorf("quality_threshold must be in [0, 1], got %g", c.QualityThreshold)
	}
	if _, err := time.ParseDuration(c.RateInterval); err != nil {
		return fmt.Errorf("invalid rate_interval %q: %w", c.RateInterval, err)
	}
	switch resolve.FanMode(c.LookupMode) {
	case resolve.ModeFanOut, resolve.ModeFirst:
	default:
		return fmt.Errorf("invalid lookup_mode %q (valid: %s, %s)", c.LookupMode, resolve.ModeFanOut, resolve.ModeFirst)
	}
	return nil
}

// Interval returns the parsed rate interval. Call Validate first.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.RateInterval)
	if err != nil {
		return time.Second
	}
	return d
}

// LoadEnv loads a .env file from the working directory when present, so
// credentials can live next to the data instead of the shell profile.
func LoadEnv() {
	_ = godotenv.Load()
}

// CrossrefMailto returns the Crossref polite-pool address, if configured.
func CrossrefMailto() string {
	return os.Getenv(EnvCrossrefMailto)
}

// S2APIKey returns the Semantic Scholar API key, if configured.
func S2APIKey() string {
	return os.Getenv(EnvS2APIKey)
}
