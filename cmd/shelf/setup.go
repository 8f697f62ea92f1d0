package main

import (
	"log/slog"

	"github.com/pdfshelf/shelf/internal/config"
	"github.com/pdfshelf/shelf/internal/logging"
	"github.com/pdfshelf/shelf/internal/lookup"
	"github.com/pdfshelf/shelf/internal/resolve"
	"github.com/pdfshelf/shelf/internal/strategy"
)

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// newResolver assembles the strategy chain and lookup client from config.
// With offline true (or disable_lookups in config) no lookup client is
// attached and resolution runs on local strategies alone.
func newResolver(cfg *config.Config, logger *slog.Logger, offline bool) *resolve.Resolver {
	local := []strategy.Strategy{
		strategy.Filename{},
		strategy.Embedded{PageCap: cfg.PageCap},
	}

	var lookups resolve.Searcher
	if !offline && !cfg.DisableLookups {
		config.LoadEnv()
		lookups = lookup.New(
			lookup.DefaultServices(nil, config.CrossrefMailto(), config.S2APIKey()),
			lookup.WithInterval(cfg.Interval()),
			lookup.WithLogger(logger),
		)
	}

	return resolve.New(local, lookups,
		resolve.WithThreshold(cfg.QualityThreshold),
		resolve.WithMode(resolve.FanMode(cfg.LookupMode)),
		resolve.WithPageCap(cfg.PageCap),
		resolve.WithLogger(logger),
	)
}
