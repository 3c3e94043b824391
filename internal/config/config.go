// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package config loads and validates the Reelscout configuration using
// Koanf v2 with layered sources: built-in defaults, an optional YAML file,
// and environment variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the Reelscout server.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	TMDB       TMDBConfig       `koanf:"tmdb"`
	Letterboxd LetterboxdConfig `koanf:"letterboxd"`
	Cache      CacheConfig      `koanf:"cache"`
	Engine     EngineConfig     `koanf:"engine"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TMDBConfig holds TMDB metadata gateway settings.
// An empty APIKey disables all TMDB-backed capabilities gracefully.
type TMDBConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
}

// Enabled reports whether the TMDB gateway has credentials.
func (c TMDBConfig) Enabled() bool {
	return c.APIKey != ""
}

// LetterboxdConfig holds Letterboxd catalog gateway settings.
type LetterboxdConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	MaxPages          int           `koanf:"max_pages" validate:"gte=1"`
}

// CacheConfig holds memoization cache settings for external gateway calls.
// TTLs follow the staleness policy: search and recommendation results are
// stable for about a week, popularity churns daily, catalog pages hourly.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	SearchTTL  time.Duration `koanf:"search_ttl"`
	PopularTTL time.Duration `koanf:"popular_ttl"`
	CatalogTTL time.Duration `koanf:"catalog_ttl"`
}

// EngineConfig holds the recommendation engine tuning constants.
type EngineConfig struct {
	// WatchlistPoints is the score contributed per watchlist member (N).
	WatchlistPoints float64 `koanf:"watchlist_points" validate:"gt=0"`

	// SeedRatingThreshold is the minimum rating (1-10) for a film to seed
	// the similarity pass.
	SeedRatingThreshold int `koanf:"seed_rating_threshold" validate:"gte=1,lte=10"`

	// MinSeeds is the seed count below which liked-but-unrated films are
	// backfilled as seeds.
	MinSeeds int `koanf:"min_seeds" validate:"gte=0"`

	// MaxSeedsPerUser bounds similarity fan-out per user.
	MaxSeedsPerUser int `koanf:"max_seeds_per_user" validate:"gte=1"`

	// MaxSimilarPerSeed bounds records consumed per resolved seed.
	MaxSimilarPerSeed int `koanf:"max_similar_per_seed" validate:"gte=1"`

	// PopularBackfillThreshold is the candidate count under which the
	// popularity pass runs.
	PopularBackfillThreshold int `koanf:"popular_backfill_threshold" validate:"gte=0"`

	// MaxResults truncates the ranked output.
	MaxResults int `koanf:"max_results" validate:"gte=1"`

	// Seed fixes the RNG used for seed shuffling; 0 selects a time-based seed.
	Seed int64 `koanf:"seed"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8972,
			Timeout:         120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   30,
			RateLimitWindow: 1 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		TMDB: TMDBConfig{
			APIKey:            "",
			BaseURL:           "https://api.themoviedb.org/3",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 4,
		},
		Letterboxd: LetterboxdConfig{
			BaseURL:           "https://letterboxd.com",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 2,
			MaxPages:          20,
		},
		Cache: CacheConfig{
			Enabled:    true,
			SearchTTL:  7 * 24 * time.Hour,
			PopularTTL: 24 * time.Hour,
			CatalogTTL: 1 * time.Hour,
		},
		Engine: EngineConfig{
			WatchlistPoints:          100,
			SeedRatingThreshold:      8,
			MinSeeds:                 5,
			MaxSeedsPerUser:          6,
			MaxSimilarPerSeed:        12,
			PopularBackfillThreshold: 20,
			MaxResults:               100,
			Seed:                     0,
		},
	}
}

// Validate checks the configuration for invalid values and returns a
// descriptive error for the first problem found.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if ok := asValidationErrors(err, &errs); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config field %s failed %q validation (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
		return fmt.Errorf("config validation: %w", err)
	}

	if c.Cache.Enabled {
		if c.Cache.SearchTTL <= 0 || c.Cache.PopularTTL <= 0 || c.Cache.CatalogTTL <= 0 {
			return fmt.Errorf("cache TTLs must be positive when cache is enabled")
		}
	}

	return nil
}

// asValidationErrors unwraps a validator error into ValidationErrors.
func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if errs, ok := err.(validator.ValidationErrors); ok { //nolint:errorlint // validator returns the slice type directly
		*target = errs
		return true
	}
	return false
}
