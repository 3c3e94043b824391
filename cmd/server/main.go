// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package main is the entry point for the Reelscout server.
//
// Reelscout aggregates public Letterboxd profiles for a group of
// friends and recommends movies nobody in the group has seen, drawing
// on each member's watchlist, ratings, and likes, with optional TMDB
// enrichment for posters, similar-title expansion, and a popularity
// backstop.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from a YAML file and environment
//     variables (Koanf v2)
//  2. Cache: In-memory TTL memoization for external gateway calls
//  3. Letterboxd client: Public profile scraper with rate limiting
//  4. TMDB client: Metadata gateway with circuit breaker (optional,
//     enabled when TMDB_API_KEY is set)
//  5. Recommendation engine: Profile fetch, candidate aggregation,
//     scoring, and ranking
//  6. HTTP server: Chi router with the REST API and Prometheus metrics
//
// # Configuration
//
// Configuration is layered, highest priority last:
//   - Built-in defaults
//   - Config file (config.yaml, or the CONFIG_PATH location)
//   - Environment variables with the REELSCOUT_ prefix, for example
//     REELSCOUT_TMDB_API_KEY or REELSCOUT_SERVER_PORT
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting new connections and waits for in-flight requests up to the
// configured shutdown timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/reelscout/reelscout/internal/api"
	"github.com/reelscout/reelscout/internal/cache"
	"github.com/reelscout/reelscout/internal/config"
	"github.com/reelscout/reelscout/internal/letterboxd"
	"github.com/reelscout/reelscout/internal/logging"
	"github.com/reelscout/reelscout/internal/recommend"
	"github.com/reelscout/reelscout/internal/recommend/gateways"
	"github.com/reelscout/reelscout/internal/tmdb"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Reelscout")
	logging.Info().
		Bool("tmdb_enabled", cfg.TMDB.Enabled()).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Str("letterboxd_url", cfg.Letterboxd.BaseURL).
		Msg("Configuration loaded")

	// Shared memoization cache for both gateway clients.
	var memo cache.Cacher = cache.Nop{}
	if cfg.Cache.Enabled {
		memo = cache.New(cfg.Cache.SearchTTL)
	}

	lbClient := letterboxd.NewClient(cfg.Letterboxd, cfg.Cache, memo)

	var metadata recommend.MetadataGateway
	if cfg.TMDB.Enabled() {
		metadata = gateways.Metadata{Client: tmdb.NewClient(cfg.TMDB, cfg.Cache, memo)}
		logging.Info().Msg("TMDB metadata gateway enabled")
	} else {
		logging.Info().Msg("TMDB_API_KEY not set, running without metadata enrichment")
	}

	engine, err := recommend.NewEngine(gateways.Catalog{Client: lbClient}, metadata, cfg.Engine, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	handler := api.NewHandler(engine, cfg.TMDB.Enabled(), logging.Logger())
	router := api.NewRouter(handler, cfg.Server)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
