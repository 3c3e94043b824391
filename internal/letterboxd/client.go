// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package letterboxd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/reelscout/reelscout/internal/cache"
	"github.com/reelscout/reelscout/internal/config"
	"github.com/reelscout/reelscout/internal/logging"
	"github.com/reelscout/reelscout/internal/metrics"
)

// userAgent identifies the scraper politely.
const userAgent = "Reelscout/1.0 (+https://github.com/reelscout/reelscout)"

// maxBodySize bounds page body reads.
const maxBodySize = 8 << 20 // 8MB

// ErrEmptyUsername is returned for blank usernames.
var ErrEmptyUsername = errors.New("letterboxd: empty username")

// Client scrapes public Letterboxd profile pages. It is safe for
// concurrent use.
//
// Page fetches are rate limited per host and protected by a circuit
// breaker. HTTP 429 responses are retried with exponential backoff (1s,
// 2s, 4s); that is transport politeness, not an application retry policy.
// Full per-user results are memoized for the catalog TTL.
type Client struct {
	baseURL string
	client  *http.Client

	memo       cache.Cacher
	catalogTTL time.Duration
	maxPages   int

	limiter        *rate.Limiter
	cb             *gobreaker.CircuitBreaker[[]byte]
	maxRetries     int
	retryBaseDelay time.Duration
	log            zerolog.Logger
}

// NewClient creates a Letterboxd client. memo may be cache.Nop{} to
// disable memoization.
func NewClient(cfg config.LetterboxdConfig, cacheCfg config.CacheConfig, memo cache.Cacher) *Client {
	if memo == nil || !cacheCfg.Enabled {
		memo = cache.Nop{}
	}

	const cbName = "letterboxd"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("gateway", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout},
		memo:           memo,
		catalogTTL:     cacheCfg.CatalogTTL,
		maxPages:       cfg.MaxPages,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cb:             cb,
		maxRetries:     3,
		retryBaseDelay: 1 * time.Second,
		log:            logging.With().Str("component", "letterboxd").Logger(),
	}
}

// stateToFloat maps breaker states onto the gauge scale.
func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// GetWatchlist returns the user's watchlist keyed by slug.
// Failures are wrapped in a FetchError carrying the username.
func (c *Client) GetWatchlist(ctx context.Context, username string) (map[string]Film, error) {
	return c.getSection(ctx, username, "watchlist")
}

// GetFilms returns the user's watched films keyed by slug, with rating and
// like flags where present.
func (c *Client) GetFilms(ctx context.Context, username string) (map[string]Film, error) {
	return c.getSection(ctx, username, "films")
}

// getSection scrapes all pages of one profile section.
func (c *Client) getSection(ctx context.Context, username, section string) (map[string]Film, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &FetchError{Username: username, Err: ErrEmptyUsername}
	}

	key := cache.GenerateKey("lb:"+section, username)
	if val, ok := c.memo.Get(key); ok {
		metrics.CacheHits.WithLabelValues("lb:" + section).Inc()
		cached, _ := val.(map[string]Film)
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("lb:" + section).Inc()

	films := make(map[string]Film)
	for page := 1; page <= c.maxPages; page++ {
		pageURL := fmt.Sprintf("%s/%s/%s/page/%d/", c.baseURL, username, section, page)

		pageFilms, hasNext, err := c.fetchPage(ctx, section, pageURL)
		if err != nil {
			return nil, &FetchError{Username: username, Err: err}
		}

		for _, f := range pageFilms {
			films[f.Slug] = f
		}

		if !hasNext || len(pageFilms) == 0 {
			break
		}
	}

	c.log.Debug().Str("user", username).Str("section", section).Int("films", len(films)).Msg("section scraped")
	c.memo.SetWithTTL(key, films, c.catalogTTL)
	return films, nil
}

// fetchPage retrieves and parses a single poster-grid page.
func (c *Client) fetchPage(ctx context.Context, section, pageURL string) ([]Film, bool, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.ObserveGatewayCall("letterboxd", section, "error", start)
		return nil, false, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.doGet(ctx, pageURL)
	})
	if err != nil {
		metrics.ObserveGatewayCall("letterboxd", section, "error", start)
		return nil, false, err
	}

	films, hasNext, err := parsePosterPage(bytes.NewReader(body))
	if err != nil {
		metrics.ObserveGatewayCall("letterboxd", section, "error", start)
		return nil, false, err
	}

	outcome := "ok"
	if len(films) == 0 {
		outcome = "empty"
	}
	metrics.ObserveGatewayCall("letterboxd", section, outcome, start)
	return films, hasNext, nil
}

// doGet performs the HTTP GET with 429 backoff.
func (c *Client) doGet(ctx context.Context, pageURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
			_ = resp.Body.Close()
			if readErr != nil {
				return nil, fmt.Errorf("read page body: %w", readErr)
			}
			return body, nil

		case http.StatusTooManyRequests:
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			c.log.Warn().Str("url", pageURL).Int("attempt", attempt+1).Msg("letterboxd rate limited, backing off")
			continue

		case http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("not found (HTTP 404)")

		default:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.maxRetries+1, lastErr)
}
