// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/reelscout/reelscout/internal/cache"
	"github.com/reelscout/reelscout/internal/config"
	"github.com/reelscout/reelscout/internal/logging"
	"github.com/reelscout/reelscout/internal/metrics"
)

// ErrUnavailable is returned when the client has no API key.
var ErrUnavailable = errors.New("tmdb: gateway unavailable (no API key)")

// maxRecommendations caps the records consumed per recommendation call.
const maxRecommendations = 12

// Client talks to the TMDB v3 API. It is safe for concurrent use.
//
// Calls are protected by a circuit breaker and a token-bucket rate limiter,
// and memoized through the injected cache: search and recommendation
// results for the search TTL (about a week), the popularity feed for the
// popular TTL (about a day).
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client

	memo       cache.Cacher
	searchTTL  time.Duration
	popularTTL time.Duration

	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
}

// NewClient creates a TMDB client. memo may be cache.Nop{} to disable
// memoization.
func NewClient(cfg config.TMDBConfig, cacheCfg config.CacheConfig, memo cache.Cacher) *Client {
	if memo == nil || !cacheCfg.Enabled {
		memo = cache.Nop{}
	}

	const cbName = "tmdb"
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
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		memo:       memo,
		searchTTL:  cacheCfg.SearchTTL,
		popularTTL: cacheCfg.PopularTTL,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cb:         cb,
		log:        logging.With().Str("component", "tmdb").Logger(),
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

// Available reports whether the gateway has credentials.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// SearchMovie returns the best match for a title, or (nil, nil) when TMDB
// has no result. When a year-qualified search returns nothing, the search
// is retried without the year; that fallback is part of this gateway's
// contract and consumed as-is by the engine.
func (c *Client) SearchMovie(ctx context.Context, title string, year int) (*Movie, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	key := cache.GenerateKey("tmdb:search", title, strconv.Itoa(year))
	if val, ok := c.memo.Get(key); ok {
		metrics.CacheHits.WithLabelValues("tmdb:search").Inc()
		cached, _ := val.(*Movie)
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("tmdb:search").Inc()

	match, err := c.searchOnce(ctx, title, year)
	if err != nil {
		return nil, err
	}
	if match == nil && year > 0 {
		// Strict year match failed; retry without the year.
		match, err = c.searchOnce(ctx, title, 0)
		if err != nil {
			return nil, err
		}
	}

	c.memo.SetWithTTL(key, match, c.searchTTL)
	return match, nil
}

// searchOnce performs a single /search/movie call.
func (c *Client) searchOnce(ctx context.Context, title string, year int) (*Movie, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", title)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "search", "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// Recommendations returns up to 12 recommended movies for a TMDB id.
func (c *Client) Recommendations(ctx context.Context, id int) ([]Movie, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	key := cache.GenerateKey("tmdb:recommendations", strconv.Itoa(id))
	if val, ok := c.memo.Get(key); ok {
		metrics.CacheHits.WithLabelValues("tmdb:recommendations").Inc()
		cached, _ := val.([]Movie)
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("tmdb:recommendations").Inc()

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", "en-US")
	params.Set("page", "1")

	var resp searchResponse
	endpoint := fmt.Sprintf("/movie/%d/recommendations", id)
	if err := c.getJSON(ctx, "recommendations", endpoint, params, &resp); err != nil {
		return nil, err
	}

	results := resp.Results
	if len(results) > maxRecommendations {
		results = results[:maxRecommendations]
	}

	c.memo.SetWithTTL(key, results, c.searchTTL)
	return results, nil
}

// Popular returns one page of the TMDB popularity feed.
func (c *Client) Popular(ctx context.Context, page int) ([]Movie, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}
	if page < 1 {
		page = 1
	}

	key := cache.GenerateKey("tmdb:popular", strconv.Itoa(page))
	if val, ok := c.memo.Get(key); ok {
		metrics.CacheHits.WithLabelValues("tmdb:popular").Inc()
		cached, _ := val.([]Movie)
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("tmdb:popular").Inc()

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))

	var resp searchResponse
	if err := c.getJSON(ctx, "popular", "/movie/popular", params, &resp); err != nil {
		return nil, err
	}

	c.memo.SetWithTTL(key, resp.Results, c.popularTTL)
	return resp.Results, nil
}

// getJSON performs a rate-limited, breaker-protected GET and decodes the
// JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.ObserveGatewayCall("tmdb", endpoint, "error", start)
		return fmt.Errorf("tmdb %s: rate limiter: %w", endpoint, err)
	}

	reqURL := c.baseURL + path + "?" + params.Encode()

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.doGet(ctx, reqURL)
	})
	if err != nil {
		metrics.ObserveGatewayCall("tmdb", endpoint, "error", start)
		return fmt.Errorf("tmdb %s: %w", endpoint, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.ObserveGatewayCall("tmdb", endpoint, "error", start)
		return fmt.Errorf("tmdb %s: decode response: %w", endpoint, err)
	}

	metrics.ObserveGatewayCall("tmdb", endpoint, "ok", start)
	return nil
}

// doGet performs the raw HTTP GET, returning the response body.
func (c *Client) doGet(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return readAllLimited(resp.Body)
}

// maxBodySize bounds response body reads to prevent unbounded allocation.
const maxBodySize = 4 << 20 // 4MB

// readAllLimited reads at most maxBodySize bytes from r.
func readAllLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
