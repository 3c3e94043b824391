// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package recommend

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelscout/reelscout/internal/config"
	"github.com/reelscout/reelscout/internal/metrics"
)

// ErrNoCatalog is returned when the engine is constructed without a
// catalog gateway.
var ErrNoCatalog = errors.New("recommend: catalog gateway is required")

// Engine coordinates profile fetching, candidate aggregation, scoring,
// and ranking for one group. It is safe for concurrent use; each
// recommendation run works on its own GroupState and CandidateSet.
type Engine struct {
	catalog  CatalogGateway
	metadata MetadataGateway
	cfg      config.EngineConfig
	log      zerolog.Logger

	// rng drives seed shuffling (protected by rngMu for concurrent runs).
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewEngine creates a recommendation engine. metadata may be nil or
// unavailable; all metadata-backed capabilities degrade gracefully.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(catalog CatalogGateway, metadata MetadataGateway, cfg config.EngineConfig, logger zerolog.Logger) (*Engine, error) {
	if catalog == nil {
		return nil, ErrNoCatalog
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		catalog:  catalog,
		metadata: metadata,
		cfg:      cfg,
		log:      logger.With().Str("component", "recommend").Logger(),
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for seed shuffling
	}, nil
}

// FetchProfiles fetches all users' catalog data concurrently and builds
// the group state. Each profile is merged atomically under the lock, and
// the global watched index is rebuilt only after every fetch has
// completed, so candidate filtering never sees a partial index.
//
// A failed user is recorded as a warning and excluded; other users are
// unaffected.
func (e *Engine) FetchProfiles(ctx context.Context, usernames []string) *GroupState {
	group := NewGroupState()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, raw := range usernames {
		username := strings.TrimSpace(raw)
		if username == "" {
			continue
		}

		mu.Lock()
		_, dup := group.Profiles[username]
		mu.Unlock()
		if dup {
			continue
		}

		wg.Add(1)
		go func(username string) {
			defer wg.Done()

			profile, err := e.fetchProfile(ctx, username)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.ProfileFetchErrors.Inc()
				e.log.Warn().Str("user", username).Err(err).Msg("profile fetch failed")
				group.Warnings = append(group.Warnings, err.Error())
				return
			}
			group.Profiles[username] = profile
		}(username)
	}

	wg.Wait()

	sort.Strings(group.Warnings)
	group.rebuildWatchedIndex()

	e.log.Info().Int("profiles", len(group.Profiles)).Int("watched_index", group.GlobalWatchedIndex.Len()).Int("warnings", len(group.Warnings)).Msg("group state built")
	return group
}

// fetchProfile fetches and materializes one user's profile.
func (e *Engine) fetchProfile(ctx context.Context, username string) (*UserProfile, error) {
	watchlist, err := e.catalog.GetWatchlist(ctx, username)
	if err != nil {
		return nil, err
	}

	films, err := e.catalog.GetFilms(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{
		Username:     username,
		Watchlist:    watchlist,
		WatchedSlugs: make(map[string]struct{}, len(films)),
		Ratings:      make(map[string]Rating),
		Liked:        make(map[string]struct{}),
		WatchedIndex: BuildWatchedIndex(films),
	}

	for slug, f := range films {
		profile.WatchedSlugs[slug] = struct{}{}
		if f.Liked {
			profile.Liked[slug] = struct{}{}
		}
		// Malformed or missing ratings are dropped rather than raised.
		if f.Rating > 0 {
			profile.Ratings[slug] = Rating{Score: f.Rating, Title: f.Title, Year: f.Year}
		}
	}

	return profile, nil
}

// Recommend runs the full pipeline: aggregate candidates from the
// enabled sources, score them, and rank the results.
func (e *Engine) Recommend(ctx context.Context, group *GroupState, opts Options) []RankedResult {
	start := time.Now()

	set := e.Aggregate(ctx, group, opts)

	weight := opts.clampedDiscoveryWeight()
	results := make([]RankedResult, 0, set.Len())
	for _, cand := range set.All() {
		results = append(results, e.finalize(cand, weight))
	}

	results = e.Rank(results, opts.Sort)

	metrics.RecommendationBuildDuration.Observe(time.Since(start).Seconds())
	metrics.RecommendationCandidates.Observe(float64(set.Len()))
	e.log.Info().Int("results", len(results)).Dur("elapsed", time.Since(start)).Msg("recommendations built")

	return results
}
