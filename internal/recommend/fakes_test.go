// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reelscout/reelscout/internal/config"
)

// errFetch is the synthetic per-user fetch failure used in tests.
var errFetch = errors.New("fetch failed")

// fakeCatalog serves canned per-user catalog data.
type fakeCatalog struct {
	watchlists map[string]map[string]CatalogEntry
	films      map[string]map[string]CatalogEntry
	failUsers  map[string]struct{}
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		watchlists: make(map[string]map[string]CatalogEntry),
		films:      make(map[string]map[string]CatalogEntry),
		failUsers:  make(map[string]struct{}),
	}
}

func (f *fakeCatalog) GetWatchlist(_ context.Context, username string) (map[string]CatalogEntry, error) {
	if _, fail := f.failUsers[username]; fail {
		return nil, errFetch
	}
	out := f.watchlists[username]
	if out == nil {
		out = map[string]CatalogEntry{}
	}
	return out, nil
}

func (f *fakeCatalog) GetFilms(_ context.Context, username string) (map[string]CatalogEntry, error) {
	if _, fail := f.failUsers[username]; fail {
		return nil, errFetch
	}
	out := f.films[username]
	if out == nil {
		out = map[string]CatalogEntry{}
	}
	return out, nil
}

// fakeMetadata serves canned search, recommendation, and popularity data.
type fakeMetadata struct {
	available bool

	// searchByTitle maps a title to its resolved record; absent titles
	// return (nil, nil) like a no-match search.
	searchByTitle map[string]*MetadataRecord

	// recsByID maps a TMDB id to its similar records.
	recsByID map[int][]MetadataRecord

	popular []MetadataRecord

	searchCalls  int
	popularCalls int
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{
		available:     true,
		searchByTitle: make(map[string]*MetadataRecord),
		recsByID:      make(map[int][]MetadataRecord),
	}
}

func (f *fakeMetadata) Available() bool { return f.available }

func (f *fakeMetadata) SearchMovie(_ context.Context, title string, _ int) (*MetadataRecord, error) {
	f.searchCalls++
	rec, ok := f.searchByTitle[title]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeMetadata) Recommendations(_ context.Context, id int) ([]MetadataRecord, error) {
	return f.recsByID[id], nil
}

func (f *fakeMetadata) Popular(_ context.Context, _ int) ([]MetadataRecord, error) {
	f.popularCalls++
	return f.popular, nil
}

// testEngineConfig returns the production defaults with a fixed RNG seed
// so shuffles are reproducible.
func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		WatchlistPoints:          100,
		SeedRatingThreshold:      8,
		MinSeeds:                 5,
		MaxSeedsPerUser:          6,
		MaxSimilarPerSeed:        12,
		PopularBackfillThreshold: 20,
		MaxResults:               100,
		Seed:                     1,
	}
}

func newTestEngine(t *testing.T, catalog CatalogGateway, metadata MetadataGateway) *Engine {
	t.Helper()
	eng, err := NewEngine(catalog, metadata, testEngineConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return eng
}
