// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package recommend

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewEngineRequiresCatalog(t *testing.T) {
	_, err := NewEngine(nil, nil, testEngineConfig(), zerolog.Nop())
	if err != ErrNoCatalog {
		t.Errorf("NewEngine(nil catalog) error = %v, want ErrNoCatalog", err)
	}
}

func TestFetchProfilesBuildsGroupState(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.watchlists["alice"] = map[string]CatalogEntry{
		"heat": {Slug: "heat", Title: "Heat", Year: 1995},
	}
	catalog.films["alice"] = map[string]CatalogEntry{
		"parasite": {Slug: "parasite", Title: "Parasite", Year: 2019, Rating: 10, Liked: true},
		"unrated":  {Slug: "unrated", Title: "Unrated", Year: 2001, Liked: true},
	}
	catalog.films["bob"] = map[string]CatalogEntry{
		"solaris": {Slug: "solaris", Title: "Solaris", Year: 1972, Rating: 8},
	}

	eng := newTestEngine(t, catalog, nil)
	group := eng.FetchProfiles(context.Background(), []string{"alice", "bob"})

	if len(group.Profiles) != 2 {
		t.Fatalf("Profiles = %d, want 2", len(group.Profiles))
	}

	alice := group.Profiles["alice"]
	if len(alice.Watchlist) != 1 || len(alice.WatchedSlugs) != 2 {
		t.Errorf("alice profile: watchlist %d, watched %d", len(alice.Watchlist), len(alice.WatchedSlugs))
	}
	if r, ok := alice.Ratings["parasite"]; !ok || r.Score != 10 {
		t.Errorf("alice rating for parasite = %+v, want score 10", r)
	}
	if _, ok := alice.Ratings["unrated"]; ok {
		t.Error("unrated film must not appear in Ratings")
	}
	if _, ok := alice.Liked["unrated"]; !ok {
		t.Error("liked film missing from Liked set")
	}

	// Global index is the union of both users' watched indexes.
	for _, pair := range []struct {
		title string
		year  int
	}{{"Parasite", 2019}, {"Unrated", 2001}, {"Solaris", 1972}} {
		if !group.GlobalWatchedIndex.Contains(pair.title, pair.year) {
			t.Errorf("GlobalWatchedIndex missing (%q, %d)", pair.title, pair.year)
		}
	}
}

func TestFetchProfilesPartialFailure(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.watchlists["alice"] = map[string]CatalogEntry{
		"heat": {Slug: "heat", Title: "Heat", Year: 1995},
	}
	catalog.failUsers["broken"] = struct{}{}

	eng := newTestEngine(t, catalog, nil)
	group := eng.FetchProfiles(context.Background(), []string{"alice", "broken"})

	if len(group.Profiles) != 1 {
		t.Fatalf("Profiles = %d, want 1 (failed user excluded)", len(group.Profiles))
	}
	if len(group.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one entry", group.Warnings)
	}
}

func TestFetchProfilesDedupesAndTrims(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.watchlists["alice"] = map[string]CatalogEntry{}

	eng := newTestEngine(t, catalog, nil)
	group := eng.FetchProfiles(context.Background(), []string{" alice ", "alice", "", "  "})

	if len(group.Profiles) != 1 {
		t.Errorf("Profiles = %d, want 1 after trim and dedupe", len(group.Profiles))
	}
	if _, ok := group.Profiles["alice"]; !ok {
		t.Error("trimmed username should be the profile key")
	}
}

func TestRecommendWatchlistOnly(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.watchlists["alice"] = map[string]CatalogEntry{
		"dune-part-two": {Slug: "dune-part-two", Title: "Dune: Part Two", Year: 2024},
	}

	eng := newTestEngine(t, catalog, nil)
	group := eng.FetchProfiles(context.Background(), []string{"alice"})
	results := eng.Recommend(context.Background(), group, Options{UseWatchlist: true})

	if len(results) != 1 {
		t.Fatalf("Recommend() returned %d results, want 1", len(results))
	}
	got := results[0]
	if got.ID != "dune-part-two" {
		t.Errorf("ID = %q, want slug without a metadata gateway", got.ID)
	}
	if got.Score != 100 {
		t.Errorf("Score = %v, want 100", got.Score)
	}
	if !reflect.DeepEqual(got.Sources, []string{"Watchlist"}) {
		t.Errorf("Sources = %v, want [Watchlist]", got.Sources)
	}
	if got.Justification["Watchlist"] != "1 users (alice)" {
		t.Errorf("Justification = %v", got.Justification)
	}
}

func TestRecommendDiscoveryWeightHalvesSimilarity(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.films["alice"] = map[string]CatalogEntry{
		"parasite": {Slug: "parasite", Title: "Parasite", Year: 2019, Rating: 10},
	}

	metadata := newFakeMetadata()
	metadata.searchByTitle["Parasite"] = &MetadataRecord{ID: 496243, Title: "Parasite", Year: 2019}
	metadata.recsByID[496243] = []MetadataRecord{
		{ID: 1, Title: "Memories of Murder", Year: 2003},
		{ID: 2, Title: "Burning", Year: 2018},
		{ID: 3, Title: "Oldboy", Year: 2003},
	}

	eng := newTestEngine(t, catalog, metadata)
	group := eng.FetchProfiles(context.Background(), []string{"alice"})

	full := eng.Recommend(context.Background(), group, Options{UseSimilar: true, DiscoveryWeight: 1})
	if len(full) != 3 {
		t.Fatalf("Recommend() returned %d results, want 3", len(full))
	}
	for _, r := range full {
		if r.Score != 100 {
			t.Errorf("Score = %v at weight 1, want 100", r.Score)
		}
	}

	half := eng.Recommend(context.Background(), group, Options{UseSimilar: true, DiscoveryWeight: 0.5})
	for _, r := range half {
		if r.Score != 50 {
			t.Errorf("Score = %v at weight 0.5, want 50", r.Score)
		}
	}

	zero := eng.Recommend(context.Background(), group, Options{UseSimilar: true, DiscoveryWeight: 0})
	for _, r := range zero {
		if r.Score != 0 {
			t.Errorf("Score = %v at weight 0, want 0", r.Score)
		}
	}
}

func TestRecommendExcludesWatchedBeforeScoring(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.watchlists["alice"] = map[string]CatalogEntry{
		"dune-part-two": {Slug: "dune-part-two", Title: "Dune: Part Two", Year: 2024},
		"heat":          {Slug: "heat", Title: "Heat", Year: 1995},
	}
	catalog.films["bob"] = map[string]CatalogEntry{
		"dune-part-two": {Slug: "dune-part-two", Title: "dune: part two", Year: 2024, Rating: 6},
	}

	eng := newTestEngine(t, catalog, nil)
	group := eng.FetchProfiles(context.Background(), []string{"alice", "bob"})
	results := eng.Recommend(context.Background(), group, Options{UseWatchlist: true})

	if len(results) != 1 {
		t.Fatalf("Recommend() returned %d results, want 1", len(results))
	}
	if results[0].ID != "heat" {
		t.Errorf("ID = %q, want the unwatched title only", results[0].ID)
	}
}

func TestRecommendIdempotent(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.watchlists["alice"] = map[string]CatalogEntry{
		"heat":    {Slug: "heat", Title: "Heat", Year: 1995},
		"ronin":   {Slug: "ronin", Title: "Ronin", Year: 1998},
		"solaris": {Slug: "solaris", Title: "Solaris", Year: 1972},
	}
	catalog.watchlists["bob"] = map[string]CatalogEntry{
		"heat": {Slug: "heat", Title: "Heat", Year: 1995},
	}
	catalog.films["alice"] = map[string]CatalogEntry{
		"parasite": {Slug: "parasite", Title: "Parasite", Year: 2019, Rating: 10},
	}

	metadata := newFakeMetadata()
	metadata.searchByTitle["Heat"] = &MetadataRecord{ID: 949, Title: "Heat", Year: 1995}
	metadata.searchByTitle["Parasite"] = &MetadataRecord{ID: 496243, Title: "Parasite", Year: 2019}
	metadata.recsByID[496243] = []MetadataRecord{
		{ID: 1, Title: "Memories of Murder", Year: 2003},
		{ID: 2, Title: "Burning", Year: 2018},
	}

	opts := Options{UseWatchlist: true, UseSimilar: true, DiscoveryWeight: 0.5}

	eng := newTestEngine(t, catalog, metadata)
	group := eng.FetchProfiles(context.Background(), []string{"alice", "bob"})
	first := eng.Recommend(context.Background(), group, opts)

	// A fresh engine with the same fixed seed must reproduce the run
	// exactly, results and order included.
	eng2 := newTestEngine(t, catalog, metadata)
	group2 := eng2.FetchProfiles(context.Background(), []string{"alice", "bob"})
	second := eng2.Recommend(context.Background(), group2, opts)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
