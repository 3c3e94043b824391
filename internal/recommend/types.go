// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package recommend

import (
	"context"
	"sort"
	"strconv"
)

// Source identifies which aggregation pass contributed a candidate.
type Source string

const (
	// SourceWatchlist marks candidates from group members' watchlists.
	SourceWatchlist Source = "Watchlist"
	// SourceSimilar marks candidates from similarity expansion.
	SourceSimilar Source = "Similar"
	// SourcePopular marks candidates from the popularity backstop.
	SourcePopular Source = "Popular"
)

// sourceOrder fixes the presentation order of source tags.
var sourceOrder = []Source{SourceWatchlist, SourceSimilar, SourcePopular}

// CandidateKey identifies a candidate in one of two identity systems: a
// TMDB numeric id when the title could be resolved, else the Letterboxd
// slug. The two namespaces cannot collide: a key holds exactly one of the
// two. The zero CandidateKey is invalid.
type CandidateKey struct {
	tmdbID int
	slug   string
}

// SlugKey builds a key from a Letterboxd slug.
func SlugKey(slug string) CandidateKey {
	return CandidateKey{slug: slug}
}

// TMDBKey builds a key from a TMDB numeric id.
func TMDBKey(id int) CandidateKey {
	return CandidateKey{tmdbID: id}
}

// IsTMDB reports whether the key carries a TMDB id.
func (k CandidateKey) IsTMDB() bool {
	return k.tmdbID > 0
}

// TMDBID returns the TMDB id, or 0 for slug keys.
func (k CandidateKey) TMDBID() int {
	return k.tmdbID
}

// String returns the wire encoding: "tmdb:<id>" for resolved keys, the
// raw slug otherwise. The prefix keeps the two namespaces disjoint in the
// string form.
func (k CandidateKey) String() string {
	if k.IsTMDB() {
		return "tmdb:" + strconv.Itoa(k.tmdbID)
	}
	return k.slug
}

// Less defines a deterministic total order: TMDB keys sort before slug
// keys, TMDB keys by id, slug keys lexicographically.
func (k CandidateKey) Less(other CandidateKey) bool {
	if k.IsTMDB() != other.IsTMDB() {
		return k.IsTMDB()
	}
	if k.IsTMDB() {
		return k.tmdbID < other.tmdbID
	}
	return k.slug < other.slug
}

// CatalogEntry is one film from a user's catalog (watchlist or films).
type CatalogEntry struct {
	Slug   string
	Title  string
	Year   int // 0 = unknown
	Rating int // 1-10, 0 = unrated
	Liked  bool
}

// MetadataRecord is one resolved movie record from the metadata gateway.
type MetadataRecord struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Year        int     `json:"year,omitempty"`
	URL         string  `json:"url,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	Popularity  float64 `json:"popularity,omitempty"`
}

// CatalogGateway supplies per-user catalog data. Implemented by the
// Letterboxd client adapter; fallible per user, and a failure for one
// user never aborts the group.
type CatalogGateway interface {
	// GetWatchlist returns the user's watchlist keyed by slug.
	GetWatchlist(ctx context.Context, username string) (map[string]CatalogEntry, error)

	// GetFilms returns the user's watched films keyed by slug, with
	// rating and like flags.
	GetFilms(ctx context.Context, username string) (map[string]CatalogEntry, error)
}

// MetadataGateway supplies movie metadata lookups. Implemented by the
// TMDB client adapter. Available() is false when the gateway has no
// credentials; every capability degrades gracefully in that case.
type MetadataGateway interface {
	Available() bool

	// SearchMovie returns the best match for a title, or (nil, nil) when
	// there is none. A year-qualified search falls back internally to a
	// year-less retry.
	SearchMovie(ctx context.Context, title string, year int) (*MetadataRecord, error)

	// Recommendations returns up to 12 similar records for a TMDB id.
	Recommendations(ctx context.Context, id int) ([]MetadataRecord, error)

	// Popular returns one page of the popularity feed.
	Popular(ctx context.Context, page int) ([]MetadataRecord, error)
}

// Rating is one rated film in a user profile.
type Rating struct {
	Score int // normalized 1-10
	Title string
	Year  int
}

// UserProfile is one user's fetched catalog state. Profiles are built
// once per fetch cycle and not mutated afterwards.
type UserProfile struct {
	Username     string
	Watchlist    map[string]CatalogEntry
	WatchedSlugs map[string]struct{}
	Ratings      map[string]Rating
	Liked        map[string]struct{}
	WatchedIndex WatchedIndex
}

// GroupState owns the fetched profiles and the group-wide watched index.
// The index is always the exact union of the profiles' watched indexes,
// rebuilt whenever profiles are fetched, never patched incrementally.
type GroupState struct {
	Profiles           map[string]*UserProfile
	GlobalWatchedIndex WatchedIndex

	// Warnings holds per-user fetch failure messages ("user: cause").
	Warnings []string
}

// NewGroupState returns an empty group.
func NewGroupState() *GroupState {
	return &GroupState{
		Profiles:           make(map[string]*UserProfile),
		GlobalWatchedIndex: NewWatchedIndex(),
	}
}

// rebuildWatchedIndex recomputes the global index as the union of all
// profile indexes.
func (g *GroupState) rebuildWatchedIndex() {
	g.GlobalWatchedIndex = NewWatchedIndex()
	for _, p := range g.Profiles {
		g.GlobalWatchedIndex.Union(p.WatchedIndex)
	}
}

// usernames returns the profile usernames in sorted order so that
// aggregation passes iterate deterministically.
func (g *GroupState) usernames() []string {
	names := make([]string, 0, len(g.Profiles))
	for name := range g.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contribution is one similarity-pass vote for a candidate.
type Contribution struct {
	Points    float64 `json:"points"`
	FromTitle string  `json:"from_title"`
	FromScore int     `json:"from_score"`
}

// Candidate is a mutable in-flight recommendation, built up across the
// aggregation passes and finalized into a RankedResult at scoring time.
type Candidate struct {
	Key   CandidateKey
	Title string
	Year  int // 0 = unknown
	URL   string

	WatchlistUsers       map[string]struct{}
	SimilarContributions map[string][]Contribution
	Sources              map[Source]struct{}

	// Metadata is filled at most once; later enrichment only writes when
	// currently absent.
	Metadata *MetadataRecord
}

// attachMetadata fills the metadata record if none is attached yet
// (first writer wins).
func (c *Candidate) attachMetadata(rec *MetadataRecord) {
	if c.Metadata == nil && rec != nil {
		c.Metadata = rec
	}
}

// sortedSources returns the candidate's source tags in fixed
// presentation order.
func (c *Candidate) sortedSources() []string {
	out := make([]string, 0, len(c.Sources))
	for _, s := range sourceOrder {
		if _, ok := c.Sources[s]; ok {
			out = append(out, string(s))
		}
	}
	return out
}

// RankedResult is the immutable projection of a scored candidate.
type RankedResult struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Year          int               `json:"year,omitempty"`
	URL           string            `json:"url,omitempty"`
	Score         float64           `json:"score"`
	PosterURL     string            `json:"poster_url,omitempty"`
	Sources       []string          `json:"sources"`
	Justification map[string]string `json:"justification,omitempty"`
	Metadata      *MetadataRecord   `json:"metadata,omitempty"`
}

// Options selects the aggregation sources and scoring weights for one run.
type Options struct {
	// UseWatchlist enables the watchlist pass.
	UseWatchlist bool

	// UseSimilar enables the similarity pass (needs the metadata gateway).
	UseSimilar bool

	// UsePopular enables the popularity backstop.
	UsePopular bool

	// DiscoveryWeight scales the similarity component, clamped to [0,1].
	DiscoveryWeight float64

	// Sort selects the ranking mode; empty means SortSmartMatch.
	Sort SortMode
}

// clampedDiscoveryWeight returns DiscoveryWeight limited to [0,1].
func (o Options) clampedDiscoveryWeight() float64 {
	switch {
	case o.DiscoveryWeight < 0:
		return 0
	case o.DiscoveryWeight > 1:
		return 1
	default:
		return o.DiscoveryWeight
	}
}
