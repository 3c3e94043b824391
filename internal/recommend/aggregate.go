// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CandidateSet is the explicit builder for the candidate map. All
// candidate creation goes through GetOrCreate, which enforces the
// watched-index precondition and first-writer-wins base fields.
//
// Creation order is recorded and later used as the tie order for equal
// scores; that order depends on pass and user iteration and is
// implementation-defined, not a contract.
type CandidateSet struct {
	candidates map[CandidateKey]*Candidate
	order      []CandidateKey
	watched    WatchedIndex
}

// NewCandidateSet returns an empty set guarded by the given group-wide
// watched index.
func NewCandidateSet(watched WatchedIndex) *CandidateSet {
	return &CandidateSet{
		candidates: make(map[CandidateKey]*Candidate),
		watched:    watched,
	}
}

// GetOrCreate returns the candidate for key, creating it if absent.
// Returns nil when (title, year) is in the watched index: a watched film
// must never be materialized as a candidate. Base fields (title, year,
// url) are set only at creation; later contributors merge into the
// existing candidate without touching them.
func (s *CandidateSet) GetOrCreate(key CandidateKey, title string, year int, url string) *Candidate {
	if s.watched.Contains(title, year) {
		return nil
	}

	if existing, ok := s.candidates[key]; ok {
		return existing
	}

	cand := &Candidate{
		Key:                  key,
		Title:                title,
		Year:                 year,
		URL:                  url,
		WatchlistUsers:       make(map[string]struct{}),
		SimilarContributions: make(map[string][]Contribution),
		Sources:              make(map[Source]struct{}),
	}
	s.candidates[key] = cand
	s.order = append(s.order, key)
	return cand
}

// Get returns the candidate for key, or nil.
func (s *CandidateSet) Get(key CandidateKey) *Candidate {
	return s.candidates[key]
}

// Len returns the number of candidates.
func (s *CandidateSet) Len() int {
	return len(s.candidates)
}

// All returns the candidates in creation order.
func (s *CandidateSet) All() []*Candidate {
	out := make([]*Candidate, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.candidates[key])
	}
	return out
}

// Aggregate builds the deduplicated candidate set from the enabled
// sources. The three passes run in order because later passes merge into
// candidates created by earlier ones, and the popularity pass guards on
// the candidate count the first two produced.
func (e *Engine) Aggregate(ctx context.Context, group *GroupState, opts Options) *CandidateSet {
	set := NewCandidateSet(group.GlobalWatchedIndex)

	if opts.UseWatchlist {
		e.watchlistPass(ctx, group, set)
	}
	if opts.UseSimilar && e.metadataAvailable() {
		e.similarityPass(ctx, group, set)
	}
	if opts.UsePopular && e.metadataAvailable() && set.Len() < e.cfg.PopularBackfillThreshold {
		e.popularityPass(ctx, set)
	}
	if e.metadataAvailable() {
		e.enrich(ctx, set)
	}

	e.log.Debug().Int("candidates", set.Len()).Msg("aggregation complete")
	return set
}

// watchlistPass adds every group member's watchlist entries as
// candidates, keyed by TMDB id when the title resolves, else by slug.
func (e *Engine) watchlistPass(ctx context.Context, group *GroupState, set *CandidateSet) {
	for _, username := range group.usernames() {
		profile := group.Profiles[username]

		for _, slug := range sortedKeys(profile.Watchlist) {
			entry := profile.Watchlist[slug]

			title := entry.Title
			if title == "" {
				title = humanizeSlug(slug)
			}

			key := SlugKey(slug)
			var resolved *MetadataRecord
			if e.metadataAvailable() {
				// A failed search leaves the slug key in place.
				if rec, err := e.metadata.SearchMovie(ctx, title, entry.Year); err == nil && rec != nil {
					key = TMDBKey(rec.ID)
					resolved = rec
				}
			}

			cand := set.GetOrCreate(key, title, entry.Year, letterboxdFilmURL(slug))
			if cand == nil {
				continue // watched by someone in the group
			}
			cand.attachMetadata(resolved)
			cand.WatchlistUsers[username] = struct{}{}
			cand.Sources[SourceWatchlist] = struct{}{}
		}
	}
}

// seed is one similarity-pass seed film for a user.
type seed struct {
	slug  string
	score int
	title string
}

// similarityPass expands each user's highest-conviction films into
// similar titles via the metadata gateway.
func (e *Engine) similarityPass(ctx context.Context, group *GroupState, set *CandidateSet) {
	for _, username := range group.usernames() {
		profile := group.Profiles[username]

		seeds := e.collectSeeds(profile)
		e.shuffleSeeds(seeds)
		if len(seeds) > e.cfg.MaxSeedsPerUser {
			seeds = seeds[:e.cfg.MaxSeedsPerUser]
		}

		for _, sd := range seeds {
			// Seed years are not reliably available, so resolution is a
			// year-less title search.
			resolved, err := e.metadata.SearchMovie(ctx, sd.title, 0)
			if err != nil || resolved == nil {
				continue
			}

			records, err := e.metadata.Recommendations(ctx, resolved.ID)
			if err != nil {
				continue
			}
			if len(records) > e.cfg.MaxSimilarPerSeed {
				records = records[:e.cfg.MaxSimilarPerSeed]
			}

			for i := range records {
				rec := records[i]
				cand := set.GetOrCreate(TMDBKey(rec.ID), rec.Title, rec.Year, rec.URL)
				if cand == nil {
					continue
				}
				cand.attachMetadata(&rec)
				cand.Sources[SourceSimilar] = struct{}{}
				cand.SimilarContributions[username] = append(cand.SimilarContributions[username], Contribution{
					Points:    seedPoints(sd.score),
					FromTitle: resolved.Title,
					FromScore: sd.score,
				})
			}
		}
	}
}

// collectSeeds gathers a user's ratings at or above the threshold, then
// backfills liked-but-unrated films (treated as a 10) when too few exist.
func (e *Engine) collectSeeds(profile *UserProfile) []seed {
	var seeds []seed
	for _, slug := range sortedKeys(profile.Ratings) {
		r := profile.Ratings[slug]
		if r.Score < e.cfg.SeedRatingThreshold {
			continue
		}
		title := r.Title
		if title == "" {
			title = humanizeSlug(slug)
		}
		seeds = append(seeds, seed{slug: slug, score: r.Score, title: title})
	}

	if len(seeds) < e.cfg.MinSeeds {
		liked := make([]string, 0, len(profile.Liked))
		for slug := range profile.Liked {
			if _, rated := profile.Ratings[slug]; !rated {
				liked = append(liked, slug)
			}
		}
		sort.Strings(liked)
		for _, slug := range liked {
			seeds = append(seeds, seed{slug: slug, score: 10, title: humanizeSlug(slug)})
		}
	}

	return seeds
}

// shuffleSeeds randomizes seed order to break positional bias from
// catalog ordering before the per-user cap is applied.
func (e *Engine) shuffleSeeds(seeds []seed) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	e.rng.Shuffle(len(seeds), func(i, j int) {
		seeds[i], seeds[j] = seeds[j], seeds[i]
	})
}

// seedPoints maps a seed rating onto contribution points. Higher
// conviction seeds propagate more weight; the four-tier table is a fixed
// constant.
func seedPoints(score int) float64 {
	const base = 100.0
	switch score {
	case 10:
		return base
	case 9:
		return base / 2
	case 8:
		return base / 3
	default:
		return base / 4
	}
}

// popularityPass is a volume backstop: one page of the popularity feed,
// watched-filtered and tagged Popular. It only runs when the earlier
// passes produced too few candidates.
func (e *Engine) popularityPass(ctx context.Context, set *CandidateSet) {
	records, err := e.metadata.Popular(ctx, 1)
	if err != nil {
		return
	}

	for i := range records {
		rec := records[i]
		cand := set.GetOrCreate(TMDBKey(rec.ID), rec.Title, rec.Year, rec.URL)
		if cand == nil {
			continue
		}
		cand.attachMetadata(&rec)
		cand.Sources[SourcePopular] = struct{}{}
	}
}

// enrich fills metadata for candidates that still lack it, typically
// slug-keyed watchlist entries whose creation-time search failed or was
// skipped. Identity never changes here, only display metadata.
func (e *Engine) enrich(ctx context.Context, set *CandidateSet) {
	for _, cand := range set.All() {
		if cand.Metadata != nil {
			continue
		}
		rec, err := e.metadata.SearchMovie(ctx, cand.Title, cand.Year)
		if err != nil || rec == nil {
			continue
		}
		cand.attachMetadata(rec)
	}
}

// metadataAvailable reports whether the metadata gateway can be used.
func (e *Engine) metadataAvailable() bool {
	return e.metadata != nil && e.metadata.Available()
}

// letterboxdFilmURL builds the film page URL for a slug.
func letterboxdFilmURL(slug string) string {
	return fmt.Sprintf("https://letterboxd.com/film/%s/", slug)
}

// humanizeSlug derives a display title from a slug:
// "dune-part-two" -> "Dune Part Two".
func humanizeSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// sortedKeys returns map keys in sorted order for deterministic iteration.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
