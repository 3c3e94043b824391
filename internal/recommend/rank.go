// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package recommend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SortMode selects the ranking order for finalized results.
type SortMode string

const (
	// SortSmartMatch orders by computed score, descending. Equal scores
	// retain input (candidate creation) order.
	SortSmartMatch SortMode = "smart"

	// SortTMDBRating orders by the metadata vote average, descending.
	// Candidates without metadata rank as 0.
	SortTMDBRating SortMode = "rating"

	// SortReleaseYear orders by year compared as strings, descending.
	// The string comparison is an inherited quirk: with full four-digit
	// years it behaves numerically, but partial-year data can sort
	// anomalously ("9" after "10"). Preserved deliberately.
	SortReleaseYear SortMode = "year"
)

// ParseSortMode maps user-facing sort names onto a SortMode.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smart", "smart_match":
		return SortSmartMatch, nil
	case "rating", "tmdb_rating":
		return SortTMDBRating, nil
	case "year", "release_year":
		return SortReleaseYear, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// Rank orders results by the given mode and truncates to the configured
// maximum. All sorts are stable, so equal keys keep input order.
func (e *Engine) Rank(results []RankedResult, mode SortMode) []RankedResult {
	switch mode {
	case SortTMDBRating:
		sort.SliceStable(results, func(i, j int) bool {
			return voteAverage(results[i]) > voteAverage(results[j])
		})
	case SortReleaseYear:
		sort.SliceStable(results, func(i, j int) bool {
			return yearString(results[i]) > yearString(results[j])
		})
	default: // SortSmartMatch
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	if len(results) > e.cfg.MaxResults {
		results = results[:e.cfg.MaxResults]
	}
	return results
}

// voteAverage returns the metadata rating, or 0 when absent.
func voteAverage(r RankedResult) float64 {
	if r.Metadata == nil {
		return 0
	}
	return r.Metadata.VoteAverage
}

// yearString renders the year for the lexicographic release-year sort.
func yearString(r RankedResult) string {
	return strconv.Itoa(r.Year)
}
