// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package recommend

import "strings"

// watchedKey is an exact (normalized title, year) pair. year 0 means the
// year was missing or unparsable.
type watchedKey struct {
	title string
	year  int
}

// WatchedIndex is a set of (normalized title, year) pairs used to exclude
// already-seen candidates before they are ever materialized.
//
// Matching is strict: a film with an unknown year matches only entries
// indexed with an unknown year, never dated entries, and vice versa.
// False negatives are accepted over false positives.
type WatchedIndex map[watchedKey]struct{}

// NewWatchedIndex returns an empty index.
func NewWatchedIndex() WatchedIndex {
	return make(WatchedIndex)
}

// BuildWatchedIndex indexes a user's watched films by (normalized title,
// year). Films with an empty title are not indexed.
func BuildWatchedIndex(films map[string]CatalogEntry) WatchedIndex {
	idx := NewWatchedIndex()
	for _, f := range films {
		idx.Add(f.Title, f.Year)
	}
	return idx
}

// Add inserts one (title, year) pair. Empty titles are ignored.
func (idx WatchedIndex) Add(title string, year int) {
	t := normalizeTitle(title)
	if t == "" {
		return
	}
	idx[watchedKey{title: t, year: year}] = struct{}{}
}

// Contains reports whether the exact (normalized title, year) pair is in
// the index. An unknown year on the query side does not broaden the match.
func (idx WatchedIndex) Contains(title string, year int) bool {
	t := normalizeTitle(title)
	if t == "" {
		return false
	}
	_, ok := idx[watchedKey{title: t, year: year}]
	return ok
}

// Union merges another index into this one.
func (idx WatchedIndex) Union(other WatchedIndex) {
	for k := range other {
		idx[k] = struct{}{}
	}
}

// Len returns the number of indexed pairs.
func (idx WatchedIndex) Len() int {
	return len(idx)
}

// normalizeTitle trims whitespace and case-folds a title.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
