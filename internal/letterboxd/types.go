// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package letterboxd implements the catalog gateway: it scrapes a user's
// public watchlist and watched-films pages into slug-keyed film maps.
//
// Failures are reported per user via FetchError so callers can isolate a
// broken profile without aborting the rest of the group.
package letterboxd

import "fmt"

// Film is a single entry scraped from a Letterboxd poster grid.
type Film struct {
	// Slug is the Letterboxd film slug ("dune-part-two").
	Slug string `json:"slug"`

	// Title is the display title.
	Title string `json:"title"`

	// Year is the release year; 0 when unknown.
	Year int `json:"year"`

	// Rating is the user's rating on the 1-10 scale; 0 when unrated.
	// Only populated on films pages, never on watchlists.
	Rating int `json:"rating,omitempty"`

	// Liked indicates the user liked the film.
	Liked bool `json:"liked,omitempty"`
}

// URL returns the Letterboxd page for the film.
func (f *Film) URL() string {
	return fmt.Sprintf("https://letterboxd.com/film/%s/", f.Slug)
}

// FetchError is a per-user catalog fetch failure. It carries the username
// so the failure can be surfaced as a warning and the user excluded from
// aggregation, distinct from an empty (but successful) result.
type FetchError struct {
	Username string
	Err      error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Username, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
