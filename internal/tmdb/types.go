// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package tmdb implements the TMDB metadata gateway: best-match movie
// search, per-movie recommendation lists, and the popularity feed.
//
// All calls are memoized through an injectable cache and rate limited.
// A client constructed without an API key reports Available() == false and
// returns ErrUnavailable from every call; callers are expected to degrade
// gracefully.
package tmdb

import (
	"fmt"
	"strconv"
)

// Movie is a single TMDB movie record as returned by search,
// recommendations, and popular endpoints.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	Overview    string  `json:"overview,omitempty"`
}

// Year extracts the release year from ReleaseDate ("2024-02-27" -> 2024).
// Returns 0 when the date is missing or unparsable.
func (m *Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// URL returns the TMDB page for the movie.
func (m *Movie) URL() string {
	return fmt.Sprintf("https://www.themoviedb.org/movie/%d", m.ID)
}

// searchResponse is the envelope for list-shaped TMDB responses.
type searchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// imageBaseURL is the TMDB image CDN prefix.
const imageBaseURL = "https://image.tmdb.org/t/p/"

// DefaultPosterSize is the poster size used when none is specified.
const DefaultPosterSize = "w500"

// ImageURL builds a full image URL from a TMDB poster path.
// Returns an empty string for an empty path (callers fall back to a
// placeholder client-side).
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = DefaultPosterSize
	}
	return imageBaseURL + size + path
}
