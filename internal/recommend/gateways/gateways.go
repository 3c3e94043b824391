// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package gateways adapts the Letterboxd and TMDB clients to the
// recommend package's gateway interfaces, keeping the engine free of
// client dependencies.
package gateways

import (
	"context"

	"github.com/reelscout/reelscout/internal/letterboxd"
	"github.com/reelscout/reelscout/internal/recommend"
	"github.com/reelscout/reelscout/internal/tmdb"
)

// Catalog adapts letterboxd.Client to recommend.CatalogGateway.
type Catalog struct {
	Client *letterboxd.Client
}

// GetWatchlist implements recommend.CatalogGateway.
func (c Catalog) GetWatchlist(ctx context.Context, username string) (map[string]recommend.CatalogEntry, error) {
	films, err := c.Client.GetWatchlist(ctx, username)
	if err != nil {
		return nil, err
	}
	return toEntries(films), nil
}

// GetFilms implements recommend.CatalogGateway.
func (c Catalog) GetFilms(ctx context.Context, username string) (map[string]recommend.CatalogEntry, error) {
	films, err := c.Client.GetFilms(ctx, username)
	if err != nil {
		return nil, err
	}
	return toEntries(films), nil
}

// toEntries converts scraped films into catalog entries.
func toEntries(films map[string]letterboxd.Film) map[string]recommend.CatalogEntry {
	out := make(map[string]recommend.CatalogEntry, len(films))
	for slug, f := range films {
		out[slug] = recommend.CatalogEntry{
			Slug:   f.Slug,
			Title:  f.Title,
			Year:   f.Year,
			Rating: f.Rating,
			Liked:  f.Liked,
		}
	}
	return out
}

// Metadata adapts tmdb.Client to recommend.MetadataGateway.
type Metadata struct {
	Client *tmdb.Client
}

// Available implements recommend.MetadataGateway.
func (m Metadata) Available() bool {
	return m.Client != nil && m.Client.Available()
}

// SearchMovie implements recommend.MetadataGateway.
func (m Metadata) SearchMovie(ctx context.Context, title string, year int) (*recommend.MetadataRecord, error) {
	movie, err := m.Client.SearchMovie(ctx, title, year)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, nil
	}
	return toRecord(movie), nil
}

// Recommendations implements recommend.MetadataGateway.
func (m Metadata) Recommendations(ctx context.Context, id int) ([]recommend.MetadataRecord, error) {
	movies, err := m.Client.Recommendations(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRecords(movies), nil
}

// Popular implements recommend.MetadataGateway.
func (m Metadata) Popular(ctx context.Context, page int) ([]recommend.MetadataRecord, error) {
	movies, err := m.Client.Popular(ctx, page)
	if err != nil {
		return nil, err
	}
	return toRecords(movies), nil
}

// toRecord converts one TMDB movie into a metadata record.
func toRecord(m *tmdb.Movie) *recommend.MetadataRecord {
	return &recommend.MetadataRecord{
		ID:          m.ID,
		Title:       m.Title,
		Year:        m.Year(),
		URL:         m.URL(),
		PosterURL:   tmdb.ImageURL(m.PosterPath, ""),
		VoteAverage: m.VoteAverage,
		Popularity:  m.Popularity,
	}
}

// toRecords converts a movie list.
func toRecords(movies []tmdb.Movie) []recommend.MetadataRecord {
	out := make([]recommend.MetadataRecord, 0, len(movies))
	for i := range movies {
		out = append(out, *toRecord(&movies[i]))
	}
	return out
}
