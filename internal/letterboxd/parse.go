// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package letterboxd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parsePosterPage extracts films from a Letterboxd poster-grid page
// (watchlist or films). It returns the films in document order and whether
// the page links to a next page.
//
// Grid items are li.poster-container elements whose film div carries
// data-film-slug, data-film-name, and data-film-release-year attributes.
// On films pages the viewing data below the poster holds the user's rating
// (span.rating with a rated-N class) and like flag (span.icon-liked).
func parsePosterPage(r io.Reader) ([]Film, bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, false, fmt.Errorf("parse page: %w", err)
	}

	var films []Film
	doc.Find("li.poster-container").Each(func(_ int, item *goquery.Selection) {
		poster := item.Find("[data-film-slug]").First()
		if poster.Length() == 0 {
			return
		}

		slug := normalizeSlug(poster.AttrOr("data-film-slug", ""))
		if slug == "" {
			return
		}

		title := strings.TrimSpace(poster.AttrOr("data-film-name", ""))
		if title == "" {
			title = strings.TrimSpace(poster.Find("img").First().AttrOr("alt", ""))
		}

		film := Film{
			Slug:   slug,
			Title:  title,
			Year:   parseYear(poster.AttrOr("data-film-release-year", "")),
			Rating: parseRating(item),
			Liked:  item.Find("span.icon-liked").Length() > 0,
		}
		films = append(films, film)
	})

	hasNext := doc.Find("a.next").Length() > 0
	return films, hasNext, nil
}

// normalizeSlug strips path decoration from a slug attribute, accepting
// both "dune-part-two" and "/film/dune-part-two/".
func normalizeSlug(raw string) string {
	slug := strings.Trim(strings.TrimSpace(raw), "/")
	slug = strings.TrimPrefix(slug, "film/")
	return slug
}

// parseYear coerces a year attribute to an int; 0 on missing or malformed.
func parseYear(raw string) int {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// parseRating extracts the 1-10 rating from the rated-N class on the
// item's rating span; 0 when unrated or malformed.
func parseRating(item *goquery.Selection) int {
	rating := 0
	item.Find("span.rating").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		classes := strings.Fields(s.AttrOr("class", ""))
		for _, cls := range classes {
			if !strings.HasPrefix(cls, "rated-") {
				continue
			}
			val, err := strconv.Atoi(strings.TrimPrefix(cls, "rated-"))
			if err == nil && val > 0 && val <= 10 {
				rating = val
				return false
			}
		}
		return true
	})
	return rating
}
