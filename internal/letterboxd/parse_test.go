// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package letterboxd

import (
	"strings"
	"testing"
)

const watchlistPageHTML = `<html><body>
<ul class="poster-list">
  <li class="poster-container">
    <div class="film-poster" data-film-slug="dune-part-two" data-film-name="Dune: Part Two" data-film-release-year="2024">
      <img alt="Dune: Part Two">
    </div>
  </li>
  <li class="poster-container">
    <div class="film-poster" data-film-slug="/film/stalker/" data-film-release-year="1979">
      <img alt="Stalker">
    </div>
  </li>
  <li class="poster-container">
    <div class="film-poster" data-film-slug="mystery-film" data-film-name="Mystery Film" data-film-release-year="">
      <img alt="Mystery Film">
    </div>
  </li>
</ul>
<div class="pagination"><a class="next" href="/alice/watchlist/page/2/">Next</a></div>
</body></html>`

const filmsPageHTML = `<html><body>
<ul class="poster-list">
  <li class="poster-container">
    <div class="film-poster" data-film-slug="parasite-2019" data-film-name="Parasite" data-film-release-year="2019"></div>
    <p class="poster-viewingdata">
      <span class="rating rated-10">★★★★★</span>
      <span class="like liked-micro has-icon icon-liked icon-16"></span>
    </p>
  </li>
  <li class="poster-container">
    <div class="film-poster" data-film-slug="the-room" data-film-name="The Room" data-film-release-year="2003"></div>
    <p class="poster-viewingdata">
      <span class="rating rated-2">★</span>
    </p>
  </li>
  <li class="poster-container">
    <div class="film-poster" data-film-slug="unrated-film" data-film-name="Unrated Film" data-film-release-year="2020"></div>
  </li>
</ul>
</body></html>`

func TestParseWatchlistPage(t *testing.T) {
	films, hasNext, err := parsePosterPage(strings.NewReader(watchlistPageHTML))
	if err != nil {
		t.Fatalf("parsePosterPage failed: %v", err)
	}
	if !hasNext {
		t.Error("expected next page link to be detected")
	}
	if len(films) != 3 {
		t.Fatalf("expected 3 films, got %d", len(films))
	}

	dune := films[0]
	if dune.Slug != "dune-part-two" || dune.Title != "Dune: Part Two" || dune.Year != 2024 {
		t.Errorf("unexpected first film: %+v", dune)
	}

	// Path-decorated slug and title fallback from img alt
	stalker := films[1]
	if stalker.Slug != "stalker" {
		t.Errorf("expected normalized slug, got %q", stalker.Slug)
	}
	if stalker.Title != "Stalker" {
		t.Errorf("expected title from img alt, got %q", stalker.Title)
	}

	// Missing year coerced to 0
	if films[2].Year != 0 {
		t.Errorf("expected unknown year 0, got %d", films[2].Year)
	}
}

func TestParseFilmsPageRatingsAndLikes(t *testing.T) {
	films, hasNext, err := parsePosterPage(strings.NewReader(filmsPageHTML))
	if err != nil {
		t.Fatalf("parsePosterPage failed: %v", err)
	}
	if hasNext {
		t.Error("expected no next page")
	}
	if len(films) != 3 {
		t.Fatalf("expected 3 films, got %d", len(films))
	}

	parasite := films[0]
	if parasite.Rating != 10 {
		t.Errorf("expected rating 10, got %d", parasite.Rating)
	}
	if !parasite.Liked {
		t.Error("expected parasite to be liked")
	}

	if films[1].Rating != 2 {
		t.Errorf("expected rating 2, got %d", films[1].Rating)
	}
	if films[1].Liked {
		t.Error("did not expect the-room to be liked")
	}

	if films[2].Rating != 0 {
		t.Errorf("expected unrated film rating 0, got %d", films[2].Rating)
	}
}

func TestParseEmptyPage(t *testing.T) {
	films, hasNext, err := parsePosterPage(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("parsePosterPage failed: %v", err)
	}
	if len(films) != 0 || hasNext {
		t.Errorf("expected empty result, got %d films hasNext=%v", len(films), hasNext)
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"dune-part-two", "dune-part-two"},
		{"/film/dune-part-two/", "dune-part-two"},
		{" /film/stalker/ ", "stalker"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeSlug(tt.input); got != tt.want {
			t.Errorf("normalizeSlug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFilmURL(t *testing.T) {
	f := Film{Slug: "dune-part-two"}
	if got := f.URL(); got != "https://letterboxd.com/film/dune-part-two/" {
		t.Errorf("unexpected film URL: %s", got)
	}
}
