// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reelscout/reelscout/internal/config"
	"github.com/reelscout/reelscout/internal/recommend"
)

// fakeRecommender serves canned engine results and records the options
// it was called with.
type fakeRecommender struct {
	group   *recommend.GroupState
	results []recommend.RankedResult

	gotUsernames []string
	gotOpts      recommend.Options
}

func (f *fakeRecommender) FetchProfiles(_ context.Context, usernames []string) *recommend.GroupState {
	f.gotUsernames = usernames
	if f.group != nil {
		return f.group
	}
	return recommend.NewGroupState()
}

func (f *fakeRecommender) Recommend(_ context.Context, _ *recommend.GroupState, opts recommend.Options) []recommend.RankedResult {
	f.gotOpts = opts
	return f.results
}

// groupWithProfiles returns a group state with n placeholder profiles so
// the handler's all-failed guard passes.
func groupWithProfiles(n int, warnings ...string) *recommend.GroupState {
	g := recommend.NewGroupState()
	for i := 0; i < n; i++ {
		g.Profiles[string(rune('a'+i))] = &recommend.UserProfile{}
	}
	g.Warnings = warnings
	return g
}

func newTestHandler(fake *fakeRecommender) *Handler {
	return NewHandler(fake, true, zerolog.Nop())
}

func postRecommendations(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Recommendations(w, req)
	return w
}

func TestRecommendationsSuccess(t *testing.T) {
	fake := &fakeRecommender{
		group: groupWithProfiles(2, "carol: fetch failed"),
		results: []recommend.RankedResult{
			{ID: "tmdb:949", Title: "Heat", Score: 200, Sources: []string{"Watchlist"}},
		},
	}
	h := newTestHandler(fake)

	w := postRecommendations(t, h, `{"usernames":["alice","bob"],"use_similar":true,"discovery_weight":0.5,"sort":"smart"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp RecommendationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Errorf("count = %d, results = %d, want 1", resp.Count, len(resp.Results))
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("warnings = %v, want fetch warning passed through", resp.Warnings)
	}

	if !fake.gotOpts.UseWatchlist {
		t.Error("UseWatchlist should default to true when omitted")
	}
	if !fake.gotOpts.UseSimilar || fake.gotOpts.DiscoveryWeight != 0.5 {
		t.Errorf("opts = %+v, want similar enabled at weight 0.5", fake.gotOpts)
	}
	if fake.gotOpts.Sort != recommend.SortSmartMatch {
		t.Errorf("sort = %q, want smart", fake.gotOpts.Sort)
	}
}

func TestRecommendationsWatchlistOptOut(t *testing.T) {
	fake := &fakeRecommender{group: groupWithProfiles(1)}
	h := newTestHandler(fake)

	w := postRecommendations(t, h, `{"usernames":["alice"],"use_watchlist":false,"use_popular":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if fake.gotOpts.UseWatchlist {
		t.Error("explicit use_watchlist=false should be honored")
	}
	if !fake.gotOpts.UsePopular {
		t.Error("use_popular should be passed through")
	}
}

func TestRecommendationsValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing usernames", `{}`, http.StatusBadRequest},
		{"empty usernames", `{"usernames":[]}`, http.StatusBadRequest},
		{"blank username", `{"usernames":[""]}`, http.StatusBadRequest},
		{"unknown sort", `{"usernames":["alice"],"sort":"bogus"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeRecommender{group: groupWithProfiles(1)})
			w := postRecommendations(t, h, tt.body)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.code, w.Body.String())
			}

			var resp errorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error response not valid JSON: %v", err)
			}
			if resp.Error.Code == "" {
				t.Error("error response missing code")
			}
		})
	}
}

func TestRecommendationsAllFetchesFailed(t *testing.T) {
	fake := &fakeRecommender{group: groupWithProfiles(0, "alice: fetch failed")}
	h := newTestHandler(fake)

	w := postRecommendations(t, h, `{"usernames":["alice"]}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 when no profiles resolve", w.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&fakeRecommender{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if resp.Status != "ok" || !resp.TMDBEnabled {
		t.Errorf("response = %+v", resp)
	}
}

func TestRouterWiring(t *testing.T) {
	fake := &fakeRecommender{group: groupWithProfiles(1)}
	h := newTestHandler(fake)
	rt := NewRouter(h, config.ServerConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   100,
		RateLimitWindow: time.Minute,
	})
	srv := httptest.NewServer(rt.Setup())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got == "" {
		t.Error("missing X-Request-ID header")
	}

	metricsResp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer metricsResp.Body.Close()
	if metricsResp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", metricsResp.StatusCode)
	}
}
