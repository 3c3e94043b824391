// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reelscout/reelscout/internal/recommend"
	"github.com/reelscout/reelscout/internal/validation"
)

// maxRequestBody bounds the recommendation request body size.
const maxRequestBody = 64 * 1024

// Recommender is the engine surface the handlers consume.
type Recommender interface {
	FetchProfiles(ctx context.Context, usernames []string) *recommend.GroupState
	Recommend(ctx context.Context, group *recommend.GroupState, opts recommend.Options) []recommend.RankedResult
}

// Handler serves the Reelscout API endpoints.
type Handler struct {
	engine      Recommender
	tmdbEnabled bool
	log         zerolog.Logger
}

// NewHandler creates the API handler set.
func NewHandler(engine Recommender, tmdbEnabled bool, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:      engine,
		tmdbEnabled: tmdbEnabled,
		log:         logger.With().Str("component", "api").Logger(),
	}
}

// RecommendationsRequest is the POST /api/v1/recommendations body.
type RecommendationsRequest struct {
	Usernames []string `json:"usernames" validate:"required,min=1,max=20,dive,lbusername"`

	// Source toggles. Watchlist defaults to true when the field is
	// omitted, which is why it is a pointer.
	UseWatchlist *bool `json:"use_watchlist"`
	UseSimilar   bool  `json:"use_similar"`
	UsePopular   bool  `json:"use_popular"`

	// DiscoveryWeight scales similarity contributions; out-of-range
	// values are clamped, not rejected.
	DiscoveryWeight float64 `json:"discovery_weight"`

	Sort string `json:"sort"`
}

// RecommendationsResponse is the recommendation reply envelope.
type RecommendationsResponse struct {
	Results  []recommend.RankedResult `json:"results"`
	Warnings []string                 `json:"warnings,omitempty"`
	Count    int                      `json:"count"`
}

// Recommendations handles POST /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationsRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message())
		return
	}

	sortMode, err := recommend.ParseSortMode(req.Sort)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SORT", err.Error())
		return
	}

	opts := recommend.Options{
		UseWatchlist:    req.UseWatchlist == nil || *req.UseWatchlist,
		UseSimilar:      req.UseSimilar,
		UsePopular:      req.UsePopular,
		DiscoveryWeight: req.DiscoveryWeight,
		Sort:            sortMode,
	}

	ctx := r.Context()
	h.log.Info().
		Str("request_id", requestIDFrom(ctx)).
		Int("usernames", len(req.Usernames)).
		Bool("similar", opts.UseSimilar).
		Bool("popular", opts.UsePopular).
		Msg("building recommendations")

	group := h.engine.FetchProfiles(ctx, req.Usernames)
	if len(group.Profiles) == 0 {
		respondError(w, http.StatusBadGateway, "ALL_FETCHES_FAILED", "no user profiles could be fetched")
		return
	}

	results := h.engine.Recommend(ctx, group, opts)

	respondJSON(w, http.StatusOK, RecommendationsResponse{
		Results:  results,
		Warnings: group.Warnings,
		Count:    len(results),
	})
}

// HealthResponse is the GET /api/v1/health reply.
type HealthResponse struct {
	Status      string `json:"status"`
	TMDBEnabled bool   `json:"tmdb_enabled"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", TMDBEnabled: h.tmdbEnabled})
}
