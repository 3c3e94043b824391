// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package recommend is the candidate-aggregation and scoring engine.
//
// It merges heterogeneous per-user signals (watchlist membership,
// similarity expansion from highly-rated seeds, a popularity backstop)
// into a single deduplicated candidate set, applies a strict group-wide
// already-seen exclusion before any candidate is created, and computes a
// composite relevance score per candidate with configurable weights.
//
// Candidates are identified by a CandidateKey, a tagged union of a TMDB
// numeric id (preferred, enables cross-user merging) and a Letterboxd
// slug (fallback when metadata resolution is unavailable or fails).
//
// This package has no dependencies on the gateway packages; the
// CatalogGateway and MetadataGateway interfaces are implemented by thin
// adapters in the gateways subpackage, and by fakes in tests.
package recommend
