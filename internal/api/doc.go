// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package api provides the HTTP surface of the Reelscout server: a Chi
// router with CORS, rate limiting, request IDs, and Prometheus
// instrumentation, plus the recommendation and health handlers.
package api
