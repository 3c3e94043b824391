// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package validation provides struct validation using
// go-playground/validator v10: a thread-safe singleton validator with a
// custom Letterboxd username rule and error translation into
// client-facing messages.
package validation
