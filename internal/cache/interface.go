// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

// Package cache provides the in-memory TTL memoization layer for external
// gateway calls. Staleness is acceptable; the cache is a resource-sharing
// policy, not a correctness requirement.
package cache

import "time"

// Cacher defines the interface for cache implementations.
// The TMDB and Letterboxd gateways take a Cacher so they can be tested with
// a Nop (always-miss) cache and run with the TTL cache in production.
//
// Usage:
//
//	var c Cacher = cache.New(time.Hour)
//	c.SetWithTTL("search:dune:2024", movie, 7*24*time.Hour)
//	if val, ok := c.Get("search:dune:2024"); ok {
//	    // Use cached value
//	}
type Cacher interface {
	// Get retrieves a value from the cache.
	// Returns the value and true if found and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with the default TTL.
	Set(key string, value interface{})

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value interface{}, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all entries from the cache.
	Clear()

	// GetStats returns cache statistics.
	GetStats() Stats

	// HitRate returns the cache hit rate as a percentage.
	HitRate() float64
}

// Nop is a Cacher that stores nothing and always misses.
// Used when caching is disabled and as a test double.
type Nop struct{}

// Get always reports a miss.
func (Nop) Get(string) (interface{}, bool) { return nil, false }

// Set is a no-op.
func (Nop) Set(string, interface{}) {}

// SetWithTTL is a no-op.
func (Nop) SetWithTTL(string, interface{}, time.Duration) {}

// Delete is a no-op.
func (Nop) Delete(string) {}

// Clear is a no-op.
func (Nop) Clear() {}

// GetStats returns zeroed statistics.
func (Nop) GetStats() Stats { return Stats{} }

// HitRate always returns 0.
func (Nop) HitRate() float64 { return 0 }
