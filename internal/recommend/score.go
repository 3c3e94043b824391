// Reelscout - Group Movie Discovery for Letterboxd Friends
// Copyright 2026 Reelscout Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelscout/reelscout

package recommend

import (
	"fmt"
	"sort"
	"strings"
)

// maxSimilarReasons caps the per-user reasons joined into the Similar
// justification line (one reason per user, not per contribution).
const maxSimilarReasons = 3

// Score computes a candidate's composite score and its human-readable
// justification.
//
// The watchlist component is membership count times the configured
// points. The similarity component is a plain per-user sum of
// contribution points, summed across users and scaled by discoveryWeight.
// There is no per-user normalization: a prolific rater contributes
// proportionally more, a known weighting gap left as specified. The final
// score is the plain sum of the two components on an absolute scale.
func (e *Engine) Score(c *Candidate, discoveryWeight float64) (float64, map[string]string) {
	score := 0.0
	justification := make(map[string]string)

	// Watchlist component
	users := make([]string, 0, len(c.WatchlistUsers))
	for u := range c.WatchlistUsers {
		users = append(users, u)
	}
	sort.Strings(users)

	score += float64(len(users)) * e.cfg.WatchlistPoints
	if len(users) > 0 {
		justification[string(SourceWatchlist)] = fmt.Sprintf("%d users (%s)", len(users), strings.Join(users, ", "))
	}

	// Similarity component
	simTotal := 0.0
	var reasons []string

	contributors := make([]string, 0, len(c.SimilarContributions))
	for u := range c.SimilarContributions {
		contributors = append(contributors, u)
	}
	sort.Strings(contributors)

	for _, user := range contributors {
		contribs := c.SimilarContributions[user]
		if len(contribs) == 0 {
			continue
		}

		best := contribs[0]
		for _, contrib := range contribs {
			simTotal += contrib.Points
			if contrib.Points > best.Points {
				best = contrib
			}
		}
		reasons = append(reasons, fmt.Sprintf("Similar to %s (%d/10)", best.FromTitle, best.FromScore))
	}

	score += simTotal * discoveryWeight

	if len(reasons) > 0 {
		if len(reasons) > maxSimilarReasons {
			reasons = reasons[:maxSimilarReasons]
		}
		justification[string(SourceSimilar)] = strings.Join(reasons, ", ")
	}

	return score, justification
}

// finalize projects a candidate into its immutable RankedResult.
func (e *Engine) finalize(c *Candidate, discoveryWeight float64) RankedResult {
	score, justification := e.Score(c, discoveryWeight)

	posterURL := ""
	if c.Metadata != nil {
		posterURL = c.Metadata.PosterURL
	}

	return RankedResult{
		ID:            c.Key.String(),
		Title:         c.Title,
		Year:          c.Year,
		URL:           c.URL,
		Score:         score,
		PosterURL:     posterURL,
		Sources:       c.sortedSources(),
		Justification: justification,
		Metadata:      c.Metadata,
	}
}
