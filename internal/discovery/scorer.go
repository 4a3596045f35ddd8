// Package discovery finds and scores prospects, seeding the lead store for
// the outreach pipeline. Scoring is a flat point pass with no state machine;
// its only output is whether a prospect is worth queueing.
package discovery

import "strings"

// Prospect is a creator profile returned by the search provider.
type Prospect struct {
	Handle         string  `json:"handle"`
	DisplayName    string  `json:"display_name"`
	Platform       string  `json:"platform"`
	Bio            string  `json:"bio"`
	Followers      int     `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"` // percent
	Email          string  `json:"email"`
}

// bioKeywords signal a creator who already does brand work.
var bioKeywords = []string{"collab", "partnership", "brand", "ugc", "content creator", "ambassador"}

// Score is the heuristic point pass.
//
// Followers score a mid-band sweet spot: accounts under 5k rarely move
// product, accounts over 500k price out of campaign budgets.
func Score(p Prospect) int {
	score := 0

	switch {
	case p.Followers >= 10_000 && p.Followers <= 100_000:
		score += 30
	case p.Followers > 100_000 && p.Followers <= 500_000:
		score += 20
	case p.Followers >= 5_000 && p.Followers < 10_000:
		score += 15
	}

	switch {
	case p.EngagementRate >= 3.0:
		score += 30
	case p.EngagementRate >= 1.5:
		score += 20
	case p.EngagementRate >= 0.5:
		score += 10
	}

	bio := strings.ToLower(p.Bio)
	for _, kw := range bioKeywords {
		if strings.Contains(bio, kw) {
			score += 10
			break
		}
	}

	// Contactable without a DM cold-open is worth a lot.
	if p.Email != "" {
		score += 30
	}

	return score
}

// Qualify reports whether a prospect clears the campaign's score floor.
func Qualify(p Prospect, minScore int) bool {
	return Score(p) >= minScore
}
