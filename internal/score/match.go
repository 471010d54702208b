package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/nick/grantlink/internal/models"
)

// Match score weights, fixed contract values.
const (
	weightFocusArea = 30
	weightKeyword   = 25
	weightSource    = 15
	weightOrgType   = 20
	weightLocation  = 10

	amountPenalty = 20
)

// MatchThreshold is the minimum score the matching pipeline persists.
// Scores below it are non-matches; the scorer itself still returns them.
const MatchThreshold = 30

// Match computes a 0-100 fit score between an opportunity and a profile,
// with an ordered, deduplicated list of reason strings. It never errors:
// a missing profile field means that dimension contributes nothing.
func Match(opp models.Opportunity, profile models.Profile) (int, []string) {
	score := 0
	var reasons []string

	grantText := strings.ToLower(strings.Join([]string{
		opp.Title,
		opp.Description,
		opp.Agency,
		opp.Category,
	}, " "))

	// Each focus area counts at most once no matter how many of its
	// keywords appear.
	for _, area := range profile.FocusAreas {
		for _, kw := range FocusAreaKeywords(area) {
			if strings.Contains(grantText, strings.ToLower(kw)) {
				score += weightFocusArea
				reasons = append(reasons, fmt.Sprintf("Matches %s focus area", area))
				break
			}
		}
	}

	// Custom keywords are uncapped; every hit counts.
	for _, kw := range profile.Keywords {
		if kw != "" && strings.Contains(grantText, strings.ToLower(kw)) {
			score += weightKeyword
			reasons = append(reasons, fmt.Sprintf("Contains keyword: %s", kw))
		}
	}

	// An empty preference list means any source is fine: no points, no
	// penalty.
	if len(profile.PreferredSources) > 0 && containsSource(profile.PreferredSources, opp.Source) {
		score += weightSource
		reasons = append(reasons, fmt.Sprintf("From preferred source: %s", opp.Source))
	}

	if profile.OrganizationType != "" && eligibleFor(opp, profile.OrganizationType) {
		score += weightOrgType
		reasons = append(reasons, "Eligible for your organization type")
	}

	if profile.State != "" && matchesState(grantText, profile.State) {
		score += weightLocation
		reasons = append(reasons, fmt.Sprintf("Available in %s", profile.State))
	}

	// An amount outside the profile's range costs points; an unknown
	// amount adjusts nothing either way.
	if opp.Amount != nil {
		amount := *opp.Amount
		min := 0.0
		if profile.MinAmount != nil {
			min = *profile.MinAmount
		}
		inRange := amount >= min && (profile.MaxAmount == nil || amount <= *profile.MaxAmount)
		if !inRange {
			score -= amountPenalty
			if score < 0 {
				score = 0
			}
		}
	}

	final := int(math.Round(float64(score)))
	if final > 100 {
		final = 100
	}

	return final, dedupeReasons(reasons)
}

// eligibleFor checks the opportunity's eligibility and description text
// against the organization type's keyword list. A record with no
// eligibility text at all is eligible by default: absence of information
// is not evidence of ineligibility.
func eligibleFor(opp models.Opportunity, orgType string) bool {
	eligText := strings.ToLower(strings.TrimSpace(opp.EligibilityText + " " + opp.Description))
	if strings.TrimSpace(eligText) == "" {
		return true
	}

	for _, kw := range EligibilityKeywords(orgType) {
		if strings.Contains(eligText, kw) {
			return true
		}
	}
	return false
}

// matchesState looks for the full state name, or the two-letter code as
// a standalone word. A bare substring check would let "CA" hit
// "education" and most codes hit common words.
func matchesState(grantText, state string) bool {
	state = strings.TrimSpace(state)
	if state == "" {
		return false
	}
	if name, ok := models.USStates[strings.ToUpper(state)]; ok {
		if strings.Contains(grantText, strings.ToLower(name)) {
			return true
		}
	}
	return containsWord(splitWords(grantText), strings.ToLower(state))
}

func containsSource(sources []models.Source, s models.Source) bool {
	for _, src := range sources {
		if src == s {
			return true
		}
	}
	return false
}

// dedupeReasons removes duplicate reason strings, preserving the order
// points were added.
func dedupeReasons(reasons []string) []string {
	seen := make(map[string]struct{}, len(reasons))
	out := reasons[:0]
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
