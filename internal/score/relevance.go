package score

import (
	"strings"
	"time"

	"github.com/nick/grantlink/internal/models"
)

// Relevance computes a query-relevance score for ranking search results.
// The weights are contract values, fixed for reproducibility:
//
//	title substring hit      +10, plus +5 if the term is a whole word
//	agency hit                +5
//	description hit           +2, +1 per repeat, capped at +2 extra
//	amount present            +2
//	deadline in the future    +3
//
// The function is pure: for a fixed opportunity, query, and now it
// always returns the same integer.
func Relevance(opp models.Opportunity, query string, now time.Time) int {
	score := 0

	title := strings.ToLower(opp.Title)
	agency := strings.ToLower(opp.Agency)
	description := strings.ToLower(opp.Description)
	titleWords := splitWords(title)

	for _, term := range queryTerms(query) {
		if strings.Contains(title, term) {
			score += 10
			if containsWord(titleWords, term) {
				score += 5
			}
		}
		if strings.Contains(agency, term) {
			score += 5
		}
		if n := strings.Count(description, term); n > 0 {
			score += 2
			extra := n - 1
			if extra > 2 {
				extra = 2
			}
			score += extra
		}
	}

	if opp.Amount != nil {
		score += 2
	}
	if opp.DeadlineAt != nil && opp.DeadlineAt.After(now) {
		score += 3
	}

	return score
}

// queryTerms splits a query on whitespace, lower-cases it, and drops
// terms of length <= 2 as stopword noise.
func queryTerms(query string) []string {
	var terms []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if len(t) > 2 {
			terms = append(terms, t)
		}
	}
	return terms
}

// splitWords breaks text on non-alphanumeric runes.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
}

func containsWord(words []string, term string) bool {
	for _, w := range words {
		if w == term {
			return true
		}
	}
	return false
}
