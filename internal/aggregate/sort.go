package aggregate

import (
	"sort"
	"time"

	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/score"
)

// Sort orders recognized by SortOpportunities. Unknown values fall back
// to relevance.
const (
	SortRelevance = "relevance"
	SortDeadline  = "deadline"
	SortPosted    = "posted"
	SortAmount    = "amount"
)

// farFuture stands in for a missing deadline so undated records sort
// after every dated one.
var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// SortOpportunities orders opps in place. The sort is stable, so
// records tied on the sort key keep their source order. Relevance
// scores are computed against query with the supplied clock and stored
// on each record.
func SortOpportunities(opps []models.Opportunity, sortBy, query string, now time.Time) {
	switch sortBy {
	case SortDeadline:
		sort.SliceStable(opps, func(i, j int) bool {
			return deadlineOrEpochFar(opps[i]).Before(deadlineOrEpochFar(opps[j]))
		})
	case SortPosted:
		sort.SliceStable(opps, func(i, j int) bool {
			return postedOrEpoch(opps[i]).After(postedOrEpoch(opps[j]))
		})
	case SortAmount:
		sort.SliceStable(opps, func(i, j int) bool {
			return amountOrZero(opps[i]) > amountOrZero(opps[j])
		})
	default:
		for i := range opps {
			opps[i].RelevanceScore = score.Relevance(opps[i], query, now)
		}
		sort.SliceStable(opps, func(i, j int) bool {
			return opps[i].RelevanceScore > opps[j].RelevanceScore
		})
	}
}

func deadlineOrEpochFar(opp models.Opportunity) time.Time {
	if opp.DeadlineAt == nil {
		return farFuture
	}
	return *opp.DeadlineAt
}

func postedOrEpoch(opp models.Opportunity) time.Time {
	if opp.PostedAt == nil {
		return time.Time{}
	}
	return *opp.PostedAt
}

func amountOrZero(opp models.Opportunity) float64 {
	if opp.Amount == nil {
		return 0
	}
	return *opp.Amount
}
