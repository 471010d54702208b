// Package match runs the profile matching pipeline: aggregate
// opportunities for a set of search terms, score them against each
// profile, and persist everything above the threshold.
package match

import (
	"context"
	"log"

	"github.com/nick/grantlink/internal/aggregate"
	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/score"
)

// defaultTerms seed the scan when a profile has no focus areas.
var defaultTerms = []string{"education", "health", "environment", "technology", "community"}

// Searcher is the aggregation fan-out the pipeline scans with.
type Searcher interface {
	Search(ctx context.Context, keyword string, opts aggregate.Options) (*aggregate.SearchResult, error)
}

// Writer persists scored matches.
type Writer interface {
	UpsertMatches(ctx context.Context, matches []models.Match) (int, error)
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	ProfilesProcessed int                      `json:"profiles_processed"`
	GrantsScanned     int                      `json:"grants_scanned"`
	MatchesStored     int                      `json:"matches_stored"`
	SourceErrors      map[models.Source]string `json:"source_errors,omitempty"`
}

type Pipeline struct {
	Agg    Searcher
	Writer Writer
}

func NewPipeline(agg Searcher, w Writer) *Pipeline {
	return &Pipeline{Agg: agg, Writer: w}
}

// SearchTerms derives the scan terms for a profile: its focus areas
// plus its custom keywords, or the default seed list when it has
// neither.
func SearchTerms(p models.Profile) []string {
	terms := make([]string, 0, len(p.FocusAreas)+len(p.Keywords))
	seen := make(map[string]bool)
	for _, t := range append(append([]string{}, p.FocusAreas...), p.Keywords...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return defaultTerms
	}
	return terms
}

// Run scans every term once, then scores the merged pool against each
// profile and persists matches at or above the threshold. Upserts keep
// the run idempotent: re-running refreshes scores without duplicating.
func (p *Pipeline) Run(ctx context.Context, profiles []models.Profile, terms []string) (*RunStats, error) {
	stats := &RunStats{SourceErrors: make(map[models.Source]string)}

	if len(terms) == 0 {
		seen := make(map[string]bool)
		for _, prof := range profiles {
			for _, t := range SearchTerms(prof) {
				if !seen[t] {
					seen[t] = true
					terms = append(terms, t)
				}
			}
		}
	}

	pool := make([]models.Opportunity, 0)
	poolSeen := make(map[string]bool)

	for _, term := range terms {
		res, err := p.Agg.Search(ctx, term, aggregate.Options{})
		if err != nil {
			log.Printf("[Match] term %q failed: %v", term, err)
			continue
		}
		for src, msg := range res.Errors {
			stats.SourceErrors[src] = msg
		}
		for _, opp := range res.Opportunities {
			key := string(opp.Source) + ":" + opp.SourceRecordID
			if poolSeen[key] {
				continue
			}
			poolSeen[key] = true
			pool = append(pool, opp)
		}
	}
	stats.GrantsScanned = len(pool)

	for _, prof := range profiles {
		var toStore []models.Match
		for _, opp := range pool {
			sc, reasons := score.Match(opp, prof)
			if sc < score.MatchThreshold {
				continue
			}
			toStore = append(toStore, models.Match{
				ProfileID:        prof.ID,
				Source:           opp.Source,
				SourceRecordID:   opp.SourceRecordID,
				Score:            sc,
				Reasons:          reasons,
				GrantTitle:       opp.Title,
				GrantAgency:      opp.Agency,
				GrantAmount:      opp.Amount,
				GrantDeadline:    opp.DeadlineAt,
				GrantLink:        opp.Link,
				GrantDescription: opp.Description,
				Status:           models.MatchStatusNew,
			})
		}

		if len(toStore) > 0 {
			stored, err := p.Writer.UpsertMatches(ctx, toStore)
			if err != nil {
				return stats, err
			}
			stats.MatchesStored += stored
		}
		stats.ProfilesProcessed++
	}

	log.Printf("[Match] profiles=%d scanned=%d stored=%d",
		stats.ProfilesProcessed, stats.GrantsScanned, stats.MatchesStored)

	return stats, nil
}
