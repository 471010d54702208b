package aggregate

import "github.com/nick/grantlink/internal/models"

// Categories group sources by the kind of record they return, so the
// API can offer coarse filtering across upstreams.
const (
	CategoryOpportunities = "opportunities"
	CategoryResearch      = "research"
	CategoryNonprofits    = "nonprofits"
	CategoryAwards        = "awards"
	CategoryPolicy        = "policy"
)

var sourceCategories = map[models.Source]string{
	models.SourceGrantsGov:       CategoryOpportunities,
	models.SourceSamGov:          CategoryOpportunities,
	models.SourceFEMA:            CategoryOpportunities,
	models.SourceCalifornia:      CategoryOpportunities,
	models.SourceNIH:             CategoryResearch,
	models.SourceNSF:             CategoryResearch,
	models.SourceFederalReporter: CategoryResearch,
	models.SourcePropublica:      CategoryNonprofits,
	models.SourceUSASpending:     CategoryAwards,
	models.SourceRegulations:     CategoryPolicy,
}

// SourceCategory returns the category for a source, or "".
func SourceCategory(src models.Source) string {
	return sourceCategories[src]
}

// SourcesInCategory lists the sources belonging to category, in
// canonical order.
func SourcesInCategory(category string) []models.Source {
	var out []models.Source
	for _, src := range models.AllSources {
		if sourceCategories[src] == category {
			out = append(out, src)
		}
	}
	return out
}

// FilterCategory keeps only opportunities whose source belongs to
// category. An empty category keeps everything.
func FilterCategory(opps []models.Opportunity, category string) []models.Opportunity {
	if category == "" {
		return opps
	}
	out := make([]models.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if sourceCategories[opp.Source] == category {
			out = append(out, opp)
		}
	}
	return out
}
