package models

import "time"

// Source identifies one of the upstream funding-data providers.
type Source string

const (
	SourceGrantsGov       Source = "grants_gov"
	SourceSamGov          Source = "sam_gov"
	SourceNIH             Source = "nih"
	SourceNSF             Source = "nsf"
	SourceUSASpending     Source = "usaspending"
	SourceFEMA            Source = "fema"
	SourcePropublica      Source = "propublica"
	SourceRegulations     Source = "regulations"
	SourceFederalReporter Source = "federal_reporter"
	SourceCalifornia      Source = "california"
)

// AllSources lists every supported source in display order.
var AllSources = []Source{
	SourceGrantsGov,
	SourceSamGov,
	SourceNIH,
	SourceNSF,
	SourceUSASpending,
	SourceFEMA,
	SourcePropublica,
	SourceRegulations,
	SourceFederalReporter,
	SourceCalifornia,
}

// SourceLabels maps source IDs to human-readable names.
var SourceLabels = map[Source]string{
	SourceGrantsGov:       "Grants.gov",
	SourceSamGov:          "SAM.gov",
	SourceNIH:             "NIH RePORTER",
	SourceNSF:             "NSF Awards",
	SourceUSASpending:     "USASpending",
	SourceFEMA:            "OpenFEMA",
	SourcePropublica:      "ProPublica Nonprofits",
	SourceRegulations:     "Regulations.gov",
	SourceFederalReporter: "Federal RePORTER",
	SourceCalifornia:      "California Grants Portal",
}

// IsValidSource reports whether s is one of the known source IDs.
func IsValidSource(s Source) bool {
	_, ok := SourceLabels[s]
	return ok
}

// Opportunity is the canonical representation of a funding opportunity
// or award regardless of which source produced it.
//
// Source and SourceRecordID together form the record's identity.
// Everything else is optional: a nil pointer or empty string means the
// upstream record did not carry that field, which is a different fact
// from zero.
type Opportunity struct {
	Source         Source `json:"source"`
	SourceRecordID string `json:"source_record_id"`

	Title           string `json:"title"`
	Agency          string `json:"agency,omitempty"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"`
	EligibilityText string `json:"eligibility_text,omitempty"`

	// Amount is a single representative dollar figure. Its meaning varies
	// by source: award ceiling for Grants.gov, total cost for NIH, revenue
	// for ProPublica organizations. Figures are not comparable across
	// sources.
	Amount *float64 `json:"amount,omitempty"`

	PostedAt   *time.Time `json:"posted_at,omitempty"`
	DeadlineAt *time.Time `json:"deadline_at,omitempty"`

	Link string `json:"link,omitempty"`

	// RelevanceScore is recomputed per search query and never persisted.
	RelevanceScore int `json:"relevance_score,omitempty"`

	// MatchScore and MatchReasons are set only by the matching pipeline.
	MatchScore   int      `json:"match_score,omitempty"`
	MatchReasons []string `json:"match_reasons,omitempty"`
}
