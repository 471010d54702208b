package score

import (
	"strings"
	"testing"

	"github.com/nick/grantlink/internal/models"
)

func TestMatchFocusAreaCountsOnce(t *testing.T) {
	// Five education keywords in the text still contribute 30 once.
	opp := models.Opportunity{
		Title:       "STEM Education Grant",
		Description: "Supports school districts, students, teachers, and learning programs.",
	}
	profile := models.Profile{FocusAreas: []string{"education"}}

	score, reasons := Match(opp, profile)
	if score != 30 {
		t.Errorf("score = %d, want 30 (focus area counted once)", score)
	}
	if len(reasons) != 1 || reasons[0] != "Matches education focus area" {
		t.Errorf("reasons = %v", reasons)
	}
}

func TestMatchCustomKeywordsUncapped(t *testing.T) {
	opp := models.Opportunity{
		Title:       "Rural Broadband Infrastructure",
		Description: "Fiber deployment for rural communities.",
	}
	profile := models.Profile{Keywords: []string{"broadband", "fiber", "rural"}}

	score, reasons := Match(opp, profile)
	if score != 75 {
		t.Errorf("score = %d, want 75 (3 keyword hits x 25)", score)
	}
	if len(reasons) != 3 {
		t.Errorf("reasons = %v, want 3 entries", reasons)
	}
}

func TestMatchPreferredSources(t *testing.T) {
	opp := models.Opportunity{Source: models.SourceGrantsGov, Title: "x"}

	// Empty preference list: neutral, no points.
	score, _ := Match(opp, models.Profile{})
	if score != 0 {
		t.Errorf("empty preferences: score = %d, want 0", score)
	}

	// Matching preference: +15.
	score, reasons := Match(opp, models.Profile{
		PreferredSources: []models.Source{models.SourceGrantsGov},
	})
	if score != 15 {
		t.Errorf("preferred source: score = %d, want 15", score)
	}
	if len(reasons) != 1 || !strings.Contains(reasons[0], "grants_gov") {
		t.Errorf("reasons = %v", reasons)
	}

	// Non-matching preference: neutral, never a penalty.
	score, _ = Match(opp, models.Profile{
		PreferredSources: []models.Source{models.SourceNSF},
	})
	if score != 0 {
		t.Errorf("non-preferred source: score = %d, want 0", score)
	}
}

func TestMatchStateRequiresRealMention(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		state string
		want  int
	}{
		{"code inside another word", "Education programs for medical access", "CA", 0},
		{"full state name", "Grants for California school districts", "CA", 10},
		{"standalone code", "CA water infrastructure projects", "CA", 10},
		{"other state name", "Serving New York nonprofits", "NY", 10},
		{"no mention", "Rural broadband deployment", "WY", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp := models.Opportunity{Title: tt.text}
			score, _ := Match(opp, models.Profile{State: tt.state})
			if score != tt.want {
				t.Errorf("state %s in %q: score = %d, want %d", tt.state, tt.text, score, tt.want)
			}
		})
	}
}

func TestMatchEligibilityDefault(t *testing.T) {
	profile := models.Profile{OrganizationType: "nonprofit"}

	// No eligibility or description text at all: eligible by default.
	blank := models.Opportunity{Title: "Grant"}
	blankScore, _ := Match(blank, profile)

	// Explicit matching eligibility text scores the same on this dimension.
	explicit := models.Opportunity{
		Title:           "Grant",
		EligibilityText: "Open to 501(c)(3) nonprofit applicants.",
	}
	explicitScore, _ := Match(explicit, profile)

	if blankScore != 20 || explicitScore != 20 {
		t.Errorf("blank = %d, explicit = %d, want both 20", blankScore, explicitScore)
	}

	// Eligibility text that names a different org type: not eligible.
	excluded := models.Opportunity{
		Title:           "Grant",
		EligibilityText: "Eligibility limited to tribal entities.",
	}
	excludedScore, _ := Match(excluded, profile)
	if excludedScore != 0 {
		t.Errorf("excluded = %d, want 0", excludedScore)
	}
}

func TestMatchAmountRange(t *testing.T) {
	amount := 500000.0
	min := 10000.0
	max := 100000.0
	opp := models.Opportunity{
		Title:       "STEM Education Grant",
		Description: "school programs",
		Amount:      &amount,
	}

	// In range when no max set.
	profile := models.Profile{FocusAreas: []string{"education"}, MinAmount: &min}
	if score, _ := Match(opp, profile); score != 30 {
		t.Errorf("open max: score = %d, want 30", score)
	}

	// Out of range: -20 penalty.
	profile.MaxAmount = &max
	if score, _ := Match(opp, profile); score != 10 {
		t.Errorf("out of range: score = %d, want 10", score)
	}

	// Penalty floors at 0, never negative.
	bare := models.Opportunity{Title: "x", Amount: &amount}
	if score, _ := Match(bare, models.Profile{MinAmount: &min, MaxAmount: &max}); score != 0 {
		t.Errorf("floored: score = %d, want 0", score)
	}

	// Unknown amount adjusts nothing.
	unknown := models.Opportunity{Title: "STEM Education Grant"}
	if score, _ := Match(unknown, profile); score != 30 {
		t.Errorf("nil amount: score = %d, want 30", score)
	}
}

func TestMatchScoreBounds(t *testing.T) {
	amount := 50000.0
	opp := models.Opportunity{
		Source:      models.SourceGrantsGov,
		Title:       "STEM Education Health Research Technology Grant for California",
		Description: "education school health research technology innovation nonprofit",
		Agency:      "NSF",
		Amount:      &amount,
	}
	profile := models.Profile{
		OrganizationType: "nonprofit",
		State:            "California",
		FocusAreas:       []string{"education", "healthcare", "research", "technology"},
		Keywords:         []string{"stem", "innovation", "school", "health"},
		PreferredSources: []models.Source{models.SourceGrantsGov},
	}

	score, reasons := Match(opp, profile)
	if score < 0 || score > 100 {
		t.Fatalf("score = %d, want within [0,100]", score)
	}
	if score != 100 {
		t.Errorf("score = %d, want capped at 100", score)
	}
	for i, r := range reasons {
		for j := i + 1; j < len(reasons); j++ {
			if reasons[j] == r {
				t.Errorf("duplicate reason %q", r)
			}
		}
	}
}

func TestMatchMissingProfileFields(t *testing.T) {
	// A zero-value profile constrains nothing and never errors.
	opp := models.Opportunity{Title: "Anything At All"}
	score, reasons := Match(opp, models.Profile{})
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
	if len(reasons) != 0 {
		t.Errorf("reasons = %v, want none", reasons)
	}
}

func TestFocusAreaKeywordsFallback(t *testing.T) {
	if kws := FocusAreaKeywords("aerospace"); len(kws) != 1 || kws[0] != "aerospace" {
		t.Errorf("unknown area fallback = %v", kws)
	}
	if kws := FocusAreaKeywords("education"); len(kws) == 0 {
		t.Error("education keywords empty")
	}
}
