package score

import (
	"testing"
	"time"

	"github.com/nick/grantlink/internal/models"
)

func TestRelevanceTitleExactMatch(t *testing.T) {
	now := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	opp := models.Opportunity{
		Source:         models.SourceGrantsGov,
		SourceRecordID: "1",
		Title:          "broadband",
	}

	// Title substring (+10) plus whole-word bonus (+5), nothing else set.
	if got := Relevance(opp, "broadband", now); got < 15 {
		t.Errorf("score = %d, want at least 15 from title alone", got)
	}
}

func TestRelevanceWeights(t *testing.T) {
	now := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	amount := 50000.0

	tests := []struct {
		name  string
		opp   models.Opportunity
		query string
		want  int
	}{
		{
			name:  "no match at all",
			opp:   models.Opportunity{Title: "Watershed Restoration"},
			query: "broadband",
			want:  0,
		},
		{
			name:  "substring but not whole word",
			opp:   models.Opportunity{Title: "Ultrabroadbandism Initiative"},
			query: "broadband",
			want:  10,
		},
		{
			name:  "agency hit only",
			opp:   models.Opportunity{Agency: "Rural Broadband Office"},
			query: "broadband",
			want:  5,
		},
		{
			name:  "description single occurrence",
			opp:   models.Opportunity{Description: "Funds broadband deployment."},
			query: "broadband",
			want:  2,
		},
		{
			name:  "description repeats capped at +2 extra",
			opp:   models.Opportunity{Description: "broadband broadband broadband broadband broadband"},
			query: "broadband",
			want:  4,
		},
		{
			name:  "amount bonus",
			opp:   models.Opportunity{Title: "broadband", Amount: &amount},
			query: "broadband",
			want:  17,
		},
		{
			name:  "future deadline bonus",
			opp:   models.Opportunity{Title: "broadband", DeadlineAt: &future},
			query: "broadband",
			want:  18,
		},
		{
			name:  "past deadline no bonus",
			opp:   models.Opportunity{Title: "broadband", DeadlineAt: &past},
			query: "broadband",
			want:  15,
		},
		{
			name:  "short terms dropped",
			opp:   models.Opportunity{Title: "AI in K-12 education"},
			query: "ai in k0",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevance(tt.opp, tt.query, now); got != tt.want {
				t.Errorf("Relevance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRelevanceDeterminism(t *testing.T) {
	now := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	amount := 250000.0
	opp := models.Opportunity{
		Title:       "Community Health Centers Expansion",
		Agency:      "HRSA",
		Description: "Expand community health access in rural areas. Health equity focus.",
		Amount:      &amount,
		DeadlineAt:  &deadline,
	}

	first := Relevance(opp, "community health rural", now)
	for i := 0; i < 50; i++ {
		if got := Relevance(opp, "community health rural", now); got != first {
			t.Fatalf("call %d returned %d, first call returned %d", i, got, first)
		}
	}
}
