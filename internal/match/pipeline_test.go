package match

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nick/grantlink/internal/aggregate"
	"github.com/nick/grantlink/internal/models"
)

type fakeSearcher struct {
	opps  []models.Opportunity
	calls []string
}

func (f *fakeSearcher) Search(ctx context.Context, keyword string, opts aggregate.Options) (*aggregate.SearchResult, error) {
	f.calls = append(f.calls, keyword)
	return &aggregate.SearchResult{Opportunities: f.opps}, nil
}

type memWriter struct {
	rows map[string]models.Match
}

func newMemWriter() *memWriter { return &memWriter{rows: make(map[string]models.Match)} }

func (w *memWriter) UpsertMatches(ctx context.Context, matches []models.Match) (int, error) {
	for _, m := range matches {
		key := m.ProfileID.String() + "/" + string(m.Source) + "/" + m.SourceRecordID
		w.rows[key] = m
	}
	return len(matches), nil
}

func testProfile() models.Profile {
	return models.Profile{
		ID:         uuid.New(),
		Email:      "org@example.com",
		FocusAreas: []string{"education"},
	}
}

func TestPipelineStoresThresholdMatches(t *testing.T) {
	search := &fakeSearcher{opps: []models.Opportunity{
		{Source: models.SourceGrantsGov, SourceRecordID: "G1", Title: "Classroom Education Support"},
		{Source: models.SourceGrantsGov, SourceRecordID: "G2", Title: "Unrelated Widget Program"},
	}}
	writer := newMemWriter()
	p := NewPipeline(search, writer)

	stats, err := p.Run(context.Background(), []models.Profile{testProfile()}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.GrantsScanned != 2 {
		t.Errorf("expected 2 grants scanned, got %d", stats.GrantsScanned)
	}
	if stats.MatchesStored != 1 {
		t.Errorf("expected 1 match stored, got %d", stats.MatchesStored)
	}
	if len(writer.rows) != 1 {
		t.Fatalf("expected 1 persisted row, got %d", len(writer.rows))
	}
	for _, m := range writer.rows {
		if m.SourceRecordID != "G1" {
			t.Errorf("wrong record persisted: %s", m.SourceRecordID)
		}
		if m.Status != models.MatchStatusNew {
			t.Errorf("expected new status, got %q", m.Status)
		}
		if m.GrantTitle == "" {
			t.Error("grant snapshot missing title")
		}
	}
}

func TestPipelineIdempotent(t *testing.T) {
	search := &fakeSearcher{opps: []models.Opportunity{
		{Source: models.SourceGrantsGov, SourceRecordID: "G1", Title: "Education Initiative"},
	}}
	writer := newMemWriter()
	p := NewPipeline(search, writer)
	profiles := []models.Profile{testProfile()}

	if _, err := p.Run(context.Background(), profiles, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := p.Run(context.Background(), profiles, nil); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(writer.rows) != 1 {
		t.Errorf("re-running duplicated matches: %d rows", len(writer.rows))
	}
}

func TestPipelineDefaultTermsFromProfiles(t *testing.T) {
	search := &fakeSearcher{}
	p := NewPipeline(search, newMemWriter())

	prof := testProfile()
	prof.Keywords = []string{"STEM"}

	if _, err := p.Run(context.Background(), []models.Profile{prof}, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := map[string]bool{"education": true, "STEM": true}
	if len(search.calls) != 2 {
		t.Fatalf("expected 2 search terms, got %v", search.calls)
	}
	for _, c := range search.calls {
		if !want[c] {
			t.Errorf("unexpected search term %q", c)
		}
	}
}

func TestSearchTermsFallback(t *testing.T) {
	terms := SearchTerms(models.Profile{})
	if len(terms) != len(defaultTerms) {
		t.Errorf("expected default terms for empty profile, got %v", terms)
	}
}
