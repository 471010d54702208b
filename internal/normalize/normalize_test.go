package normalize

import (
	"testing"
	"time"

	"github.com/nick/grantlink/internal/models"
)

func TestNormalizeGrantsGovRecord(t *testing.T) {
	raw := map[string]any{
		"opportunityId": "X1",
		"opportunityTitle": "Rural Broadband Grant",
		"awardCeiling": "500000",
		"closeDate": "2025-12-01",
	}

	opp, ok := Normalize(raw, models.SourceGrantsGov)
	if !ok {
		t.Fatalf("expected record to normalize, got dropped")
	}

	if opp.Source != models.SourceGrantsGov {
		t.Errorf("source = %q, want grants_gov", opp.Source)
	}
	if opp.SourceRecordID != "X1" {
		t.Errorf("sourceRecordID = %q, want X1", opp.SourceRecordID)
	}
	if opp.Title != "Rural Broadband Grant" {
		t.Errorf("title = %q", opp.Title)
	}
	if opp.Amount == nil || *opp.Amount != 500000 {
		t.Errorf("amount = %v, want 500000", opp.Amount)
	}
	want := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	if opp.DeadlineAt == nil || !opp.DeadlineAt.Equal(want) {
		t.Errorf("deadline = %v, want %v", opp.DeadlineAt, want)
	}
	if opp.Link != "https://www.grants.gov/search-results-detail/X1" {
		t.Errorf("link = %q", opp.Link)
	}
}

func TestNormalizeTotality(t *testing.T) {
	// Malformed and partial records must never panic; records with no id
	// are dropped, everything else normalizes with nil optional fields.
	tests := []struct {
		name     string
		raw      map[string]any
		source   models.Source
		wantKeep bool
	}{
		{"empty object", map[string]any{}, models.SourceGrantsGov, false},
		{"nil map", nil, models.SourceNSF, false},
		{"id only", map[string]any{"noticeId": "N-1"}, models.SourceSamGov, true},
		{"numeric id", map[string]any{"appl_id": float64(10867391)}, models.SourceNIH, true},
		{"wrong types everywhere", map[string]any{
			"id":         "R-77",
			"attributes": "not an object",
		}, models.SourceRegulations, true},
		{"nested garbage", map[string]any{
			"_id":   "42",
			"title": map[string]any{"unexpected": true},
		}, models.SourceCalifornia, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp, ok := Normalize(tt.raw, tt.source)
			if ok != tt.wantKeep {
				t.Fatalf("keep = %v, want %v", ok, tt.wantKeep)
			}
			if opp.Source != tt.source {
				t.Errorf("source = %q, want %q", opp.Source, tt.source)
			}
			if ok && opp.SourceRecordID == "" {
				t.Error("kept record has empty sourceRecordID")
			}
			if ok && opp.Title == "" {
				t.Error("kept record has empty title, want Untitled fallback")
			}
		})
	}
}

func TestNormalizeNumericIDFormatting(t *testing.T) {
	opp, ok := Normalize(map[string]any{"appl_id": float64(10867391)}, models.SourceNIH)
	if !ok {
		t.Fatal("record dropped")
	}
	if opp.SourceRecordID != "10867391" {
		t.Errorf("sourceRecordID = %q, want plain integer formatting", opp.SourceRecordID)
	}
	if opp.Link != "https://reporter.nih.gov/project-details/10867391" {
		t.Errorf("link = %q", opp.Link)
	}
}

func TestNormalizeFEMACompositeID(t *testing.T) {
	raw := map[string]any{
		"disasterNumber": float64(4332),
		"projectNumber":  "PW-00012",
		"projectTitle":   "Debris Removal",
		"projectAmount":  float64(125000.50),
	}

	opp, ok := Normalize(raw, models.SourceFEMA)
	if !ok {
		t.Fatal("record dropped")
	}
	if opp.SourceRecordID != "4332-PW-00012" {
		t.Errorf("sourceRecordID = %q", opp.SourceRecordID)
	}
	if opp.Amount == nil || *opp.Amount != 125000.50 {
		t.Errorf("amount = %v", opp.Amount)
	}
}

func TestNormalizeMissingLinkComponents(t *testing.T) {
	// A direct URL wins over the template.
	raw := map[string]any{
		"_id":             "99",
		"title":           "Watershed Restoration",
		"application_url": "https://example.ca.gov/apply/99",
	}
	opp, ok := Normalize(raw, models.SourceCalifornia)
	if !ok {
		t.Fatal("record dropped")
	}
	if opp.Link != "https://example.ca.gov/apply/99" {
		t.Errorf("link = %q, want upstream URL", opp.Link)
	}
}

func TestNormalizeHTMLDescription(t *testing.T) {
	raw := map[string]any{
		"noticeId":    "SAM-5",
		"title":       "Community Facilities",
		"description": map[string]any{"body": "<p>Funds  for <b>rural</b>\nfacilities.</p>"},
	}
	opp, ok := Normalize(raw, models.SourceSamGov)
	if !ok {
		t.Fatal("record dropped")
	}
	if opp.Description != "Funds for rural facilities." {
		t.Errorf("description = %q", opp.Description)
	}
}

func TestNormalizeFieldFallbackOrder(t *testing.T) {
	// agencyCode is tried before agency per the mapping table.
	raw := map[string]any{
		"id":         "A1",
		"agencyCode": "USDA-RD",
		"agency":     "Department of Agriculture",
	}
	opp, _ := Normalize(raw, models.SourceGrantsGov)
	if opp.Agency != "USDA-RD" {
		t.Errorf("agency = %q, want first candidate to win", opp.Agency)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   any
		want string // "" means nil expected
	}{
		{"2025-12-01", "2025-12-01"},
		{"12/01/2025", "2025-12-01"},
		{"2025-12-01T10:30:00Z", "2025-12-01"},
		{"not a date", ""},
		{nil, ""},
		{"", ""},
	}

	for _, tt := range tests {
		got := ParseDate(tt.in)
		if tt.want == "" {
			if got != nil {
				t.Errorf("ParseDate(%v) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil || got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%v) = %v, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("hello world", 8); got != "hello..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateText("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}
