package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nick/grantlink/internal/aggregate"
	"github.com/nick/grantlink/internal/ai"
	"github.com/nick/grantlink/internal/config"
	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/sources"
)

type stubClient struct {
	src  models.Source
	opps []models.Opportunity
}

func (s *stubClient) ID() models.Source { return s.src }

func (s *stubClient) Search(ctx context.Context, q sources.Query) (*sources.Result, error) {
	return &sources.Result{Opportunities: s.opps, Total: len(s.opps), Page: 1, TotalPages: 1}, nil
}

func testServer(clients ...sources.Client) *Server {
	agg := aggregate.New()
	for _, c := range clients {
		agg.Register(c, 0)
	}
	return &Server{
		Agg:  agg,
		Echo: echo.New(),
		Cfg:  &config.AppConfig{},
		AI:   ai.NewOllamaClient("http://127.0.0.1:1", "test"),
	}
}

func doRequest(s *Server, handler echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := s.Echo.NewContext(req, rec)
	if err := handler(c); err != nil {
		s.Echo.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestSearchRequiresQuery(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := doRequest(s, s.handleSearch, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing q, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "q parameter is required") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestSearchReturnsMergedResults(t *testing.T) {
	s := testServer(&stubClient{
		src: models.SourceGrantsGov,
		opps: []models.Opportunity{
			{Source: models.SourceGrantsGov, SourceRecordID: "G1", Title: "Water Infrastructure Grant"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=water", nil)
	rec := doRequest(s, s.handleSearch, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result aggregate.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if len(result.Opportunities) != 1 {
		t.Errorf("expected 1 opportunity, got %d", len(result.Opportunities))
	}
	if result.Opportunities[0].RelevanceScore == 0 {
		t.Error("relevance scores should be computed on search results")
	}
}

func TestSearchUnknownCategory(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x&category=bogus", nil)
	rec := doRequest(s, s.handleSearch, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", rec.Code)
	}
}

func TestStatusReportsKeyConfiguration(t *testing.T) {
	s := testServer(
		&stubClient{src: models.SourceGrantsGov},
		&stubClient{src: models.SourceSamGov},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := doRequest(s, s.handleStatus, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Sources []sourceStatus `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response: %v", err)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(resp.Sources))
	}
	for _, st := range resp.Sources {
		switch st.Source {
		case models.SourceGrantsGov:
			if !st.Configured {
				t.Error("keyless source should always be configured")
			}
		case models.SourceSamGov:
			if st.Configured {
				t.Error("sam_gov without a key must report unconfigured")
			}
		}
	}
}

func TestAdminMiddleware(t *testing.T) {
	s := testServer()
	s.Cfg.AdminSecret = "sesame"
	protected := s.adminMiddleware(func(c echo.Context) error {
		return c.String(http.StatusOK, "in")
	})

	tests := []struct {
		name   string
		header func(*http.Request)
		want   int
	}{
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"wrong secret", func(r *http.Request) { r.Header.Set("X-Admin-Secret", "nope") }, http.StatusUnauthorized},
		{"header secret", func(r *http.Request) { r.Header.Set("X-Admin-Secret", "sesame") }, http.StatusOK},
		{"bearer secret", func(r *http.Request) { r.Header.Set("Authorization", "Bearer sesame") }, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/match-grants", nil)
			tt.header(req)
			rec := doRequest(s, protected, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{"user.name@example.org", true},
		{"", false},
		{"@example.org", false},
		{"nobody", false},
		{"has space@example.org", false},
		{"a@nodot", false},
	}

	for _, tt := range tests {
		if got := validEmail(tt.email); got != tt.want {
			t.Errorf("validEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestGenerateTemplateRequiresTitle(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/templates", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(s, s.handleGenerateTemplate, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without grant_title, got %d", rec.Code)
	}
}

func TestGenerateTemplateFallsBack(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/templates",
		strings.NewReader(`{"grant_title":"Rural Broadband Fund"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(s, s.handleGenerateTemplate, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var tmpl ai.Template
	if err := json.Unmarshal(rec.Body.Bytes(), &tmpl); err != nil {
		t.Fatalf("unmarshaling template: %v", err)
	}
	if len(tmpl.Sections) == 0 {
		t.Error("expected fallback sections")
	}
}
