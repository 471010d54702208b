package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFallbackTemplateStructure(t *testing.T) {
	tmpl := FallbackTemplate(TemplateRequest{GrantTitle: "Rural Broadband Fund", Agency: "USDA"})

	if !strings.Contains(tmpl.TemplateTitle, "Rural Broadband Fund") {
		t.Errorf("template title should carry the grant title: %q", tmpl.TemplateTitle)
	}
	if !strings.Contains(tmpl.GrantSummary, "USDA") {
		t.Errorf("summary should name the agency: %q", tmpl.GrantSummary)
	}
	if len(tmpl.Sections) < 5 {
		t.Errorf("expected a full section outline, got %d sections", len(tmpl.Sections))
	}
	if len(tmpl.Checklist) == 0 {
		t.Error("checklist must not be empty")
	}
	if tmpl.Generated {
		t.Error("fallback must not claim to be generated")
	}
}

func TestFallbackTemplateEmptyTitle(t *testing.T) {
	tmpl := FallbackTemplate(TemplateRequest{})
	if tmpl.TemplateTitle == "" {
		t.Error("expected a usable title even with an empty request")
	}
}

func TestGenerateTemplateParsesModelOutput(t *testing.T) {
	modelOut := Template{
		TemplateTitle:   "Custom Template",
		GrantSummary:    "A summary",
		KeyRequirements: []string{"req"},
		Sections:        []TemplateSection{{Title: "Narrative", Guidance: "Write it"}},
		Checklist:       []string{"done"},
	}
	raw, _ := json.Marshal(modelOut)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: string(raw), Done: true})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "test-model")
	tmpl, err := c.GenerateTemplate(context.Background(), TemplateRequest{GrantTitle: "X"})
	if err != nil {
		t.Fatalf("GenerateTemplate failed: %v", err)
	}
	if tmpl.TemplateTitle != "Custom Template" {
		t.Errorf("expected model template, got %q", tmpl.TemplateTitle)
	}
	if !tmpl.Generated {
		t.Error("model-produced template should be marked generated")
	}
}

func TestGenerateTemplateFallsBackOnGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "not json at all", Done: true})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "test-model")
	tmpl, err := c.GenerateTemplate(context.Background(), TemplateRequest{GrantTitle: "X"})
	if err != nil {
		t.Fatalf("GenerateTemplate failed: %v", err)
	}
	if tmpl.Generated {
		t.Error("fallback should not be marked generated")
	}
	if len(tmpl.Sections) == 0 {
		t.Error("fallback should carry the static outline")
	}
}

func TestGenerateTemplateFallsBackWhenUnreachable(t *testing.T) {
	c := NewOllamaClient("http://127.0.0.1:1", "test-model")
	tmpl, err := c.GenerateTemplate(context.Background(), TemplateRequest{GrantTitle: "X"})
	if err != nil {
		t.Fatalf("GenerateTemplate failed: %v", err)
	}
	if tmpl.Generated {
		t.Error("unreachable model must fall back")
	}
}
