// Package ai generates application template scaffolds for a grant
// through a local Ollama model, with a static fallback when no model
// is reachable.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// TemplateRequest describes the grant an applicant wants a scaffold for.
type TemplateRequest struct {
	GrantTitle  string `json:"grant_title"`
	Agency      string `json:"agency,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	OrgType     string `json:"org_type,omitempty"`
	OrgName     string `json:"org_name,omitempty"`
}

// TemplateSection is one section of the generated application outline.
type TemplateSection struct {
	Title           string   `json:"title"`
	Guidance        string   `json:"guidance"`
	Prompts         []string `json:"prompts,omitempty"`
	Tips            []string `json:"tips,omitempty"`
	EstimatedLength string   `json:"estimated_length,omitempty"`
}

// Template is a generated application scaffold.
type Template struct {
	TemplateTitle   string            `json:"template_title"`
	GrantSummary    string            `json:"grant_summary"`
	KeyRequirements []string          `json:"key_requirements"`
	Sections        []TemplateSection `json:"sections"`
	Checklist       []string          `json:"checklist"`
	Timeline        string            `json:"timeline,omitempty"`
	BudgetGuidance  string            `json:"budget_guidance,omitempty"`
	AgencyInsights  string            `json:"agency_insights,omitempty"`
	Generated       bool              `json:"generated"`
}

// Generator produces application templates.
type Generator interface {
	GenerateTemplate(ctx context.Context, req TemplateRequest) (*Template, error)
}

// OllamaClient generates templates with a local Ollama model.
type OllamaClient struct {
	Client  *http.Client
	BaseURL string
	Model   string
}

func NewOllamaClient(baseURL, model string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:8b"
	}
	return &OllamaClient{
		Client:  &http.Client{Timeout: 120 * time.Second},
		BaseURL: baseURL,
		Model:   model,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"` // For JSON mode
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerateTemplate asks the model for a structured application outline.
// Any failure falls back to the static template so the endpoint always
// returns something useful.
func (c *OllamaClient) GenerateTemplate(ctx context.Context, req TemplateRequest) (*Template, error) {
	raw, err := c.generateCompletion(ctx, buildTemplatePrompt(req), true)
	if err != nil {
		log.Printf("[AI] generation failed, using fallback: %v", err)
		return FallbackTemplate(req), nil
	}

	var tmpl Template
	if err := json.Unmarshal([]byte(raw), &tmpl); err != nil {
		log.Printf("[AI] unparseable model output, using fallback: %v", err)
		return FallbackTemplate(req), nil
	}
	if tmpl.TemplateTitle == "" || len(tmpl.Sections) == 0 {
		return FallbackTemplate(req), nil
	}

	tmpl.Generated = true
	return &tmpl, nil
}

func (c *OllamaClient) generateCompletion(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	reqBody := generateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Stream: false,
	}
	if jsonMode {
		reqBody.Format = "json"
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status: %d", resp.StatusCode)
	}

	var parsedResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsedResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return parsedResp.Response, nil
}

func buildTemplatePrompt(req TemplateRequest) string {
	var b strings.Builder
	b.WriteString("You are a grant writing consultant. Produce a JSON application template for the grant below.\n\n")
	fmt.Fprintf(&b, "Grant: %s\n", req.GrantTitle)
	if req.Agency != "" {
		fmt.Fprintf(&b, "Agency: %s\n", req.Agency)
	}
	if req.Amount != "" {
		fmt.Fprintf(&b, "Amount: %s\n", req.Amount)
	}
	if req.Deadline != "" {
		fmt.Fprintf(&b, "Deadline: %s\n", req.Deadline)
	}
	if req.OrgType != "" {
		fmt.Fprintf(&b, "Applicant organization type: %s\n", req.OrgType)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	b.WriteString(`
Respond with JSON only, using exactly these keys:
{
  "template_title": string,
  "grant_summary": string,
  "key_requirements": [string],
  "sections": [{"title": string, "guidance": string, "prompts": [string], "tips": [string], "estimated_length": string}],
  "checklist": [string],
  "timeline": string,
  "budget_guidance": string,
  "agency_insights": string
}`)
	return b.String()
}
