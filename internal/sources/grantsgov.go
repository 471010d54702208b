package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/normalize"
)

// GrantsGovClient searches the Grants.gov search2 API.
type GrantsGovClient struct {
	Client  *http.Client
	BaseURL string
}

func NewGrantsGovClient() *GrantsGovClient {
	return &GrantsGovClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://api.grants.gov/v1/api/search2",
	}
}

func (c *GrantsGovClient) ID() models.Source { return models.SourceGrantsGov }

// grantsGovRequest matches the search2 API schema.
type grantsGovRequest struct {
	Keyword        string `json:"keyword"`
	OppStatuses    string `json:"oppStatuses"`
	Agencies       string `json:"agencies,omitempty"`
	Rows           int    `json:"rows"`
	StartRecordNum int    `json:"startRecordNum"`
}

// grantsGovResponse keeps hits as raw maps so the normalizer's fallback
// chains see every field the API happened to send.
type grantsGovResponse struct {
	Data struct {
		HitCount int              `json:"hitCount"`
		OppHits  []map[string]any `json:"oppHits"`
	} `json:"data"`
	ErrorCode int    `json:"errorcode"`
	Msg       string `json:"msg"`
}

func (c *GrantsGovClient) Search(ctx context.Context, q Query) (*Result, error) {
	page := q.page()
	pageSize := q.pageSize(50)

	searchReq := grantsGovRequest{
		Keyword:        q.Keyword,
		OppStatuses:    "forecasted|posted",
		Agencies:       q.Agency,
		Rows:           pageSize,
		StartRecordNum: (page - 1) * pageSize,
	}

	jsonBody, err := json.Marshal(searchReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Printf("[GrantsGov] Searching keyword=%q page=%d rows=%d", q.Keyword, page, pageSize)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Source: c.ID(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp grantsGovResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if apiResp.ErrorCode != 0 {
		return nil, &UnavailableError{Source: c.ID(), Err: fmt.Errorf("API error: %s", apiResp.Msg)}
	}

	opps := normalize.NormalizeAll(apiResp.Data.OppHits, c.ID())
	log.Printf("[GrantsGov] Got %d opportunities (total: %d)", len(opps), apiResp.Data.HitCount)

	return &Result{
		Opportunities: opps,
		Total:         apiResp.Data.HitCount,
		Page:          page,
		TotalPages:    totalPages(apiResp.Data.HitCount, pageSize),
	}, nil
}
