package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/normalize"
)

// USASpendingClient searches awarded grants via the USASpending
// spending_by_award API.
type USASpendingClient struct {
	Client  *http.Client
	BaseURL string
}

func NewUSASpendingClient() *USASpendingClient {
	return &USASpendingClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://api.usaspending.gov/api/v2/search/spending_by_award/",
	}
}

func (c *USASpendingClient) ID() models.Source { return models.SourceUSASpending }

type usaSpendingFilters struct {
	Keywords   []string         `json:"keywords"`
	AwardTypes []string         `json:"award_type_codes"`
	Agencies   []map[string]any `json:"agencies,omitempty"`
}

type usaSpendingRequest struct {
	Filters   usaSpendingFilters `json:"filters"`
	Fields    []string           `json:"fields"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
	Sort      string             `json:"sort"`
	Order     string             `json:"order"`
	Subawards bool               `json:"subawards"`
}

type usaSpendingResponse struct {
	Results      []map[string]any `json:"results"`
	PageMetadata struct {
		Total   int  `json:"total"`
		HasNext bool `json:"hasNext"`
	} `json:"page_metadata"`
}

func (c *USASpendingClient) Search(ctx context.Context, q Query) (*Result, error) {
	page := q.page()
	pageSize := q.pageSize(25)

	filters := usaSpendingFilters{
		Keywords: []string{q.Keyword},
		// Grant award type codes 02-05.
		AwardTypes: []string{"02", "03", "04", "05"},
	}
	if q.Agency != "" {
		filters.Agencies = []map[string]any{{
			"type": "awarding",
			"tier": "toptier",
			"name": q.Agency,
		}}
	}

	body, err := json.Marshal(usaSpendingRequest{
		Filters: filters,
		Fields: []string{
			"Award ID", "Recipient Name", "Recipient State Code", "Description",
			"Award Amount", "Total Outlays", "Start Date", "End Date",
			"Awarding Agency", "Awarding Sub Agency", "Award Type", "CFDA Number",
			"generated_internal_id",
		},
		Page:      page,
		Limit:     pageSize,
		Sort:      "Award Amount",
		Order:     "desc",
		Subawards: false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[USASpending] Searching keyword=%q page=%d", q.Keyword, page)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Source: c.ID(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp usaSpendingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	opps := normalize.NormalizeAll(apiResp.Results, c.ID())
	total := apiResp.PageMetadata.Total
	if total == 0 {
		total = len(opps)
	}

	log.Printf("[USASpending] Got %d awards (total: %d)", len(opps), total)

	return &Result{
		Opportunities: opps,
		Total:         total,
		Page:          page,
		TotalPages:    totalPages(total, pageSize),
	}, nil
}
