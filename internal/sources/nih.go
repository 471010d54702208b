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

// NIHClient searches the NIH RePORTER projects API. The same API backs
// the Federal RePORTER source with multi-agency filters, so both clients
// share this implementation.
type NIHClient struct {
	Client  *http.Client
	BaseURL string

	// source and agency filter distinguish NIH proper from the
	// multi-agency Federal RePORTER view.
	source   models.Source
	agencies []string
}

func NewNIHClient() *NIHClient {
	return &NIHClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://api.reporter.nih.gov/v2/projects/search",
		source:  models.SourceNIH,
	}
}

// NewFederalReporterClient searches NIH RePORTER restricted to the HHS
// agencies the retired Federal RePORTER service used to cover.
func NewFederalReporterClient() *NIHClient {
	return &NIHClient{
		Client:   &http.Client{Timeout: 30 * time.Second},
		BaseURL:  "https://api.reporter.nih.gov/v2/projects/search",
		source:   models.SourceFederalReporter,
		agencies: []string{"CDC", "AHRQ", "FDA", "SAMHSA", "HRSA", "ACF", "CMS"},
	}
}

func (c *NIHClient) ID() models.Source { return c.source }

type nihCriteria struct {
	AdvancedTextSearch *nihTextSearch `json:"advanced_text_search,omitempty"`
	AgencyCodes        []string       `json:"agencies,omitempty"`
}

type nihTextSearch struct {
	Operator    string `json:"operator"`
	SearchField string `json:"search_field"`
	SearchText  string `json:"search_text"`
}

type nihRequest struct {
	Criteria  nihCriteria `json:"criteria"`
	Offset    int         `json:"offset"`
	Limit     int         `json:"limit"`
	SortField string      `json:"sort_field"`
	SortOrder string      `json:"sort_order"`
}

type nihResponse struct {
	Results []map[string]any `json:"results"`
	Meta    struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func (c *NIHClient) Search(ctx context.Context, q Query) (*Result, error) {
	page := q.page()
	pageSize := q.pageSize(25)

	criteria := nihCriteria{
		AdvancedTextSearch: &nihTextSearch{
			Operator:    "and",
			SearchField: "projecttitle,abstracttext,terms",
			SearchText:  q.Keyword,
		},
	}
	if q.Agency != "" {
		criteria.AgencyCodes = []string{q.Agency}
	} else if len(c.agencies) > 0 {
		criteria.AgencyCodes = c.agencies
	}

	body, err := json.Marshal(nihRequest{
		Criteria:  criteria,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortField: "award_amount",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Printf("[%s] Searching keyword=%q page=%d", c.source, q.Keyword, page)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Source: c.ID(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp nihResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	opps := normalize.NormalizeAll(apiResp.Results, c.ID())
	total := apiResp.Meta.Total
	if total == 0 {
		total = len(opps)
	}

	log.Printf("[%s] Got %d projects (total: %d)", c.source, len(opps), total)

	return &Result{
		Opportunities: opps,
		Total:         total,
		Page:          page,
		TotalPages:    totalPages(total, pageSize),
	}, nil
}
