package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/normalize"
)

// californiaDatasetID is the CKAN resource for the California Grants
// Portal dataset on data.ca.gov.
const californiaDatasetID = "111c8c88-21f6-453c-ae2c-b4785a0624f5"

// CaliforniaClient searches the California Grants Portal through the
// data.ca.gov CKAN datastore. When a Details fetcher is configured,
// records missing eligibility text are enriched from their portal
// detail pages.
type CaliforniaClient struct {
	Client    *http.Client
	BaseURL   string
	DatasetID string
	Details   *DetailFetcher
}

func NewCaliforniaClient() *CaliforniaClient {
	return &CaliforniaClient{
		Client:    &http.Client{Timeout: 30 * time.Second},
		BaseURL:   "https://data.ca.gov/api/3/action/datastore_search",
		DatasetID: californiaDatasetID,
	}
}

func (c *CaliforniaClient) ID() models.Source { return models.SourceCalifornia }

type californiaResponse struct {
	Success bool `json:"success"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
	Result struct {
		Records []map[string]any `json:"records"`
		Total   int              `json:"total"`
	} `json:"result"`
}

func (c *CaliforniaClient) Search(ctx context.Context, q Query) (*Result, error) {
	page := q.page()
	pageSize := q.pageSize(50)

	params := url.Values{}
	params.Set("resource_id", c.DatasetID)
	params.Set("q", q.Keyword)
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa((page-1)*pageSize))
	if q.Agency != "" {
		filters, _ := json.Marshal(map[string]string{"grantmaker_name": q.Agency})
		params.Set("filters", string(filters))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[California] Searching keyword=%q page=%d", q.Keyword, page)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Source: c.ID(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp californiaResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if !apiResp.Success {
		return nil, &UnavailableError{Source: c.ID(), Err: fmt.Errorf("API error: %s", apiResp.Error.Message)}
	}

	opps := normalize.NormalizeAll(apiResp.Result.Records, c.ID())
	c.enrichEligibility(ctx, opps)

	total := apiResp.Result.Total
	if total == 0 {
		total = len(opps)
	}

	log.Printf("[California] Got %d grants (total: %d)", len(opps), total)

	return &Result{
		Opportunities: opps,
		Total:         total,
		Page:          page,
		TotalPages:    totalPages(total, pageSize),
	}, nil
}

// enrichEligibility pulls eligibility text from portal detail pages for
// a handful of records that lack it. Failures are logged and skipped;
// enrichment is best-effort.
func (c *CaliforniaClient) enrichEligibility(ctx context.Context, opps []models.Opportunity) {
	if c.Details == nil {
		return
	}

	const maxEnrich = 5
	enriched := 0
	for i := range opps {
		if enriched >= maxEnrich {
			return
		}
		if opps[i].EligibilityText != "" || opps[i].Link == "" {
			continue
		}

		text, err := c.Details.FetchEligibility(ctx, opps[i].Link)
		if err != nil {
			log.Printf("[California] Eligibility enrichment failed for %s: %v", opps[i].SourceRecordID, err)
			continue
		}
		if text != "" {
			opps[i].EligibilityText = text
			enriched++
		}
	}
}
