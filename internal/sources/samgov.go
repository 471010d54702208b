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

// SamGovClient searches the SAM.gov opportunities API. SAM.gov is the
// flakiest of the upstreams, so this client carries bounded retry with
// backoff; the API also requires a key and caps date ranges at one year.
type SamGovClient struct {
	Client     *http.Client
	BaseURL    string
	APIKey     string
	MaxRetries int
}

func NewSamGovClient(apiKey string) *SamGovClient {
	return &SamGovClient{
		Client:     &http.Client{Timeout: 30 * time.Second},
		BaseURL:    "https://api.sam.gov/opportunities/v2/search",
		APIKey:     apiKey,
		MaxRetries: 2,
	}
}

func (c *SamGovClient) ID() models.Source { return models.SourceSamGov }

type samGovResponse struct {
	TotalRecords      int              `json:"totalRecords"`
	OpportunitiesData []map[string]any `json:"opportunitiesData"`
	Opportunities     []map[string]any `json:"opportunities"`
}

func (c *SamGovClient) Search(ctx context.Context, q Query) (*Result, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	page := q.page()
	pageSize := q.pageSize(25)

	// 90 days back, 90 days forward; well inside the API's 1-year cap and
	// fast enough to answer interactively.
	now := time.Now()
	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("q", q.Keyword)
	params.Set("postedFrom", now.AddDate(0, 0, -90).Format("01/02/2006"))
	params.Set("postedTo", now.AddDate(0, 0, 90).Format("01/02/2006"))
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa((page-1)*pageSize))
	if q.Agency != "" {
		params.Set("organizationId", q.Agency)
	}

	reqURL := c.BaseURL + "?" + params.Encode()

	log.Printf("[SamGov] Searching keyword=%q page=%d", q.Keyword, page)

	resp, err := doWithRetry(ctx, c.Client, c.ID(), c.MaxRetries, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp samGovResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	raws := apiResp.OpportunitiesData
	if len(raws) == 0 {
		raws = apiResp.Opportunities
	}

	opps := normalize.NormalizeAll(raws, c.ID())
	total := apiResp.TotalRecords
	if total == 0 {
		total = len(opps)
	}

	log.Printf("[SamGov] Got %d opportunities (total: %d)", len(opps), total)

	return &Result{
		Opportunities: opps,
		Total:         total,
		Page:          page,
		TotalPages:    totalPages(total, pageSize),
	}, nil
}
