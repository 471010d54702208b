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

// RegulationsClient searches Regulations.gov documents. Requires an API
// key and is aggressively rate-limited upstream.
type RegulationsClient struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

func NewRegulationsClient(apiKey string) *RegulationsClient {
	return &RegulationsClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://api.regulations.gov/v4/documents",
		APIKey:  apiKey,
	}
}

func (c *RegulationsClient) ID() models.Source { return models.SourceRegulations }

type regulationsResponse struct {
	Data []map[string]any `json:"data"`
	Meta struct {
		TotalElements int `json:"totalElements"`
		TotalPages    int `json:"totalPages"`
	} `json:"meta"`
}

func (c *RegulationsClient) Search(ctx context.Context, q Query) (*Result, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	page := q.page()
	pageSize := q.pageSize(25)

	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("filter[searchTerm]", q.Keyword)
	params.Set("page[size]", strconv.Itoa(pageSize))
	params.Set("page[number]", strconv.Itoa(page))
	params.Set("sort", "-postedDate")
	if q.Agency != "" {
		params.Set("filter[agencyId]", q.Agency)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[Regulations] Searching keyword=%q page=%d", q.Keyword, page)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Source: c.ID(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp regulationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	opps := normalize.NormalizeAll(apiResp.Data, c.ID())
	total := apiResp.Meta.TotalElements
	if total == 0 {
		total = len(opps)
	}
	pages := apiResp.Meta.TotalPages
	if pages == 0 {
		pages = totalPages(total, pageSize)
	}

	log.Printf("[Regulations] Got %d documents (total: %d)", len(opps), total)

	return &Result{
		Opportunities: opps,
		Total:         total,
		Page:          page,
		TotalPages:    pages,
	}, nil
}
