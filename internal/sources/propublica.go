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

// PropublicaClient searches the ProPublica Nonprofit Explorer. Records
// here are organizations, not grants: the normalized Amount is the
// organization's reported revenue.
type PropublicaClient struct {
	Client  *http.Client
	BaseURL string
}

func NewPropublicaClient() *PropublicaClient {
	return &PropublicaClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://projects.propublica.org/nonprofits/api/v2/search.json",
	}
}

func (c *PropublicaClient) ID() models.Source { return models.SourcePropublica }

type propublicaResponse struct {
	Organizations []map[string]any `json:"organizations"`
	TotalResults  int              `json:"total_results"`
	NumPages      int              `json:"num_pages"`
}

func (c *PropublicaClient) Search(ctx context.Context, q Query) (*Result, error) {
	page := q.page()
	pageSize := q.pageSize(25)

	params := url.Values{}
	params.Set("q", q.Keyword)
	// ProPublica pages are 0-based.
	params.Set("page", strconv.Itoa(page-1))
	if q.State != "" {
		params.Set("state[id]", q.State)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[ProPublica] Searching keyword=%q page=%d", q.Keyword, page)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Source: c.ID(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp propublicaResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	opps := normalize.NormalizeAll(apiResp.Organizations, c.ID())
	total := apiResp.TotalResults
	if total == 0 {
		total = len(opps)
	}
	pages := apiResp.NumPages
	if pages == 0 {
		pages = totalPages(total, pageSize)
	}

	log.Printf("[ProPublica] Got %d organizations (total: %d)", len(opps), total)

	return &Result{
		Opportunities: opps,
		Total:         total,
		Page:          page,
		TotalPages:    pages,
	}, nil
}
