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
	"strings"
	"time"

	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/normalize"
)

// FEMAClient searches OpenFEMA Public Assistance grant award activities.
// OpenFEMA has no full-text search, so the keyword is matched against
// applicant names and project titles with OData contains() filters.
type FEMAClient struct {
	Client  *http.Client
	BaseURL string
}

func NewFEMAClient() *FEMAClient {
	return &FEMAClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://www.fema.gov/api/open/v2/PublicAssistanceGrantAwardActivities",
	}
}

func (c *FEMAClient) ID() models.Source { return models.SourceFEMA }

type femaResponse struct {
	Metadata struct {
		Count int `json:"count"`
	} `json:"metadata"`
	Activities []map[string]any `json:"PublicAssistanceGrantAwardActivities"`
}

func (c *FEMAClient) Search(ctx context.Context, q Query) (*Result, error) {
	page := q.page()
	pageSize := q.pageSize(25)

	keyword := strings.ReplaceAll(q.Keyword, "'", "''")
	filters := []string{
		fmt.Sprintf("contains(applicantName,'%s') or contains(projectTitle,'%s')", keyword, keyword),
	}
	if q.State != "" {
		filters = append(filters, fmt.Sprintf("state eq '%s'", strings.ReplaceAll(q.State, "'", "''")))
	}

	params := url.Values{}
	params.Set("$filter", strings.Join(filters, " and "))
	params.Set("$skip", strconv.Itoa((page-1)*pageSize))
	params.Set("$top", strconv.Itoa(pageSize))
	params.Set("$orderby", "obligatedDate desc")
	params.Set("$inlinecount", "allpages")

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[FEMA] Searching keyword=%q state=%q page=%d", q.Keyword, q.State, page)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Source: c.ID(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp femaResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	opps := normalize.NormalizeAll(apiResp.Activities, c.ID())
	total := apiResp.Metadata.Count
	if total == 0 {
		total = len(opps)
	}

	log.Printf("[FEMA] Got %d grants (total: %d)", len(opps), total)

	return &Result{
		Opportunities: opps,
		Total:         total,
		Page:          page,
		TotalPages:    totalPages(total, pageSize),
	}, nil
}
