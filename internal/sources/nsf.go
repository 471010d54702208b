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

// NSFClient searches the NSF awards API.
type NSFClient struct {
	Client  *http.Client
	BaseURL string
}

func NewNSFClient() *NSFClient {
	return &NSFClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://api.nsf.gov/services/v1/awards.json",
	}
}

func (c *NSFClient) ID() models.Source { return models.SourceNSF }

const nsfPrintFields = "id,title,abstractText,agency,awardeeName,awardeeStateCode," +
	"date,startDate,expDate,estimatedTotalAmt,fundsObligatedAmt,cfdaNumber," +
	"pdPIName,primaryProgram,fundProgramName,transType"

type nsfResponse struct {
	Response struct {
		Award []map[string]any `json:"award"`
	} `json:"response"`
}

func (c *NSFClient) Search(ctx context.Context, q Query) (*Result, error) {
	page := q.page()
	pageSize := q.pageSize(25)

	params := url.Values{}
	params.Set("keyword", q.Keyword)
	params.Set("printFields", nsfPrintFields)
	params.Set("offset", strconv.Itoa((page-1)*pageSize+1)) // NSF offsets are 1-based
	params.Set("rpp", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[NSF] Searching keyword=%q page=%d", q.Keyword, page)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Source: c.ID(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(c.ID(), resp.StatusCode)
	}

	var apiResp nsfResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	opps := normalize.NormalizeAll(apiResp.Response.Award, c.ID())

	// NSF reports no reliable total; estimate from the page shape so the
	// caller can keep paging while full pages come back.
	var total int
	if len(opps) < pageSize {
		total = (page-1)*pageSize + len(opps)
	} else {
		total = page*pageSize + pageSize
	}

	log.Printf("[NSF] Got %d awards (estimated total: %d)", len(opps), total)

	return &Result{
		Opportunities: opps,
		Total:         total,
		Page:          page,
		TotalPages:    totalPages(total, pageSize),
	}, nil
}
