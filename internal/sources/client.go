package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/nick/grantlink/internal/models"
)

// Query carries the user's search input to an upstream client. Each
// client translates it into its own API's query syntax.
type Query struct {
	Keyword  string
	Agency   string
	State    string
	Page     int
	PageSize int
}

// Result is one source's page of normalized opportunities plus its own
// pagination state. Pagination is per source: upstream APIs page on
// their own terms and page numbers are never unified globally.
type Result struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Page          int                  `json:"page"`
	TotalPages    int                  `json:"total_pages"`
}

// Client is one upstream funding-data API.
type Client interface {
	ID() models.Source
	Search(ctx context.Context, q Query) (*Result, error)
}

// ErrMissingAPIKey short-circuits a keyed source before any network call.
var ErrMissingAPIKey = errors.New("API key not configured for this source")

// RateLimitedError distinguishes 429 responses so callers can advise
// waiting rather than retrying immediately.
type RateLimitedError struct {
	Source models.Source
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many requests to %s - please wait a moment and try again", models.SourceLabels[e.Source])
}

// UnavailableError covers timeouts, 5xx responses, and network failures.
type UnavailableError struct {
	Source models.Source
	Status int
	Err    error
}

func (e *UnavailableError) Error() string {
	label := models.SourceLabels[e.Source]
	switch e.Status {
	case 504:
		return fmt.Sprintf("%s server timeout - please try a more specific search term", label)
	case 503:
		return fmt.Sprintf("%s service temporarily unavailable - please try again later", label)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", label, e.Err)
	}
	return fmt.Sprintf("%s API error: %d", label, e.Status)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// statusError maps a non-OK upstream status to the error taxonomy.
func statusError(src models.Source, status int) error {
	if status == 429 {
		return &RateLimitedError{Source: src}
	}
	return &UnavailableError{Source: src, Status: status}
}

func totalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func (q Query) page() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

func (q Query) pageSize(def int) int {
	if q.PageSize <= 0 {
		return def
	}
	return q.PageSize
}
