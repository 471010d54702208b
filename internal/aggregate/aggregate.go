// Package aggregate fans a search out across the upstream funding
// sources concurrently and merges their pages into one result set.
package aggregate

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/sources"
)

// ErrEmptyKeyword rejects a search before any upstream call is made.
var ErrEmptyKeyword = errors.New("search keyword is required")

// DefaultSourceTimeout bounds a single upstream call when the registry
// carries no per-source timeout.
const DefaultSourceTimeout = 25 * time.Second

// PageInfo is one source's pagination state. Page numbers are per
// source; upstream APIs page on their own terms and are never unified.
type PageInfo struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// SearchResult is the merged outcome of a fan-out. A failed source
// contributes an entry in Errors instead of failing the whole search.
type SearchResult struct {
	Opportunities []models.Opportunity       `json:"opportunities"`
	Errors        map[models.Source]string   `json:"errors,omitempty"`
	Pages         map[models.Source]PageInfo `json:"pages"`
	Total         int                        `json:"total"`
}

// Options narrows a search beyond the keyword.
type Options struct {
	Sources  []models.Source
	Agency   string
	State    string
	Page     int
	PageSize int
}

// Aggregator queries its registered clients concurrently, each under
// its own timeout.
type Aggregator struct {
	clients  map[models.Source]sources.Client
	timeouts map[models.Source]time.Duration
}

func New() *Aggregator {
	return &Aggregator{
		clients:  make(map[models.Source]sources.Client),
		timeouts: make(map[models.Source]time.Duration),
	}
}

// Register adds a client. A zero timeout falls back to
// DefaultSourceTimeout.
func (a *Aggregator) Register(c sources.Client, timeout time.Duration) {
	a.clients[c.ID()] = c
	if timeout > 0 {
		a.timeouts[c.ID()] = timeout
	}
}

// Sources lists the registered sources.
func (a *Aggregator) Sources() []models.Source {
	out := make([]models.Source, 0, len(a.clients))
	for _, src := range models.AllSources {
		if _, ok := a.clients[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

// Client returns a registered client, or nil.
func (a *Aggregator) Client(src models.Source) sources.Client {
	return a.clients[src]
}

func (a *Aggregator) timeout(src models.Source) time.Duration {
	if d, ok := a.timeouts[src]; ok {
		return d
	}
	return DefaultSourceTimeout
}

type sourceOutcome struct {
	src    models.Source
	result *sources.Result
	err    error
}

// Search fans the query out to every requested source concurrently and
// merges the pages. One slow or failing source never sinks the rest:
// its error is recorded under its name and the merge proceeds.
func (a *Aggregator) Search(ctx context.Context, keyword string, opts Options) (*SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	targets := opts.Sources
	if len(targets) == 0 {
		targets = a.Sources()
	}

	q := sources.Query{
		Keyword:  keyword,
		Agency:   opts.Agency,
		State:    opts.State,
		Page:     opts.Page,
		PageSize: opts.PageSize,
	}

	outcomes := make(chan sourceOutcome, len(targets))
	var wg sync.WaitGroup

	started := 0
	for _, src := range targets {
		client, ok := a.clients[src]
		if !ok {
			continue
		}
		started++
		wg.Add(1)
		go func(src models.Source, client sources.Client) {
			defer wg.Done()
			srcCtx, cancel := context.WithTimeout(ctx, a.timeout(src))
			defer cancel()

			res, err := client.Search(srcCtx, q)
			if err == nil && srcCtx.Err() != nil {
				err = srcCtx.Err()
			}
			outcomes <- sourceOutcome{src: src, result: res, err: err}
		}(src, client)
	}

	wg.Wait()
	close(outcomes)

	// Merge in the requested source order, not completion order, so
	// identical searches return identical record order and stable
	// sorts have a fixed order to preserve.
	bySource := make(map[models.Source]sourceOutcome, started)
	for out := range outcomes {
		bySource[out.src] = out
	}

	result := &SearchResult{
		Errors: make(map[models.Source]string),
		Pages:  make(map[models.Source]PageInfo),
	}
	seen := make(map[string]bool)

	for _, src := range targets {
		out, ok := bySource[src]
		if !ok {
			continue
		}
		if out.err != nil {
			log.Printf("[Aggregate] %s failed: %v", out.src, out.err)
			result.Errors[out.src] = out.err.Error()
			continue
		}

		result.Pages[out.src] = PageInfo{
			Page:       out.result.Page,
			TotalPages: out.result.TotalPages,
			Total:      out.result.Total,
		}
		result.Total += out.result.Total

		for _, opp := range out.result.Opportunities {
			key := string(opp.Source) + ":" + opp.SourceRecordID
			if seen[key] {
				continue
			}
			seen[key] = true
			result.Opportunities = append(result.Opportunities, opp)
		}
	}

	log.Printf("[Aggregate] keyword=%q sources=%d ok=%d failed=%d merged=%d",
		keyword, started, len(result.Pages), len(result.Errors), len(result.Opportunities))

	return result, nil
}
