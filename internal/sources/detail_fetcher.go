package sources

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/nick/grantlink/internal/normalize"
)

// DetailFetcher scrapes grant detail pages for fields the list APIs do
// not carry, currently eligibility text. It rate-limits per domain and
// caches fetched pages for the lifetime of the fetcher.
type DetailFetcher struct {
	UserAgent      string
	RequestTimeout time.Duration
	DomainDelay    time.Duration

	mu    sync.Mutex
	cache map[string]string
}

func NewDetailFetcher() *DetailFetcher {
	return &DetailFetcher{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestTimeout: 20 * time.Second,
		DomainDelay:    1 * time.Second,
		cache:          make(map[string]string),
	}
}

// eligibilitySelectors are tried in order against the detail page. The
// California portal renders eligibility under a heading with an
// "eligibility" id or class; the generic selectors cover layout drift.
var eligibilitySelectors = []string{
	"#eligibility",
	".eligibility",
	"section[aria-label*='ligibility']",
	"div[class*='eligib']",
}

// FetchEligibility loads the page at pageURL and returns the text of
// its eligibility section, or "" when no matching section exists.
func (f *DetailFetcher) FetchEligibility(ctx context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	if text, ok := f.cache[pageURL]; ok {
		f.mu.Unlock()
		return text, nil
	}
	f.mu.Unlock()

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.AllowedDomains(parsed.Host),
		colly.AllowURLRevisit(),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       f.DomainDelay,
		RandomDelay: f.DomainDelay / 2,
	})
	c.SetRequestTimeout(f.RequestTimeout)

	var text string
	var fetchErr error

	for _, sel := range eligibilitySelectors {
		c.OnHTML(sel, func(e *colly.HTMLElement) {
			if text == "" {
				text = strings.TrimSpace(e.Text)
			}
		})
	}

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetching %s: %w", pageURL, err)
	})

	c.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
			fetchErr = ctx.Err()
		default:
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("visit failed: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}

	text = normalize.TruncateText(strings.Join(strings.Fields(text), " "), 2000)
	if text != "" {
		log.Printf("[DetailFetcher] Extracted %d chars of eligibility from %s", len(text), parsed.Host)
	}

	f.mu.Lock()
	f.cache[pageURL] = text
	f.mu.Unlock()

	return text, nil
}
