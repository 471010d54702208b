package aggregate

import (
	"log"
	"time"

	"github.com/nick/grantlink/internal/config"
	"github.com/nick/grantlink/internal/sources"
)

// FromRegistry builds an aggregator with a client for every enabled
// registry source. Per-source timeouts, retry budgets, and api keys
// come from the registry; a source with no registry key falls back to
// the env config key.
func FromRegistry(cfg *config.AppConfig, reg *config.Registry) *Aggregator {
	agg := New()

	detail := sources.NewDetailFetcher()

	for _, sc := range reg.Sources {
		if !sc.Enabled {
			continue
		}

		var client sources.Client
		switch sc.ID {
		case "grants_gov":
			client = sources.NewGrantsGovClient()
		case "sam_gov":
			sam := sources.NewSamGovClient(firstNonEmpty(sc.APIKey, cfg.SamGovAPIKey))
			if sc.MaxRetries > 0 {
				sam.MaxRetries = sc.MaxRetries
			}
			client = sam
		case "nih":
			client = sources.NewNIHClient()
		case "nsf":
			client = sources.NewNSFClient()
		case "usaspending":
			client = sources.NewUSASpendingClient()
		case "fema":
			client = sources.NewFEMAClient()
		case "propublica":
			client = sources.NewPropublicaClient()
		case "regulations":
			client = sources.NewRegulationsClient(firstNonEmpty(sc.APIKey, cfg.RegulationsGovAPIKey))
		case "federal_reporter":
			client = sources.NewFederalReporterClient()
		case "california":
			ca := sources.NewCaliforniaClient()
			ca.Details = detail
			client = ca
		default:
			log.Printf("Unknown source in registry: %s", sc.ID)
			continue
		}

		agg.Register(client, time.Duration(sc.TimeoutSeconds)*time.Second)
	}

	return agg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
