// Runs the profile matching pipeline from the command line.
//
//	go run ./cmd/tools/match_run [-email org@example.com] [-terms "water,education"]
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/nick/grantlink/internal/aggregate"
	"github.com/nick/grantlink/internal/config"
	"github.com/nick/grantlink/internal/db"
	"github.com/nick/grantlink/internal/match"
	"github.com/nick/grantlink/internal/models"
)

func main() {
	email := flag.String("email", "", "match a single profile by email instead of all")
	terms := flag.String("terms", "", "comma-separated search terms (default: derived from profiles)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	reg, err := config.LoadRegistry("")
	if err != nil {
		log.Fatalf("Failed to load source registry: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	store := db.NewStore(pool)

	var profiles []models.Profile
	if *email != "" {
		p, err := store.GetProfileByEmail(ctx, *email)
		if err != nil {
			log.Fatalf("Profile %s: %v", *email, err)
		}
		profiles = []models.Profile{*p}
	} else {
		profiles, err = store.ListProfilesForMatching(ctx, "")
		if err != nil {
			log.Fatalf("Listing profiles: %v", err)
		}
	}
	if len(profiles) == 0 {
		log.Fatal("No profiles to match")
	}

	agg := aggregate.FromRegistry(cfg, reg)

	var termList []string
	if *terms != "" {
		for _, t := range strings.Split(*terms, ",") {
			if t = strings.TrimSpace(t); t != "" {
				termList = append(termList, t)
			}
		}
	}

	pipeline := match.NewPipeline(agg, store)
	stats, err := pipeline.Run(ctx, profiles, termList)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	log.Printf("Done: profiles=%d scanned=%d stored=%d source_errors=%d",
		stats.ProfilesProcessed, stats.GrantsScanned, stats.MatchesStored, len(stats.SourceErrors))
	for src, msg := range stats.SourceErrors {
		log.Printf("  %s: %s", src, msg)
	}
}
