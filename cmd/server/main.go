package main

import (
	"context"
	"log"

	"github.com/nick/grantlink/internal/aggregate"
	"github.com/nick/grantlink/internal/api"
	"github.com/nick/grantlink/internal/config"
	"github.com/nick/grantlink/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	reg, err := config.LoadRegistry("")
	if err != nil {
		log.Fatalf("Failed to load source registry: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	agg := aggregate.FromRegistry(cfg, reg)

	srv := api.NewServer(pool, cfg, agg)
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := srv.Start(cfg.Port); err != nil {
		log.Fatal(err)
	}
}
