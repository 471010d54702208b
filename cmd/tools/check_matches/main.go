package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nick/grantlink/internal/config"
	"github.com/nick/grantlink/internal/db"
)

func main() {
	email := flag.String("email", "", "filter by profile email")
	status := flag.String("status", "", "filter by match status (new, sent, viewed, dismissed)")
	limit := flag.Int("limit", 20, "max rows")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	query := `SELECT p.email, m.grant_title, m.source, m.score, m.status, m.grant_deadline, m.created_at
		FROM matches m JOIN profiles p ON p.id = m.profile_id WHERE 1=1`
	args := []interface{}{}
	argIdx := 1
	if *email != "" {
		query += " AND p.email = $1"
		args = append(args, *email)
		argIdx++
	}
	if *status != "" {
		query += " AND m.status = $" + strconv.Itoa(argIdx)
		args = append(args, *status)
		argIdx++
	}
	query += " ORDER BY m.score DESC, m.created_at DESC LIMIT $" + strconv.Itoa(argIdx)
	args = append(args, *limit)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Email", "Grant", "Source", "Score", "Status", "Deadline", "Matched At"})

	for rows.Next() {
		var profileEmail, title, source, matchStatus string
		var score int
		var deadline *time.Time
		var createdAt time.Time

		if err := rows.Scan(&profileEmail, &title, &source, &score, &matchStatus, &deadline, &createdAt); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}

		due := "-"
		if deadline != nil {
			due = deadline.Format("2006-01-02")
		}
		if len(title) > 60 {
			title = title[:57] + "..."
		}

		t.AppendRow(table.Row{profileEmail, title, source, score, matchStatus, due, createdAt.Format("01-02 15:04")})
	}
	t.Render()
}
