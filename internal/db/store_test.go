package db

import (
	"context"
	"sort"
	"strings"
	"testing"
)

func TestConnectRejectsMalformedURL(t *testing.T) {
	if _, err := Connect(context.Background(), "not-a-postgres-url://///"); err == nil {
		t.Error("expected parse error for malformed database URL")
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("reading embedded migrations: %v", err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}

	if len(names) < 4 {
		t.Fatalf("expected at least 4 migrations, got %v", names)
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("migration filenames must sort in application order: %v", names)
	}

	mustExist := []string{"001_profiles.sql", "002_matches.sql", "003_notification_log.sql", "004_leads.sql"}
	for _, want := range mustExist {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing migration %s", want)
		}
	}
}
