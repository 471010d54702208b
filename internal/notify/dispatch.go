package notify

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/nick/grantlink/internal/models"
)

// MatchReader is the store surface the dispatcher reads and updates.
type MatchReader interface {
	ListProfilesForMatching(ctx context.Context, frequency string) ([]models.Profile, error)
	ListMatches(ctx context.Context, profileID uuid.UUID, status string, limit int) ([]models.Match, error)
	MarkMatchesSent(ctx context.Context, profileID uuid.UUID, matchIDs []uuid.UUID) error
	LogNotification(ctx context.Context, profileID uuid.UUID, matchCount int, subject string) error
}

// DispatchStats summarizes one notification sweep.
type DispatchStats struct {
	ProfilesChecked int `json:"profiles_checked"`
	DigestsSent     int `json:"digests_sent"`
	Failures        int `json:"failures"`
}

// Dispatcher sends digest emails for profiles with unsent matches.
type Dispatcher struct {
	Store   MatchReader
	Sender  Sender
	BaseURL string
}

// Dispatch sweeps profiles on the given frequency, emails each one its
// new matches, and marks them sent. A delivery failure skips that
// profile; its matches stay new and the next sweep retries them.
func (d *Dispatcher) Dispatch(ctx context.Context, frequency string) (*DispatchStats, error) {
	profiles, err := d.Store.ListProfilesForMatching(ctx, frequency)
	if err != nil {
		return nil, err
	}

	stats := &DispatchStats{}
	for _, profile := range profiles {
		stats.ProfilesChecked++

		matches, err := d.Store.ListMatches(ctx, profile.ID, models.MatchStatusNew, 0)
		if err != nil {
			log.Printf("[Notify] listing matches for %s failed: %v", profile.Email, err)
			stats.Failures++
			continue
		}
		if len(matches) == 0 {
			continue
		}

		digest := BuildDigest(profile, matches, d.BaseURL)
		if digest == nil {
			continue
		}

		if err := d.Sender.Send(ctx, profile.Email, digest.Subject, digest.HTML); err != nil {
			log.Printf("[Notify] sending to %s failed: %v", profile.Email, err)
			stats.Failures++
			continue
		}

		sentIDs := make([]uuid.UUID, 0, len(matches))
		for _, m := range matches {
			sentIDs = append(sentIDs, m.ID)
		}
		if err := d.Store.MarkMatchesSent(ctx, profile.ID, sentIDs); err != nil {
			log.Printf("[Notify] marking sent for %s failed: %v", profile.Email, err)
			stats.Failures++
			continue
		}
		if err := d.Store.LogNotification(ctx, profile.ID, len(matches), digest.Subject); err != nil {
			log.Printf("[Notify] logging notification for %s failed: %v", profile.Email, err)
		}

		stats.DigestsSent++
	}

	log.Printf("[Notify] frequency=%s checked=%d sent=%d failed=%d",
		frequency, stats.ProfilesChecked, stats.DigestsSent, stats.Failures)

	return stats, nil
}
