package models

import (
	"time"

	"github.com/google/uuid"
)

// Match status values. A match is created as "new", becomes "sent" when
// included in a notification digest, and "viewed" when the user opens it.
const (
	MatchStatusNew    = "new"
	MatchStatusSent   = "sent"
	MatchStatusViewed = "viewed"
)

// Match is a persisted scoring result for one (profile, opportunity)
// pair. (ProfileID, Source, SourceRecordID) is the upsert key: re-running
// the matcher overwrites score and reasons, never duplicates.
type Match struct {
	ID             uuid.UUID `json:"id"`
	ProfileID      uuid.UUID `json:"profile_id"`
	Source         Source    `json:"source"`
	SourceRecordID string    `json:"source_record_id"`

	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`

	// Grant snapshot captured at match time so digests do not need a
	// second round trip to the upstream source.
	GrantTitle       string     `json:"grant_title"`
	GrantAgency      string     `json:"grant_agency,omitempty"`
	GrantAmount      *float64   `json:"grant_amount,omitempty"`
	GrantDeadline    *time.Time `json:"grant_deadline,omitempty"`
	GrantLink        string     `json:"grant_link,omitempty"`
	GrantDescription string     `json:"grant_description,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lead is a captured signup from the search gate.
type Lead struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Company   string    `json:"company,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
