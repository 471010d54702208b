package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a saved organization preference record, keyed by email.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	OrganizationName string    `json:"organization_name"`
	OrganizationType string    `json:"organization_type,omitempty"`
	State            string    `json:"state,omitempty"`
	City             string    `json:"city,omitempty"`
	Zip              string    `json:"zip,omitempty"`

	FocusAreas       []string `json:"focus_areas,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	MinAmount        *float64 `json:"min_amount,omitempty"`
	MaxAmount        *float64 `json:"max_amount,omitempty"`
	// GrantSizeRange is an input-only named amount bracket. Resolved
	// to MinAmount/MaxAmount on save; not stored itself.
	GrantSizeRange   string   `json:"grant_size_range,omitempty"`
	PreferredSources []Source `json:"preferred_sources,omitempty"`

	NotificationFrequency string `json:"notification_frequency"`
	NotificationsEnabled  bool   `json:"notifications_enabled"`

	LastNotificationSent *time.Time `json:"last_notification_sent,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// OrganizationTypes is the fixed set of accepted organization_type values.
var OrganizationTypes = []string{
	"nonprofit",
	"small_business",
	"university",
	"k12",
	"government",
	"tribal",
	"hospital",
	"individual",
	"other",
}

// FocusAreas is the fixed focus-area taxonomy profiles may select from.
var FocusAreas = []string{
	"education",
	"healthcare",
	"environment",
	"research",
	"technology",
	"arts",
	"housing",
	"workforce",
	"agriculture",
	"disaster",
	"justice",
	"transportation",
	"energy",
	"social_services",
	"veterans",
}

// NotificationFrequencies are the accepted digest cadences.
var NotificationFrequencies = []string{"daily", "weekly", "monthly", "none"}

// IsValidOrganizationType reports whether t is in the fixed taxonomy.
func IsValidOrganizationType(t string) bool {
	return containsString(OrganizationTypes, t)
}

// IsValidFocusArea reports whether a is in the fixed taxonomy.
func IsValidFocusArea(a string) bool {
	return containsString(FocusAreas, a)
}

// IsValidNotificationFrequency reports whether f is an accepted cadence.
func IsValidNotificationFrequency(f string) bool {
	return containsString(NotificationFrequencies, f)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
