package normalize

import (
	"strings"
	"time"
)

// dateLayouts in the order the ten upstream APIs actually emit them.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate parses an upstream date value, returning nil when the value
// is absent or unrecognizable.
func ParseDate(v any) *time.Time {
	s := stringify(v)
	if s == "" {
		return nil
	}

	// Some APIs append timezone suffixes layouts choke on ("...-04:00"
	// handled by RFC3339; trailing "Z" variants handled below).
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
