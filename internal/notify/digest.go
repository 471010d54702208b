// Package notify builds and delivers match digest emails.
package notify

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/nick/grantlink/internal/models"
	"github.com/nick/grantlink/internal/normalize"
)

// maxDigestMatches caps how many matches one digest email lists.
const maxDigestMatches = 10

// descriptionLimit truncates grant descriptions in the digest body.
const descriptionLimit = 200

var htmlPolicy = bluemonday.UGCPolicy()

// Digest is a rendered notification email for one profile.
type Digest struct {
	Subject  string
	HTML     string
	MatchIDs []string
}

// BuildDigest renders the top matches into an email. Matches are
// expected pre-sorted best first; anything past the cap is summarized
// in the footer.
func BuildDigest(profile models.Profile, matches []models.Match, baseURL string) *Digest {
	if len(matches) == 0 {
		return nil
	}

	shown := matches
	if len(shown) > maxDigestMatches {
		shown = shown[:maxDigestMatches]
	}

	subject := fmt.Sprintf("%d new grant matches for %s", len(matches), displayName(profile))

	var b strings.Builder
	b.WriteString("<h2>Your new grant matches</h2>")
	fmt.Fprintf(&b, "<p>We found %d opportunities matching your profile.</p>", len(matches))

	ids := make([]string, 0, len(shown))
	for _, m := range shown {
		ids = append(ids, m.ID.String())

		b.WriteString("<div style=\"margin-bottom:16px;border-bottom:1px solid #eee;padding-bottom:12px\">")
		fmt.Fprintf(&b, "<h3><a href=\"%s\">%s</a></h3>", htmlPolicy.Sanitize(m.GrantLink), htmlPolicy.Sanitize(m.GrantTitle))

		var meta []string
		if m.GrantAgency != "" {
			meta = append(meta, htmlPolicy.Sanitize(m.GrantAgency))
		}
		if m.GrantAmount != nil {
			meta = append(meta, fmt.Sprintf("up to $%.0f", *m.GrantAmount))
		}
		if m.GrantDeadline != nil {
			meta = append(meta, "deadline "+m.GrantDeadline.Format("Jan 2, 2006"))
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "<p><em>%s</em></p>", strings.Join(meta, " · "))
		}

		if m.GrantDescription != "" {
			desc := normalize.TruncateText(htmlPolicy.Sanitize(m.GrantDescription), descriptionLimit)
			fmt.Fprintf(&b, "<p>%s</p>", desc)
		}

		fmt.Fprintf(&b, "<p>Match score: %d/100", m.Score)
		if len(m.Reasons) > 0 {
			fmt.Fprintf(&b, ": %s", htmlPolicy.Sanitize(strings.Join(m.Reasons, "; ")))
		}
		b.WriteString("</p></div>")
	}

	if len(matches) > len(shown) {
		fmt.Fprintf(&b, "<p>Plus %d more matches in your dashboard.</p>", len(matches)-len(shown))
	}
	if baseURL != "" {
		fmt.Fprintf(&b, "<p><a href=\"%s/matches?email=%s\">View all matches</a></p>", baseURL, profile.Email)
	}

	return &Digest{Subject: subject, HTML: b.String(), MatchIDs: ids}
}

func displayName(p models.Profile) string {
	if p.OrganizationName != "" {
		return p.OrganizationName
	}
	return p.Email
}
