package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nick/grantlink/internal/models"
)

// Normalize converts one raw JSON record from a source into the canonical
// Opportunity shape. It is pure and total: malformed or partial input
// produces a record with nil/empty optional fields, never a panic or an
// error. The second return value is false when the record carries no
// usable identifier under any candidate path; such records are dropped.
func Normalize(raw map[string]any, src models.Source) (models.Opportunity, bool) {
	if raw == nil {
		return models.Opportunity{Source: src}, false
	}

	id := recordID(raw, src)
	if id == "" {
		return models.Opportunity{Source: src}, false
	}

	fm := sourceFields[src]

	opp := models.Opportunity{
		Source:         src,
		SourceRecordID: id,
		Title:          firstString(raw, fm.Title),
		Agency:         cleanText(firstString(raw, fm.Agency)),
		Category:       cleanText(firstString(raw, fm.Category)),
	}
	if opp.Title == "" {
		opp.Title = "Untitled"
	} else {
		opp.Title = cleanText(opp.Title)
	}

	if desc := firstString(raw, fm.Description); desc != "" {
		opp.Description = flattenText(desc)
	}
	if elig := firstString(raw, fm.Eligibility); elig != "" {
		opp.EligibilityText = flattenText(elig)
	}

	opp.Amount = ParseMoney(firstValue(raw, fm.Amount))
	opp.PostedAt = ParseDate(firstValue(raw, fm.Posted))
	opp.DeadlineAt = ParseDate(firstValue(raw, fm.Deadline))

	opp.Link = firstString(raw, fm.Link)
	if opp.Link == "" {
		if tmpl, ok := linkTemplates[src]; ok {
			opp.Link = fmt.Sprintf(tmpl, id)
		}
	}

	return opp, true
}

// NormalizeAll maps Normalize over a batch, dropping unidentifiable records.
func NormalizeAll(raws []map[string]any, src models.Source) []models.Opportunity {
	opps := make([]models.Opportunity, 0, len(raws))
	for _, raw := range raws {
		if opp, ok := Normalize(raw, src); ok {
			opps = append(opps, opp)
		}
	}
	return opps
}

// flattenText strips HTML markup when present and collapses whitespace.
func flattenText(s string) string {
	if strings.Contains(s, "<") && strings.Contains(s, ">") {
		return HTMLToText(s)
	}
	return cleanText(s)
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(html)
	}
	return cleanText(doc.Text())
}

// TruncateText cuts a string to max length, appending ellipsis if truncated.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return text[:maxLen-3] + "..."
	}
	return text[:maxLen]
}

// cleanText collapses runs of whitespace into single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
