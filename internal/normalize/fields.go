package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nick/grantlink/internal/models"
)

// fieldMap describes how to pull canonical fields out of one source's raw
// JSON: each canonical field has an ordered list of candidate paths, tried
// until one yields a value. Paths use dots for nested objects
// ("synopsis.synopsisDesc"). Upstream schemas drift between API versions,
// so most fields carry more than one candidate.
type fieldMap struct {
	ID          []string
	Title       []string
	Agency      []string
	Description []string
	Amount      []string
	Posted      []string
	Deadline    []string
	Link        []string
	Eligibility []string
	Category    []string
}

var sourceFields = map[models.Source]fieldMap{
	models.SourceGrantsGov: {
		ID:          []string{"id", "opportunityId"},
		Title:       []string{"title", "opportunityTitle"},
		Agency:      []string{"agencyCode", "agency", "agencyName"},
		Description: []string{"synopsis.synopsisDesc", "synopsis", "description"},
		Amount:      []string{"awardCeiling", "awardFloor"},
		Posted:      []string{"openDate", "postDate"},
		Deadline:    []string{"closeDate"},
		Link:        []string{"link"},
		Eligibility: []string{"applicantEligibility", "eligibilities", "applicantTypes"},
		Category:    []string{"docType"},
	},
	models.SourceSamGov: {
		ID:          []string{"noticeId"},
		Title:       []string{"title"},
		Agency:      []string{"department.name", "departmentName", "subTier.name", "subTierName"},
		Description: []string{"description.body", "description"},
		Amount:      []string{"award.amount"},
		Posted:      []string{"postedDate"},
		Deadline:    []string{"responseDeadLine"},
		Link:        []string{"uiLink"},
		Eligibility: []string{"typeOfSetAsideDescription"},
		Category:    []string{"type.value", "type", "baseType.value", "baseType"},
	},
	models.SourceNIH: {
		ID:          []string{"appl_id"},
		Title:       []string{"project_title"},
		Agency:      []string{"agency_ic_admin.abbreviation", "agency_ic_admin.name", "organization.org_name"},
		Description: []string{"abstract_text"},
		Amount:      []string{"award_amount"},
		Posted:      []string{"project_start_date"},
		Deadline:    []string{"project_end_date"},
		Eligibility: []string{"applicant_types"},
		Category:    []string{"cfda_code"},
	},
	models.SourceNSF: {
		ID:          []string{"id"},
		Title:       []string{"title"},
		Agency:      []string{"agency", "awardeeName"},
		Description: []string{"abstractText"},
		Amount:      []string{"estimatedTotalAmt", "fundsObligatedAmt"},
		Posted:      []string{"startDate", "date"},
		Deadline:    []string{"expDate"},
		Category:    []string{"fundProgramName", "primaryProgram"},
	},
	models.SourceUSASpending: {
		ID:          []string{"generated_internal_id", "Award ID"},
		Title:       []string{"Description"},
		Agency:      []string{"Awarding Agency", "Awarding Sub Agency"},
		Amount:      []string{"Award Amount"},
		Posted:      []string{"Start Date"},
		Deadline:    []string{"End Date"},
		Category:    []string{"Award Type", "CFDA Number"},
	},
	models.SourceFEMA: {
		ID:          []string{"id"},
		Title:       []string{"projectTitle", "declarationTitle"},
		Agency:      []string{"applicantName"},
		Description: []string{"damageCategory", "incidentType"},
		Amount:      []string{"projectAmount", "federalShareObligated", "totalObligated"},
		Posted:      []string{"obligatedDate", "incidentBeginDate"},
		Deadline:    []string{"incidentEndDate"},
		Eligibility: []string{"applicantName"},
		Category:    []string{"incidentType"},
	},
	models.SourcePropublica: {
		ID:          []string{"ein", "strein"},
		Title:       []string{"name"},
		Agency:      []string{"city"},
		Description: []string{"ntee_code"},
		Amount:      []string{"income_amount"},
		Category:    []string{"ntee_code"},
	},
	models.SourceRegulations: {
		ID:          []string{"id"},
		Title:       []string{"attributes.title", "title"},
		Agency:      []string{"attributes.agencyId", "agencyId"},
		Description: []string{"attributes.summary", "attributes.highlightedContent", "summary"},
		Posted:      []string{"attributes.postedDate", "postedDate"},
		Deadline:    []string{"attributes.commentEndDate", "commentEndDate"},
		Category:    []string{"attributes.documentType", "documentType"},
	},
	models.SourceFederalReporter: {
		ID:          []string{"appl_id"},
		Title:       []string{"project_title"},
		Agency:      []string{"agency_ic_admin.abbreviation", "agency_ic_admin.name"},
		Description: []string{"abstract_text"},
		Amount:      []string{"award_amount"},
		Posted:      []string{"project_start_date"},
		Deadline:    []string{"project_end_date"},
		Category:    []string{"cfda_code"},
	},
	models.SourceCalifornia: {
		ID:          []string{"_id", "opportunity_id"},
		Title:       []string{"title", "opportunity_title"},
		Agency:      []string{"grantmaker_name"},
		Description: []string{"description"},
		Amount:      []string{"expected_award_ceiling", "estimated_available_funds"},
		Posted:      []string{"open_date", "application_open_date"},
		Deadline:    []string{"close_date", "application_deadline"},
		Link:        []string{"application_url", "opportunity_url"},
		Eligibility: []string{"applicant_type", "eligible_applicants"},
		Category:    []string{"category"},
	},
}

// linkTemplates synthesize a deep link from the record id when the source
// provides no direct URL. %s is the id.
var linkTemplates = map[models.Source]string{
	models.SourceGrantsGov:       "https://www.grants.gov/search-results-detail/%s",
	models.SourceSamGov:          "https://sam.gov/opp/%s/view",
	models.SourceNIH:             "https://reporter.nih.gov/project-details/%s",
	models.SourceNSF:             "https://www.nsf.gov/awardsearch/showAward?AWD_ID=%s",
	models.SourceUSASpending:     "https://www.usaspending.gov/award/%s",
	models.SourceFEMA:            "https://www.fema.gov/disaster/%s",
	models.SourcePropublica:      "https://projects.propublica.org/nonprofits/organizations/%s",
	models.SourceRegulations:     "https://www.regulations.gov/document/%s",
	models.SourceFederalReporter: "https://reporter.nih.gov/project-details/%s",
	models.SourceCalifornia:      "https://www.grants.ca.gov/grants/%s/",
}

// lookupPath walks a dot-separated path through nested maps and returns
// the leaf value, or nil when any segment is missing.
func lookupPath(raw map[string]any, path string) any {
	cur := any(raw)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// firstString returns the first candidate path that yields a non-empty
// string. Numeric values are formatted, so numeric IDs survive.
func firstString(raw map[string]any, paths []string) string {
	for _, path := range paths {
		v := lookupPath(raw, path)
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

// firstValue returns the first candidate path that yields any non-nil,
// non-empty value, preserving its type.
func firstValue(raw map[string]any, paths []string) any {
	for _, path := range paths {
		v := lookupPath(raw, path)
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON numbers decode as float64; IDs must not come out as "1.23e+06".
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// recordID extracts the record identity for a source. FEMA award rows
// sometimes omit "id" but carry disaster and project numbers, which the
// portal concatenates into a stable key.
func recordID(raw map[string]any, src models.Source) string {
	fm := sourceFields[src]
	if id := firstString(raw, fm.ID); id != "" {
		return id
	}
	if src == models.SourceFEMA {
		disaster := stringify(lookupPath(raw, "disasterNumber"))
		project := stringify(lookupPath(raw, "projectNumber"))
		if disaster != "" && project != "" {
			return disaster + "-" + project
		}
	}
	return ""
}
