package score

// focusAreaKeywords maps each focus area to the terms that signal it in
// grant text. Kept behind accessors so the taxonomy can grow without
// touching scoring logic.
var focusAreaKeywords = map[string][]string{
	"education":       {"education", "school", "student", "teacher", "learning", "training", "curriculum", "stem", "literacy"},
	"healthcare":      {"health", "medical", "hospital", "clinical", "patient", "disease", "mental health", "public health"},
	"environment":     {"environment", "climate", "conservation", "sustainability", "green", "renewable", "pollution", "ecosystem"},
	"research":        {"research", "study", "investigation", "scientific", "innovation", "discovery", "laboratory"},
	"technology":      {"technology", "innovation", "digital", "software", "cyber", "ai", "data", "computing"},
	"arts":            {"arts", "culture", "museum", "creative", "humanities", "music", "theater", "visual arts"},
	"housing":         {"housing", "community development", "affordable", "homeless", "shelter", "urban development"},
	"workforce":       {"workforce", "employment", "job", "career", "apprentice", "vocational", "labor"},
	"agriculture":     {"agriculture", "farm", "food", "rural", "crop", "livestock", "nutrition"},
	"disaster":        {"disaster", "emergency", "fema", "mitigation", "resilience", "hazard", "recovery"},
	"justice":         {"justice", "public safety", "law enforcement", "court", "crime", "corrections"},
	"transportation":  {"transportation", "infrastructure", "transit", "highway", "road", "bridge"},
	"energy":          {"energy", "power", "electric", "solar", "wind", "efficiency", "grid"},
	"social_services": {"social services", "welfare", "assistance", "poverty", "family", "child", "senior"},
	"veterans":        {"veteran", "military", "armed forces", "service member", "va "},
}

// eligibilityKeywords maps each organization type to the phrases that
// signal eligibility in free-text eligibility sections.
var eligibilityKeywords = map[string][]string{
	"nonprofit":      {"nonprofit", "non-profit", "501(c)(3)", "501c3", "charitable", "organization"},
	"small_business": {"small business", "sbir", "sttr", "entrepreneur", "commercial"},
	"university":     {"university", "college", "higher education", "academic", "institution of higher"},
	"k12":            {"school district", "k-12", "elementary", "secondary", "local education"},
	"government":     {"state", "local", "municipal", "county", "government", "public agency"},
	"tribal":         {"tribal", "native", "indigenous", "indian"},
	"hospital":       {"hospital", "healthcare", "health system", "medical center"},
	"individual":     {"individual", "researcher", "investigator", "principal investigator"},
}

// FocusAreaKeywords returns the keyword list for a focus area. Unknown
// areas fall back to the area name itself so free-form tags still match.
func FocusAreaKeywords(area string) []string {
	if kws, ok := focusAreaKeywords[area]; ok {
		return kws
	}
	return []string{area}
}

// EligibilityKeywords returns the eligibility phrases for an organization
// type, or nil for unknown types.
func EligibilityKeywords(orgType string) []string {
	return eligibilityKeywords[orgType]
}
