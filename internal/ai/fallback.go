package ai

import "fmt"

// FallbackTemplate is the static scaffold returned when no model is
// configured or generation fails. It covers the sections nearly every
// federal and state application asks for.
func FallbackTemplate(req TemplateRequest) *Template {
	title := req.GrantTitle
	if title == "" {
		title = "Grant Application"
	}

	summary := fmt.Sprintf("Application template for %s", title)
	if req.Agency != "" {
		summary += fmt.Sprintf(", offered by %s", req.Agency)
	}

	return &Template{
		TemplateTitle: fmt.Sprintf("%s Application Template", title),
		GrantSummary:  summary,
		KeyRequirements: []string{
			"Confirm your organization meets the eligibility criteria before investing time",
			"Register in SAM.gov and obtain a UEI if applying for federal funding",
			"Review the full funding announcement for required attachments and formats",
		},
		Sections: []TemplateSection{
			{
				Title:    "Executive Summary",
				Guidance: "Summarize who you are, what you will do with the funding, and the outcome you expect. Write this section last.",
				Prompts: []string{
					"What problem does your project address?",
					"What will be different in your community when the project succeeds?",
				},
				EstimatedLength: "1 page",
			},
			{
				Title:    "Statement of Need",
				Guidance: "Document the problem with local data. Funders weight recent, cited statistics over anecdote.",
				Prompts: []string{
					"What data shows this need in your service area?",
					"Who is affected and how many people?",
				},
				Tips:            []string{"Cite sources published within the last three years"},
				EstimatedLength: "2-3 pages",
			},
			{
				Title:    "Project Description",
				Guidance: "Describe activities, timeline, and staffing. Tie every activity to a measurable objective.",
				Prompts: []string{
					"What are your SMART objectives?",
					"Who delivers each activity and on what schedule?",
				},
				EstimatedLength: "3-5 pages",
			},
			{
				Title:           "Evaluation Plan",
				Guidance:        "Explain how you will measure progress against each objective and who is responsible for collecting the data.",
				EstimatedLength: "1-2 pages",
			},
			{
				Title:           "Budget and Justification",
				Guidance:        "Itemize costs and justify each line against project activities. Match the funder's budget categories exactly.",
				Tips:            []string{"Check whether indirect costs are capped", "Document any required match or cost share"},
				EstimatedLength: "2 pages plus budget form",
			},
			{
				Title:           "Organizational Capacity",
				Guidance:        "Show you can deliver: past results, relevant staff qualifications, and financial controls.",
				EstimatedLength: "1-2 pages",
			},
		},
		Checklist: []string{
			"Eligibility confirmed against the funding announcement",
			"All required registrations complete (SAM.gov, Grants.gov workspace)",
			"Letters of support requested at least three weeks before the deadline",
			"Budget totals match across narrative and forms",
			"Application reviewed by someone outside the writing team",
			"Submission completed at least 48 hours before the deadline",
		},
		Timeline:       "Plan 6-8 weeks: two weeks research and partner outreach, three weeks drafting, one week internal review, and submission buffer.",
		BudgetGuidance: "Build the budget from activities, not the award ceiling. Reviewers flag budgets that back into the maximum.",
		Generated:      false,
	}
}
