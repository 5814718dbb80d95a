package services

import (
	"fmt"
	"strings"

	"lexline/internal/models"
)

// composeResponse merges track guidance, AI output and local knowledge into
// the response text and its ordered citation list. The text uses the widget's
// restricted markdown: **bold**, *italic*, newlines and bullet points.
func composeResponse(query string, analysis QueryAnalysis, guidance *LegalGuidance, cases []*models.LegalCase, procedures []*models.LegalProcedure) (string, []models.Citation) {
	var parts []string
	var citations []models.Citation

	switch analysis.TrackType {
	case models.TrackSmallClaims:
		parts = append(parts, "**Small Claims Track (up to £10,000)**\n")
		parts = append(parts, "This appears to be a small claims matter. Small claims are designed to be accessible to litigants in person, with simplified procedures and limited costs exposure.")
	case models.TrackFastTrack:
		parts = append(parts, "**Fast Track (£10,000 - £25,000)**\n")
		parts = append(parts, "This appears to be a fast track claim. Fast track claims have standard directions and fixed trial costs, with cases typically concluded within 30 weeks.")
	case models.TrackMultiTrack:
		parts = append(parts, "**Multi-Track (£25,000 - £100,000)**\n")
		parts = append(parts, "This appears to be a multi-track claim. Multi-track claims involve case management conferences, costs budgeting, and more complex procedures.")
	}

	if guidance != nil && guidance.Response != "" {
		parts = append(parts, "\n**AI Legal Guidance:**")
		parts = append(parts, guidance.Response)
	}

	if len(cases) > 0 {
		parts = append(parts, "\n**Relevant Case Law:**")
		for _, c := range cases {
			parts = append(parts, fmt.Sprintf("• %s %s - %s", c.CaseName, c.Citation, c.Summary))
			citation := models.Citation{
				Type:     "case",
				Name:     c.CaseName,
				Citation: c.Citation,
			}
			if c.URL != nil {
				citation.URL = *c.URL
			}
			citations = append(citations, citation)
		}
	}

	if len(procedures) > 0 {
		parts = append(parts, "\n**Relevant Procedures:**")
		for _, p := range procedures {
			parts = append(parts, fmt.Sprintf("• %s: %s", p.Title, p.Summary))
			citation := models.Citation{
				Type:  "procedure",
				Title: p.Title,
			}
			if p.Source != nil {
				citation.Source = *p.Source
			}
			citations = append(citations, citation)
		}
	}

	parts = append(parts, "\n**Important Notes:**")
	parts = append(parts, "• This information is for guidance only and does not constitute legal advice")
	parts = append(parts, "• Consider seeking professional legal advice for your specific circumstances")
	parts = append(parts, "• Court procedures and deadlines are strict - ensure compliance with all requirements")

	lower := strings.ToLower(query)
	if strings.Contains(lower, "costs") || strings.Contains(lower, "fees") {
		parts = append(parts, "\n**Court Fees Information:**")
		switch analysis.TrackType {
		case models.TrackSmallClaims:
			parts = append(parts, "• Small claims have limited costs exposure - generally only court fees and expert witness costs")
		case models.TrackFastTrack:
			parts = append(parts, "• Fast track claims have fixed trial costs and limited recoverable costs")
		case models.TrackMultiTrack:
			parts = append(parts, "• Multi-track claims require costs budgeting and have full costs exposure")
		}
	}

	return strings.Join(parts, "\n"), citations
}
