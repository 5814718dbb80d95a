package services

import (
	"fmt"
	"strings"

	"lexline/internal/models"
)

var trackLabels = map[string]string{
	models.TrackSmallClaims: "Small Claims Track (up to £10,000)",
	models.TrackFastTrack:   "Fast Track (£10,000 - £25,000)",
	models.TrackMultiTrack:  "Multi-Track (£25,000+)",
}

// FormatDefenceResponse turns a skeleton analysis into the chat reply saved
// alongside the document, using the widget's restricted markdown.
func FormatDefenceResponse(a *models.SkeletonAnalysis, filename string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("**Defence Strategy Analysis: %s**\n\n", filename))

	b.WriteString("**Document Summary**\n")
	b.WriteString(a.DocumentSummary)
	b.WriteString("\n\n**Case Assessment**\n")
	b.WriteString(fmt.Sprintf("• Estimated claim value: £%.0f\n", a.ClaimValueEstimate))

	track := trackLabels[a.TrackAssessment]
	if track == "" {
		track = a.TrackAssessment
	}
	b.WriteString(fmt.Sprintf("• Appropriate track: %s\n", track))
	if len(a.LegalCategories) > 0 {
		b.WriteString(fmt.Sprintf("• Legal categories: %s\n", strings.Join(a.LegalCategories, ", ")))
	}

	if len(a.ClaimantArguments) > 0 {
		b.WriteString("\n**Claimant's Key Arguments**\n")
		for _, arg := range a.ClaimantArguments {
			b.WriteString("• ")
			b.WriteString(arg)
			b.WriteString("\n")
		}
	}

	if len(a.DefencePoints) > 0 {
		b.WriteString("\n**Recommended Defence Points**\n")
		for _, point := range a.DefencePoints {
			b.WriteString("• ")
			b.WriteString(point)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n**Important Notes:**\n")
	b.WriteString("• This analysis is for guidance only and does not constitute legal advice\n")
	b.WriteString("• Consider seeking professional legal advice before filing a defence")

	return b.String()
}
