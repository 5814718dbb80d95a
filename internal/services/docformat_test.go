package services

import (
	"strings"
	"testing"

	"lexline/internal/models"
)

func TestFormatDefenceResponse(t *testing.T) {
	analysis := &models.SkeletonAnalysis{
		DocumentSummary:    "Claim for unpaid invoices against a former supplier.",
		ClaimantArguments:  []string{"Invoices were validly issued", "Goods were delivered on time"},
		DefencePoints:      []string{"Goods were rejected as faulty within 30 days"},
		ClaimValueEstimate: 8500,
		TrackAssessment:    models.TrackSmallClaims,
		LegalCategories:    []string{"contract_dispute", "consumer_rights"},
	}

	response := FormatDefenceResponse(analysis, "claim.pdf")

	for _, expected := range []string{
		"**Defence Strategy Analysis: claim.pdf**",
		"Claim for unpaid invoices",
		"£8500",
		"Small Claims Track (up to £10,000)",
		"contract_dispute, consumer_rights",
		"• Invoices were validly issued",
		"• Goods were rejected as faulty within 30 days",
		"does not constitute legal advice",
	} {
		if !strings.Contains(response, expected) {
			t.Errorf("Expected response to contain %q:\n%s", expected, response)
		}
	}
}

func TestFormatDefenceResponse_UnknownTrack(t *testing.T) {
	analysis := &models.SkeletonAnalysis{
		DocumentSummary: "Summary",
		TrackAssessment: "intermediate",
	}

	response := FormatDefenceResponse(analysis, "doc.txt")
	if !strings.Contains(response, "Appropriate track: intermediate") {
		t.Errorf("Expected raw track label passthrough:\n%s", response)
	}
}
