package services

import (
	"context"
	"strings"

	"lexline/internal/models"
	"lexline/internal/repository"
)

// ReferralService decides when a query is beyond self-representation and
// assembles solicitor recommendations with funding options.
type ReferralService struct {
	knowledge *repository.KnowledgeRepo
}

func NewReferralService(knowledge *repository.KnowledgeRepo) *ReferralService {
	return &ReferralService{knowledge: knowledge}
}

var referralIndicators = []string{
	"urgent", "emergency", "injunction", "court date", "deadline",
	"served with", "claim form", "defence", "trial", "represent me",
	"complex", "multiple parties", "international", "regulatory",
}

var complexCategories = map[string]bool{
	"professional_negligence": true,
	"commercial_dispute":      true,
	"employment":              true,
}

// ShouldRefer reports whether the query warrants professional advice.
func ShouldRefer(analysis QueryAnalysis, query string) bool {
	lower := strings.ToLower(query)
	for _, indicator := range referralIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	// High-value claims always warrant representation
	if analysis.TrackType == models.TrackMultiTrack {
		return true
	}

	return complexCategories[analysis.Category]
}

// Recommend builds the referral block for the given category.
func (s *ReferralService) Recommend(ctx context.Context, analysis QueryAnalysis) (*models.ReferralInfo, error) {
	solicitors, err := s.knowledge.FindSolicitors(ctx, analysis.Category, 3)
	if err != nil {
		return nil, err
	}

	advice := "Based on your query, we recommend consulting a qualified solicitor. The firms below specialise in this area of law."
	if analysis.Urgent {
		advice = "Your query appears urgent. Contact a solicitor as soon as possible - many offer a free initial consultation and can act quickly on deadlines."
	}

	return &models.ReferralInfo{
		Advice:         advice,
		Solicitors:     solicitors,
		FundingOptions: fundingOptions(analysis.TrackType),
	}, nil
}

func fundingOptions(trackType string) []models.FundingOption {
	options := []models.FundingOption{
		{Type: "conditional_fee", Description: "No win, no fee agreements - the solicitor's fee is only payable if the claim succeeds."},
		{Type: "legal_expenses_insurance", Description: "Check home and motor insurance policies for legal expenses cover that may fund representation."},
		{Type: "fixed_fee", Description: "Many firms offer fixed-fee initial reviews of claim documents and prospects."},
	}

	if trackType == models.TrackSmallClaims {
		options = append(options, models.FundingOption{
			Type:        "litigant_in_person",
			Description: "Small claims are designed for self-representation; costs recovery from the losing side is limited either way.",
		})
	}

	return options
}
