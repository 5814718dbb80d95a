package services

import (
	"testing"

	"lexline/internal/models"
)

func TestAnalyzeQuery_Category(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"housing", "My landlord won't return my deposit", "housing"},
		{"contract", "The builder breached our contract and refuses a refund", "contract_dispute"},
		{"employment", "I was unfairly dismissed by my employer", "employment"},
		{"no match falls back to general", "What time does the court open?", "general"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			analysis := AnalyzeQuery(tc.query)
			if analysis.Category != tc.expected {
				t.Errorf("Expected category %q, got %q", tc.expected, analysis.Category)
			}
		})
	}
}

func TestAnalyzeQuery_TrackFromClaimValue(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"small claims boundary", "I am owed £10,000 by a client", models.TrackSmallClaims},
		{"fast track", "Claim is worth £15,500 against the builder", models.TrackFastTrack},
		{"multi track", "The dispute is about £80,000 in damages", models.TrackMultiTrack},
		{"pounds suffix", "They owe me 5000 pounds", models.TrackSmallClaims},
		{"no value, no hint", "My landlord is ignoring me", ""},
		{"explicit track mention", "How do I start a small claim?", models.TrackSmallClaims},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			analysis := AnalyzeQuery(tc.query)
			if analysis.TrackType != tc.expected {
				t.Errorf("Expected track %q, got %q", tc.expected, analysis.TrackType)
			}
		})
	}
}

func TestAnalyzeQuery_Urgency(t *testing.T) {
	urgent := AnalyzeQuery("I was served with a claim form yesterday, deadline is Friday")
	if !urgent.Urgent {
		t.Error("Expected urgent flag for claim form + deadline")
	}

	calm := AnalyzeQuery("General question about tenant rights")
	if calm.Urgent {
		t.Error("Did not expect urgent flag")
	}
}

func TestExtractClaimValue(t *testing.T) {
	tests := []struct {
		query    string
		expected float64
	}{
		{"i am owed £1,250.50", 1250.50},
		{"about 3000 pounds", 3000},
		{"no amounts here", 0},
	}

	for _, tc := range tests {
		if got := extractClaimValue(tc.query); got != tc.expected {
			t.Errorf("extractClaimValue(%q) = %v, expected %v", tc.query, got, tc.expected)
		}
	}
}
