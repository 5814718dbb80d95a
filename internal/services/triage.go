package services

import (
	"regexp"
	"strconv"
	"strings"

	"lexline/internal/models"
)

// QueryAnalysis is the lightweight classification of a legal query used to
// drive knowledge retrieval, track guidance and referral decisions.
type QueryAnalysis struct {
	Category   string
	TrackType  string
	ClaimValue float64
	Urgent     bool
	Keywords   []string
}

// Claim value boundaries for civil track allocation.
const (
	smallClaimsLimit = 10000
	fastTrackLimit   = 25000
)

var categoryKeywords = map[string][]string{
	"contract_dispute":        {"contract", "breach", "agreement", "terms", "refund"},
	"consumer_rights":         {"consumer", "faulty", "goods", "warranty", "trader", "purchase"},
	"housing":                 {"landlord", "tenant", "deposit", "eviction", "rent", "repairs"},
	"employment":              {"employer", "dismissal", "redundancy", "wages", "workplace"},
	"personal_injury":         {"injury", "accident", "negligence", "whiplash", "compensation"},
	"debt_recovery":           {"debt", "owed", "invoice", "unpaid", "money claim"},
	"professional_negligence": {"solicitor negligence", "surveyor", "accountant", "professional advice"},
	"commercial_dispute":      {"supplier", "business dispute", "commercial", "partnership"},
}

var urgencyKeywords = []string{
	"urgent", "emergency", "injunction", "court date", "deadline", "served with",
	"claim form", "bailiff", "tomorrow",
}

// Matches "£12,500", "£12500.50" and "12500 pounds".
var claimValueRegex = regexp.MustCompile(`£\s*([\d,]+(?:\.\d+)?)|([\d,]+(?:\.\d+)?)\s*pounds`)

// AnalyzeQuery classifies a raw query into category, claim track and urgency.
func AnalyzeQuery(query string) QueryAnalysis {
	lower := strings.ToLower(query)
	analysis := QueryAnalysis{}

	best := 0
	for category, keywords := range categoryKeywords {
		hits := 0
		var matched []string
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
				matched = append(matched, kw)
			}
		}
		if hits > best {
			best = hits
			analysis.Category = category
			analysis.Keywords = matched
		}
	}
	if analysis.Category == "" {
		analysis.Category = "general"
	}

	analysis.ClaimValue = extractClaimValue(lower)
	analysis.TrackType = classifyTrack(analysis.ClaimValue, lower)

	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			analysis.Urgent = true
			break
		}
	}

	return analysis
}

func extractClaimValue(query string) float64 {
	matches := claimValueRegex.FindStringSubmatch(query)
	if matches == nil {
		return 0
	}

	raw := matches[1]
	if raw == "" {
		raw = matches[2]
	}
	raw = strings.ReplaceAll(raw, ",", "")

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

func classifyTrack(claimValue float64, query string) string {
	if claimValue > 0 {
		switch {
		case claimValue <= smallClaimsLimit:
			return models.TrackSmallClaims
		case claimValue <= fastTrackLimit:
			return models.TrackFastTrack
		default:
			return models.TrackMultiTrack
		}
	}

	switch {
	case strings.Contains(query, "small claim"):
		return models.TrackSmallClaims
	case strings.Contains(query, "fast track"):
		return models.TrackFastTrack
	case strings.Contains(query, "multi track") || strings.Contains(query, "multi-track"):
		return models.TrackMultiTrack
	}
	return ""
}
