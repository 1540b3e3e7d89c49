package heuristics

import "strings"

// Credibility is a coarse trust level for the claimed origin of a message.
type Credibility string

const (
	CredibilityLow    Credibility = "LOW"
	CredibilityMedium Credibility = "MEDIUM"
	CredibilityHigh   Credibility = "HIGH"
)

var trustedMarkers = []string{"gov", "edu", "bank", "official"}

var recommendations = map[RiskTier][]string{
	RiskHigh: {
		"Do not respond or click any links",
		"Block the sender/number immediately",
		"Report to relevant authorities",
		"Check your accounts for suspicious activity",
	},
	RiskMedium: {
		"Verify the source through official channels",
		"Do not provide personal information",
		"Be cautious of urgent requests",
		"Check for spelling/grammar errors",
	},
	RiskLow: {
		"Still verify through official channels",
		"Be cautious of unexpected requests",
		"Trust your instincts",
	},
}

const genericRecommendation = "Use caution and verify the source through official channels"

// Recommendations returns a fresh copy of the advice list for tier.
func Recommendations(tier RiskTier) []string {
	recs, ok := recommendations[tier]
	if !ok {
		return []string{genericRecommendation}
	}
	return append([]string(nil), recs...)
}

// AssessCredibility rates a sender address, number or URL by surface markers
// only. It does not verify anything.
func AssessCredibility(source string) Credibility {
	lower := strings.ToLower(source)
	for _, marker := range trustedMarkers {
		if strings.Contains(lower, marker) {
			return CredibilityHigh
		}
	}
	if len(strings.TrimSpace(source)) > 5 {
		return CredibilityMedium
	}
	return CredibilityLow
}
