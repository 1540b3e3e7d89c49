package heuristics

import "strings"

// RiskTier is the discrete verdict derived from a score.
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// Tier thresholds, inclusive lower bounds.
const (
	HighThreshold   = 60
	MediumThreshold = 30
)

// Classify maps a score to its tier. The mapping is monotonic and covers
// every integer; negative scores fall into LOW.
func Classify(score int) RiskTier {
	switch {
	case score >= HighThreshold:
		return RiskHigh
	case score >= MediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ParseRiskTier accepts any letter case and surrounding whitespace.
func ParseRiskTier(s string) (RiskTier, bool) {
	switch RiskTier(strings.ToUpper(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	default:
		return "", false
	}
}

func (t RiskTier) String() string { return string(t) }

// Rank orders tiers for comparisons; unknown tiers rank below LOW.
func (t RiskTier) Rank() int {
	switch t {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// DisplayScore caps a raw score for presentation. Classification always
// uses the raw value.
func DisplayScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
