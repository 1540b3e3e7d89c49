package heuristics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mikey/scam-guard/internal/utils"
)

// FreeformCategory names the rule that decided a free-form verdict.
type FreeformCategory string

const (
	CategoryInvestmentScam        FreeformCategory = "investment_scam"
	CategoryMultipleUrgency       FreeformCategory = "multiple_urgency"
	CategoryUrgency               FreeformCategory = "urgency"
	CategorySuspiciousPromotional FreeformCategory = "suspicious_promotional"
	CategoryPromotional           FreeformCategory = "promotional"
	CategoryNone                  FreeformCategory = "none"
)

var (
	highRiskPhrases   = []string{"urgent", "click here", "verify now", "suspended", "expire", "act now", "limited time", "winner", "congratulations"}
	investmentPhrases = []string{"give me", "send me", "i give you", "double your money", "guaranteed return", "easy money", "quick profit"}
	mediumRiskPhrases = []string{"free", "guarantee", "no risk", "exclusive", "special offer"}

	moneyPattern  = regexp.MustCompile(`\$?\d+.*(?:dollar|money|cash|profit|return)`)
	givePattern   = regexp.MustCompile(`(?:give|send).*\$?\d+`)
	amountPattern = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?`)
)

// FreeformVerdict is the deterministic reading of an unstructured message.
type FreeformVerdict struct {
	Tier         RiskTier
	Category     FreeformCategory
	WarningSigns string
	Explanation  string
	// Amount is the first dollar figure in a money scam, if one was found.
	Amount *decimal.Decimal
}

var verdicts = map[FreeformCategory]FreeformVerdict{
	CategoryInvestmentScam: {
		Tier:         RiskHigh,
		WarningSigns: "Investment/money scam pattern detected",
		Explanation:  "This appears to be a financial scam. Never send money to strangers promising returns. Legitimate investments don't work this way.",
	},
	CategoryMultipleUrgency: {
		Tier:         RiskHigh,
		WarningSigns: "Multiple urgency tactics detected",
		Explanation:  "This text uses several fraud indicators like urgency and pressure tactics.",
	},
	CategoryUrgency: {
		Tier:         RiskHigh,
		WarningSigns: "Urgency tactics detected",
		Explanation:  "Fraudsters use pressure tactics to make you act quickly without thinking.",
	},
	CategorySuspiciousPromotional: {
		Tier:         RiskMedium,
		WarningSigns: "Suspicious promotional language",
		Explanation:  "Be cautious of offers that seem too good to be true.",
	},
	CategoryPromotional: {
		Tier:         RiskMedium,
		WarningSigns: "Promotional language detected",
		Explanation:  "Be cautious of unsolicited offers and verify sources.",
	},
	CategoryNone: {
		Tier:         RiskLow,
		WarningSigns: "No obvious fraud indicators",
		Explanation:  "Text appears normal, but always verify requests for personal information through official channels.",
	},
}

// ClassifyText applies the free-form rules in precedence order; the first
// rule that fires decides the verdict.
func ClassifyText(body string) FreeformVerdict {
	text := utils.Normalize(body)

	if countContained(text, investmentPhrases) > 0 || givePattern.MatchString(text) || moneyPattern.MatchString(text) {
		v := verdictFor(CategoryInvestmentScam)
		v.Amount = extractAmount(text)
		return v
	}

	high := countContained(text, highRiskPhrases)
	switch {
	case high >= 2:
		return verdictFor(CategoryMultipleUrgency)
	case high == 1:
		return verdictFor(CategoryUrgency)
	}

	medium := countContained(text, mediumRiskPhrases)
	switch {
	case medium >= 2:
		return verdictFor(CategorySuspiciousPromotional)
	case medium == 1:
		return verdictFor(CategoryPromotional)
	}

	return verdictFor(CategoryNone)
}

// Render produces the three-line advisory used as the analysis text.
func (v FreeformVerdict) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk Level: %s\nWarning Signs: %s\nExplanation: %s", v.Tier, v.WarningSigns, v.Explanation)
	if v.Amount != nil {
		fmt.Fprintf(&b, "\nAmount Mentioned: $%s", v.Amount.StringFixed(2))
	}
	return b.String()
}

// ParseRiskLevel reads the tier from a "Risk Level:" line of an advisory.
// Model output is free text, so this is best effort.
func ParseRiskLevel(analysis string) (RiskTier, bool) {
	for _, line := range strings.Split(analysis, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "*#- ")
		rest, ok := cutPrefixFold(line, "risk level:")
		if !ok {
			continue
		}
		fields := strings.Fields(strings.Trim(rest, " *"))
		if len(fields) == 0 {
			return "", false
		}
		return ParseRiskTier(strings.Trim(fields[0], ".,*"))
	}
	return "", false
}

func verdictFor(c FreeformCategory) FreeformVerdict {
	v := verdicts[c]
	v.Category = c
	return v
}

func countContained(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}

func extractAmount(text string) *decimal.Decimal {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "") + m[2])
	if err != nil {
		return nil
	}
	return &amount
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}
