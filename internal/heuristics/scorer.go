// Package heuristics holds the deterministic scam-risk rules: per-channel
// scorers, the score to tier mapping, recommendations, source credibility and
// the free-form text classifier.
package heuristics

import (
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/denylist"
	"github.com/mikey/scam-guard/internal/indicators"
)

// Score is the accumulated evidence for one input.
type Score struct {
	Points  int
	Reasons []string
}

func (s *Score) add(points int, reason string) {
	s.Points += points
	s.Reasons = append(s.Reasons, reason)
}

func (s *Score) addMatches(matches []indicators.Match) {
	for _, m := range matches {
		s.add(m.Weight, m.Reason())
	}
}

// Built-in deny-lists and phrase lists.
var (
	DefaultSenderDomains = []string{"free-email.com", "suspicious.net", "fake-domain.org"}
	DefaultWebsiteHosts  = []string{"fake-site.com", "scam-website.net", "phishing.org"}
	DefaultNumberMarkers = []string{"000", "123", "999"}

	urgentSubjectPhrases  = []string{"urgent", "immediate", "suspended", "expire", "action required"}
	urgentActionPhrases   = []string{"call now", "respond immediately", "urgent action"}
	suspiciousSitePhrases = []string{"free money", "miracle cure", "act now", "limited time"}
)

// Check weights.
const (
	weightSuspiciousSender  = 30
	weightUrgentSubject     = 25
	weightSuspiciousNumber  = 20
	weightUrgentAction      = 25
	weightSuspiciousCaller  = 25
	weightCallProfile       = 30
	weightSuspiciousURL     = 35
	weightSuspiciousContent = 25
)

// Options extends the built-in deny-lists.
type Options struct {
	ExtraSenderDomains []string
	ExtraWebsiteHosts  []string
	ExtraNumberMarkers []string
	Image              ImageLimits
}

// Scorer evaluates channel inputs against the indicator catalog and the
// deny-lists. It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	catalog *indicators.Catalog
	senders *denylist.Checker
	hosts   *denylist.Checker
	numbers *denylist.Checker
	image   ImageLimits
	logger  *zap.Logger
}

// NewScorer builds a scorer over catalog. A nil catalog selects the built-in one.
func NewScorer(catalog *indicators.Catalog, opts Options, logger *zap.Logger) *Scorer {
	if catalog == nil {
		catalog = indicators.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limits := opts.Image
	if limits == (ImageLimits{}) {
		limits = DefaultImageLimits
	}

	return &Scorer{
		catalog: catalog,
		senders: denylist.NewChecker("sender", DefaultSenderDomains, logger).Extend(opts.ExtraSenderDomains),
		hosts:   denylist.NewChecker("website", DefaultWebsiteHosts, logger).Extend(opts.ExtraWebsiteHosts),
		numbers: denylist.NewChecker("number", DefaultNumberMarkers, logger).Extend(opts.ExtraNumberMarkers),
		image:   limits,
		logger:  logger,
	}
}

// Catalog exposes the catalog the scorer reads from.
func (s *Scorer) Catalog() *indicators.Catalog {
	return s.catalog
}

func (s *Scorer) scan(ch indicators.Channel, text string) []indicators.Match {
	cats, err := s.catalog.Lookup(ch)
	if err != nil {
		s.logger.Error("Catalog lookup failed", zap.String("channel", string(ch)), zap.Error(err))
		return nil
	}
	return indicators.Scan(cats, text)
}
