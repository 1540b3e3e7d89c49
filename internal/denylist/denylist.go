package denylist

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/utils"
)

// Checker matches addresses, numbers, or URLs against a list of known-bad
// fragments. Matching is a case-insensitive substring test, so an entry of
// "fake-domain.org" also catches "login.fake-domain.org".
type Checker struct {
	name    string
	entries []string
	logger  *zap.Logger
}

// NewChecker normalizes entries and drops blanks and duplicates.
func NewChecker(name string, entries []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	seen := make(map[string]struct{}, len(entries))
	normalized := make([]string, 0, len(entries))
	for _, entry := range entries {
		e := utils.Normalize(strings.TrimSpace(entry))
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		normalized = append(normalized, e)
	}

	logger.Debug("Initialized deny-list", zap.String("list", name), zap.Strings("entries", normalized))

	return &Checker{name: name, entries: normalized, logger: logger}
}

// Extend returns a new checker holding both lists.
func (c *Checker) Extend(extra []string) *Checker {
	all := append(append([]string(nil), c.entries...), extra...)
	return NewChecker(c.name, all, c.logger)
}

// Match returns the first entry contained in value.
func (c *Checker) Match(value string) (string, bool) {
	if value == "" || len(c.entries) == 0 {
		return "", false
	}
	entry, ok := utils.ContainsAny(value, c.entries)
	if ok {
		c.logger.Debug("Deny-list hit",
			zap.String("list", c.name),
			zap.String("entry", entry))
	}
	return entry, ok
}

// Entries returns a copy of the normalized list.
func (c *Checker) Entries() []string {
	return append([]string(nil), c.entries...)
}
