package indicators

import (
	"errors"
	"strings"

	"github.com/mikey/scam-guard/internal/utils"
)

// Version identifies the revision of the built-in pattern set.
const Version = "2024.1"

// ErrUnknownChannel is returned by Lookup for channels the catalog has no entry for.
var ErrUnknownChannel = errors.New("unknown channel")

// Channel names an input kind the catalog can be queried for.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelText    Channel = "text"
	ChannelCall    Channel = "call"
	ChannelWebsite Channel = "website"
	ChannelImage   Channel = "image"
)

// Category is a named group of lower-case phrases that carry the same weight.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Patterns []string `yaml:"patterns" json:"patterns"`
	Weight   int      `yaml:"weight" json:"weight"`
}

// Match is a single pattern hit produced by Scan.
type Match struct {
	Category string
	Pattern  string
	Weight   int
}

// Reason is the user-facing warning for a hit in this category.
func (m Match) Reason() string {
	return "Suspicious " + m.Category + " pattern detected"
}

// shared is the ordered set applied to every channel that carries free text.
var shared = []Category{
	{
		Name:     "urgency",
		Patterns: []string{"urgent", "immediately", "now", "expire", "suspended", "limited time"},
		Weight:   10,
	},
	{
		Name:     "requests",
		Patterns: []string{"verify", "confirm", "update", "click here", "call now"},
		Weight:   10,
	},
	{
		Name:     "threats",
		Patterns: []string{"account suspended", "legal action", "immediate action required"},
		Weight:   10,
	},
	{
		Name:     "financial",
		Patterns: []string{"bank account", "credit card", "social security", "tax refund"},
		Weight:   10,
	},
	{
		Name:     "suspicious_urls",
		Patterns: []string{"bit.ly", "tinyurl", "goo.gl", "shortened links"},
		Weight:   10,
	},
}

// Catalog is a read-only view over the indicator categories.
// The zero value is not usable; call New.
type Catalog struct {
	categories []Category
}

// New returns the built-in catalog.
func New() *Catalog {
	return &Catalog{categories: clone(shared)}
}

// Version reports the revision of the loaded pattern set.
func (c *Catalog) Version() string {
	return Version
}

// Lookup returns the categories that apply to a channel, in evaluation order.
// Channels without a free-text field get an empty slice.
func (c *Catalog) Lookup(ch Channel) ([]Category, error) {
	switch ch {
	case ChannelEmail, ChannelText, ChannelWebsite:
		return clone(c.categories), nil
	case ChannelCall, ChannelImage:
		return []Category{}, nil
	default:
		return nil, ErrUnknownChannel
	}
}

// Scan reports every pattern of every category contained in text.
// A category contributes once per distinct pattern that matches.
func Scan(categories []Category, text string) []Match {
	if text == "" {
		return nil
	}
	normalized := utils.Normalize(text)

	var matches []Match
	for _, cat := range categories {
		for _, pattern := range cat.Patterns {
			if strings.Contains(normalized, pattern) {
				matches = append(matches, Match{Category: cat.Name, Pattern: pattern, Weight: cat.Weight})
			}
		}
	}
	return matches
}

func clone(in []Category) []Category {
	out := make([]Category, len(in))
	for i, cat := range in {
		out[i] = Category{
			Name:     cat.Name,
			Patterns: append([]string(nil), cat.Patterns...),
			Weight:   cat.Weight,
		}
	}
	return out
}
