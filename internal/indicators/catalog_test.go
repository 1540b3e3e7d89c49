package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Lookup(t *testing.T) {
	c := New()
	wantOrder := []string{"urgency", "requests", "threats", "financial", "suspicious_urls"}

	for _, ch := range []Channel{ChannelEmail, ChannelText, ChannelWebsite} {
		t.Run(string(ch), func(t *testing.T) {
			cats, err := c.Lookup(ch)
			require.NoError(t, err)
			require.Len(t, cats, len(wantOrder))
			for i, cat := range cats {
				assert.Equal(t, wantOrder[i], cat.Name)
				assert.Equal(t, 10, cat.Weight)
				assert.NotEmpty(t, cat.Patterns)
			}
		})
	}

	for _, ch := range []Channel{ChannelCall, ChannelImage} {
		cats, err := c.Lookup(ch)
		require.NoError(t, err)
		assert.Empty(t, cats)
		assert.NotNil(t, cats)
	}

	_, err := c.Lookup("fax")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestCatalog_LookupReturnsCopy(t *testing.T) {
	c := New()
	cats, err := c.Lookup(ChannelEmail)
	require.NoError(t, err)

	cats[0].Patterns[0] = "mutated"
	cats[0].Weight = 99

	again, err := c.Lookup(ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, "urgent", again[0].Patterns[0])
	assert.Equal(t, 10, again[0].Weight)
}

func TestCatalog_PatternsAreLowerCase(t *testing.T) {
	cats, err := New().Lookup(ChannelText)
	require.NoError(t, err)
	for _, cat := range cats {
		for _, p := range cat.Patterns {
			assert.Equal(t, p, toLowerASCII(p), "pattern %q in %s", p, cat.Name)
		}
	}
	assert.Equal(t, Version, New().Version())
}

func TestScan(t *testing.T) {
	cats, err := New().Lookup(ChannelText)
	require.NoError(t, err)

	tests := []struct {
		name  string
		text  string
		want  []Match
		total int
	}{
		{name: "empty", text: "", want: nil, total: 0},
		{name: "benign", text: "see you at lunch", want: nil, total: 0},
		{
			name: "one pattern per hit",
			text: "URGENT: verify your bank account",
			want: []Match{
				{Category: "urgency", Pattern: "urgent", Weight: 10},
				{Category: "requests", Pattern: "verify", Weight: 10},
				{Category: "financial", Pattern: "bank account", Weight: 10},
			},
			total: 30,
		},
		{
			name: "same category counted per pattern",
			text: "act immediately, offer for a limited time",
			want: []Match{
				{Category: "urgency", Pattern: "immediately", Weight: 10},
				{Category: "urgency", Pattern: "limited time", Weight: 10},
			},
			total: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(cats, tt.text)
			assert.Equal(t, tt.want, got)
			sum := 0
			for _, m := range got {
				sum += m.Weight
			}
			assert.Equal(t, tt.total, sum)
		})
	}
}

func TestMatch_Reason(t *testing.T) {
	m := Match{Category: "financial"}
	assert.Equal(t, "Suspicious financial pattern detected", m.Reason())
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
