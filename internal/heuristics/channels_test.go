package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestScorer() *Scorer {
	return NewScorer(nil, Options{}, zap.NewNop())
}

func TestScoreEmail(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name    string
		sender  string
		subject string
		body    string
		points  int
		reasons []string
	}{
		{
			name:    "neutral",
			sender:  "alice@example.com",
			subject: "Lunch",
			body:    "See you at noon",
			points:  0,
			reasons: nil,
		},
		{
			name:    "sender, subject and body",
			sender:  "user@free-email.com",
			subject: "URGENT: suspended",
			body:    "verify your bank account now",
			points:  30 + 25 + 10 + 10 + 10,
			reasons: []string{
				"Suspicious sender address",
				"Urgent or threatening subject line",
				"Suspicious urgency pattern detected",
				"Suspicious requests pattern detected",
				"Suspicious financial pattern detected",
			},
		},
		{
			name:    "subject only",
			sender:  "hr@example.com",
			subject: "Action required on your benefits",
			body:    "See attached",
			points:  25,
			reasons: []string{"Urgent or threatening subject line"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScoreEmail(tt.sender, tt.subject, tt.body)
			assert.Equal(t, tt.points, got.Points)
			assert.Equal(t, tt.reasons, got.Reasons)
		})
	}
}

func TestScoreEmail_SuspiciousOutranksNeutral(t *testing.T) {
	s := newTestScorer()
	bad := s.ScoreEmail("user@free-email.com", "URGENT: suspended", "verify your bank account now")
	neutral := s.ScoreEmail("alice@example.com", "Lunch", "See you at noon")

	assert.Greater(t, bad.Points, neutral.Points)
	assert.GreaterOrEqual(t, bad.Points, 30+25+10)
	assert.Equal(t, RiskHigh, Classify(bad.Points))
	assert.Equal(t, RiskLow, Classify(neutral.Points))
}

func TestScoreText(t *testing.T) {
	s := newTestScorer()

	got := s.ScoreText("Call now to claim", "555-123-4567")
	assert.Equal(t, 20+10+10+25, got.Points)
	assert.Equal(t, []string{
		"Suspicious phone number",
		"Suspicious urgency pattern detected",
		"Suspicious requests pattern detected",
		"Urgent action requested",
	}, got.Reasons)

	got = s.ScoreText("See you at the game", "")
	assert.Zero(t, got.Points)
	assert.Empty(t, got.Reasons)

	got = s.ScoreText("See you at the game", "555-246-8101")
	assert.Zero(t, got.Points)
}

func TestScoreCall(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name      string
		number    string
		callType  string
		urgency   string
		points    int
		reasonLen int
	}{
		{"defaults with high urgency", "+1-800-000-1111", "", "high", 55, 2},
		{"case-insensitive profile", "555-246-8101", " Unknown ", "HIGH", 30, 1},
		{"known caller", "5551234", "Known", "HIGH", 25, 1},
		{"defaults only", "555-246-8101", "", "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScoreCall(tt.number, tt.callType, tt.urgency)
			assert.Equal(t, tt.points, got.Points)
			assert.Len(t, got.Reasons, tt.reasonLen)
		})
	}
}

func TestCallDefaults(t *testing.T) {
	ct, ul := CallDefaults("", "  ")
	assert.Equal(t, "unknown", ct)
	assert.Equal(t, "normal", ul)

	ct, ul = CallDefaults("Business", "High")
	assert.Equal(t, "business", ct)
	assert.Equal(t, "high", ul)
}

func TestScoreWebsite(t *testing.T) {
	s := newTestScorer()

	got := s.ScoreWebsite("http://phishing.org/login", "Free money! Act now")
	assert.Equal(t, 35+25+10, got.Points)
	assert.Equal(t, []string{
		"Suspicious website URL",
		"Suspicious website content",
		"Suspicious urgency pattern detected",
	}, got.Reasons)

	got = s.ScoreWebsite("https://example.com", "")
	assert.Zero(t, got.Points)

	got = s.ScoreWebsite("https://example.com", "Update your credit card at bit.ly/x")
	assert.Equal(t, 30, got.Points)
}

func TestScorer_ExtraDenyLists(t *testing.T) {
	s := NewScorer(nil, Options{
		ExtraSenderDomains: []string{"evil.example"},
		ExtraWebsiteHosts:  []string{"bad.example"},
		ExtraNumberMarkers: []string{"666"},
	}, nil)

	assert.Equal(t, 30, s.ScoreEmail("x@evil.example", "hi", "hello").Points)
	assert.Equal(t, 35, s.ScoreWebsite("https://bad.example", "").Points)
	assert.Equal(t, 25, s.ScoreCall("555-666-7777", "", "").Points)
	// built-ins stay active
	assert.Equal(t, 30, s.ScoreEmail("x@fake-domain.org", "hi", "hello").Points)
}

func TestScorer_NoMatchesMeansZeroAndLow(t *testing.T) {
	s := newTestScorer()
	inputs := []Score{
		s.ScoreEmail("alice@example.com", "Lunch", "See you at the cafe"),
		s.ScoreText("Happy birthday!", "555-246-8101"),
		s.ScoreCall("555-246-8101", "personal", "normal"),
		s.ScoreWebsite("https://example.com", "A recipe for bread"),
	}
	for _, got := range inputs {
		assert.Zero(t, got.Points)
		assert.Equal(t, RiskLow, Classify(got.Points))
	}
}

func TestScorer_Monotonic(t *testing.T) {
	s := newTestScorer()
	base := "Hello, please review the document"
	phrases := []string{" urgent", " click here", " legal action", " tax refund", " tinyurl"}

	prev := s.ScoreText(base, "").Points
	text := base
	for _, p := range phrases {
		text += p
		cur := s.ScoreText(text, "").Points
		assert.GreaterOrEqual(t, cur, prev, "adding %q", p)
		prev = cur
	}
}

func TestScorer_Idempotent(t *testing.T) {
	s := newTestScorer()
	first := s.ScoreEmail("user@free-email.com", "URGENT", "verify your bank account")
	second := s.ScoreEmail("user@free-email.com", "URGENT", "verify your bank account")
	assert.Equal(t, first, second)
}
