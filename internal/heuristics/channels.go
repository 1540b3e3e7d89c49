package heuristics

import (
	"strings"

	"github.com/mikey/scam-guard/internal/indicators"
	"github.com/mikey/scam-guard/internal/utils"
)

// Call attribute defaults applied when the caller leaves them blank.
const (
	DefaultCallType     = "unknown"
	DefaultUrgencyLevel = "normal"
)

// ScoreEmail checks the sender, then the subject, then the body.
func (s *Scorer) ScoreEmail(sender, subject, body string) Score {
	var score Score

	if _, ok := s.senders.Match(sender); ok {
		score.add(weightSuspiciousSender, "Suspicious sender address")
	}
	if _, ok := utils.ContainsAny(subject, urgentSubjectPhrases); ok {
		score.add(weightUrgentSubject, "Urgent or threatening subject line")
	}
	score.addMatches(s.scan(indicators.ChannelEmail, body))

	return score
}

// ScoreText checks the sender number, the catalog, then urgent-action phrases.
// An empty senderNumber means none was supplied.
func (s *Scorer) ScoreText(body, senderNumber string) Score {
	var score Score

	if senderNumber != "" {
		if _, ok := s.numbers.Match(senderNumber); ok {
			score.add(weightSuspiciousNumber, "Suspicious phone number")
		}
	}
	score.addMatches(s.scan(indicators.ChannelText, body))
	if _, ok := utils.ContainsAny(body, urgentActionPhrases); ok {
		score.add(weightUrgentAction, "Urgent action requested")
	}

	return score
}

// ScoreCall checks the caller number and the call profile. Blank callType and
// urgencyLevel take their defaults.
func (s *Scorer) ScoreCall(callerNumber, callType, urgencyLevel string) Score {
	var score Score

	callType, urgencyLevel = CallDefaults(callType, urgencyLevel)

	if _, ok := s.numbers.Match(callerNumber); ok {
		score.add(weightSuspiciousCaller, "Suspicious caller number")
	}
	if callType == "unknown" && urgencyLevel == "high" {
		score.add(weightCallProfile, "Suspicious call characteristics")
	}

	return score
}

// CallDefaults trims, lower-cases and fills in the call attributes.
func CallDefaults(callType, urgencyLevel string) (string, string) {
	callType = strings.ToLower(strings.TrimSpace(callType))
	urgencyLevel = strings.ToLower(strings.TrimSpace(urgencyLevel))
	if callType == "" {
		callType = DefaultCallType
	}
	if urgencyLevel == "" {
		urgencyLevel = DefaultUrgencyLevel
	}
	return callType, urgencyLevel
}

// ScoreWebsite checks the URL, known scam phrases in the body, then the
// catalog over the body. An empty body adds nothing.
func (s *Scorer) ScoreWebsite(url, body string) Score {
	var score Score

	if _, ok := s.hosts.Match(url); ok {
		score.add(weightSuspiciousURL, "Suspicious website URL")
	}
	if body != "" {
		if _, ok := utils.ContainsAny(body, suspiciousSitePhrases); ok {
			score.add(weightSuspiciousContent, "Suspicious website content")
		}
		score.addMatches(s.scan(indicators.ChannelWebsite, body))
	}

	return score
}
