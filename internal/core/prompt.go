package core

import "fmt"

const promptTemplate = `You are a fraud prevention assistant. Analyze the message below for signs of a scam,
phishing attempt, or fraud.

Reply in exactly this format and nothing else:
Risk Level: <LOW, MEDIUM or HIGH>
Warning Signs: <short comma separated list, or "No obvious fraud indicators">
Explanation: <one or two sentences of advice for the recipient>

Message:
"""
%s
"""

Response:`

// BuildPrompt wraps a message in the analysis instructions.
func BuildPrompt(body string) string {
	return fmt.Sprintf(promptTemplate, body)
}
