package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds compatibility characters (full-width letters, ligatures)
// with NFKC and lower-cases the result so phrase lists can be matched with
// plain substring search.
func Normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// ContainsAny reports the first needle contained in the normalized haystack.
func ContainsAny(haystack string, needles []string) (string, bool) {
	normalized := Normalize(haystack)
	for _, needle := range needles {
		if strings.Contains(normalized, needle) {
			return needle, true
		}
	}
	return "", false
}

// TextProcessor prepares untrusted message text before it is handed to a
// model prompt or written to history.
type TextProcessor struct {
	logger *zap.Logger
}

func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{logger: logger}
}

// TruncateText cuts text to at most maxSize bytes without splitting a rune.
// maxSize <= 0 disables truncation.
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... truncated ...]"
}

// SanitizeUTF8 drops invalid byte sequences.
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))
	return sanitized
}

// ProcessText sanitizes then truncates.
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.TruncateText(tp.SanitizeUTF8(text), maxSize)
}
