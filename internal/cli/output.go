package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/scam-guard/internal/core"
)

func (a *app) printResult(w io.Writer, result *core.AnalysisResult) error {
	if a.output == outputJSON {
		return writeJSON(w, result)
	}

	fmt.Fprintf(w, "=== Results ===\n")
	fmt.Fprintf(w, "Channel: %s\n", result.Channel)
	fmt.Fprintf(w, "Risk level: %s\n", result.RiskTier)
	fmt.Fprintf(w, "Risk score: %d/100\n", result.DisplayScore())
	if result.SourceCredibility != nil {
		fmt.Fprintf(w, "Source credibility: %s\n", *result.SourceCredibility)
	}

	fmt.Fprintf(w, "\nWarnings:\n")
	if len(result.Reasons) == 0 {
		fmt.Fprintf(w, "  (none)\n")
	}
	for _, r := range result.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}

	fmt.Fprintf(w, "\nRecommendations:\n")
	for _, r := range result.Recommendations {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	return nil
}

func (a *app) printFreeform(w io.Writer, result *core.FreeformResult) error {
	if a.output == outputJSON {
		return writeJSON(w, result)
	}

	fmt.Fprintf(w, "%s\n", strings.TrimRight(result.Analysis, "\n"))
	source := string(result.Path)
	switch {
	case result.Model != "":
		source += " (" + result.Model + ")"
	case result.FallbackReason != "":
		source += " (" + result.FallbackReason + ")"
	}
	fmt.Fprintf(w, "\nSource: %s\n", source)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
