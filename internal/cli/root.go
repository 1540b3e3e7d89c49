// Package cli implements the scam-guard command line tool.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/di"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

const (
	outputText = "text"
	outputJSON = "json"
)

type app struct {
	opts   di.CLIOptions
	output string
	stdin  io.Reader
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdin)
}

func newRootCommand(stdin io.Reader) *cobra.Command {
	a := &app{stdin: stdin}

	root := &cobra.Command{
		Use:   "scam-guard",
		Short: "Score emails, messages, calls, websites and images for scam risk",
		Long: `scam-guard scores content for fraud and scam risk with deterministic
heuristics. Free-form text is analyzed by a generative model when one is
configured and by a rule-based classifier otherwise.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.ConfigFile, "config", "", "config file (default: built-in defaults and SCAM_GUARD_* environment)")
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "verbose logging")
	flags.BoolVar(&a.opts.JSONLog, "json-log", false, "log in JSON format")
	flags.StringVar(&a.opts.Provider, "provider", "", "generator provider (bedrock, openai, gemini, none)")
	flags.StringVarP(&a.output, "output", "o", outputText, "output format (text, json)")

	root.AddCommand(
		a.newAnalyzeCommand(),
		a.newCatalogCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scam-guard %s\n", Version)
		},
	}
}

// withService builds the CLI container and runs fn with the service.
func (a *app) withService(fn func(svc *core.AnalysisService, logger *zap.Logger) error) error {
	if a.output != outputText && a.output != outputJSON {
		return fmt.Errorf("unsupported output format: %s", a.output)
	}

	container, err := di.BuildCLIContainer(&a.opts)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(svc *core.AnalysisService, gen core.TextGenerator, logger *zap.Logger) error {
		defer logger.Sync()
		if closer, ok := gen.(interface{ Close() error }); ok {
			defer func() {
				if err := closer.Close(); err != nil {
					logger.Warn("Failed to close generator", zap.Error(err))
				}
			}()
		}
		return fn(svc, logger)
	})
}
