package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/adapters/filter"
	"github.com/mikey/scam-guard/internal/core"
)

// stdinMarker selects standard input for --file.
const stdinMarker = "-"

func (a *app) newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a single input",
	}
	cmd.AddCommand(
		a.newEmailCommand(),
		a.newTextCommand(),
		a.newCallCommand(),
		a.newWebsiteCommand(),
		a.newImageCommand(),
		a.newFreeformCommand(),
	)
	return cmd
}

func (a *app) newEmailCommand() *cobra.Command {
	var (
		in   core.EmailInput
		file string
	)
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Analyze an email",
		Long: `Analyze an email given as flags, or as an RFC 5322 message with --file
("-" reads standard input). Flags override fields parsed from the file.`,
		Example: `  scam-guard analyze email --sender billing@example.com --subject "Invoice" --body "..."
  scam-guard analyze email --file message.eml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				raw, err := a.readInput(file)
				if err != nil {
					return err
				}
				msg, err := filter.ParseMessage(raw)
				if err != nil {
					return err
				}
				in = mergeEmail(in, msg)
			}

			return a.withService(func(svc *core.AnalysisService, _ *zap.Logger) error {
				result, err := svc.AnalyzeEmail(cmd.Context(), "", in)
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&in.Sender, "sender", "", "sender address")
	cmd.Flags().StringVar(&in.Subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&in.Body, "body", "", "message body")
	cmd.Flags().StringVarP(&file, "file", "f", "", "RFC 5322 message file, - for stdin")
	return cmd
}

func mergeEmail(in core.EmailInput, msg *filter.Message) core.EmailInput {
	if in.Sender == "" {
		in.Sender = msg.From
	}
	if in.Subject == "" {
		in.Subject = msg.Subject
	}
	if in.Body == "" {
		in.Body = msg.Body
	}
	return in
}

func (a *app) newTextCommand() *cobra.Command {
	var in core.TextInput
	cmd := &cobra.Command{
		Use:   "text [message]",
		Short: "Analyze an SMS or chat message",
		Long:  `Analyze a message given as arguments, or read from standard input when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := a.bodyFromArgs(args)
			if err != nil {
				return err
			}
			in.Body = body

			return a.withService(func(svc *core.AnalysisService, _ *zap.Logger) error {
				result, err := svc.AnalyzeText(cmd.Context(), "", in)
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&in.SenderNumber, "sender-number", "", "sender phone number")
	return cmd
}

func (a *app) newCallCommand() *cobra.Command {
	var in core.CallInput
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Analyze phone call metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *core.AnalysisService, _ *zap.Logger) error {
				result, err := svc.AnalyzeCall(cmd.Context(), "", in)
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&in.CallerNumber, "number", "", "caller number")
	cmd.Flags().StringVar(&in.CallType, "type", "", "call type (default unknown)")
	cmd.Flags().StringVar(&in.UrgencyLevel, "urgency", "", "urgency level (default normal)")
	return cmd
}

func (a *app) newWebsiteCommand() *cobra.Command {
	var (
		in       core.WebsiteInput
		bodyFile string
	)
	cmd := &cobra.Command{
		Use:   "website <url>",
		Short: "Analyze a website URL and, optionally, its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.URL = args[0]
			if bodyFile != "" {
				raw, err := a.readInput(bodyFile)
				if err != nil {
					return err
				}
				in.Body = string(raw)
			}

			return a.withService(func(svc *core.AnalysisService, _ *zap.Logger) error {
				result, err := svc.AnalyzeWebsite(cmd.Context(), "", in)
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&bodyFile, "content-file", "", "file with the page text, - for stdin")
	return cmd
}

func (a *app) newImageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "image <file>",
		Short: "Analyze an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(args[0])
			if err != nil {
				return err
			}

			return a.withService(func(svc *core.AnalysisService, _ *zap.Logger) error {
				result, err := svc.AnalyzeImage(cmd.Context(), "", core.ImageInput{Data: data})
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), result)
			})
		},
	}
}

func (a *app) newFreeformCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "freeform [text]",
		Aliases: []string{"message"},
		Short:   "Analyze free text with the generator, or the rule-based classifier without one",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := a.bodyFromArgs(args)
			if err != nil {
				return err
			}

			return a.withService(func(svc *core.AnalysisService, _ *zap.Logger) error {
				result, err := svc.AnalyzeFreeform(cmd.Context(), "", core.FreeformInput{Body: body})
				if err != nil {
					return err
				}
				return a.printFreeform(cmd.OutOrStdout(), result)
			})
		},
	}
}

// bodyFromArgs joins the arguments, or reads stdin when there are none.
func (a *app) bodyFromArgs(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	raw, err := a.readInput(stdinMarker)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (a *app) readInput(path string) ([]byte, error) {
	if path == stdinMarker {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
