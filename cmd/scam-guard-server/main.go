package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/scam-guard/internal/api"
	"github.com/mikey/scam-guard/internal/core"
	"github.com/mikey/scam-guard/internal/di"
	"github.com/mikey/scam-guard/internal/ports"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "scam-guard-server",
		Short:         "Serve the scam-guard HTTP API and optional SMTP intake",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build the dependency injection container
			container, err := di.BuildContainer(configPath)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}
			return container.Invoke(run)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: search /etc/scam-guard, ~/.scam-guard, ./configs, .)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

type deps struct {
	dig.In

	Logger    *zap.Logger
	Server    *api.Server
	Intake    ports.Intake `optional:"true"`
	Service   *core.AnalysisService
	Generator core.TextGenerator   `optional:"true"`
	Cache     core.ResultCache     `optional:"true"`
	History   core.HistoryRecorder `optional:"true"`
}

// run is the main application function that gets all dependencies injected
func run(d deps) error {
	logger := d.Logger
	defer logger.Sync()

	if err := d.Server.Start(); err != nil {
		logger.Error("Failed to start API server", zap.Error(err))
		return err
	}

	if d.Intake != nil {
		if err := d.Intake.Start(); err != nil {
			logger.Error("Failed to start SMTP intake", zap.Error(err))
			if stopErr := d.Server.Stop(); stopErr != nil {
				logger.Error("Failed to stop API server", zap.Error(stopErr))
			}
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Shutting down...", zap.String("signal", sig.String()))

	if d.Intake != nil {
		if err := d.Intake.Stop(); err != nil {
			logger.Error("Failed to stop SMTP intake", zap.Error(err))
		}
	}
	if err := d.Server.Stop(); err != nil {
		logger.Error("Failed to stop API server", zap.Error(err))
	}

	// Flush pending history writes before the store closes
	d.Service.Wait()

	if closer, ok := d.Generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close generator", zap.Error(err))
		}
	}
	if stopper, ok := d.Cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if stopper, ok := d.History.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
