package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-task-reminder/internal/config"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "primind-task-reminder",
		Short:         "Task reminder server, dispatcher and local agent",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newDispatchCmd())
	root.AddCommand(newAgentCmd())

	return root
}

// loadConfig reads the configuration and installs the process logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg)

	return cfg, nil
}

func setupLogger(cfg *config.Config) {
	slog.SetDefault(logging.NewLogger(os.Stdout, logging.Config{
		Level:       logging.ParseLevel(cfg.Log.Level),
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Observability.Environment,
	}))
}
