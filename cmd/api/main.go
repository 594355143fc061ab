// Package main is the entry point for the tags API server.
// Its sole responsibility is wiring dependencies together and starting the
// server or running migrations. No business logic belongs here.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/tagstore/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Configuration is loaded once, before
// any subcommand runs, and the JSON logger is installed as slog's default.
func newRootCmd() *cobra.Command {
	var cfg config.Config
	var logger *slog.Logger

	root := &cobra.Command{
		Use:           "tagstore",
		Short:         "Tags API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			}))
			slog.SetDefault(logger)
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(&cfg, &logger),
		newMigrateCmd(&cfg),
	)
	return root
}
