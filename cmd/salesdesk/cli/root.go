// Package cli holds the salesdesk command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/salesdesk/salesdesk/internal/app"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "salesdesk",
	Short: "Sales recording backend",
	Long: `salesdesk serves the customer, item, sales and statistics API and
carries the operational commands used around it.

Configuration is read from the environment, optionally seeded from a .env
file in the working directory. JWT_SECRET is always required.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "salesdesk: %v\n", err)
		os.Exit(1)
	}
}

// environment is the configuration every subcommand starts from.
type environment struct {
	cfg    *app.Config
	logger *slog.Logger
}

func loadEnvironment() (*environment, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &environment{cfg: cfg, logger: app.NewLogger(cfg)}, nil
}
