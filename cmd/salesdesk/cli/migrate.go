package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Example: `  # Apply everything that is pending
  salesdesk migrate

  # Only list what would be applied
  salesdesk migrate --dry-run`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("dry-run", false, "List pending migrations without applying them")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	pool, err := db.New(ctx, env.cfg.PGDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	if dryRun {
		pending, err := migrations.Pending(ctx, pool)
		if err != nil {
			return err
		}
		return printVersions(cmd, "pending", pending)
	}

	applied, err := migrations.Run(ctx, pool)
	if err != nil {
		return err
	}
	env.logger.Info("migrations complete", slog.Int("applied", len(applied)))
	return printVersions(cmd, "applied", applied)
}

func printVersions(cmd *cobra.Command, label string, versions []string) error {
	out := cmd.OutOrStdout()
	if len(versions) == 0 {
		_, err := fmt.Fprintf(out, "no migrations %s\n", label)
		return err
	}
	for _, v := range versions {
		if _, err := fmt.Fprintf(out, "%s %s\n", label, v); err != nil {
			return err
		}
	}
	return nil
}
