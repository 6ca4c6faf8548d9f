package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/cinetrivia/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the ratings database",
	Long: `Apply pending schema migrations to the SQLite database at DATABASE_PATH.
serve runs the same migrations on start, so this is only needed to prepare a
database ahead of time.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(checkBase)
	if err != nil {
		return err
	}

	store, err := db.NewStore(cmd.Context(), cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.DatabasePath, err)
	}
	defer store.Close()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migrate %s: %w", cfg.DatabasePath, err)
	}

	ratings, err := store.CountRatings(cmd.Context())
	if err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DatabasePath, "ratings", ratings)
	return nil
}
