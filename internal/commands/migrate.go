package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"evalgo.org/assetd/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := newLogger()

	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false
	store, err := storage.Open(dbCfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("✓ Schema migrated (%s)\n", dbCfg.Driver)
	return nil
}
