package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/config"
	"github.com/marmos91/filebank/pkg/metadata/gormstore"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run metadata database migrations",
	Long: `Run migrations for the configured metadata database.

PostgreSQL applies the embedded SQL migrations. SQLite and BadgerDB are
prepared by opening the store, which creates the tables or key layout on
first use.

Examples:
  # Run migrations with default config
  filebank migrate

  # Run migrations with custom config
  filebank migrate --config /etc/filebank/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx := context.Background()
	logger.Info("Running database migrations", "type", cfg.Database.Type)

	if cfg.Database.Type == config.DatabasePostgres {
		if err := gormstore.RunMigrations(ctx, &cfg.Database.Postgres); err != nil {
			return err
		}
		version, dirty, err := gormstore.MigrationVersion(ctx, &cfg.Database.Postgres)
		if err != nil {
			return fmt.Errorf("migration verification failed: %w", err)
		}
		fmt.Printf("Migrations completed successfully (database type: %s, version: %d, dirty: %t)\n",
			cfg.Database.Type, version, dirty)
		return nil
	}

	store, err := config.OpenMetadataStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Healthcheck(ctx); err != nil {
		return fmt.Errorf("migration verification failed: %w", err)
	}

	fmt.Printf("Migrations completed successfully (database type: %s)\n", cfg.Database.Type)
	return nil
}
