package cli

import (
	"fmt"

	"reliance-backend/pkg/config"
	"reliance-backend/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
	Long: `Manage the Postgres schema with the SQL files under MIGRATIONS_PATH.

Examples:
  reliance migrate up
  reliance migrate down --steps 1
  reliance migrate version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withMigrationDB(func(cfg *config.Config, run migrationRunner) error {
			return run.up()
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		steps, _ := cmd.Flags().GetInt("steps")
		withMigrationDB(func(cfg *config.Config, run migrationRunner) error {
			return run.down(steps)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied migration version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withMigrationDB(func(cfg *config.Config, run migrationRunner) error {
			version, dirty, err := run.version()
			if err != nil {
				return err
			}
			fmt.Printf("version: %d (dirty: %v)\n", version, dirty)
			return nil
		})
	},
}

func init() {
	migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

type migrationRunner struct {
	up      func() error
	down    func(steps int) error
	version func() (uint, bool, error)
}

func withMigrationDB(fn func(cfg *config.Config, run migrationRunner) error) {
	cfg := config.Load()
	if cfg.StoreDriver != config.StorePostgres {
		exitWithError(fmt.Errorf("migrations only apply to STORE_DRIVER=%s, got %q", config.StorePostgres, cfg.StoreDriver))
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		exitWithError(err)
	}
	defer database.ClosePostgres(db)

	migCfg := database.DefaultMigrationConfig(cfg.MigrationsPath)
	run := migrationRunner{
		up:      func() error { return database.MigrateUp(db, migCfg) },
		down:    func(steps int) error { return database.MigrateDown(db, migCfg, steps) },
		version: func() (uint, bool, error) { return database.MigrationVersion(db, migCfg) },
	}
	if err := fn(cfg, run); err != nil {
		exitWithError(err)
	}
}
