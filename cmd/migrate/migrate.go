// Package migrate applies database migrations from the command line.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/libreshelf/librarian/pkg/config"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/logging"
)

// Command creates the migrate command.
func Command(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  "Apply pending schema migrations. Safe to run repeatedly; already-applied migrations are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(version)
		},
	}
}

func run(version string) error {
	cfg, err := config.Load(version)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return database.RunMigrations(cfg.Database.ConnectionString(), cfg.MigrationsPath, logger)
}
