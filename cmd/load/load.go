// Package load bulk-loads a book inventory CSV from the command line.
package load

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/libreshelf/librarian/pkg/config"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/logging"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/repositories"
	loadsvc "github.com/libreshelf/librarian/pkg/services/load"
)

// Command creates the load command.
func Command(version string) *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:   "load [books.csv]",
		Short: "Bulk load a book inventory CSV",
		Long:  "Validate, resolve, and upsert every row of a CSV export into the inventory in a single transaction.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), version, args[0], profileName)
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Source profile to map CSV headers with (default from config)")

	return cmd
}

func run(ctx context.Context, version, path, profileName string) error {
	cfg, err := config.Load(version)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.NewConnection(ctx, &database.Config{
		DSN:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	profiles, err := loadsvc.LoadProfiles(cfg.Load.ProfilesPath)
	if err != nil {
		return fmt.Errorf("failed to load source profiles: %w", err)
	}
	if err := loadsvc.SetDefault(profiles, cfg.Load.DefaultProfile); err != nil {
		return fmt.Errorf("failed to apply default profile: %w", err)
	}

	orchestrator := loadsvc.NewOrchestrator(db,
		repositories.NewBookRepository(db),
		repositories.NewCategoryRepository(db),
		repositories.NewLocationRepository(db),
		loadsvc.Policy(cfg.Load.Policy), cfg.Load.MaxRowErrors, logger)
	service := loadsvc.NewService(orchestrator, repositories.NewLoadRunRepository(db), profiles, nil, logger)

	run, err := service.LoadFile(ctx, path, profileName)
	if err != nil {
		return err
	}

	printRun(run)
	return nil
}

func printRun(run *models.LoadRun) {
	fmt.Printf("run %s: %s\n", run.RunID, run.Status)
	fmt.Printf("  total=%d inserted=%d updated=%d skipped=%d\n",
		run.TotalRows, run.Inserted, run.Updated, run.Skipped)
	for _, re := range run.RowErrors {
		if re.Field != "" {
			fmt.Printf("  row %d: %s (%s)\n", re.Row, re.Reason, re.Field)
		} else {
			fmt.Printf("  row %d: %s\n", re.Row, re.Reason)
		}
	}
}
