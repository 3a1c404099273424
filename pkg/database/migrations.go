package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// RunMigrations applies pending schema migrations from dir. It opens its own
// short-lived database/sql connection (golang-migrate requires one; the pgx
// pool is not involved). Running it against an up-to-date schema is a no-op,
// so server startup and the migrate subcommand can both call it.
func RunMigrations(dsn, dir string, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close migration connection", zap.Error(err))
		}
	}()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrator",
				zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	switch err := m.Up(); {
	case err == nil:
		version, _, _ := m.Version()
		logger.Info("Applied migrations", zap.Uint("version", version))
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("Schema is up to date")
		return nil
	default:
		return fmt.Errorf("failed to run migrations: %w", err)
	}
}
