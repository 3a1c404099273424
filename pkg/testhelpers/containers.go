// Package testhelpers provides a shared PostgreSQL container for integration
// tests. Tests that use it must be tagged integration and are skipped in
// short mode.
package testhelpers

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/database"
)

// PostgresImage is the stock image integration tests run against.
const PostgresImage = "postgres:16-alpine"

// TestDB holds a shared test database container with migrations applied.
type TestDB struct {
	Container testcontainers.Container
	DB        *database.DB
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared migrated PostgreSQL database for integration
// tests. The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "librarian_test",
			"POSTGRES_USER":     "librarian",
			"POSTGRES_PASSWORD": "test_password",
		},
		// The image logs this once while bootstrapping and again when the
		// real server is up.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://librarian:test_password@%s:%s/librarian_test?sslmode=disable",
		host, port.Port())

	if err := database.RunMigrations(connStr, migrationsDir(), zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	db, err := database.NewConnection(ctx, &database.Config{
		DSN:            connStr,
		MaxConnections: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	return &TestDB{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// migrationsDir locates the repo's migrations directory relative to this
// source file, so tests work from any package directory.
func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}

// ResetTables truncates the given tables and restarts their sequences, so a
// test starts from an empty inventory. Tables are truncated together to
// satisfy foreign keys.
func ResetTables(t *testing.T, db *database.DB, tables ...string) {
	t.Helper()

	if len(tables) == 0 {
		tables = []string{"transactions", "books", "categories", "locations", "teachers", "load_runs", "users"}
	}

	query := "TRUNCATE TABLE "
	for i, table := range tables {
		if i > 0 {
			query += ", "
		}
		query += table
	}
	query += " RESTART IDENTITY CASCADE"

	if _, err := db.Exec(context.Background(), query); err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}
}
