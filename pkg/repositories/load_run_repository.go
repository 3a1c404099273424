package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/models"
)

// LoadRunRepository persists bulk load run history.
type LoadRunRepository interface {
	// Create writes the initial 'running' row before the load starts.
	Create(ctx context.Context, run *models.LoadRun) error
	// Finish records the outcome. The run row lives outside the inventory
	// transaction so an aborted load still leaves its history.
	Finish(ctx context.Context, runID uuid.UUID, status string, report *models.LoadReport, runErr error) error
	GetByID(ctx context.Context, runID uuid.UUID) (*models.LoadRun, error)
	List(ctx context.Context, limit, offset int) ([]*models.LoadRun, error)
}

type loadRunRepository struct {
	db *database.DB
}

// NewLoadRunRepository creates a new LoadRunRepository.
func NewLoadRunRepository(db *database.DB) LoadRunRepository {
	return &loadRunRepository{db: db}
}

var _ LoadRunRepository = (*loadRunRepository)(nil)

func (r *loadRunRepository) Create(ctx context.Context, run *models.LoadRun) error {
	if run.RunID == uuid.Nil {
		run.RunID = uuid.New()
	}
	if run.Status == "" {
		run.Status = models.LoadRunRunning
	}

	query := `
		INSERT INTO load_runs (run_id, source, status)
		VALUES ($1, $2, $3)
		RETURNING started_at`

	err := r.db.Querier(ctx).QueryRow(ctx, query, run.RunID, run.Source, run.Status).
		Scan(&run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create load run: %w", err)
	}

	return nil
}

func (r *loadRunRepository) Finish(ctx context.Context, runID uuid.UUID, status string, report *models.LoadReport, runErr error) error {
	var rowErrors any
	var total, inserted, updated, skipped int
	if report != nil {
		total = report.Total
		inserted = report.Inserted
		updated = report.Updated
		skipped = report.Skipped
		if len(report.Errors) > 0 {
			data, err := json.Marshal(report.Errors)
			if err != nil {
				return fmt.Errorf("failed to marshal row errors: %w", err)
			}
			rowErrors = data
		}
	}

	var errText *string
	if runErr != nil {
		msg := runErr.Error()
		errText = &msg
	}

	query := `
		UPDATE load_runs
		SET status = $2, total_rows = $3, inserted = $4, updated = $5,
		    skipped = $6, row_errors = $7, error = $8, finished_at = now()
		WHERE run_id = $1`

	result, err := r.db.Querier(ctx).Exec(ctx, query,
		runID, status, total, inserted, updated, skipped, rowErrors, errText)
	if err != nil {
		return fmt.Errorf("failed to finish load run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *loadRunRepository) GetByID(ctx context.Context, runID uuid.UUID) (*models.LoadRun, error) {
	query := `
		SELECT run_id, source, status, total_rows, inserted, updated, skipped,
		       row_errors, error, started_at, finished_at
		FROM load_runs
		WHERE run_id = $1`

	row := r.db.Querier(ctx).QueryRow(ctx, query, runID)
	return scanLoadRun(row)
}

func (r *loadRunRepository) List(ctx context.Context, limit, offset int) ([]*models.LoadRun, error) {
	query := `
		SELECT run_id, source, status, total_rows, inserted, updated, skipped,
		       row_errors, error, started_at, finished_at
		FROM load_runs
		ORDER BY started_at DESC`

	var args []any
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query load runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.LoadRun
	for rows.Next() {
		run, err := scanLoadRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating load runs: %w", err)
	}

	return runs, nil
}

func scanLoadRun(row pgx.Row) (*models.LoadRun, error) {
	var run models.LoadRun
	var rowErrors []byte

	err := row.Scan(
		&run.RunID,
		&run.Source,
		&run.Status,
		&run.TotalRows,
		&run.Inserted,
		&run.Updated,
		&run.Skipped,
		&rowErrors,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan load run: %w", err)
	}

	if len(rowErrors) > 0 && string(rowErrors) != "null" {
		if err := json.Unmarshal(rowErrors, &run.RowErrors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row errors: %w", err)
		}
	}

	return &run, nil
}
