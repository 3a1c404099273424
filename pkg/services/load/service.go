package load

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/metrics"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/repositories"
)

// Service is the entry point for bulk loads. It wraps the orchestrator with
// run bookkeeping: every invocation, including one that aborts, leaves a
// load_runs row behind.
type Service interface {
	// LoadFile loads a CSV file from disk under the named profile.
	LoadFile(ctx context.Context, path, profileName string) (*models.LoadRun, error)

	// LoadReader loads CSV content from a stream. source names the input in
	// run history (a filename or upload name).
	LoadReader(ctx context.Context, r io.Reader, source, profileName string) (*models.LoadRun, error)

	// GetRun returns one run from history.
	GetRun(ctx context.Context, runID uuid.UUID) (*models.LoadRun, error)

	// ListRuns returns run history, newest first.
	ListRuns(ctx context.Context, limit, offset int) ([]*models.LoadRun, error)
}

type service struct {
	orch     *Orchestrator
	runs     repositories.LoadRunRepository
	profiles map[string]Profile
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewService(orch *Orchestrator, runs repositories.LoadRunRepository, profiles map[string]Profile, m *metrics.Metrics, logger *zap.Logger) Service {
	if profiles == nil {
		profiles = map[string]Profile{DefaultProfileName: DefaultProfile()}
	}
	return &service{
		orch:     orch,
		runs:     runs,
		profiles: profiles,
		metrics:  m,
		logger:   logger.Named("load-service"),
	}
}

var _ Service = (*service)(nil)

func (s *service) LoadFile(ctx context.Context, path, profileName string) (*models.LoadRun, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	return s.LoadReader(ctx, f, filepath.Base(path), profileName)
}

func (s *service) LoadReader(ctx context.Context, r io.Reader, source, profileName string) (*models.LoadRun, error) {
	if profileName == "" {
		profileName = DefaultProfileName
	}
	profile, ok := s.profiles[profileName]
	if !ok {
		return nil, fmt.Errorf("unknown source profile %q", profileName)
	}

	run := &models.LoadRun{
		RunID:  uuid.New(),
		Source: source,
		Status: models.LoadRunRunning,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("record load run: %w", err)
	}

	s.logger.Info("Load run started",
		zap.String("run_id", run.RunID.String()),
		zap.String("source", source),
		zap.String("profile", profileName))

	rows, err := ExtractCSV(r, profile)
	if err != nil {
		return s.finish(ctx, run, nil, err)
	}

	report, err := s.orch.Run(ctx, rows)
	return s.finish(ctx, run, report, err)
}

// finish records the outcome on the run row. The run row is history, not
// inventory: it is written outside the load transaction so aborted runs stay
// visible.
func (s *service) finish(ctx context.Context, run *models.LoadRun, report *models.LoadReport, runErr error) (*models.LoadRun, error) {
	status := models.LoadRunAborted
	if runErr == nil {
		status = report.Outcome()
	}
	s.metrics.RecordLoadRun(status, report)

	if err := s.runs.Finish(ctx, run.RunID, status, report, runErr); err != nil {
		s.logger.Error("Failed to record load run outcome",
			zap.String("run_id", run.RunID.String()),
			zap.Error(err))
		if runErr == nil {
			runErr = fmt.Errorf("record load run outcome: %w", err)
		}
	}

	if runErr != nil {
		s.logger.Error("Load run aborted",
			zap.String("run_id", run.RunID.String()),
			zap.Error(runErr))
		return nil, fmt.Errorf("load run %s: %w", run.RunID, runErr)
	}

	final, err := s.runs.GetByID(ctx, run.RunID)
	if err != nil {
		return nil, fmt.Errorf("reload run %s: %w", run.RunID, err)
	}
	return final, nil
}

func (s *service) GetRun(ctx context.Context, runID uuid.UUID) (*models.LoadRun, error) {
	return s.runs.GetByID(ctx, runID)
}

func (s *service) ListRuns(ctx context.Context, limit, offset int) ([]*models.LoadRun, error) {
	return s.runs.List(ctx, limit, offset)
}
