// Package services holds the application services between HTTP handlers and
// repositories. Services own business rules and transaction boundaries;
// repositories own SQL.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/metrics"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/repositories"
)

// TxRunner runs a function inside one database transaction. *database.DB
// satisfies it.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CirculationService processes borrow and return requests against the
// inventory state machine and keeps the transaction log.
type CirculationService interface {
	// Submit applies one borrow or return. The status transition and the
	// log row commit together; under concurrent submissions for the same
	// book exactly one request wins and the rest fail on the book's new
	// status.
	Submit(ctx context.Context, req *models.CirculationRequest) (*models.Transaction, error)

	// GetTransaction returns one log entry.
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)

	// ListTransactions returns log entries, newest first.
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)
}

type circulationService struct {
	db           TxRunner
	books        repositories.BookRepository
	teachers     repositories.TeacherRepository
	transactions repositories.TransactionRepository
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewCirculationService creates a new CirculationService.
func NewCirculationService(
	db TxRunner,
	books repositories.BookRepository,
	teachers repositories.TeacherRepository,
	transactions repositories.TransactionRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) CirculationService {
	return &circulationService{
		db:           db,
		books:        books,
		teachers:     teachers,
		transactions: transactions,
		metrics:      m,
		logger:       logger.Named("circulation-service"),
	}
}

var _ CirculationService = (*circulationService)(nil)

func (s *circulationService) Submit(ctx context.Context, req *models.CirculationRequest) (*models.Transaction, error) {
	if req.BookID == "" {
		return nil, fmt.Errorf("book_id is required")
	}
	if req.TeacherID == 0 {
		return nil, fmt.Errorf("teacher_id is required")
	}
	if !models.IsValidAction(req.Action) {
		return nil, fmt.Errorf("action %q: %w", req.Action, apperrors.ErrInvalidAction)
	}

	date := time.Now()
	if req.TransactionDate != nil {
		date = *req.TransactionDate
	}

	txn := &models.Transaction{
		BookID:          req.BookID,
		TeacherID:       req.TeacherID,
		Action:          req.Action,
		TransactionDate: date,
		Notes:           req.Notes,
	}

	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		// Lock the book row first. Everything below sees a stable status,
		// and a concurrent request for the same book waits here.
		book, err := s.books.GetForUpdate(ctx, req.BookID)
		if err != nil {
			return fmt.Errorf("book %s: %w", req.BookID, err)
		}

		exists, err := s.teachers.Exists(ctx, req.TeacherID)
		if err != nil {
			return fmt.Errorf("teacher %d: %w", req.TeacherID, err)
		}
		if !exists {
			return fmt.Errorf("teacher %d: %w", req.TeacherID, apperrors.ErrNotFound)
		}

		var nextStatus string
		switch req.Action {
		case models.ActionBorrow:
			if !book.CanBorrow() {
				return &apperrors.StatusViolationError{
					BookID:        book.BookID,
					CurrentStatus: book.Status,
					Action:        req.Action,
				}
			}
			nextStatus = models.StatusOnLoan
		case models.ActionReturn:
			if !book.CanReturn() {
				return &apperrors.StatusViolationError{
					BookID:        book.BookID,
					CurrentStatus: book.Status,
					Action:        req.Action,
				}
			}
			nextStatus = models.StatusAvailable
		}

		if err := s.books.UpdateStatus(ctx, book.BookID, nextStatus); err != nil {
			return fmt.Errorf("update book %s status: %w", book.BookID, err)
		}
		return s.transactions.Create(ctx, txn)
	})
	if err != nil {
		s.metrics.RecordCirculation(req.Action, circulationOutcome(err))
		return nil, err
	}

	s.metrics.RecordCirculation(req.Action, metrics.OutcomeAccepted)
	s.logger.Info("Circulation request accepted",
		zap.String("book_id", txn.BookID),
		zap.Int64("teacher_id", txn.TeacherID),
		zap.String("action", txn.Action))
	return txn, nil
}

// circulationOutcome classifies a Submit failure for metrics: business
// rejections versus infrastructure errors.
func circulationOutcome(err error) string {
	var sve *apperrors.StatusViolationError
	if errors.As(err, &sve) || errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidAction) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}

func (s *circulationService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.transactions.GetByID(ctx, id)
}

func (s *circulationService) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.transactions.List(ctx, filter)
}
