package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/models"
)

// TransactionRepository provides data access for circulation transactions.
// The table is append-only: there is no update or delete beyond the FK
// cascade from books and teachers.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)
	CountByBook(ctx context.Context, bookID string) (int, error)
}

type transactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *database.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

var _ TransactionRepository = (*transactionRepository)(nil)

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (book_id, teacher_id, action, transaction_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING transaction_id, created_at`

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		txn.BookID,
		txn.TeacherID,
		txn.Action,
		txn.TransactionDate,
		txn.Notes,
	).Scan(&txn.TransactionID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `
		SELECT transaction_id, book_id, teacher_id, action, transaction_date,
		       notes, created_at
		FROM transactions
		WHERE transaction_id = $1`

	row := r.db.Querier(ctx).QueryRow(ctx, query, id)
	return scanTransaction(row)
}

func (r *transactionRepository) List(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	var conditions []string
	var args []any

	if filter.BookID != "" {
		args = append(args, filter.BookID)
		conditions = append(conditions, fmt.Sprintf("book_id = $%d", len(args)))
	}
	if filter.TeacherID != nil {
		args = append(args, *filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("transaction_date <= $%d", len(args)))
	}

	query := `
		SELECT transaction_id, book_id, teacher_id, action, transaction_date,
		       notes, created_at
		FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, transaction_id DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

func (r *transactionRepository) CountByBook(ctx context.Context, bookID string) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE book_id = $1`

	var count int
	err := r.db.Querier(ctx).QueryRow(ctx, query, bookID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for book %s: %w", bookID, err)
	}

	return count, nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.BookID,
		&t.TeacherID,
		&t.Action,
		&t.TransactionDate,
		&t.Notes,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &t, nil
}
