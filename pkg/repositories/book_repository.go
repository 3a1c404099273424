package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/models"
)

// BookRepository provides data access for books.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, bookID string) (*models.Book, error)
	// GetForUpdate locks the book row until the surrounding transaction
	// ends. Concurrent callers serialize here and observe each other's
	// committed status changes. Only meaningful inside database.WithinTx.
	GetForUpdate(ctx context.Context, bookID string) (*models.Book, error)
	List(ctx context.Context, filter models.BookFilter) ([]*models.Book, error)
	// Update applies the non-nil fields of update and returns the new row.
	Update(ctx context.Context, bookID string, update models.BookUpdate) (*models.Book, error)
	UpdateStatus(ctx context.Context, bookID, status string) error
	Delete(ctx context.Context, bookID string) error
	// Upsert inserts the book or, on book_id conflict, refreshes name and
	// dimension references. Status and created_at are never touched on the
	// update path; circulation owns status after the first insert.
	// Returns true when a new row was inserted.
	Upsert(ctx context.Context, book *models.Book) (bool, error)
	ExistsID(ctx context.Context, bookID string) (bool, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	Stats(ctx context.Context) (*models.BookStats, error)
}

type bookRepository struct {
	db *database.DB
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(db *database.DB) BookRepository {
	return &bookRepository{db: db}
}

var _ BookRepository = (*bookRepository)(nil)

const bookColumns = `
	b.book_id, b.name, b.category_id, b.storage_location_id, b.status,
	b.created_at, b.updated_at, c.category_label, l.location_name`

const bookJoins = `
	FROM books b
	LEFT JOIN categories c ON c.category_id = b.category_id
	LEFT JOIN locations l ON l.location_id = b.storage_location_id`

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	query := `
		INSERT INTO books (book_id, name, category_id, storage_location_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	if book.Status == "" {
		book.Status = models.StatusAvailable
	}

	err := r.db.Querier(ctx).QueryRow(ctx, query,
		book.BookID,
		book.Name,
		book.CategoryID,
		book.StorageLocationID,
		book.Status,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("book %s: %w", book.BookID, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, bookID string) (*models.Book, error) {
	query := `SELECT` + bookColumns + bookJoins + `
		WHERE b.book_id = $1`

	row := r.db.Querier(ctx).QueryRow(ctx, query, bookID)
	return scanBook(row)
}

func (r *bookRepository) GetForUpdate(ctx context.Context, bookID string) (*models.Book, error) {
	// No dimension joins here: FOR UPDATE must lock the books row only.
	query := `
		SELECT book_id, name, category_id, storage_location_id, status,
		       created_at, updated_at
		FROM books
		WHERE book_id = $1
		FOR UPDATE`

	var b models.Book
	err := r.db.Querier(ctx).QueryRow(ctx, query, bookID).Scan(
		&b.BookID,
		&b.Name,
		&b.CategoryID,
		&b.StorageLocationID,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock book %s: %w", bookID, err)
	}

	return &b, nil
}

func (r *bookRepository) List(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	var conditions []string
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("b.category_id = $%d", len(args)))
	}

	query := `SELECT` + bookColumns + bookJoins
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY b.book_id"

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
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, bookID string, update models.BookUpdate) (*models.Book, error) {
	sets := []string{"updated_at = now()"}
	args := []any{bookID}

	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if update.CategoryID != nil {
		args = append(args, *update.CategoryID)
		sets = append(sets, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if update.StorageLocationID != nil {
		args = append(args, *update.StorageLocationID)
		sets = append(sets, fmt.Sprintf("storage_location_id = $%d", len(args)))
	}
	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE books
		SET %s
		WHERE book_id = $1`, strings.Join(sets, ", "))

	result, err := r.db.Querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update book %s: %w", bookID, err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetByID(ctx, bookID)
}

func (r *bookRepository) UpdateStatus(ctx context.Context, bookID, status string) error {
	query := `
		UPDATE books
		SET status = $2, updated_at = now()
		WHERE book_id = $1`

	result, err := r.db.Querier(ctx).Exec(ctx, query, bookID, status)
	if err != nil {
		return fmt.Errorf("failed to update book %s status: %w", bookID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *bookRepository) Delete(ctx context.Context, bookID string) error {
	query := `DELETE FROM books WHERE book_id = $1`

	result, err := r.db.Querier(ctx).Exec(ctx, query, bookID)
	if err != nil {
		return fmt.Errorf("failed to delete book %s: %w", bookID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *bookRepository) Upsert(ctx context.Context, book *models.Book) (bool, error) {
	if book.Status == "" {
		book.Status = models.StatusAvailable
	}

	// xmax = 0 only on freshly inserted rows, which distinguishes the
	// insert path from the conflict-update path in one round trip.
	query := `
		INSERT INTO books (book_id, name, category_id, storage_location_id, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (book_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			category_id = EXCLUDED.category_id,
			storage_location_id = EXCLUDED.storage_location_id,
			updated_at = now()
		RETURNING (xmax = 0) AS inserted`

	var inserted bool
	err := r.db.Querier(ctx).QueryRow(ctx, query,
		book.BookID,
		book.Name,
		book.CategoryID,
		book.StorageLocationID,
		book.Status,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert book %s: %w", book.BookID, err)
	}

	return inserted, nil
}

func (r *bookRepository) ExistsID(ctx context.Context, bookID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM books WHERE book_id = $1)`

	var exists bool
	err := r.db.Querier(ctx).QueryRow(ctx, query, bookID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check book id %s: %w", bookID, err)
	}

	return exists, nil
}

func (r *bookRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	query := `SELECT COUNT(*) FROM books WHERE category_id = $1`

	var count int
	err := r.db.Querier(ctx).QueryRow(ctx, query, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count books in category %d: %w", categoryID, err)
	}

	return count, nil
}

func (r *bookRepository) Stats(ctx context.Context) (*models.BookStats, error) {
	statusQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4)
		FROM books`

	var stats models.BookStats
	err := r.db.Querier(ctx).QueryRow(ctx, statusQuery,
		models.StatusAvailable,
		models.StatusOnLoan,
		models.StatusLost,
		models.StatusArchived,
	).Scan(&stats.Total, &stats.Available, &stats.OnLoan, &stats.Lost, &stats.Archived)
	if err != nil {
		return nil, fmt.Errorf("failed to count books by status: %w", err)
	}

	categoryQuery := `
		SELECT c.category_id, c.category_name, c.category_label, COUNT(b.book_id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.category_id
		GROUP BY c.category_id, c.category_name, c.category_label
		ORDER BY c.category_label`

	rows, err := r.db.Querier(ctx).Query(ctx, categoryQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count books by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.CategoryID, &cc.CategoryName, &cc.CategoryLabel, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.Categories = append(stats.Categories, cc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}

	return &stats, nil
}

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	err := row.Scan(
		&b.BookID,
		&b.Name,
		&b.CategoryID,
		&b.StorageLocationID,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.CategoryLabel,
		&b.LocationName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}
	return &b, nil
}
