package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/models"
)

// CategoryRepository provides data access for book categories.
type CategoryRepository interface {
	// Upsert creates the category or refreshes its display name, keyed on
	// category_label. Safe under concurrent callers: the conflict path
	// updates and returns the surviving row's id.
	Upsert(ctx context.Context, name, label string) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByLabel(ctx context.Context, label string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *database.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

var _ CategoryRepository = (*categoryRepository)(nil)

func (r *categoryRepository) Upsert(ctx context.Context, name, label string) (int64, error) {
	query := `
		INSERT INTO categories (category_name, category_label)
		VALUES ($1, $2)
		ON CONFLICT (category_label)
		DO UPDATE SET category_name = EXCLUDED.category_name
		RETURNING category_id`

	var id int64
	err := r.db.Querier(ctx).QueryRow(ctx, query, name, label).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert category %q: %w", label, err)
	}

	return id, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `
		SELECT category_id, category_name, category_label, created_at
		FROM categories
		WHERE category_id = $1`

	row := r.db.Querier(ctx).QueryRow(ctx, query, id)
	return scanCategory(row)
}

func (r *categoryRepository) GetByLabel(ctx context.Context, label string) (*models.Category, error) {
	query := `
		SELECT category_id, category_name, category_label, created_at
		FROM categories
		WHERE category_label = $1`

	row := r.db.Querier(ctx).QueryRow(ctx, query, label)
	return scanCategory(row)
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT category_id, category_name, category_label, created_at
		FROM categories
		ORDER BY category_label`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM categories WHERE category_id = $1`

	result, err := r.db.Querier(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.CategoryID, &c.CategoryName, &c.CategoryLabel, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return &c, nil
}
