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

// LocationRepository provides data access for storage locations.
type LocationRepository interface {
	// Upsert creates the location or refreshes its category label, keyed on
	// location_name (the natural key, unique across the inventory).
	Upsert(ctx context.Context, name string, categoryLabel *string) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	GetByName(ctx context.Context, name string) (*models.Location, error)
	List(ctx context.Context) ([]*models.Location, error)
	Delete(ctx context.Context, id int64) error
}

type locationRepository struct {
	db *database.DB
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(db *database.DB) LocationRepository {
	return &locationRepository{db: db}
}

var _ LocationRepository = (*locationRepository)(nil)

func (r *locationRepository) Upsert(ctx context.Context, name string, categoryLabel *string) (int64, error) {
	query := `
		INSERT INTO locations (location_name, category_label)
		VALUES ($1, $2)
		ON CONFLICT (location_name)
		DO UPDATE SET category_label = COALESCE(EXCLUDED.category_label, locations.category_label)
		RETURNING location_id`

	var id int64
	err := r.db.Querier(ctx).QueryRow(ctx, query, name, categoryLabel).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert location %q: %w", name, err)
	}

	return id, nil
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	query := `
		SELECT location_id, location_name, category_label, created_at
		FROM locations
		WHERE location_id = $1`

	row := r.db.Querier(ctx).QueryRow(ctx, query, id)
	return scanLocation(row)
}

func (r *locationRepository) GetByName(ctx context.Context, name string) (*models.Location, error) {
	query := `
		SELECT location_id, location_name, category_label, created_at
		FROM locations
		WHERE location_name = $1`

	row := r.db.Querier(ctx).QueryRow(ctx, query, name)
	return scanLocation(row)
}

func (r *locationRepository) List(ctx context.Context) ([]*models.Location, error) {
	query := `
		SELECT location_id, location_name, category_label, created_at
		FROM locations
		ORDER BY location_name`

	rows, err := r.db.Querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

func (r *locationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM locations WHERE location_id = $1`

	result, err := r.db.Querier(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanLocation(row pgx.Row) (*models.Location, error) {
	var l models.Location
	err := row.Scan(&l.LocationID, &l.LocationName, &l.CategoryLabel, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan location: %w", err)
	}
	return &l, nil
}
