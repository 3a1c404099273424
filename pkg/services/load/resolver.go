package load

import (
	"context"
	"fmt"

	"github.com/libreshelf/librarian/pkg/repositories"
)

// Unclassified is the sentinel dimension value assigned when a source row
// carries no category label or no location name. It is a real row in the
// dimension tables, created on first use like any other value.
const Unclassified = "Unclassified"

// Resolver turns category labels and location names into dimension IDs,
// creating missing dimensions through conflict-safe upserts. Caches are
// scoped to one run: build a fresh Resolver per load.
type Resolver struct {
	categories repositories.CategoryRepository
	locations  repositories.LocationRepository

	categoryIDs map[string]int64
	locationIDs map[string]int64
}

func NewResolver(categories repositories.CategoryRepository, locations repositories.LocationRepository) *Resolver {
	return &Resolver{
		categories:  categories,
		locations:   locations,
		categoryIDs: make(map[string]int64),
		locationIDs: make(map[string]int64),
	}
}

// Prime resolves every distinct dimension value in rows up front, so each
// label and name costs at most one round trip per run. Any failure here is
// unrecoverable for the load.
func (r *Resolver) Prime(ctx context.Context, rows []Row) error {
	for _, row := range rows {
		if _, err := r.Category(ctx, row.CategoryName, row.CategoryLabel); err != nil {
			return err
		}
		if _, err := r.Location(ctx, row.LocationName, row.CategoryLabel); err != nil {
			return err
		}
	}
	return nil
}

// Category resolves a label to its category ID, creating the category when
// absent. A blank label maps to the Unclassified sentinel. A blank name
// falls back to the label, matching sources that carry only one column.
func (r *Resolver) Category(ctx context.Context, name, label string) (int64, error) {
	if label == "" {
		label = Unclassified
	}
	if id, ok := r.categoryIDs[label]; ok {
		return id, nil
	}

	if name == "" {
		name = label
	}
	id, err := r.categories.Upsert(ctx, name, label)
	if err != nil {
		return 0, fmt.Errorf("resolve category %q: %w", label, err)
	}

	r.categoryIDs[label] = id
	return id, nil
}

// Location resolves a name to its location ID, creating the location when
// absent. A blank name maps to the Unclassified sentinel. The category label
// rides along as informational context and never overwrites an existing one.
func (r *Resolver) Location(ctx context.Context, name, categoryLabel string) (int64, error) {
	if name == "" {
		name = Unclassified
	}
	if id, ok := r.locationIDs[name]; ok {
		return id, nil
	}

	var label *string
	if categoryLabel != "" {
		label = &categoryLabel
	}
	id, err := r.locations.Upsert(ctx, name, label)
	if err != nil {
		return 0, fmt.Errorf("resolve location %q: %w", name, err)
	}

	r.locationIDs[name] = id
	return id, nil
}
