package load

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/repositories"
)

// defaultMaxRowErrors caps how many row errors a report carries. Counts stay
// exact past the cap; only the detail list stops growing.
const defaultMaxRowErrors = 100

// TxRunner runs a function inside one database transaction. *database.DB
// satisfies it.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Orchestrator runs the load pipeline: validate every row, resolve dimensions
// for the survivors, allocate identities, then upsert, all inside one
// transaction. Validation and allocation failures skip the row; dimension or
// upsert failures roll the whole run back.
type Orchestrator struct {
	db         TxRunner
	books      repositories.BookRepository
	categories repositories.CategoryRepository
	locations  repositories.LocationRepository
	policy     Policy
	maxErrors  int
	validator  *rowValidator
	logger     *zap.Logger
}

func NewOrchestrator(
	db TxRunner,
	books repositories.BookRepository,
	categories repositories.CategoryRepository,
	locations repositories.LocationRepository,
	policy Policy,
	maxRowErrors int,
	logger *zap.Logger,
) *Orchestrator {
	if maxRowErrors <= 0 {
		maxRowErrors = defaultMaxRowErrors
	}
	return &Orchestrator{
		db:         db,
		books:      books,
		categories: categories,
		locations:  locations,
		policy:     policy,
		maxErrors:  maxRowErrors,
		validator:  newRowValidator(),
		logger:     logger.Named("load-orchestrator"),
	}
}

// pendingBook is a survivor row with its allocated identity and resolved
// dimensions, ready to upsert.
type pendingBook struct {
	bookID     string
	name       string
	categoryID int64
	locationID int64
}

// Run loads rows and reports per-row outcomes. A non-nil error means the run
// was aborted and every write rolled back; the returned report still carries
// whatever row errors were collected before the abort.
func (o *Orchestrator) Run(ctx context.Context, rows []Row) (*models.LoadReport, error) {
	report := &models.LoadReport{Total: len(rows)}
	if len(rows) == 0 {
		return report, nil
	}

	survivors := make([]Row, 0, len(rows))
	for _, row := range rows {
		if errs := o.validator.Check(row); len(errs) > 0 {
			o.skipRow(report, errs...)
			continue
		}
		survivors = append(survivors, row)
	}
	if len(survivors) == 0 {
		return report, nil
	}

	err := o.db.WithinTx(ctx, func(ctx context.Context) error {
		resolver := NewResolver(o.categories, o.locations)
		if err := resolver.Prime(ctx, survivors); err != nil {
			return err
		}

		allocator := NewAllocator(o.books, o.policy)
		pending := make([]pendingBook, 0, len(survivors))
		for _, row := range survivors {
			categoryID, err := resolver.Category(ctx, row.CategoryName, row.CategoryLabel)
			if err != nil {
				return err
			}
			locationID, err := resolver.Location(ctx, row.LocationName, row.CategoryLabel)
			if err != nil {
				return err
			}

			bookID, err := allocator.Allocate(ctx, row, categoryID, row.CategoryLabel)
			if err != nil {
				o.skipRow(report, models.RowError{Row: row.Index, Field: RoleBookID, Reason: err.Error()})
				continue
			}

			pending = append(pending, pendingBook{
				bookID:     bookID,
				name:       row.Name,
				categoryID: categoryID,
				locationID: locationID,
			})
		}

		for i := range pending {
			p := pending[i]
			book := &models.Book{
				BookID:            p.bookID,
				Name:              p.name,
				CategoryID:        &p.categoryID,
				StorageLocationID: &p.locationID,
				Status:            models.StatusAvailable,
			}
			inserted, err := o.books.Upsert(ctx, book)
			if err != nil {
				return fmt.Errorf("upsert book %q: %w", p.bookID, err)
			}
			if inserted {
				report.Inserted++
			} else {
				report.Updated++
			}
		}
		return nil
	})
	if err != nil {
		// The transaction rolled back; nothing counted below survived.
		report.Inserted = 0
		report.Updated = 0
		return report, err
	}

	o.logger.Info("Load run finished",
		zap.Int("total", report.Total),
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

func (o *Orchestrator) skipRow(report *models.LoadReport, errs ...models.RowError) {
	report.Skipped++
	for _, e := range errs {
		if len(report.Errors) >= o.maxErrors {
			continue
		}
		report.Errors = append(report.Errors, e)
		o.logger.Warn("Skipping row",
			zap.Int("row", e.Row),
			zap.String("field", e.Field),
			zap.String("reason", e.Reason))
	}
}
