package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/repositories"
)

// BookService provides catalog operations for books and their dimensions.
type BookService interface {
	// Create adds a single book with a caller-chosen identifier, the manual
	// path next to bulk loads. Dimension references must exist.
	Create(ctx context.Context, book *models.Book) error

	// Get returns a book with its category label and location name joined in.
	Get(ctx context.Context, bookID string) (*models.Book, error)

	List(ctx context.Context, filter models.BookFilter) ([]*models.Book, error)

	// Update applies the provided fields. Status changes here are the
	// administrative path (marking books Lost or Archived); day-to-day
	// loan flow goes through CirculationService.
	Update(ctx context.Context, bookID string, update models.BookUpdate) (*models.Book, error)

	Delete(ctx context.Context, bookID string) error

	// Stats summarizes inventory counts by status and category.
	Stats(ctx context.Context) (*models.BookStats, error)

	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListLocations(ctx context.Context) ([]*models.Location, error)
}

type bookService struct {
	books      repositories.BookRepository
	categories repositories.CategoryRepository
	locations  repositories.LocationRepository
	logger     *zap.Logger
}

// NewBookService creates a new BookService.
func NewBookService(
	books repositories.BookRepository,
	categories repositories.CategoryRepository,
	locations repositories.LocationRepository,
	logger *zap.Logger,
) BookService {
	return &bookService{
		books:      books,
		categories: categories,
		locations:  locations,
		logger:     logger.Named("book-service"),
	}
}

var _ BookService = (*bookService)(nil)

func (s *bookService) Create(ctx context.Context, book *models.Book) error {
	if book.BookID == "" {
		return fmt.Errorf("book_id is required")
	}
	if book.Name == "" {
		return fmt.Errorf("name is required")
	}
	if book.Status == "" {
		book.Status = models.StatusAvailable
	}
	if !models.IsValidStatus(book.Status) {
		return fmt.Errorf("status %q: %w", book.Status, apperrors.ErrInvalidStatus)
	}
	if err := s.checkDimensions(ctx, book.CategoryID, book.StorageLocationID); err != nil {
		return err
	}

	if err := s.books.Create(ctx, book); err != nil {
		return err
	}
	s.logger.Info("Book created", zap.String("book_id", book.BookID))
	return nil
}

func (s *bookService) Get(ctx context.Context, bookID string) (*models.Book, error) {
	return s.books.GetByID(ctx, bookID)
}

func (s *bookService) List(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("status %q: %w", filter.Status, apperrors.ErrInvalidStatus)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.books.List(ctx, filter)
}

func (s *bookService) Update(ctx context.Context, bookID string, update models.BookUpdate) (*models.Book, error) {
	if update.Name != nil && *update.Name == "" {
		return nil, fmt.Errorf("name cannot be blank")
	}
	if update.Status != nil && !models.IsValidStatus(*update.Status) {
		return nil, fmt.Errorf("status %q: %w", *update.Status, apperrors.ErrInvalidStatus)
	}
	if err := s.checkDimensions(ctx, update.CategoryID, update.StorageLocationID); err != nil {
		return nil, err
	}
	return s.books.Update(ctx, bookID, update)
}

func (s *bookService) Delete(ctx context.Context, bookID string) error {
	if err := s.books.Delete(ctx, bookID); err != nil {
		return err
	}
	s.logger.Info("Book deleted", zap.String("book_id", bookID))
	return nil
}

func (s *bookService) Stats(ctx context.Context) (*models.BookStats, error) {
	return s.books.Stats(ctx)
}

func (s *bookService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.List(ctx)
}

func (s *bookService) ListLocations(ctx context.Context) ([]*models.Location, error) {
	return s.locations.List(ctx)
}

// checkDimensions verifies referenced dimensions exist before a write, so
// callers get a not-found error naming the dimension instead of a bare
// foreign key violation.
func (s *bookService) checkDimensions(ctx context.Context, categoryID, locationID *int64) error {
	if categoryID != nil {
		if _, err := s.categories.GetByID(ctx, *categoryID); err != nil {
			return fmt.Errorf("category %d: %w", *categoryID, err)
		}
	}
	if locationID != nil {
		if _, err := s.locations.GetByID(ctx, *locationID); err != nil {
			return fmt.Errorf("location %d: %w", *locationID, err)
		}
	}
	return nil
}
