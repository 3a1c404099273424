package load

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/models"
)

// fakeTxRunner satisfies TxRunner without a database. Unit tests assert on
// calls to verify no transaction is opened for empty or all-invalid input.
type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type mockBookRepo struct {
	books map[string]*models.Book

	upsertErr error
	existsErr error
	countErr  error
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: make(map[string]*models.Book)}
}

func (m *mockBookRepo) Create(ctx context.Context, book *models.Book) error {
	if _, exists := m.books[book.BookID]; exists {
		return apperrors.ErrConflict
	}
	cp := *book
	m.books[book.BookID] = &cp
	return nil
}

func (m *mockBookRepo) GetByID(ctx context.Context, bookID string) (*models.Book, error) {
	book, ok := m.books[bookID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *book
	return &cp, nil
}

func (m *mockBookRepo) GetForUpdate(ctx context.Context, bookID string) (*models.Book, error) {
	return m.GetByID(ctx, bookID)
}

func (m *mockBookRepo) List(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	var out []*models.Book
	for _, b := range m.books {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockBookRepo) Update(ctx context.Context, bookID string, update models.BookUpdate) (*models.Book, error) {
	book, ok := m.books[bookID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if update.Name != nil {
		book.Name = *update.Name
	}
	if update.Status != nil {
		book.Status = *update.Status
	}
	cp := *book
	return &cp, nil
}

func (m *mockBookRepo) UpdateStatus(ctx context.Context, bookID, status string) error {
	book, ok := m.books[bookID]
	if !ok {
		return apperrors.ErrNotFound
	}
	book.Status = status
	return nil
}

func (m *mockBookRepo) Delete(ctx context.Context, bookID string) error {
	if _, ok := m.books[bookID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.books, bookID)
	return nil
}

// Upsert mirrors the SQL conflict path: the update branch refreshes name and
// dimensions but never status.
func (m *mockBookRepo) Upsert(ctx context.Context, book *models.Book) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	existing, ok := m.books[book.BookID]
	if ok {
		existing.Name = book.Name
		existing.CategoryID = book.CategoryID
		existing.StorageLocationID = book.StorageLocationID
		return false, nil
	}
	cp := *book
	m.books[book.BookID] = &cp
	return true, nil
}

func (m *mockBookRepo) ExistsID(ctx context.Context, bookID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.books[bookID]
	return ok, nil
}

func (m *mockBookRepo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	count := 0
	for _, b := range m.books {
		if b.CategoryID != nil && *b.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (m *mockBookRepo) Stats(ctx context.Context) (*models.BookStats, error) {
	return &models.BookStats{Total: len(m.books)}, nil
}

type mockCategoryRepo struct {
	byLabel map[string]*models.Category
	nextID  int64

	upsertCalls int
	upsertErr   error
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{byLabel: make(map[string]*models.Category)}
}

func (m *mockCategoryRepo) Upsert(ctx context.Context, name, label string) (int64, error) {
	m.upsertCalls++
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	if cat, ok := m.byLabel[label]; ok {
		cat.CategoryName = name
		return cat.CategoryID, nil
	}
	m.nextID++
	m.byLabel[label] = &models.Category{
		CategoryID:    m.nextID,
		CategoryName:  name,
		CategoryLabel: label,
	}
	return m.nextID, nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	for _, cat := range m.byLabel {
		if cat.CategoryID == id {
			return cat, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockCategoryRepo) GetByLabel(ctx context.Context, label string) (*models.Category, error) {
	cat, ok := m.byLabel[label]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cat, nil
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	var out []*models.Category
	for _, cat := range m.byLabel {
		out = append(out, cat)
	}
	return out, nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id int64) error {
	for label, cat := range m.byLabel {
		if cat.CategoryID == id {
			delete(m.byLabel, label)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockLocationRepo struct {
	byName map[string]*models.Location
	nextID int64

	upsertCalls int
	upsertErr   error
	lastLabel   *string
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{byName: make(map[string]*models.Location)}
}

func (m *mockLocationRepo) Upsert(ctx context.Context, name string, categoryLabel *string) (int64, error) {
	m.upsertCalls++
	m.lastLabel = categoryLabel
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	if loc, ok := m.byName[name]; ok {
		if categoryLabel != nil {
			loc.CategoryLabel = categoryLabel
		}
		return loc.LocationID, nil
	}
	m.nextID++
	m.byName[name] = &models.Location{
		LocationID:    m.nextID,
		LocationName:  name,
		CategoryLabel: categoryLabel,
	}
	return m.nextID, nil
}

func (m *mockLocationRepo) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	for _, loc := range m.byName {
		if loc.LocationID == id {
			return loc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockLocationRepo) GetByName(ctx context.Context, name string) (*models.Location, error) {
	loc, ok := m.byName[name]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return loc, nil
}

func (m *mockLocationRepo) List(ctx context.Context) ([]*models.Location, error) {
	var out []*models.Location
	for _, loc := range m.byName {
		out = append(out, loc)
	}
	return out, nil
}

func (m *mockLocationRepo) Delete(ctx context.Context, id int64) error {
	for name, loc := range m.byName {
		if loc.LocationID == id {
			delete(m.byName, name)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockLoadRunRepo struct {
	runs map[uuid.UUID]*models.LoadRun

	createErr error
	finishErr error
}

func newMockLoadRunRepo() *mockLoadRunRepo {
	return &mockLoadRunRepo{runs: make(map[uuid.UUID]*models.LoadRun)}
}

func (m *mockLoadRunRepo) Create(ctx context.Context, run *models.LoadRun) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *run
	m.runs[run.RunID] = &cp
	return nil
}

func (m *mockLoadRunRepo) Finish(ctx context.Context, runID uuid.UUID, status string, report *models.LoadReport, runErr error) error {
	if m.finishErr != nil {
		return m.finishErr
	}
	run, ok := m.runs[runID]
	if !ok {
		return apperrors.ErrNotFound
	}
	run.Status = status
	if report != nil {
		run.TotalRows = report.Total
		run.Inserted = report.Inserted
		run.Updated = report.Updated
		run.Skipped = report.Skipped
		run.RowErrors = report.Errors
	}
	if runErr != nil {
		msg := runErr.Error()
		run.Error = &msg
	}
	return nil
}

func (m *mockLoadRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*models.LoadRun, error) {
	run, ok := m.runs[runID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (m *mockLoadRunRepo) List(ctx context.Context, limit, offset int) ([]*models.LoadRun, error) {
	var out []*models.LoadRun
	for _, run := range m.runs {
		cp := *run
		out = append(out, &cp)
	}
	return out, nil
}

// seedBook inserts a book directly into the mock store.
func seedBook(repo *mockBookRepo, bookID, name string, categoryID int64, status string) {
	repo.books[bookID] = &models.Book{
		BookID:     bookID,
		Name:       name,
		CategoryID: &categoryID,
		Status:     status,
	}
}

// rowsCSV builds CSV content from a header line and rows, for reader tests.
func rowsCSV(lines ...string) string {
	out := ""
	for _, l := range lines {
		out += fmt.Sprintln(l)
	}
	return out
}
