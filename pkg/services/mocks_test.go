package services

import (
	"context"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/models"
)

// fakeTxRunner satisfies TxRunner without a database. Mock writes are not
// transactional; rollback behavior is covered by integration tests.
type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type mockBookRepo struct {
	books map[string]*models.Book

	lastFilter      models.BookFilter
	updateStatusErr error
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
	m.lastFilter = filter
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
	if update.CategoryID != nil {
		book.CategoryID = update.CategoryID
	}
	if update.StorageLocationID != nil {
		book.StorageLocationID = update.StorageLocationID
	}
	if update.Status != nil {
		book.Status = *update.Status
	}
	cp := *book
	return &cp, nil
}

func (m *mockBookRepo) UpdateStatus(ctx context.Context, bookID, status string) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
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

func (m *mockBookRepo) Upsert(ctx context.Context, book *models.Book) (bool, error) {
	if existing, ok := m.books[book.BookID]; ok {
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
	_, ok := m.books[bookID]
	return ok, nil
}

func (m *mockBookRepo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	count := 0
	for _, b := range m.books {
		if b.CategoryID != nil && *b.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (m *mockBookRepo) Stats(ctx context.Context) (*models.BookStats, error) {
	stats := &models.BookStats{Total: len(m.books)}
	for _, b := range m.books {
		switch b.Status {
		case models.StatusAvailable:
			stats.Available++
		case models.StatusOnLoan:
			stats.OnLoan++
		}
	}
	return stats, nil
}

type mockTeacherRepo struct {
	teachers map[int64]*models.Teacher
	nextID   int64

	existsErr error
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[int64]*models.Teacher)}
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	m.nextID++
	teacher.TeacherID = m.nextID
	cp := *teacher
	m.teachers[teacher.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *teacher
	return &cp, nil
}

func (m *mockTeacherRepo) List(ctx context.Context, limit, offset int) ([]*models.Teacher, error) {
	var out []*models.Teacher
	for _, t := range m.teachers {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if update.Name != nil {
		teacher.Name = *update.Name
	}
	if update.Classroom != nil {
		teacher.Classroom = update.Classroom
	}
	cp := *teacher
	return &cp, nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.teachers[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.teachers, id)
	return nil
}

func (m *mockTeacherRepo) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.teachers[id]
	return ok, nil
}

type mockTransactionRepo struct {
	transactions []*models.Transaction
	nextID       int64

	createErr  error
	lastFilter models.TransactionFilter
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{}
}

func (m *mockTransactionRepo) Create(ctx context.Context, txn *models.Transaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	txn.TransactionID = m.nextID
	cp := *txn
	m.transactions = append(m.transactions, &cp)
	return nil
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	for _, txn := range m.transactions {
		if txn.TransactionID == id {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockTransactionRepo) List(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	m.lastFilter = filter
	out := make([]*models.Transaction, len(m.transactions))
	for i, txn := range m.transactions {
		cp := *txn
		out[i] = &cp
	}
	return out, nil
}

func (m *mockTransactionRepo) CountByBook(ctx context.Context, bookID string) (int, error) {
	count := 0
	for _, txn := range m.transactions {
		if txn.BookID == bookID {
			count++
		}
	}
	return count, nil
}

type mockCategoryRepo struct {
	categories map[int64]*models.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[int64]*models.Category)}
}

func (m *mockCategoryRepo) Upsert(ctx context.Context, name, label string) (int64, error) {
	id := int64(len(m.categories) + 1)
	m.categories[id] = &models.Category{CategoryID: id, CategoryName: name, CategoryLabel: label}
	return id, nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	cat, ok := m.categories[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cat, nil
}

func (m *mockCategoryRepo) GetByLabel(ctx context.Context, label string) (*models.Category, error) {
	for _, cat := range m.categories {
		if cat.CategoryLabel == label {
			return cat, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	var out []*models.Category
	for _, cat := range m.categories {
		out = append(out, cat)
	}
	return out, nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

type mockLocationRepo struct {
	locations map[int64]*models.Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{locations: make(map[int64]*models.Location)}
}

func (m *mockLocationRepo) Upsert(ctx context.Context, name string, categoryLabel *string) (int64, error) {
	id := int64(len(m.locations) + 1)
	m.locations[id] = &models.Location{LocationID: id, LocationName: name, CategoryLabel: categoryLabel}
	return id, nil
}

func (m *mockLocationRepo) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	loc, ok := m.locations[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return loc, nil
}

func (m *mockLocationRepo) GetByName(ctx context.Context, name string) (*models.Location, error) {
	for _, loc := range m.locations {
		if loc.LocationName == name {
			return loc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockLocationRepo) List(ctx context.Context) ([]*models.Location, error) {
	var out []*models.Location
	for _, loc := range m.locations {
		out = append(out, loc)
	}
	return out, nil
}

func (m *mockLocationRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.locations[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.locations, id)
	return nil
}
