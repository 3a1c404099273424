package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/auth"
	"github.com/libreshelf/librarian/pkg/models"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockBookService implements services.BookService for handler tests.
type mockBookService struct {
	book       *models.Book
	books      []*models.Book
	stats      *models.BookStats
	categories []*models.Category
	locations  []*models.Location

	lastFilter models.BookFilter
	lastUpdate models.BookUpdate

	createErr error
	getErr    error
	listErr   error
	updateErr error
	deleteErr error
	statsErr  error
}

func (m *mockBookService) Create(ctx context.Context, book *models.Book) error {
	if m.createErr != nil {
		return m.createErr
	}
	if book.Status == "" {
		book.Status = models.StatusAvailable
	}
	return nil
}

func (m *mockBookService) Get(ctx context.Context, bookID string) (*models.Book, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.book, nil
}

func (m *mockBookService) List(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.books, nil
}

func (m *mockBookService) Update(ctx context.Context, bookID string, update models.BookUpdate) (*models.Book, error) {
	m.lastUpdate = update
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.book, nil
}

func (m *mockBookService) Delete(ctx context.Context, bookID string) error {
	return m.deleteErr
}

func (m *mockBookService) Stats(ctx context.Context) (*models.BookStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

func (m *mockBookService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return m.categories, nil
}

func (m *mockBookService) ListLocations(ctx context.Context) ([]*models.Location, error) {
	return m.locations, nil
}

// mockTeacherService implements services.TeacherService for handler tests.
type mockTeacherService struct {
	teacher  *models.Teacher
	teachers []*models.Teacher

	createErr error
	getErr    error
	listErr   error
	updateErr error
	deleteErr error
}

func (m *mockTeacherService) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.createErr != nil {
		return m.createErr
	}
	teacher.TeacherID = 1
	return nil
}

func (m *mockTeacherService) Get(ctx context.Context, id int64) (*models.Teacher, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.teacher, nil
}

func (m *mockTeacherService) List(ctx context.Context, limit, offset int) ([]*models.Teacher, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.teachers, nil
}

func (m *mockTeacherService) Update(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.teacher, nil
}

func (m *mockTeacherService) Delete(ctx context.Context, id int64) error {
	return m.deleteErr
}

// mockCirculationService implements services.CirculationService for handler
// tests.
type mockCirculationService struct {
	txn          *models.Transaction
	transactions []*models.Transaction

	lastRequest *models.CirculationRequest
	lastFilter  models.TransactionFilter

	submitErr error
	getErr    error
	listErr   error
}

func (m *mockCirculationService) Submit(ctx context.Context, req *models.CirculationRequest) (*models.Transaction, error) {
	m.lastRequest = req
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.txn, nil
}

func (m *mockCirculationService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.txn, nil
}

func (m *mockCirculationService) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.transactions, nil
}

// mockLoadService implements load.Service for handler tests.
type mockLoadService struct {
	run  *models.LoadRun
	runs []*models.LoadRun

	lastSource  string
	lastProfile string
	lastContent []byte

	loadErr error
	getErr  error
	listErr error
}

func (m *mockLoadService) LoadFile(ctx context.Context, path, profileName string) (*models.LoadRun, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.run, nil
}

func (m *mockLoadService) LoadReader(ctx context.Context, r io.Reader, source, profileName string) (*models.LoadRun, error) {
	m.lastSource = source
	m.lastProfile = profileName
	m.lastContent, _ = io.ReadAll(r)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.run, nil
}

func (m *mockLoadService) GetRun(ctx context.Context, runID uuid.UUID) (*models.LoadRun, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.run == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.run, nil
}

func (m *mockLoadService) ListRuns(ctx context.Context, limit, offset int) ([]*models.LoadRun, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.runs, nil
}

// mockAuthService implements auth.AuthService for handler tests.
type mockAuthService struct {
	token string
	user  *models.User

	loginErr error
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if m.loginErr != nil {
		return "", nil, m.loginErr
	}
	return m.token, m.user, nil
}

func (m *mockAuthService) ValidateRequest(r *http.Request) (*auth.Claims, string, error) {
	return nil, "", nil
}
