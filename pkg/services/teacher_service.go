package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/repositories"
)

// TeacherService manages the borrower roster.
type TeacherService interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	Get(ctx context.Context, id int64) (*models.Teacher, error)
	List(ctx context.Context, limit, offset int) ([]*models.Teacher, error)
	Update(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error)

	// Delete removes a teacher. Their circulation history goes with them;
	// book statuses are untouched, so books they still hold stay On Loan.
	Delete(ctx context.Context, id int64) error
}

type teacherService struct {
	teachers repositories.TeacherRepository
	logger   *zap.Logger
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(teachers repositories.TeacherRepository, logger *zap.Logger) TeacherService {
	return &teacherService{
		teachers: teachers,
		logger:   logger.Named("teacher-service"),
	}
}

var _ TeacherService = (*teacherService)(nil)

func (s *teacherService) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return err
	}
	s.logger.Info("Teacher created", zap.Int64("teacher_id", teacher.TeacherID))
	return nil
}

func (s *teacherService) Get(ctx context.Context, id int64) (*models.Teacher, error) {
	return s.teachers.GetByID(ctx, id)
}

func (s *teacherService) List(ctx context.Context, limit, offset int) ([]*models.Teacher, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.teachers.List(ctx, limit, offset)
}

func (s *teacherService) Update(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error) {
	if update.Name != nil && *update.Name == "" {
		return nil, fmt.Errorf("name cannot be blank")
	}
	return s.teachers.Update(ctx, id, update)
}

func (s *teacherService) Delete(ctx context.Context, id int64) error {
	if err := s.teachers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Teacher deleted", zap.Int64("teacher_id", id))
	return nil
}
