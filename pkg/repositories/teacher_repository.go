package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/models"
)

// TeacherRepository provides data access for teachers.
type TeacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	List(ctx context.Context, limit, offset int) ([]*models.Teacher, error)
	Update(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type teacherRepository struct {
	db *database.DB
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(db *database.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

var _ TeacherRepository = (*teacherRepository)(nil)

func (r *teacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	query := `
		INSERT INTO teachers (name, classroom)
		VALUES ($1, $2)
		RETURNING teacher_id, created_at`

	err := r.db.Querier(ctx).QueryRow(ctx, query, teacher.Name, teacher.Classroom).
		Scan(&teacher.TeacherID, &teacher.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}

	return nil
}

func (r *teacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	query := `
		SELECT teacher_id, name, classroom, created_at
		FROM teachers
		WHERE teacher_id = $1`

	row := r.db.Querier(ctx).QueryRow(ctx, query, id)
	return scanTeacher(row)
}

func (r *teacherRepository) List(ctx context.Context, limit, offset int) ([]*models.Teacher, error) {
	query := `
		SELECT teacher_id, name, classroom, created_at
		FROM teachers
		ORDER BY name, teacher_id`

	var args []any
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	var teachers []*models.Teacher
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teachers: %w", err)
	}

	return teachers, nil
}

func (r *teacherRepository) Update(ctx context.Context, id int64, update models.TeacherUpdate) (*models.Teacher, error) {
	sets := []string{}
	args := []any{id}

	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if update.Classroom != nil {
		args = append(args, *update.Classroom)
		sets = append(sets, fmt.Sprintf("classroom = $%d", len(args)))
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(`
		UPDATE teachers
		SET %s
		WHERE teacher_id = $1`, strings.Join(sets, ", "))

	result, err := r.db.Querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update teacher %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *teacherRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM teachers WHERE teacher_id = $1`

	result, err := r.db.Querier(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete teacher %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *teacherRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM teachers WHERE teacher_id = $1)`

	var exists bool
	err := r.db.Querier(ctx).QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check teacher %d: %w", id, err)
	}

	return exists, nil
}

func scanTeacher(row pgx.Row) (*models.Teacher, error) {
	var t models.Teacher
	err := row.Scan(&t.TeacherID, &t.Name, &t.Classroom, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan teacher: %w", err)
	}
	return &t, nil
}
