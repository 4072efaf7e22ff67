package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/exam-planner/backend/internal/models"
)

// CourseRepository provides database access for courses and their assistant
// rosters.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseDetailColumns = `c.id, c.name, c.study_year, c.specialization, c.examination_method, c.coordinator_id, c.created_at, c.updated_at,
	COALESCE(u.full_name, '') AS coordinator_name`

// List returns courses with coordinator names, restricted by the filter.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.CoordinatorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.coordinator_id = $%d", len(args)+1))
		args = append(args, filter.CoordinatorID)
	}
	if filter.Specialization != "" {
		conditions = append(conditions, fmt.Sprintf("c.specialization = $%d", len(args)+1))
		args = append(args, filter.Specialization)
	}
	if filter.StudyYear != nil {
		conditions = append(conditions, fmt.Sprintf("c.study_year = $%d", len(args)+1))
		args = append(args, *filter.StudyYear)
	}

	query := fmt.Sprintf(`SELECT %s FROM courses c LEFT JOIN users u ON u.id = c.coordinator_id`, courseDetailColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.name"

	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, study_year, specialization, examination_method, coordinator_id, created_at, updated_at FROM courses WHERE id = $1 LIMIT 1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// FindDetailByID returns a course with its coordinator name.
func (r *CourseRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses c LEFT JOIN users u ON u.id = c.coordinator_id WHERE c.id = $1 LIMIT 1`, courseDetailColumns)
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course detail by id: %w", err)
	}
	return &detail, nil
}

// FindByName returns a course matching a display name. Used by the
// timetable sync to match upstream records against existing rows.
func (r *CourseRepository) FindByName(ctx context.Context, name string) (*models.Course, error) {
	const query = `SELECT id, name, study_year, specialization, examination_method, coordinator_id, created_at, updated_at FROM courses WHERE LOWER(name) = LOWER($1) LIMIT 1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by name: %w", err)
	}
	return &course, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, name, study_year, specialization, examination_method, coordinator_id, created_at, updated_at) VALUES (:id, :name, :study_year, :specialization, :examination_method, :coordinator_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update persists mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, study_year = :study_year, specialization = :specialization, examination_method = :examination_method, coordinator_id = :coordinator_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// SetExaminationMethod records the examination method chosen for a course.
func (r *CourseRepository) SetExaminationMethod(ctx context.Context, id string, method models.ExamKind) error {
	const query = `UPDATE courses SET examination_method = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, method, time.Now().UTC()); err != nil {
		return fmt.Errorf("set examination method: %w", err)
	}
	return nil
}

// ListAssistantIDs returns the user ids assigned as assistants to a course.
func (r *CourseRepository) ListAssistantIDs(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT user_id FROM course_assistants WHERE course_id = $1 ORDER BY user_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course assistants: %w", err)
	}
	return ids, nil
}

// ReplaceAssistants swaps the assistant roster of a course inside a
// transaction.
func (r *CourseRepository) ReplaceAssistants(ctx context.Context, courseID string, userIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace assistants: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM course_assistants WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("clear course assistants: %w", err)
	}
	for _, userID := range userIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO course_assistants (course_id, user_id) VALUES ($1, $2)`, courseID, userID); err != nil {
			return fmt.Errorf("insert course assistant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace assistants: %w", err)
	}
	return nil
}
