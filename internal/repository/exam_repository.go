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

// ExamRepository provides database access for exam proposals.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new instance of ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

const examColumns = `id, course_id, group_id, exam_date, kind, status, room_id, professor_id, assistant_id, start_time, duration_minutes, details, created_at, updated_at`

const examDetailColumns = `e.id, e.course_id, e.group_id, e.exam_date, e.kind, e.status, e.room_id, e.professor_id, e.assistant_id, e.start_time, e.duration_minutes, e.details, e.created_at, e.updated_at,
	c.name AS course_name,
	g.name AS group_name,
	r.name AS room_name,
	r.building AS room_building,
	p.full_name AS professor_name,
	a.full_name AS assistant_name`

const examDetailJoins = `FROM exams e
	JOIN courses c ON c.id = e.course_id
	JOIN groups g ON g.id = e.group_id
	LEFT JOIN rooms r ON r.id = e.room_id
	LEFT JOIN users p ON p.id = e.professor_id
	LEFT JOIN users a ON a.id = e.assistant_id`

// FindByID returns an exam by identifier.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams WHERE id = $1 LIMIT 1`, examColumns)
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exam by id: %w", err)
	}
	return &exam, nil
}

// FindDetailByID returns an exam with joined display names.
func (r *ExamRepository) FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE e.id = $1 LIMIT 1`, examDetailColumns, examDetailJoins)
	var detail models.ExamDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exam detail by id: %w", err)
	}
	return &detail, nil
}

// FindByCourseAndGroup returns the single exam for a (course, group) pair.
func (r *ExamRepository) FindByCourseAndGroup(ctx context.Context, courseID, groupID string) (*models.Exam, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams WHERE course_id = $1 AND group_id = $2 LIMIT 1`, examColumns)
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, courseID, groupID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exam by course and group: %w", err)
	}
	return &exam, nil
}

// List returns exams with joined names, restricted by the filter.
// CoordinatorID limits results to exams for the coordinator's courses.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.GroupID != "" {
		conditions = append(conditions, fmt.Sprintf("e.group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.CoordinatorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.coordinator_id = $%d", len(args)+1))
		args = append(args, filter.CoordinatorID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	query := fmt.Sprintf(`SELECT %s %s`, examDetailColumns, examDetailJoins)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.exam_date, e.start_time NULLS LAST, c.name"

	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// ListAcceptedOnDate returns accepted exams scheduled on the given day,
// excluding the identified exam. Used for overlap detection when a
// coordinator accepts or the secretary edits a proposal.
func (r *ExamRepository) ListAcceptedOnDate(ctx context.Context, day time.Time, excludeID string) ([]models.Exam, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams WHERE status = $1 AND exam_date::date = $2::date AND id <> $3`, examColumns)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, models.ExamStatusAccepted, day, excludeID); err != nil {
		return nil, fmt.Errorf("list accepted exams on date: %w", err)
	}
	return exams, nil
}

// Create inserts a new exam proposal.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now

	const query = `INSERT INTO exams (id, course_id, group_id, exam_date, kind, status, room_id, professor_id, assistant_id, start_time, duration_minutes, details, created_at, updated_at) VALUES (:id, :course_id, :group_id, :exam_date, :kind, :status, :room_id, :professor_id, :assistant_id, :start_time, :duration_minutes, :details, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update persists the mutable fields of an exam.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET exam_date = :exam_date, status = :status, room_id = :room_id, professor_id = :professor_id, assistant_id = :assistant_id, start_time = :start_time, duration_minutes = :duration_minutes, details = :details, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// Delete removes an exam proposal.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM exams WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}

// ListMissing returns (group, course) pairs that share a specialization and
// study year but have no exam proposal yet.
func (r *ExamRepository) ListMissing(ctx context.Context) ([]models.MissingExam, error) {
	const query = `SELECT
		g.id AS group_id,
		g.name AS group_name,
		COALESCE(l.full_name, '') AS leader_name,
		c.name AS course_name,
		COALESCE(u.full_name, '') AS coordinator
	FROM groups g
	JOIN courses c
		ON c.specialization = g.specialization
		AND c.study_year = g.study_year
	LEFT JOIN users l ON l.id = g.leader_id
	LEFT JOIN users u ON u.id = c.coordinator_id
	LEFT JOIN exams e ON e.group_id = g.id AND e.course_id = c.id
	WHERE e.id IS NULL
	ORDER BY g.name, c.name`

	var missing []models.MissingExam
	if err := r.db.SelectContext(ctx, &missing, query); err != nil {
		return nil, fmt.Errorf("list missing exams: %w", err)
	}
	return missing, nil
}
