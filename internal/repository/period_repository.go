package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/exam-planner/backend/internal/models"
)

// PeriodRepository provides database access for examination periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new instance of PeriodRepository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

const periodColumns = `id, kind, period_start, period_end, created_at, updated_at`

// List returns all examination periods ordered by kind.
func (r *PeriodRepository) List(ctx context.Context) ([]models.ExaminationPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM examination_periods ORDER BY kind`, periodColumns)
	var periods []models.ExaminationPeriod
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list examination periods: %w", err)
	}
	return periods, nil
}

// FindByKind returns the period configured for an examination kind.
func (r *PeriodRepository) FindByKind(ctx context.Context, kind models.ExamKind) (*models.ExaminationPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM examination_periods WHERE kind = $1 LIMIT 1`, periodColumns)
	var period models.ExaminationPeriod
	if err := r.db.GetContext(ctx, &period, query, kind); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find examination period by kind: %w", err)
	}
	return &period, nil
}

// FindByID returns a period by identifier.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.ExaminationPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM examination_periods WHERE id = $1 LIMIT 1`, periodColumns)
	var period models.ExaminationPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find examination period by id: %w", err)
	}
	return &period, nil
}

// Create inserts a new examination period.
func (r *PeriodRepository) Create(ctx context.Context, period *models.ExaminationPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now

	const query = `INSERT INTO examination_periods (id, kind, period_start, period_end, created_at, updated_at) VALUES (:id, :kind, :period_start, :period_end, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create examination period: %w", err)
	}
	return nil
}

// Update persists new bounds for an existing period.
func (r *PeriodRepository) Update(ctx context.Context, period *models.ExaminationPeriod) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `UPDATE examination_periods SET period_start = :period_start, period_end = :period_end, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("update examination period: %w", err)
	}
	return nil
}

// Delete removes an examination period.
func (r *PeriodRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM examination_periods WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete examination period: %w", err)
	}
	return nil
}
