package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SettingsRepository performs maintenance operations that span tables.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// ResetData wipes planning data ahead of a new academic session. Only the
// ADMIN and SECRETARY accounts survive the reset; everything else goes, in
// one transaction.
func (r *SettingsRepository) ResetData(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`DELETE FROM exams`,
		`DELETE FROM export_jobs`,
		`DELETE FROM course_assistants`,
		`DELETE FROM courses`,
		`DELETE FROM groups`,
		`DELETE FROM rooms`,
		`DELETE FROM examination_periods`,
		`DELETE FROM refresh_tokens WHERE user_id IN (SELECT id FROM users WHERE role NOT IN ('ADMIN', 'SECRETARY'))`,
		`DELETE FROM users WHERE role NOT IN ('ADMIN', 'SECRETARY')`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}
