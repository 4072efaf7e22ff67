package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exam-planner/backend/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestPeriodFindByKind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "kind", "period_start", "period_end", "created_at", "updated_at"}).
		AddRow("p1", string(models.ExamKindExam), now, now.AddDate(0, 0, 14), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, period_start, period_end, created_at, updated_at FROM examination_periods WHERE kind = $1 LIMIT 1")).
		WithArgs(models.ExamKindExam).
		WillReturnRows(rows)

	period, err := repo.FindByKind(context.Background(), models.ExamKindExam)
	require.NoError(t, err)
	assert.Equal(t, "p1", period.ID)
	assert.Equal(t, models.ExamKindExam, period.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	mock.ExpectExec("INSERT INTO examination_periods").WillReturnResult(sqlmock.NewResult(1, 1))

	period := &models.ExaminationPeriod{
		Kind:  models.ExamKindColloquium,
		Start: time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
	}
	err := repo.Create(context.Background(), period)
	require.NoError(t, err)
	assert.NotEmpty(t, period.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "kind", "period_start", "period_end", "created_at", "updated_at"}).
		AddRow("p1", string(models.ExamKindColloquium), now, now, now, now).
		AddRow("p2", string(models.ExamKindExam), now, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, period_start, period_end, created_at, updated_at FROM examination_periods ORDER BY kind")).
		WillReturnRows(rows)

	periods, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, periods, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPeriodRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM examination_periods WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "p1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
