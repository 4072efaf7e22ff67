package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exam-planner/backend/internal/models"
)

func TestExamFindByCourseAndGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_id", "group_id", "exam_date", "kind", "status", "room_id", "professor_id", "assistant_id", "start_time", "duration_minutes", "details", "created_at", "updated_at"}).
		AddRow("e1", "c1", "g1", now, string(models.ExamKindExam), string(models.ExamStatusPending), nil, nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE course_id = $1 AND group_id = $2 LIMIT 1")).
		WithArgs("c1", "g1").
		WillReturnRows(rows)

	exam, err := repo.FindByCourseAndGroup(context.Background(), "c1", "g1")
	require.NoError(t, err)
	assert.Equal(t, "e1", exam.ID)
	assert.Equal(t, models.ExamStatusPending, exam.Status)
	assert.Nil(t, exam.RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec("INSERT INTO exams").WillReturnResult(sqlmock.NewResult(1, 1))

	exam := &models.Exam{
		CourseID: "c1",
		GroupID:  "g1",
		ExamDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Kind:     models.ExamKindExam,
		Status:   models.ExamStatusPending,
	}
	err := repo.Create(context.Background(), exam)
	require.NoError(t, err)
	assert.NotEmpty(t, exam.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamListAcceptedOnDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	room := "r1"
	start := "10:00"
	duration := 120
	rows := sqlmock.NewRows([]string{"id", "course_id", "group_id", "exam_date", "kind", "status", "room_id", "professor_id", "assistant_id", "start_time", "duration_minutes", "details", "created_at", "updated_at"}).
		AddRow("e2", "c2", "g2", day, string(models.ExamKindExam), string(models.ExamStatusAccepted), room, nil, nil, start, duration, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE status = $1 AND exam_date::date = $2::date AND id <> $3")).
		WithArgs(models.ExamStatusAccepted, day, "e1").
		WillReturnRows(rows)

	exams, err := repo.ListAcceptedOnDate(context.Background(), day, "e1")
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, "e2", exams[0].ID)
	require.NotNil(t, exams[0].StartTime)
	assert.Equal(t, "10:00", *exams[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamListMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	rows := sqlmock.NewRows([]string{"group_id", "group_name", "leader_name", "course_name", "coordinator"}).
		AddRow("g1", "3141A", "Ana Pop", "Algorithms", "Dan Ionescu")
	mock.ExpectQuery("LEFT JOIN exams e ON").WillReturnRows(rows)

	missing, err := repo.ListMissing(context.Background())
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "Algorithms", missing[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
