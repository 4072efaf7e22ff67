package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

func validAssignment() Assignment {
	assistant := "assistant-1"
	return Assignment{
		RoomID:          "room-1",
		AssistantID:     &assistant,
		StartTime:       "10:00",
		DurationMinutes: 120,
	}
}

func TestReviewAcceptPendingExam(t *testing.T) {
	assignment := validAssignment()

	tr, err := Review(models.RoleCoordinator, models.ExamStatusPending, DecisionAccept, &assignment)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusPending, tr.From)
	assert.Equal(t, models.ExamStatusAccepted, tr.To)
	require.NotNil(t, tr.Assignment)
	assert.Equal(t, "room-1", tr.Assignment.RoomID)
}

func TestReviewRejectDiscardsAssignment(t *testing.T) {
	tr, err := Review(models.RoleCoordinator, models.ExamStatusPending, DecisionReject, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusRejected, tr.To)
	assert.Nil(t, tr.Assignment)
}

func TestReviewRequiresCoordinatorRole(t *testing.T) {
	assignment := validAssignment()

	for _, role := range []models.UserRole{models.RoleGroupLeader, models.RoleSecretary, models.RoleAdmin} {
		_, err := Review(role, models.ExamStatusPending, DecisionAccept, &assignment)
		require.Error(t, err, "role %s", role)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	}
}

func TestReviewNonPendingExamFails(t *testing.T) {
	assignment := validAssignment()

	for _, status := range []models.ExamStatus{models.ExamStatusAccepted, models.ExamStatusRejected} {
		_, err := Review(models.RoleCoordinator, status, DecisionAccept, &assignment)
		require.Error(t, err, "status %s", status)
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	}
}

func TestReviewAcceptValidatesAssignment(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Assignment)
	}{
		{"missing room", func(a *Assignment) { a.RoomID = "" }},
		{"missing assistant", func(a *Assignment) { a.AssistantID = nil }},
		{"empty assistant", func(a *Assignment) { empty := ""; a.AssistantID = &empty }},
		{"missing start time", func(a *Assignment) { a.StartTime = "" }},
		{"malformed start time", func(a *Assignment) { a.StartTime = "25:99" }},
		{"duration too short", func(a *Assignment) { a.DurationMinutes = 30 }},
		{"duration too long", func(a *Assignment) { a.DurationMinutes = 301 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignment := validAssignment()
			tt.mutate(&assignment)

			_, err := Review(models.RoleCoordinator, models.ExamStatusPending, DecisionAccept, &assignment)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestReviewAcceptDurationBounds(t *testing.T) {
	for _, minutes := range []int{60, 90, 300} {
		assignment := validAssignment()
		assignment.DurationMinutes = minutes

		_, err := Review(models.RoleCoordinator, models.ExamStatusPending, DecisionAccept, &assignment)
		assert.NoError(t, err, "duration %d", minutes)
	}
}

func TestReviewAcceptWithoutAssignment(t *testing.T) {
	_, err := Review(models.RoleCoordinator, models.ExamStatusPending, DecisionAccept, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReviewUnknownDecision(t *testing.T) {
	_, err := Review(models.RoleCoordinator, models.ExamStatusPending, Decision("MAYBE"), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRescheduleRejectedExam(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

	tr, err := Reschedule(models.RoleGroupLeader, models.ExamStatusRejected, date)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusPending, tr.To)
	assert.True(t, tr.ClearSchedule)
	require.NotNil(t, tr.NewDate)
	assert.Equal(t, date, *tr.NewDate)
}

func TestRescheduleRequiresGroupLeader(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

	_, err := Reschedule(models.RoleCoordinator, models.ExamStatusRejected, date)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRescheduleNonRejectedExamFails(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

	for _, status := range []models.ExamStatus{models.ExamStatusPending, models.ExamStatusAccepted} {
		_, err := Reschedule(models.RoleGroupLeader, status, date)
		require.Error(t, err, "status %s", status)
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	}
}

func TestProposeRejectRescheduleRoundTrip(t *testing.T) {
	assignment := validAssignment()

	rejected, err := Review(models.RoleCoordinator, models.ExamStatusPending, DecisionReject, nil)
	require.NoError(t, err)
	require.Equal(t, models.ExamStatusRejected, rejected.To)

	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	pending, err := Reschedule(models.RoleGroupLeader, rejected.To, date)
	require.NoError(t, err)
	require.Equal(t, models.ExamStatusPending, pending.To)

	accepted, err := Review(models.RoleCoordinator, pending.To, DecisionAccept, &assignment)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusAccepted, accepted.To)
}

func TestEditScheduledExam(t *testing.T) {
	assignment := validAssignment()

	tr, err := EditScheduled(models.RoleSecretary, models.ExamStatusAccepted, assignment)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusAccepted, tr.From)
	assert.Equal(t, models.ExamStatusAccepted, tr.To)
	require.NotNil(t, tr.Assignment)
}

func TestEditScheduledRequiresSecretary(t *testing.T) {
	_, err := EditScheduled(models.RoleCoordinator, models.ExamStatusAccepted, validAssignment())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEditScheduledNonAcceptedExamFails(t *testing.T) {
	for _, status := range []models.ExamStatus{models.ExamStatusPending, models.ExamStatusRejected} {
		_, err := EditScheduled(models.RoleSecretary, status, validAssignment())
		require.Error(t, err, "status %s", status)
		assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	}
}
