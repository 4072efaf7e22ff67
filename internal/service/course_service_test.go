package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type courseRepoStub struct {
	courses    map[string]*models.Course
	assistants map[string][]string
	lastFilter models.CourseFilter
}

func newCourseRepoStub() *courseRepoStub {
	return &courseRepoStub{
		courses:    map[string]*models.Course{},
		assistants: map[string][]string{},
	}
}

func (r *courseRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error) {
	r.lastFilter = filter
	var out []models.CourseDetail
	for _, course := range r.courses {
		if filter.CoordinatorID != "" && course.CoordinatorID != filter.CoordinatorID {
			continue
		}
		if filter.Specialization != "" && (course.Specialization == nil || *course.Specialization != filter.Specialization) {
			continue
		}
		if filter.StudyYear != nil && (course.StudyYear == nil || *course.StudyYear != *filter.StudyYear) {
			continue
		}
		out = append(out, models.CourseDetail{Course: *course})
	}
	return out, nil
}

func (r *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (r *courseRepoStub) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.CourseDetail{Course: *course}, nil
}

func (r *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	if _, ok := r.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r *courseRepoStub) SetExaminationMethod(ctx context.Context, id string, method models.ExamKind) error {
	course, ok := r.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	course.ExaminationMethod = &method
	return nil
}

func (r *courseRepoStub) ListAssistantIDs(ctx context.Context, courseID string) ([]string, error) {
	return r.assistants[courseID], nil
}

func (r *courseRepoStub) ReplaceAssistants(ctx context.Context, courseID string, userIDs []string) error {
	r.assistants[courseID] = userIDs
	return nil
}

func newCourseFixture(t *testing.T) (*CourseService, *courseRepoStub) {
	t.Helper()
	leaderID := "leader-1"
	specialization := "C"
	yearTwo := 2
	yearThree := 3

	repo := newCourseRepoStub()
	repo.courses["course-1"] = &models.Course{
		ID: "course-1", Name: "Operating Systems", CoordinatorID: "coord-1",
		Specialization: &specialization, StudyYear: &yearThree,
	}
	repo.courses["course-2"] = &models.Course{
		ID: "course-2", Name: "Databases", CoordinatorID: "coord-2",
		Specialization: &specialization, StudyYear: &yearTwo,
	}

	users := userReaderStub{users: map[string]*models.User{
		"coord-1": {ID: "coord-1", Role: models.RoleCoordinator},
		"coord-2": {ID: "coord-2", Role: models.RoleCoordinator},
		"sec-1":   {ID: "sec-1", Role: models.RoleSecretary},
	}}
	groups := groupReaderStub{groups: map[string]*models.Group{
		"group-1": {ID: "group-1", Name: "3141", LeaderID: &leaderID, Specialization: &specialization, StudyYear: &yearThree},
	}}

	svc := NewCourseService(repo, users, groups, nil, zap.NewNop())
	return svc, repo
}

func TestCourseServiceListScopesCoordinator(t *testing.T) {
	svc, _ := newCourseFixture(t)

	listed, err := svc.List(context.Background(), coordinatorClaims(), dto.CourseListQuery{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "course-1", listed[0].ID)
}

func TestCourseServiceListScopesGroupLeaderToCohort(t *testing.T) {
	svc, repo := newCourseFixture(t)

	listed, err := svc.List(context.Background(), leaderClaims(), dto.CourseListQuery{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "course-1", listed[0].ID)
	require.NotNil(t, repo.lastFilter.StudyYear)
	assert.Equal(t, 3, *repo.lastFilter.StudyYear)

	// A leader without a group sees an empty list, not an error.
	orphan := &models.JWTClaims{UserID: "leader-9", Role: models.RoleGroupLeader}
	listed, err = svc.List(context.Background(), orphan, dto.CourseListQuery{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestCourseServiceSetExaminationMethodOwnCourseOnly(t *testing.T) {
	svc, _ := newCourseFixture(t)

	course, err := svc.SetExaminationMethod(context.Background(), coordinatorClaims(), "course-1", dto.SetExaminationMethodRequest{Method: "COLLOQUIUM"})
	require.NoError(t, err)
	require.NotNil(t, course.ExaminationMethod)
	assert.Equal(t, models.ExamKindColloquium, *course.ExaminationMethod)

	_, err = svc.SetExaminationMethod(context.Background(), coordinatorClaims(), "course-2", dto.SetExaminationMethodRequest{Method: "EXAM"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceSecretarySetsAnyMethod(t *testing.T) {
	svc, _ := newCourseFixture(t)

	course, err := svc.SetExaminationMethod(context.Background(), secretaryClaims(), "course-2", dto.SetExaminationMethodRequest{Method: "EXAM"})
	require.NoError(t, err)
	require.NotNil(t, course.ExaminationMethod)
	assert.Equal(t, models.ExamKindExam, *course.ExaminationMethod)
}

func TestCourseServiceUpdateValidatesCoordinator(t *testing.T) {
	svc, repo := newCourseFixture(t)

	name := "Advanced Operating Systems"
	coordinator := "coord-2"
	course, err := svc.Update(context.Background(), secretaryClaims(), "course-1", dto.UpdateCourseRequest{
		Name:          &name,
		CoordinatorID: &coordinator,
		AssistantIDs:  []string{"coord-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, name, course.Name)
	assert.Equal(t, "coord-2", course.CoordinatorID)
	assert.Equal(t, []string{"coord-1"}, repo.assistants["course-1"])

	secretary := "sec-1"
	_, err = svc.Update(context.Background(), secretaryClaims(), "course-1", dto.UpdateCourseRequest{CoordinatorID: &secretary})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), leaderClaims(), "course-1", dto.UpdateCourseRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
