package service

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/models"
	"github.com/exam-planner/backend/pkg/config"
)

type doerStub struct {
	responses map[string]doerResponse
	err       error
}

type doerResponse struct {
	status int
	body   string
}

func (d *doerStub) Do(req *http.Request) (*http.Response, error) {
	if d.err != nil {
		return nil, d.err
	}
	resp, ok := d.responses[req.URL.String()]
	if !ok {
		resp = doerResponse{status: http.StatusNotFound, body: "not found"}
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(resp.body))),
	}, nil
}

type syncUserRepoStub struct {
	byTeacherID map[string]*models.User
	byEmail     map[string]*models.User
	auditLogs   []*models.AuditLog
}

func newSyncUserRepoStub() *syncUserRepoStub {
	return &syncUserRepoStub{byTeacherID: map[string]*models.User{}, byEmail: map[string]*models.User{}}
}

func (r *syncUserRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (r *syncUserRepoStub) FindByTeacherID(ctx context.Context, teacherID string) (*models.User, error) {
	user, ok := r.byTeacherID[teacherID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (r *syncUserRepoStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.TeacherID != nil {
		r.byTeacherID[*user.TeacherID] = user
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *syncUserRepoStub) Update(ctx context.Context, user *models.User) error {
	if user.TeacherID != nil {
		r.byTeacherID[*user.TeacherID] = user
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *syncUserRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.auditLogs = append(r.auditLogs, log)
	return nil
}

type syncCourseRepoStub struct {
	byName     map[string]*models.Course
	assistants map[string][]string
}

func newSyncCourseRepoStub() *syncCourseRepoStub {
	return &syncCourseRepoStub{byName: map[string]*models.Course{}, assistants: map[string][]string{}}
}

func (r *syncCourseRepoStub) FindByName(ctx context.Context, name string) (*models.Course, error) {
	course, ok := r.byName[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (r *syncCourseRepoStub) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	r.byName[course.Name] = course
	return nil
}

func (r *syncCourseRepoStub) Update(ctx context.Context, course *models.Course) error {
	r.byName[course.Name] = course
	return nil
}

func (r *syncCourseRepoStub) ListAssistantIDs(ctx context.Context, courseID string) ([]string, error) {
	return r.assistants[courseID], nil
}

func (r *syncCourseRepoStub) ReplaceAssistants(ctx context.Context, courseID string, userIDs []string) error {
	r.assistants[courseID] = userIDs
	return nil
}

type syncRoomRepoStub struct {
	byName map[string]*models.Room
}

func newSyncRoomRepoStub() *syncRoomRepoStub {
	return &syncRoomRepoStub{byName: map[string]*models.Room{}}
}

func (r *syncRoomRepoStub) FindByName(ctx context.Context, name string) (*models.Room, error) {
	room, ok := r.byName[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return room, nil
}

func (r *syncRoomRepoStub) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	r.byName[room.Name] = room
	return nil
}

const syncRosterPayload = `[
	{"id": 101, "firstName": "Maria", "lastName": "Ionescu", "emailAddress": "Maria.Ionescu@usv.ro", "facultyName": "FIESC"},
	{"id": 102, "firstName": "Dan", "lastName": "Popa", "emailAddress": "dan.popa@usv.ro", "facultyName": "FEFS"}
]`

const syncCoursesPayload = `[
	[
		{"id": 9001, "topicLongName": "Operating Systems", "typeShortName": "curs", "roomLongName": "C 201", "roomBuilding": "C"},
		{"id": 9002, "topicLongName": "Operating Systems", "typeShortName": "lab", "roomLongName": "C 010", "roomBuilding": "C"},
		{"id": 9003, "topicLongName": "", "typeShortName": "curs"}
	],
	[
		{"id": 9001, "studyYear": 3, "specializationShortName": "C", "facultyShortName": "FIESC"},
		{"id": 9002, "studyYear": 3, "specializationShortName": "C", "facultyShortName": "FIESC"}
	]
]`

func newSyncServiceForTest(t *testing.T) (*SyncService, *syncUserRepoStub, *syncCourseRepoStub, *syncRoomRepoStub, *doerStub) {
	t.Helper()
	client := &doerStub{responses: map[string]doerResponse{
		"http://timetable/professors":  {status: http.StatusOK, body: syncRosterPayload},
		"http://timetable/courses/101": {status: http.StatusOK, body: syncCoursesPayload},
	}}
	users := newSyncUserRepoStub()
	courses := newSyncCourseRepoStub()
	rooms := newSyncRoomRepoStub()
	cfg := config.SyncConfig{
		ProfessorsURL: "http://timetable/professors",
		CoursesURL:    "http://timetable/courses/%s",
		Faculty:       "FIESC",
	}
	svc := NewSyncService(client, users, courses, rooms, disabledCache(), cfg, zap.NewNop())
	return svc, users, courses, rooms, client
}

func TestSyncServiceRunCreatesProfessorsAndCourses(t *testing.T) {
	svc, users, courses, rooms, _ := newSyncServiceForTest(t)

	report, err := svc.Run(context.Background(), "secretary")
	require.NoError(t, err)
	assert.Equal(t, 1, report.ProfessorsCreated)
	assert.Equal(t, 1, report.CoursesCreated)
	assert.Empty(t, report.Warnings)

	prof, ok := users.byTeacherID["101"]
	require.True(t, ok)
	assert.Equal(t, models.RoleCoordinator, prof.Role)
	assert.Equal(t, "maria.ionescu@usv.ro", prof.Email)
	assert.Equal(t, "Maria Ionescu", prof.FullName)

	course, ok := courses.byName["Operating Systems"]
	require.True(t, ok)
	assert.Equal(t, prof.ID, course.CoordinatorID)
	require.NotNil(t, course.StudyYear)
	assert.Equal(t, 3, *course.StudyYear)

	// The lab activity adds the same professor as assistant and seeds the
	// lab room.
	assert.Contains(t, courses.assistants[course.ID], prof.ID)
	assert.Contains(t, rooms.byName, "C 201")
	assert.Contains(t, rooms.byName, "C 010")

	require.Len(t, users.auditLogs, 1)
	assert.Equal(t, models.AuditActionDataSync, users.auditLogs[0].Action)
}

func TestSyncServiceRunSkipsOtherFaculties(t *testing.T) {
	svc, users, _, _, _ := newSyncServiceForTest(t)

	_, err := svc.Run(context.Background(), "secretary")
	require.NoError(t, err)
	_, ok := users.byTeacherID["102"]
	assert.False(t, ok)
}

func TestSyncServiceRunIsIdempotentForProfessors(t *testing.T) {
	svc, users, _, _, _ := newSyncServiceForTest(t)

	_, err := svc.Run(context.Background(), "secretary")
	require.NoError(t, err)
	report, err := svc.Run(context.Background(), "secretary")
	require.NoError(t, err)
	assert.Equal(t, 0, report.ProfessorsCreated)
	assert.Equal(t, 0, report.ProfessorsUpdated)
	assert.Len(t, users.byTeacherID, 1)
}

func TestSyncServiceRunFailsWhenRosterUnavailable(t *testing.T) {
	svc, _, _, _, client := newSyncServiceForTest(t)
	client.responses["http://timetable/professors"] = doerResponse{status: http.StatusBadGateway, body: "upstream error"}

	_, err := svc.Run(context.Background(), "secretary")
	require.Error(t, err)
}

func TestSyncServiceRunCollectsCourseWarnings(t *testing.T) {
	svc, _, _, _, client := newSyncServiceForTest(t)
	client.responses["http://timetable/courses/101"] = doerResponse{status: http.StatusInternalServerError, body: "boom"}

	report, err := svc.Run(context.Background(), "secretary")
	require.NoError(t, err)
	require.NotEmpty(t, report.Warnings)
	assert.True(t, strings.Contains(report.Warnings[0], "courses for"))
}

func TestSyncServiceRunRequiresConfiguration(t *testing.T) {
	svc := NewSyncService(&doerStub{}, newSyncUserRepoStub(), newSyncCourseRepoStub(), newSyncRoomRepoStub(), disabledCache(), config.SyncConfig{}, zap.NewNop())

	_, err := svc.Run(context.Background(), "secretary")
	require.Error(t, err)
}
