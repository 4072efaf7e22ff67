package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/models"
	"github.com/exam-planner/backend/pkg/export"
)

type importUserRepoStub struct {
	users     map[string]*models.User
	auditLogs []*models.AuditLog
}

func newImportUserRepoStub() *importUserRepoStub {
	return &importUserRepoStub{users: map[string]*models.User{}}
}

func (r *importUserRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (r *importUserRepoStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.Email] = user
	return nil
}

func (r *importUserRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.auditLogs = append(r.auditLogs, log)
	return nil
}

type importGroupRepoStub struct {
	groups map[string]*models.Group
}

func newImportGroupRepoStub() *importGroupRepoStub {
	return &importGroupRepoStub{groups: map[string]*models.Group{}}
}

func (r *importGroupRepoStub) FindByName(ctx context.Context, name string) (*models.Group, error) {
	group, ok := r.groups[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return group, nil
}

func (r *importGroupRepoStub) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	r.groups[group.Name] = group
	return nil
}

func (r *importGroupRepoStub) Update(ctx context.Context, group *models.Group) error {
	r.groups[group.Name] = group
	return nil
}

func importSheet(t *testing.T, rows []map[string]string) []byte {
	t.Helper()
	payload, err := export.NewXLSXExporter().Render(export.Dataset{
		Headers: requiredImportColumns,
		Rows:    rows,
	}, "Users")
	require.NoError(t, err)
	return payload
}

func TestImportServiceImportUsers(t *testing.T) {
	users := newImportUserRepoStub()
	groups := newImportGroupRepoStub()
	svc := NewImportService(users, groups, zap.NewNop())

	payload := importSheet(t, []map[string]string{
		{"name": "Ana Pop", "email": "ana.pop@student.usv.ro", "groupName": "3141", "specialization": "C", "year_of_study": "3"},
		{"name": "Ion Dan", "email": "ion.dan@student.usv.ro", "groupName": "3142", "specialization": "C", "year_of_study": "3"},
	})

	report, err := svc.ImportUsers(context.Background(), "secretary", payload)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Errors)

	leader, ok := users.users["ana.pop@student.usv.ro"]
	require.True(t, ok)
	assert.Equal(t, models.RoleGroupLeader, leader.Role)

	group, ok := groups.groups["3141"]
	require.True(t, ok)
	require.NotNil(t, group.LeaderID)
	assert.Equal(t, leader.ID, *group.LeaderID)
	require.NotNil(t, group.StudyYear)
	assert.Equal(t, 3, *group.StudyYear)

	require.Len(t, users.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserImport, users.auditLogs[0].Action)
}

func TestImportServiceSkipsExistingUsers(t *testing.T) {
	users := newImportUserRepoStub()
	users.users["ana.pop@student.usv.ro"] = &models.User{ID: "u1", Email: "ana.pop@student.usv.ro"}
	svc := NewImportService(users, newImportGroupRepoStub(), zap.NewNop())

	payload := importSheet(t, []map[string]string{
		{"name": "Ana Pop", "email": "ana.pop@student.usv.ro", "groupName": "3141", "specialization": "C", "year_of_study": "3"},
	})

	report, err := svc.ImportUsers(context.Background(), "secretary", payload)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Skipped)
}

func TestImportServiceReportsBadRows(t *testing.T) {
	svc := NewImportService(newImportUserRepoStub(), newImportGroupRepoStub(), zap.NewNop())

	payload := importSheet(t, []map[string]string{
		{"name": "", "email": "no.name@student.usv.ro", "groupName": "3141", "specialization": "C", "year_of_study": "3"},
		{"name": "Bad Email", "email": "not-an-email", "groupName": "3141", "specialization": "C", "year_of_study": "3"},
	})

	report, err := svc.ImportUsers(context.Background(), "secretary", payload)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	require.Len(t, report.Errors, 2)
	assert.True(t, strings.HasPrefix(report.Errors[0], "row 2:"))
}

func TestImportServiceRejectsMissingColumns(t *testing.T) {
	svc := NewImportService(newImportUserRepoStub(), newImportGroupRepoStub(), zap.NewNop())

	payload, err := export.NewXLSXExporter().Render(export.Dataset{
		Headers: []string{"name", "email"},
	}, "Users")
	require.NoError(t, err)

	_, err = svc.ImportUsers(context.Background(), "secretary", payload)
	require.Error(t, err)
}

func TestImportServiceRejectsNonWorkbook(t *testing.T) {
	svc := NewImportService(newImportUserRepoStub(), newImportGroupRepoStub(), zap.NewNop())

	_, err := svc.ImportUsers(context.Background(), "secretary", []byte("name,email\n"))
	require.Error(t, err)
}

func TestImportServiceTemplateWorkbook(t *testing.T) {
	svc := NewImportService(newImportUserRepoStub(), newImportGroupRepoStub(), zap.NewNop())

	payload, err := svc.TemplateWorkbook()
	require.NoError(t, err)

	rows, err := export.ParseSheet(payload)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, requiredImportColumns, rows[0])
}
