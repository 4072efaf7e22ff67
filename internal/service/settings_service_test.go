package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type settingsRepoStub struct {
	resets int
	err    error
}

func (r *settingsRepoStub) ResetData(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	r.resets++
	return nil
}

type auditWriterStub struct {
	logs []*models.AuditLog
}

func (w *auditWriterStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	w.logs = append(w.logs, log)
	return nil
}

func TestSettingsServiceResetDatabase(t *testing.T) {
	repo := &settingsRepoStub{}
	audit := &auditWriterStub{}
	svc := NewSettingsService(repo, audit, disabledCache(), zap.NewNop())

	require.NoError(t, svc.ResetDatabase(context.Background(), "admin-1"))
	assert.Equal(t, 1, repo.resets)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionDatabaseReset, audit.logs[0].Action)
}

func TestSettingsServiceResetDatabaseFailure(t *testing.T) {
	repo := &settingsRepoStub{err: errors.New("tx aborted")}
	svc := NewSettingsService(repo, &auditWriterStub{}, disabledCache(), zap.NewNop())

	err := svc.ResetDatabase(context.Background(), "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
