package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type periodRepoStub struct {
	periods map[string]*models.ExaminationPeriod
}

func newPeriodRepoStub() *periodRepoStub {
	return &periodRepoStub{periods: map[string]*models.ExaminationPeriod{}}
}

func (r *periodRepoStub) List(ctx context.Context) ([]models.ExaminationPeriod, error) {
	var out []models.ExaminationPeriod
	for _, period := range r.periods {
		out = append(out, *period)
	}
	return out, nil
}

func (r *periodRepoStub) FindByKind(ctx context.Context, kind models.ExamKind) (*models.ExaminationPeriod, error) {
	for _, period := range r.periods {
		if period.Kind == kind {
			return period, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *periodRepoStub) FindByID(ctx context.Context, id string) (*models.ExaminationPeriod, error) {
	period, ok := r.periods[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return period, nil
}

func (r *periodRepoStub) Create(ctx context.Context, period *models.ExaminationPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	r.periods[period.ID] = period
	return nil
}

func (r *periodRepoStub) Update(ctx context.Context, period *models.ExaminationPeriod) error {
	if _, ok := r.periods[period.ID]; !ok {
		return sql.ErrNoRows
	}
	r.periods[period.ID] = period
	return nil
}

func (r *periodRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.periods[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.periods, id)
	return nil
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, 0, zap.NewNop(), false)
}

func newPeriodServiceForTest(t *testing.T) (*PeriodService, *periodRepoStub) {
	t.Helper()
	repo := newPeriodRepoStub()
	return NewPeriodService(repo, disabledCache(), nil, zap.NewNop()), repo
}

func TestPeriodServiceCreate(t *testing.T) {
	svc, repo := newPeriodServiceForTest(t)

	period, err := svc.Create(context.Background(), dto.PeriodRequest{
		Kind:  "EXAM",
		Start: "2025-06-01",
		End:   "2025-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExamKindExam, period.Kind)
	assert.Contains(t, repo.periods, period.ID)
}

func TestPeriodServiceCreateSecondPeriodSameKindFails(t *testing.T) {
	svc, _ := newPeriodServiceForTest(t)

	_, err := svc.Create(context.Background(), dto.PeriodRequest{Kind: "EXAM", Start: "2025-06-01", End: "2025-06-30"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.PeriodRequest{Kind: "EXAM", Start: "2025-07-01", End: "2025-07-15"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// A colloquium period can still be added alongside.
	_, err = svc.Create(context.Background(), dto.PeriodRequest{Kind: "COLLOQUIUM", Start: "2025-05-10", End: "2025-05-25"})
	require.NoError(t, err)
}

func TestPeriodServiceCreateValidatesBounds(t *testing.T) {
	svc, _ := newPeriodServiceForTest(t)

	tests := []struct {
		name string
		req  dto.PeriodRequest
	}{
		{"unknown kind", dto.PeriodRequest{Kind: "MIDTERM", Start: "2025-06-01", End: "2025-06-30"}},
		{"bad start", dto.PeriodRequest{Kind: "EXAM", Start: "01.06.2025", End: "2025-06-30"}},
		{"bad end", dto.PeriodRequest{Kind: "EXAM", Start: "2025-06-01", End: "30/06"}},
		{"start after end", dto.PeriodRequest{Kind: "EXAM", Start: "2025-06-30", End: "2025-06-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestPeriodServiceCreateAllowsSingleDayPeriod(t *testing.T) {
	svc, _ := newPeriodServiceForTest(t)

	period, err := svc.Create(context.Background(), dto.PeriodRequest{Kind: "EXAM", Start: "2025-06-15", End: "2025-06-15"})
	require.NoError(t, err)
	assert.Equal(t, period.Start, period.End)
}

func TestPeriodServiceUpdateKeepsKind(t *testing.T) {
	svc, _ := newPeriodServiceForTest(t)
	period, err := svc.Create(context.Background(), dto.PeriodRequest{Kind: "EXAM", Start: "2025-06-01", End: "2025-06-30"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), period.ID, dto.PeriodRequest{Kind: "EXAM", Start: "2025-06-05", End: "2025-06-25"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), updated.Start)

	_, err = svc.Update(context.Background(), period.ID, dto.PeriodRequest{Kind: "COLLOQUIUM", Start: "2025-06-05", End: "2025-06-25"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPeriodServiceDelete(t *testing.T) {
	svc, repo := newPeriodServiceForTest(t)
	period, err := svc.Create(context.Background(), dto.PeriodRequest{Kind: "EXAM", Start: "2025-06-01", End: "2025-06-30"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), period.ID))
	assert.NotContains(t, repo.periods, period.ID)

	err = svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
