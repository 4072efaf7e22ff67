package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type periodServiceMock struct {
	periods []models.ExaminationPeriod
	period  *models.ExaminationPeriod
	cached  bool
	err     error
}

func (m *periodServiceMock) List(ctx context.Context) ([]models.ExaminationPeriod, bool, error) {
	return m.periods, m.cached, m.err
}

func (m *periodServiceMock) Create(ctx context.Context, req dto.PeriodRequest) (*models.ExaminationPeriod, error) {
	return m.period, m.err
}

func (m *periodServiceMock) Update(ctx context.Context, id string, req dto.PeriodRequest) (*models.ExaminationPeriod, error) {
	return m.period, m.err
}

func (m *periodServiceMock) Delete(ctx context.Context, id string) error {
	return m.err
}

func TestPeriodHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &periodServiceMock{
		periods: []models.ExaminationPeriod{{
			ID:    "period-1",
			Kind:  models.ExamKindExam,
			Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		}},
		cached: true,
	}
	handler := NewPeriodHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/periods", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPeriodHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &periodServiceMock{
		period: &models.ExaminationPeriod{ID: "period-1", Kind: models.ExamKindExam},
	}
	handler := NewPeriodHandler(mockSvc)

	payload, _ := json.Marshal(dto.PeriodRequest{Kind: "EXAM", Start: "2025-06-01", End: "2025-06-30"})
	c, w := newGinContext(http.MethodPost, "/periods", payload)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestPeriodHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPeriodHandler(&periodServiceMock{})

	c, w := newGinContext(http.MethodPost, "/periods", []byte("nope"))

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPeriodHandlerDeleteNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPeriodHandler(&periodServiceMock{err: appErrors.ErrNotFound})

	c, w := newGinContext(http.MethodDelete, "/periods/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Delete(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPeriodHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPeriodHandler(&periodServiceMock{})

	c, w := newGinContext(http.MethodDelete, "/periods/period-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "period-1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
}
