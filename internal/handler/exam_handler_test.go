package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/middleware"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
)

type examServiceMock struct {
	exam    *models.Exam
	detail  *models.ExamDetail
	details []models.ExamDetail
	missing []models.MissingExam
	err     error
}

func (m *examServiceMock) Propose(ctx context.Context, claims *models.JWTClaims, req dto.ProposeExamRequest) (*models.Exam, error) {
	return m.exam, m.err
}

func (m *examServiceMock) Review(ctx context.Context, claims *models.JWTClaims, examID string, req dto.ReviewExamRequest) (*models.Exam, error) {
	return m.exam, m.err
}

func (m *examServiceMock) Reschedule(ctx context.Context, claims *models.JWTClaims, examID string, req dto.RescheduleExamRequest) (*models.Exam, error) {
	return m.exam, m.err
}

func (m *examServiceMock) UpdateScheduled(ctx context.Context, claims *models.JWTClaims, examID string, req dto.UpdateExamRequest) (*models.Exam, error) {
	return m.exam, m.err
}

func (m *examServiceMock) Get(ctx context.Context, claims *models.JWTClaims, examID string) (*models.ExamDetail, error) {
	return m.detail, m.err
}

func (m *examServiceMock) List(ctx context.Context, claims *models.JWTClaims, query dto.ExamListQuery) ([]models.ExamDetail, error) {
	return m.details, m.err
}

func (m *examServiceMock) ListMissing(ctx context.Context, claims *models.JWTClaims) ([]models.MissingExam, error) {
	return m.missing, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func leaderTestClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "leader-1", Role: models.RoleGroupLeader}
}

func TestExamHandlerProposeCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &examServiceMock{
		exam: &models.Exam{ID: "exam-1", CourseID: "course-1", GroupID: "group-1", Status: models.ExamStatusPending},
	}
	handler := NewExamHandler(mockSvc)

	payload, _ := json.Marshal(dto.ProposeExamRequest{CourseID: "course-1", Date: "2025-06-10"})
	c, w := newGinContext(http.MethodPost, "/exams", payload)
	c.Set(middleware.ContextUserKey, leaderTestClaims())

	handler.Propose(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestExamHandlerProposeInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExamHandler(&examServiceMock{})

	c, w := newGinContext(http.MethodPost, "/exams", []byte("{not json"))
	c.Set(middleware.ContextUserKey, leaderTestClaims())

	handler.Propose(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExamHandlerListRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExamHandler(&examServiceMock{})

	c, w := newGinContext(http.MethodGet, "/exams", nil)

	handler.List(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExamHandlerListMapsDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &examServiceMock{
		details: []models.ExamDetail{{
			Exam: models.Exam{
				ID:       "exam-1",
				CourseID: "course-1",
				GroupID:  "group-1",
				ExamDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				Kind:     models.ExamKindExam,
				Status:   models.ExamStatusAccepted,
			},
			CourseName: "Operating Systems",
			GroupName:  "3141",
		}},
	}
	handler := NewExamHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exams", nil)
	c.Set(middleware.ContextUserKey, leaderTestClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []dto.ExamResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "2025-06-10", envelope.Data[0].Date)
	require.Equal(t, "Operating Systems", envelope.Data[0].CourseName)
}

func TestExamHandlerReviewForwardsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &examServiceMock{err: appErrors.ErrForbidden}
	handler := NewExamHandler(mockSvc)

	payload, _ := json.Marshal(dto.ReviewExamRequest{Decision: "REJECTED"})
	c, w := newGinContext(http.MethodPut, "/exams/exam-1/review", payload)
	c.Params = gin.Params{{Key: "id", Value: "exam-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coord-2", Role: models.RoleCoordinator})

	handler.Review(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestExamHandlerMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &examServiceMock{
		missing: []models.MissingExam{{GroupName: "3141", CourseName: "Operating Systems"}},
	}
	handler := NewExamHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exams/missing", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "sec-1", Role: models.RoleSecretary})

	handler.Missing(c)
	require.Equal(t, http.StatusOK, w.Code)
}
