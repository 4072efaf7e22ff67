package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/middleware"
	"github.com/exam-planner/backend/internal/models"
	"github.com/exam-planner/backend/internal/service"
)

type exportJobServiceMock struct {
	createResp  *dto.ExportJobResponse
	createErr   error
	statusResp  *dto.ExportStatusResponse
	statusErr   error
	download    *service.ExportDownload
	downloadErr error
}

func (m *exportJobServiceMock) CreateJob(ctx context.Context, req dto.ExportRequest, actorID string) (*dto.ExportJobResponse, error) {
	return m.createResp, m.createErr
}

func (m *exportJobServiceMock) GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *exportJobServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

type timetableRendererMock struct {
	filename string
	payload  []byte
	err      error
}

func (m *timetableRendererMock) RenderTimetable(ctx context.Context, format models.ExportFormat, status models.ExamStatus) (string, []byte, error) {
	return m.filename, m.payload, m.err
}

func secretaryTestClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "sec-1", Role: models.RoleSecretary}
}

func TestExportHandlerCreateExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{
		createResp: &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued, Progress: 0},
	}
	handler := NewExportHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.ExportRequest{Format: models.ExportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/exports", payload)
	c.Set(middleware.ContextUserKey, secretaryTestClaims())

	handler.CreateExport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestExportHandlerExportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportJobServiceMock{
		statusResp: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100},
	}
	handler := NewExportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/exports/status/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, secretaryTestClaims())

	handler.ExportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestExportHandlerDownloadExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp("", "timetable*.csv")
	require.NoError(t, err)
	defer os.Remove(file.Name())
	_, _ = file.WriteString("Date,Course\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportJobServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "timetable_all.csv",
			Format:    models.ExportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewExportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/exports/download/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.DownloadExport(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "timetable_all.csv")
}

func TestExportHandlerDownloadTimetable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	renderer := &timetableRendererMock{filename: "timetable_all.xlsx", payload: []byte("workbook")}
	handler := NewExportHandler(&exportJobServiceMock{}, renderer)

	c, w := newGinContext(http.MethodGet, "/exports/exam-table", nil)
	c.Set(middleware.ContextUserKey, secretaryTestClaims())

	handler.DownloadTimetable(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "workbook", w.Body.String())
}

func TestExportHandlerDownloadTimetableBadFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportJobServiceMock{}, &timetableRendererMock{})

	c, w := newGinContext(http.MethodGet, "/exports/exam-table?format=docx", nil)
	c.Set(middleware.ContextUserKey, secretaryTestClaims())

	handler.DownloadTimetable(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
