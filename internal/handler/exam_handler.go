package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exam-planner/backend/internal/dto"
	"github.com/exam-planner/backend/internal/models"
	appErrors "github.com/exam-planner/backend/pkg/errors"
	"github.com/exam-planner/backend/pkg/response"
)

type examService interface {
	Propose(ctx context.Context, claims *models.JWTClaims, req dto.ProposeExamRequest) (*models.Exam, error)
	Review(ctx context.Context, claims *models.JWTClaims, examID string, req dto.ReviewExamRequest) (*models.Exam, error)
	Reschedule(ctx context.Context, claims *models.JWTClaims, examID string, req dto.RescheduleExamRequest) (*models.Exam, error)
	UpdateScheduled(ctx context.Context, claims *models.JWTClaims, examID string, req dto.UpdateExamRequest) (*models.Exam, error)
	Get(ctx context.Context, claims *models.JWTClaims, examID string) (*models.ExamDetail, error)
	List(ctx context.Context, claims *models.JWTClaims, query dto.ExamListQuery) ([]models.ExamDetail, error)
	ListMissing(ctx context.Context, claims *models.JWTClaims) ([]models.MissingExam, error)
}

// ExamHandler exposes exam scheduling endpoints.
type ExamHandler struct {
	service examService
}

// NewExamHandler constructs an exam handler.
func NewExamHandler(svc examService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// List godoc
// @Summary List exams visible to the caller
// @Tags Exams
// @Produce json
// @Param courseId query string false "Filter by course"
// @Param groupId query string false "Filter by group"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.ExamListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	exams, err := h.service.List(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ExamResponse, 0, len(exams))
	for _, exam := range exams {
		items = append(items, dto.NewExamResponse(exam))
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get exam by id
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewExamResponse(*detail), nil)
}

// Propose godoc
// @Summary Propose an exam date
// @Description Group leader proposes an exam date for one of the group's courses
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body dto.ProposeExamRequest true "Proposal payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Propose(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ProposeExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proposal payload"))
		return
	}

	exam, err := h.service.Propose(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Review godoc
// @Summary Review an exam proposal
// @Description Coordinator accepts or rejects a pending proposal
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.ReviewExamRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/review [put]
func (h *ExamHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReviewExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	exam, err := h.service.Review(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Reschedule godoc
// @Summary Reschedule a rejected exam
// @Description Group leader proposes a new date after a rejection
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.RescheduleExamRequest true "Reschedule payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/reschedule [put]
func (h *ExamHandler) Reschedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RescheduleExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reschedule payload"))
		return
	}

	exam, err := h.service.Reschedule(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Update godoc
// @Summary Edit a scheduled exam
// @Description Secretary adjusts room, time or date of an accepted exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.UpdateExamRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	exam, err := h.service.UpdateScheduled(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Missing godoc
// @Summary Courses without a scheduled exam
// @Description Lists group and course pairs that still lack an exam proposal
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exams/missing [get]
func (h *ExamHandler) Missing(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	missing, err := h.service.ListMissing(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, missing, nil)
}
