package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exam-planner/backend/internal/dto"
	appErrors "github.com/exam-planner/backend/pkg/errors"
	"github.com/exam-planner/backend/pkg/response"
)

type syncService interface {
	Run(ctx context.Context, actorID string) (*dto.SyncReport, error)
}

// SyncHandler exposes the timetable synchronisation endpoint.
type SyncHandler struct {
	service syncService
}

// NewSyncHandler constructs a sync handler.
func NewSyncHandler(svc syncService) *SyncHandler {
	return &SyncHandler{service: svc}
}

// Run godoc
// @Summary Synchronise professors and courses
// @Description Pulls professors and their courses from the university timetable service
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sync [post]
func (h *SyncHandler) Run(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	report, err := h.service.Run(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
