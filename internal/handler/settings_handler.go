package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/exam-planner/backend/pkg/errors"
	"github.com/exam-planner/backend/pkg/response"
)

type settingsService interface {
	ResetDatabase(ctx context.Context, actorID string) error
}

// SettingsHandler exposes administrative maintenance endpoints.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs a settings handler.
func NewSettingsHandler(svc settingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// ResetDatabase godoc
// @Summary Reset scheduling data
// @Description Wipes exams, courses, groups, rooms, periods and non-staff accounts
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /settings/reset [post]
func (h *SettingsHandler) ResetDatabase(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.ResetDatabase(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "database reset completed"}, nil)
}
