package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exam-planner/backend/internal/dto"
	appErrors "github.com/exam-planner/backend/pkg/errors"
	"github.com/exam-planner/backend/pkg/response"
)

// importSizeLimit caps uploaded workbooks at 8 MB.
const importSizeLimit = 8 << 20

type importService interface {
	ImportUsers(ctx context.Context, actorID string, payload []byte) (*dto.ImportReport, error)
	TemplateWorkbook() ([]byte, error)
}

// ImportHandler exposes bulk user import endpoints.
type ImportHandler struct {
	service importService
}

// NewImportHandler constructs an import handler.
func NewImportHandler(svc importService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Upload godoc
// @Summary Import group leader accounts from a workbook
// @Description Accepts an XLSX upload and creates group leaders and their groups
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /imports/users [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if fileHeader.Size > importSizeLimit {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "workbook exceeds the upload size limit"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	payload, err := io.ReadAll(io.LimitReader(src, importSizeLimit))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
		return
	}

	report, err := h.service.ImportUsers(c.Request.Context(), claims.UserID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Template godoc
// @Summary Download the import template workbook
// @Tags Imports
// @Produce octet-stream
// @Success 200 {file} binary
// @Router /imports/users/template [get]
func (h *ImportHandler) Template(c *gin.Context) {
	payload, err := h.service.TemplateWorkbook()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="user_import_template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}
