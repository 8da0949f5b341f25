package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsdesk/opsdesk-api/internal/service"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/response"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

type exportService interface {
	Agenda(ctx context.Context, ownerID string, day timegrid.Day, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler streams rendered agenda documents.
type ExportHandler struct {
	exports exportService
	now     func() time.Time
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports, now: time.Now}
}

// Agenda godoc
// @Summary Download the agenda for a date
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param format query string true "csv or pdf"
// @Success 200 {file} byte
// @Router /export/agenda [get]
func (h *ExportHandler) Agenda(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	day := timegrid.Today(h.now())
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := timegrid.ParseDay(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		day = parsed
	}

	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.Query("format"))))
	result, err := h.exports.Agenda(c.Request.Context(), claims.UserID, day, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
