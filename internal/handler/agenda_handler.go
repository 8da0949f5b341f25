package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/response"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

type agendaService interface {
	AgendaFor(ctx context.Context, ownerID string, day timegrid.Day, includeCompleted bool) ([]models.AgendaEntry, error)
	OverdueTasks(ctx context.Context, ownerID string, day timegrid.Day) ([]models.OverdueTask, error)
	Stats(ctx context.Context, ownerID string) (*models.CalendarStats, error)
}

type autoSyncer interface {
	EnsureAutoSync(ctx context.Context, ownerID string)
}

// AgendaHandler serves the merged day view and its aggregates.
type AgendaHandler struct {
	service agendaService
	bridge  autoSyncer
	now     func() time.Time
}

// NewAgendaHandler constructs the handler. The bridge may be nil when the
// calendar integration is disabled.
func NewAgendaHandler(service agendaService, bridge autoSyncer) *AgendaHandler {
	return &AgendaHandler{service: service, bridge: bridge, now: time.Now}
}

func (h *AgendaHandler) dayParam(c *gin.Context) (timegrid.Day, error) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return timegrid.Today(h.now()), nil
	}
	return timegrid.ParseDay(raw)
}

// Agenda godoc
// @Summary Merged agenda for a date
// @Tags Agenda
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param include_completed query bool false "Include completed tasks"
// @Success 200 {object} response.Envelope
// @Router /agenda [get]
func (h *AgendaHandler) Agenda(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	day, err := h.dayParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	includeCompleted := c.Query("include_completed") == "true"

	if h.bridge != nil {
		go h.bridge.EnsureAutoSync(context.WithoutCancel(c.Request.Context()), claims.UserID)
	}

	entries, err := h.service.AgendaFor(c.Request.Context(), claims.UserID, day, includeCompleted)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Overdue godoc
// @Summary Overdue tasks relative to a date
// @Tags Agenda
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /agenda/overdue [get]
func (h *AgendaHandler) Overdue(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	day, err := h.dayParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	overdue, err := h.service.OverdueTasks(c.Request.Context(), claims.UserID, day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overdue, nil)
}

// Stats godoc
// @Summary Aggregate task statistics
// @Tags Agenda
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /agenda/stats [get]
func (h *AgendaHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
