package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opsdesk/opsdesk-api/internal/models"
	"github.com/opsdesk/opsdesk-api/internal/service"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/response"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

type eventService interface {
	CreateEvent(ctx context.Context, ownerID string, req service.CreateEventRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, ownerID, id string, req service.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, ownerID, id string) error
	GetEvent(ctx context.Context, ownerID, id string) (*models.Event, error)
	EventsOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Event, error)
}

// EventHandler wires the schedule store's event operations to HTTP endpoints.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs the handler.
func NewEventHandler(service eventService) *EventHandler {
	return &EventHandler{service: service}
}

// List godoc
// @Summary List events on a date
// @Tags Events
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	day, err := timegrid.ParseDay(strings.TrimSpace(c.Query("date")))
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.service.EventsOn(c.Request.Context(), claims.UserID, day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Get godoc
// @Summary Get a single event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	event, err := h.service.GetEvent(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload"))
		return
	}
	event, err := h.service.CreateEvent(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Patch an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.UpdateEventRequest true "Partial event patch"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event patch"))
		return
	}
	event, err := h.service.UpdateEvent(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.DeleteEvent(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
