package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsdesk/opsdesk-api/internal/models"
	"github.com/opsdesk/opsdesk-api/internal/service"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/response"
)

type bridgeService interface {
	Connect(ctx context.Context, ownerID string, req service.ConnectRequest) (*models.CalendarIntegration, error)
	Disconnect(ctx context.Context, ownerID string) error
	Sync(ctx context.Context, ownerID string) (*models.SyncResult, error)
	Status(ctx context.Context, ownerID string) (*models.CalendarIntegration, bool, error)
}

// IntegrationHandler wires the calendar bridge to HTTP endpoints.
type IntegrationHandler struct {
	bridge bridgeService
}

// NewIntegrationHandler constructs the handler.
func NewIntegrationHandler(bridge bridgeService) *IntegrationHandler {
	return &IntegrationHandler{bridge: bridge}
}

// Connect godoc
// @Summary Connect an external calendar feed
// @Tags Integrations
// @Accept json
// @Produce json
// @Param payload body service.ConnectRequest true "Feed parameters"
// @Success 201 {object} response.Envelope
// @Router /integrations/calendar/connect [post]
func (h *IntegrationHandler) Connect(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid connect payload"))
		return
	}
	integration, err := h.bridge.Connect(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, integration)
}

// Sync godoc
// @Summary Trigger a sync pass
// @Tags Integrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /integrations/calendar/sync [post]
func (h *IntegrationHandler) Sync(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.bridge.Sync(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Skipped {
		status = http.StatusAccepted
	}
	response.JSON(c, status, result, nil)
}

// Status godoc
// @Summary Connection state of the calendar bridge
// @Tags Integrations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /integrations/calendar [get]
func (h *IntegrationHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	integration, syncing, err := h.bridge.Status(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"integration": integration, "syncing": syncing}, nil)
}

// Disconnect godoc
// @Summary Disconnect the calendar bridge
// @Tags Integrations
// @Success 204
// @Router /integrations/calendar [delete]
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.bridge.Disconnect(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
