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

type pipelineService interface {
	Board(ctx context.Context, ownerID string) ([]service.BoardColumn, error)
	Transition(ctx context.Context, ownerID, eventID string, target models.ContentStatus) (*models.Event, error)
}

// ContentHandler wires the content pipeline to HTTP endpoints.
type ContentHandler struct {
	pipeline pipelineService
}

// NewContentHandler constructs the handler.
func NewContentHandler(pipeline pipelineService) *ContentHandler {
	return &ContentHandler{pipeline: pipeline}
}

// Board godoc
// @Summary Content items grouped by workflow status
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /content/board [get]
func (h *ContentHandler) Board(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	columns, err := h.pipeline.Board(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, columns, nil)
}

// Transition godoc
// @Summary Move a content item to another workflow status
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.TransitionRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /content/{id}/transition [post]
func (h *ContentHandler) Transition(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload"))
		return
	}
	event, err := h.pipeline.Transition(c.Request.Context(), claims.UserID, c.Param("id"), models.ContentStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}
