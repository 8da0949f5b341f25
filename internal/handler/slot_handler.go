package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsdesk/opsdesk-api/internal/service"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/response"
)

type slotService interface {
	Draft(req service.SlotDraftRequest) (*service.SlotDraft, error)
}

// SlotHandler turns grid slot clicks into create-form drafts.
type SlotHandler struct {
	slots slotService
}

// NewSlotHandler constructs the handler.
func NewSlotHandler(slots slotService) *SlotHandler {
	return &SlotHandler{slots: slots}
}

// Draft godoc
// @Summary Pre-filled form payload for a clicked grid slot
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body service.SlotDraftRequest true "Slot coordinates and kind"
// @Success 200 {object} response.Envelope
// @Router /slots/draft [post]
func (h *SlotHandler) Draft(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SlotDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload"))
		return
	}
	draft, err := h.slots.Draft(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}
