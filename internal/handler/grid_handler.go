package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsdesk/opsdesk-api/internal/models"
	appErrors "github.com/opsdesk/opsdesk-api/pkg/errors"
	"github.com/opsdesk/opsdesk-api/pkg/response"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

// GridHandler serves the pure week/month grid geometry around a reference
// date. The grids carry no entries; clients fill the cells from the agenda
// endpoints.
type GridHandler struct {
	now func() time.Time
}

// NewGridHandler constructs the handler.
func NewGridHandler() *GridHandler {
	return &GridHandler{now: time.Now}
}

func (h *GridHandler) refParam(c *gin.Context) (timegrid.Day, error) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return timegrid.Today(h.now()), nil
	}
	return timegrid.ParseDay(raw)
}

// Week godoc
// @Summary Monday-first week around a date
// @Tags Grid
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /grid/week [get]
func (h *GridHandler) Week(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ref, err := h.refParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view := models.WeekView{Days: timegrid.WeekDays(ref), Hours: timegrid.HourBuckets()}
	response.JSON(c, http.StatusOK, view, nil)
}

// Month godoc
// @Summary Six-week month grid around a date
// @Tags Grid
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /grid/month [get]
func (h *GridHandler) Month(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ref, err := h.refParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view := models.MonthView{Cells: timegrid.MonthGrid(ref)}
	response.JSON(c, http.StatusOK, view, nil)
}

// Hours godoc
// @Summary Visible hour rows of the day grid
// @Tags Grid
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grid/hours [get]
func (h *GridHandler) Hours(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, timegrid.HourBuckets(), nil)
}
