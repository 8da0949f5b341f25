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

type taskService interface {
	CreateTask(ctx context.Context, ownerID string, req service.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, ownerID, id string, req service.UpdateTaskRequest) (*models.Task, error)
	ToggleTask(ctx context.Context, ownerID, id string) (*models.Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error
	GetTask(ctx context.Context, ownerID, id string) (*models.Task, error)
	TasksOn(ctx context.Context, ownerID string, day timegrid.Day) ([]models.Task, error)
}

// TaskHandler wires the schedule store's task operations to HTTP endpoints.
type TaskHandler struct {
	service taskService
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(service taskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List godoc
// @Summary List tasks on a date
// @Tags Tasks
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
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
	tasks, err := h.service.TasksOn(c.Request.Context(), claims.UserID, day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// Get godoc
// @Summary Get a single task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	task, err := h.service.GetTask(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Create godoc
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body service.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload"))
		return
	}
	task, err := h.service.CreateTask(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Update godoc
// @Summary Patch a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body service.UpdateTaskRequest true "Partial task patch"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task patch"))
		return
	}
	task, err := h.service.UpdateTask(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Toggle godoc
// @Summary Flip a task's completed flag
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	task, err := h.service.ToggleTask(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Success 204
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.DeleteTask(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
