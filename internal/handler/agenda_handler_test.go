package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk-api/internal/middleware"
	"github.com/opsdesk/opsdesk-api/internal/models"
	"github.com/opsdesk/opsdesk-api/pkg/response"
	"github.com/opsdesk/opsdesk-api/pkg/timegrid"
)

type fakeAgendaSrv struct {
	entries []models.AgendaEntry
	overdue []models.OverdueTask
	stats   *models.CalendarStats
	err     error

	lastDay       timegrid.Day
	lastCompleted bool
}

func (f *fakeAgendaSrv) AgendaFor(_ context.Context, _ string, day timegrid.Day, includeCompleted bool) ([]models.AgendaEntry, error) {
	f.lastDay = day
	f.lastCompleted = includeCompleted
	return f.entries, f.err
}

func (f *fakeAgendaSrv) OverdueTasks(_ context.Context, _ string, day timegrid.Day) ([]models.OverdueTask, error) {
	f.lastDay = day
	return f.overdue, f.err
}

func (f *fakeAgendaSrv) Stats(context.Context, string) (*models.CalendarStats, error) {
	return f.stats, f.err
}

func authedContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Set(middleware.ContextUserKey, &models.Claims{UserID: "owner-1"})
	return c, rec
}

func TestAgendaHandlerRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAgendaHandler(&fakeAgendaSrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/agenda", nil)

	handler.Agenda(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAgendaHandlerInvalidDate(t *testing.T) {
	handler := NewAgendaHandler(&fakeAgendaSrv{}, nil)
	c, rec := authedContext(t, http.MethodGet, "/agenda?date=10-03-2026")

	handler.Agenda(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAgendaHandlerPassesQueryThrough(t *testing.T) {
	srv := &fakeAgendaSrv{entries: []models.AgendaEntry{
		{Kind: models.AgendaEntryTask, Time: "09:00"},
	}}
	handler := NewAgendaHandler(srv, nil)
	c, rec := authedContext(t, http.MethodGet, "/agenda?date=2026-03-10&include_completed=true")

	handler.Agenda(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, timegrid.Day("2026-03-10"), srv.lastDay)
	assert.True(t, srv.lastCompleted)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestAgendaHandlerStats(t *testing.T) {
	srv := &fakeAgendaSrv{stats: &models.CalendarStats{Total: 5, Completed: 2, Pending: 3, CompletionRate: 40}}
	handler := NewAgendaHandler(srv, nil)
	c, rec := authedContext(t, http.MethodGet, "/agenda/stats")

	handler.Stats(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data models.CalendarStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 40, envelope.Data.CompletionRate)
}
