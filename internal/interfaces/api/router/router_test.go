package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreminder/internal/application/service"
	"medreminder/internal/domain/recurrence"
	"medreminder/internal/infrastructure/catalog"
	"medreminder/internal/infrastructure/database/memory"
	"medreminder/internal/interfaces/api/handler"
	"medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"
)

type nopScheduler struct{}

func (nopScheduler) Schedule(ctx context.Context, id string, trigger recurrence.TriggerSpec, payload recurrence.Payload) error {
	return nil
}

func (nopScheduler) Cancel(ctx context.Context, id string) error { return nil }

func TestRouterRoutes(t *testing.T) {
	log := logger.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.New("medreminder", reg)
	model := recurrence.New(time.UTC)
	svc := service.NewReminderService(memory.NewReminderStore(), nopScheduler{}, model, log, service.WithMetrics(m))
	medCatalog, err := catalog.Load()
	require.NoError(t, err)

	e := NewRouter(&Config{
		ReminderHandler: handler.NewReminderHandler(svc, model, medCatalog, log),
		Logger:          log,
		Gatherer:        reg,
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/").Code)
	assert.Equal(t, http.StatusOK, get("/catalog").Code)
	rec := get("/reminders")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.Equal(t, http.StatusNotFound, get("/reminders/nope").Code)

	req := httptest.NewRequest(http.MethodPost, "/reminders",
		strings.NewReader(`{"medication":"Paracetamol","dose":"500 mg","quantity":"1","time":"08:00","frequency":"daily"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `medreminder_reminders_created_total{frequency="daily",status="ok"} 1`)
}
