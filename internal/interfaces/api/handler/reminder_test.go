package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medreminder/internal/application/dto"
	"medreminder/internal/application/service"
	"medreminder/internal/domain/recurrence"
	"medreminder/internal/domain/repository"
	"medreminder/internal/infrastructure/catalog"
	"medreminder/internal/infrastructure/database/memory"
	"medreminder/internal/pkg/logger"
)

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[string]recurrence.TriggerSpec
}

func (f *fakeScheduler) Schedule(ctx context.Context, id string, trigger recurrence.TriggerSpec, payload recurrence.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled[id] = trigger
	return nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scheduled, id)
	return nil
}

// flakyStore fails writes once failWrites is set.
type flakyStore struct {
	repository.ReminderStore
	mu         sync.Mutex
	failWrites bool
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	fail := s.failWrites
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.ReminderStore.Set(ctx, key, value)
}

type testEnv struct {
	e         *echo.Echo
	store     *flakyStore
	scheduler *fakeScheduler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	now := time.Date(2026, 10, 16, 10, 0, 0, 0, loc)
	clock := func() time.Time { return now }

	store := &flakyStore{ReminderStore: memory.NewReminderStore()}
	sched := &fakeScheduler{scheduled: make(map[string]recurrence.TriggerSpec)}
	model := recurrence.New(loc)
	ids := 0
	svc := service.NewReminderService(store, sched, model, logger.Nop(),
		service.WithClock(clock),
		service.WithIDGenerator(func() string {
			ids++
			return "id-" + strconv.Itoa(ids)
		}),
	)
	medCatalog, err := catalog.Load()
	require.NoError(t, err)

	h := NewReminderHandler(svc, model, medCatalog, logger.Nop())
	h.now = clock

	e := echo.New()
	e.GET("/catalog", h.Catalog)
	e.GET("/reminders", h.List)
	e.POST("/reminders", h.Create)
	e.GET("/reminders/:id", h.Get)
	e.DELETE("/reminders/:id", h.Delete)
	return &testEnv{e: e, store: store, scheduler: sched}
}

func (env *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

const dailyBody = `{"category":"Antihipertensivos","medication":"Losartán","dose":"50 mg","quantity":"1","time":"08:30","frequency":"daily"}`

func TestCreateAndListReminders(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/reminders", dailyBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.ReminderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, 1, created.Quantity)
	assert.Equal(t, "08:30 (Diario)", created.Display.Text)
	assert.Contains(t, env.scheduler.scheduled, "id-1")

	rec = env.do(http.MethodPost, "/reminders",
		`{"category":"Hipolipemiantes","medication":"Atorvastatina","dose":"20 mg","quantity":2,"time":"07:00","frequency":"weekly","weekDay":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, "/reminders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dto.ReminderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Atorvastatina", list[0].Medication)
	assert.Equal(t, "07:00 (Cada lunes)", list[0].Display.Text)
	assert.Equal(t, "Losartán", list[1].Medication)
}

func TestCreateReminderValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"zero quantity", `{"medication":"X","quantity":"0","time":"08:00","frequency":"daily"}`, "quantity"},
		{"bad frequency", `{"medication":"X","quantity":"1","time":"08:00","frequency":"hourly"}`, "frequency"},
		{"bad weekday", `{"medication":"X","quantity":"1","time":"08:00","frequency":"weekly","weekDay":7}`, "weekDay"},
		{"bad time", `{"medication":"X","quantity":"1","time":"25:00","frequency":"daily"}`, "time"},
		{"once in the past", `{"medication":"X","quantity":"1","date":"2026-10-15","time":"08:00","frequency":"once"}`, "time"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/reminders", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.field, resp.Field)
			assert.NotEmpty(t, resp.Error)
		})
	}
	assert.Empty(t, env.scheduler.scheduled)

	rec := env.do(http.MethodPost, "/reminders", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReminder(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/reminders",
		`{"medication":"Omeprazol","dose":"20 mg","quantity":"1","date":"2026-10-20","time":"21:05","frequency":"once"}`).Code)

	rec := env.do(http.MethodGet, "/reminders/id-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.ReminderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Una vez", got.Display.FrequencyName)
	assert.Equal(t, "20/10/2026", got.Display.Date)

	rec = env.do(http.MethodGet, "/reminders/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteReminder(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/reminders", dailyBody).Code)

	rec := env.do(http.MethodDelete, "/reminders/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, env.scheduler.scheduled, "id-1")

	rec = env.do(http.MethodDelete, "/reminders/id-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []dto.ReminderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
	assert.NotContains(t, env.scheduler.scheduled, "id-1")
}

func TestDeleteReminderPersistFailureReturnsReloadedList(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/reminders", dailyBody).Code)

	env.store.mu.Lock()
	env.store.failWrites = true
	env.store.mu.Unlock()

	rec := env.do(http.MethodDelete, "/reminders/id-1", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Reminders, 1)
	assert.Equal(t, "id-1", resp.Reminders[0].ID)
	// The record survived, so its notification was restored.
	assert.Contains(t, env.scheduler.scheduled, "id-1")
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got catalog.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Categories, 5)
	assert.Equal(t, "Antihipertensivos", got.Categories[0].Name)
}
