package service

import (
	"context"
	"errors"
	"sync"

	"medreminder/internal/domain/recurrence"
)

var errBoom = errors.New("boom")

// mockStore implements repository.ReminderStore for testing.
type mockStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	setCall int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return append([]byte(nil), v...), ok, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockStore) setCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCall
}

func (m *mockStore) failSet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// mockScheduler implements NotificationScheduler for testing.
type mockScheduler struct {
	mu          sync.Mutex
	scheduled   map[string]recurrence.TriggerSpec
	payloads    map[string]recurrence.Payload
	cancelled   []string
	scheduleErr error
	cancelErr   error
	calls       int
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{
		scheduled: make(map[string]recurrence.TriggerSpec),
		payloads:  make(map[string]recurrence.Payload),
	}
}

func (m *mockScheduler) Schedule(ctx context.Context, id string, trigger recurrence.TriggerSpec, payload recurrence.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.scheduleErr != nil {
		return m.scheduleErr
	}
	m.scheduled[id] = trigger
	m.payloads[id] = payload
	return nil
}

func (m *mockScheduler) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.cancelled = append(m.cancelled, id)
	if m.cancelErr != nil {
		return m.cancelErr
	}
	delete(m.scheduled, id)
	return nil
}

func (m *mockScheduler) trigger(id string) (recurrence.TriggerSpec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.scheduled[id]
	return t, ok
}

func (m *mockScheduler) cancelledIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancelled...)
}

func (m *mockScheduler) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockNotifier records delivered notifications.
type mockNotifier struct {
	mu        sync.Mutex
	delivered []string
	err       error
}

func (m *mockNotifier) Notify(ctx context.Context, reminderID string, payload recurrence.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = append(m.delivered, reminderID)
	return m.err
}

func (m *mockNotifier) deliveredIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.delivered...)
}
