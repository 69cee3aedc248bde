package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"medreminder/internal/application/dto"
	"medreminder/internal/domain/constant"
	"medreminder/internal/domain/entity"
	"medreminder/internal/domain/recurrence"
	"medreminder/internal/domain/repository"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type reminderService struct {
	store     repository.ReminderStore
	scheduler NotificationScheduler
	model     *recurrence.Model
	metrics   *metrics.Metrics
	log       logger.Logger
	now       func() time.Time
	newID     func() string
	// Serializes read-modify-write cycles on the stored collection.
	mu sync.Mutex
}

// Option customizes a ReminderService.
type Option func(*reminderService)

// WithClock overrides the time source used for validation.
func WithClock(now func() time.Time) Option {
	return func(s *reminderService) { s.now = now }
}

// WithIDGenerator overrides how reminder IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *reminderService) { s.newID = newID }
}

// WithMetrics records operation outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *reminderService) { s.metrics = m }
}

// NewReminderService creates a new instance of ReminderService implementation.
func NewReminderService(
	store repository.ReminderStore,
	scheduler NotificationScheduler,
	model *recurrence.Model,
	log logger.Logger,
	opts ...Option,
) ReminderService {
	s := &reminderService{
		store:     store,
		scheduler: scheduler,
		model:     model,
		log:       log,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New("medreminder", nil)
	}
	return s
}

// validate turns request input into a draft or returns a ValidationError.
func (s *reminderService) validate(req dto.CreateReminderRequest) (entity.Draft, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(req.Quantity.String()))
	if err != nil || quantity <= 0 {
		return entity.Draft{}, appErrors.NewValidationError("quantity", "La cantidad debe ser un número mayor que 0")
	}

	frequency := constant.Frequency(req.Frequency)
	if !frequency.Valid() {
		return entity.Draft{}, appErrors.NewValidationError("frequency", "La frecuencia debe ser diaria, semanal o una vez")
	}

	if frequency == constant.FrequencyWeekly && (req.WeekDay < 0 || req.WeekDay > 6) {
		return entity.Draft{}, appErrors.NewValidationError("weekDay", "El día de la semana debe estar entre 0 (domingo) y 6 (sábado)")
	}

	now := s.now()
	at, err := s.model.BuildTime(strings.TrimSpace(req.Date), strings.TrimSpace(req.Time), now)
	if err != nil {
		return entity.Draft{}, appErrors.NewValidationError("time", "La fecha u hora no es válida")
	}

	if frequency == constant.FrequencyOnce && at.Before(now) {
		return entity.Draft{}, appErrors.NewValidationError("time", "No puedes programar recordatorios en el pasado")
	}

	return entity.Draft{
		Category:   req.Category,
		Medication: req.Medication,
		Dose:       req.Dose,
		Quantity:   quantity,
		Notes:      req.Notes,
		Time:       at,
		Frequency:  frequency,
		WeekDay:    req.WeekDay,
	}, nil
}

// load reads the full collection. A missing or empty value is an empty collection.
func (s *reminderService) load(ctx context.Context) ([]entity.Reminder, error) {
	raw, found, err := s.store.Get(ctx, constant.StoreKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrPersistence, err)
	}
	reminders := []entity.Reminder{}
	if !found || len(bytes.TrimSpace(raw)) == 0 {
		return reminders, nil
	}
	if err := json.Unmarshal(raw, &reminders); err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrCorruptStore, err)
	}
	if reminders == nil {
		reminders = []entity.Reminder{}
	}
	return reminders, nil
}

func (s *reminderService) save(ctx context.Context, reminders []entity.Reminder) error {
	raw, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrPersistence, err)
	}
	if err := s.store.Set(ctx, constant.StoreKey, raw); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrPersistence, err)
	}
	return nil
}

func (s *reminderService) appendReminder(ctx context.Context, r entity.Reminder) error {
	reminders, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, append(reminders, r))
}

func (s *reminderService) removeReminder(ctx context.Context, id string) error {
	reminders, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, slices.DeleteFunc(reminders, func(r entity.Reminder) bool { return r.ID == id }))
}

func wrapScheduling(err error) error {
	if err == nil || errors.Is(err, appErrors.ErrScheduling) {
		return err
	}
	return fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
}

// CreateReminder validates the request, then schedules and persists the reminder concurrently.
func (s *reminderService) CreateReminder(ctx context.Context, req dto.CreateReminderRequest) (*entity.Reminder, error) {
	draft, err := s.validate(req)
	if err != nil {
		label := req.Frequency
		if !constant.Frequency(label).Valid() {
			label = "unknown"
		}
		s.metrics.RemindersCreated.WithLabelValues(label, metrics.StatusInvalid).Inc()
		return nil, err
	}

	reminder := entity.Reminder{
		ID:         s.newID(),
		Category:   draft.Category,
		Medication: draft.Medication,
		Dose:       draft.Dose,
		Quantity:   draft.Quantity,
		Notes:      draft.Notes,
		Time:       s.model.Normalize(draft.Time),
		Frequency:  draft.Frequency,
		WeekDay:    draft.WeekDay,
	}

	trigger, err := s.model.ComputeTrigger(reminder)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to compute trigger for reminder %s", reminder.ID), err)
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInternalServer, err)
	}
	payload := recurrence.BuildPayload(reminder)

	s.mu.Lock()
	defer s.mu.Unlock()

	var scheduleErr, persistErr error
	var g errgroup.Group
	g.Go(func() error {
		scheduleErr = wrapScheduling(s.scheduler.Schedule(ctx, reminder.ID, trigger, payload))
		return scheduleErr
	})
	g.Go(func() error {
		persistErr = s.appendReminder(ctx, reminder)
		return persistErr
	})
	_ = g.Wait()

	switch {
	case scheduleErr == nil && persistErr == nil:
		s.metrics.RemindersCreated.WithLabelValues(reminder.Frequency.String(), metrics.StatusOK).Inc()
		s.log.Info(fmt.Sprintf("Created reminder %s (%s) with %s", reminder.ID, reminder.Medication, trigger))
		return &reminder, nil
	case scheduleErr != nil && persistErr == nil:
		s.log.Error(fmt.Sprintf("Failed to schedule reminder %s, removing persisted record", reminder.ID), scheduleErr)
		if err := s.removeReminder(ctx, reminder.ID); err != nil {
			s.log.Error(fmt.Sprintf("Failed to remove unscheduled reminder %s from store", reminder.ID), err)
			scheduleErr = errors.Join(scheduleErr, err)
		}
	case scheduleErr == nil && persistErr != nil:
		s.log.Error(fmt.Sprintf("Failed to persist reminder %s, cancelling notification", reminder.ID), persistErr)
		if err := s.scheduler.Cancel(ctx, reminder.ID); err != nil {
			s.log.Error(fmt.Sprintf("Failed to cancel notification for unpersisted reminder %s", reminder.ID), err)
			persistErr = errors.Join(persistErr, wrapScheduling(err))
		}
	default:
		s.log.Error(fmt.Sprintf("Failed to schedule and persist reminder %s", reminder.ID), errors.Join(scheduleErr, persistErr))
	}

	s.metrics.RemindersCreated.WithLabelValues(reminder.Frequency.String(), metrics.StatusFailed).Inc()
	return nil, errors.Join(scheduleErr, persistErr)
}

// ListReminders returns all reminders sorted ascending by time.
func (s *reminderService) ListReminders(ctx context.Context) ([]entity.Reminder, error) {
	reminders, err := s.load(ctx)
	if err != nil {
		s.log.Error("Failed to load reminders", err)
		return nil, err
	}
	return recurrence.SortByTime(reminders), nil
}

// GetReminder retrieves a reminder by its ID.
func (s *reminderService) GetReminder(ctx context.Context, id string) (*entity.Reminder, error) {
	reminders, err := s.load(ctx)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to load reminders while getting %s", id), err)
		return nil, err
	}
	idx := slices.IndexFunc(reminders, func(r entity.Reminder) bool { return r.ID == id })
	if idx < 0 {
		return nil, appErrors.ErrReminderNotFound
	}
	r := reminders[idx]
	return &r, nil
}

// DeleteReminder cancels the notification and removes the record concurrently.
// Unknown IDs yield ErrReminderNotFound without touching the scheduler.
func (s *reminderService) DeleteReminder(ctx context.Context, id string) ([]entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.load(ctx)
	if err != nil {
		s.metrics.RemindersDeleted.WithLabelValues(metrics.StatusFailed).Inc()
		s.log.Error(fmt.Sprintf("Failed to load reminders while deleting %s", id), err)
		return nil, err
	}

	idx := slices.IndexFunc(reminders, func(r entity.Reminder) bool { return r.ID == id })
	if idx < 0 {
		s.metrics.RemindersDeleted.WithLabelValues(metrics.StatusNotFound).Inc()
		return recurrence.SortByTime(reminders), appErrors.ErrReminderNotFound
	}
	target := reminders[idx]
	remaining := slices.Delete(slices.Clone(reminders), idx, idx+1)

	var cancelErr, persistErr error
	var g errgroup.Group
	g.Go(func() error {
		cancelErr = wrapScheduling(s.scheduler.Cancel(ctx, id))
		return cancelErr
	})
	g.Go(func() error {
		persistErr = s.save(ctx, remaining)
		return persistErr
	})
	_ = g.Wait()

	if cancelErr == nil && persistErr != nil {
		// The record is still stored; keep it active.
		if err := s.reschedule(ctx, target); err != nil {
			s.log.Error(fmt.Sprintf("Failed to reschedule reminder %s after failed delete", id), err)
		}
	}

	// Never trust the in-memory copy after the write; reload from the store.
	reloaded, loadErr := s.load(ctx)
	if loadErr != nil {
		s.log.Error(fmt.Sprintf("Failed to reload reminders after deleting %s", id), loadErr)
	}

	if cancelErr != nil || persistErr != nil {
		s.metrics.RemindersDeleted.WithLabelValues(metrics.StatusFailed).Inc()
		err := errors.Join(cancelErr, persistErr)
		s.log.Error(fmt.Sprintf("Failed to delete reminder %s", id), err)
		if loadErr != nil {
			return nil, errors.Join(err, loadErr)
		}
		return recurrence.SortByTime(reloaded), err
	}

	s.metrics.RemindersDeleted.WithLabelValues(metrics.StatusOK).Inc()
	s.log.Info(fmt.Sprintf("Deleted reminder %s", id))
	if loadErr != nil {
		return nil, loadErr
	}
	return recurrence.SortByTime(reloaded), nil
}

func (s *reminderService) reschedule(ctx context.Context, r entity.Reminder) error {
	trigger, err := s.model.ComputeTrigger(r)
	if err != nil {
		return err
	}
	return s.scheduler.Schedule(ctx, r.ID, trigger, recurrence.BuildPayload(r))
}

// RestoreSchedules loads reminders from the store and schedules them on startup.
// Once-reminders whose time has passed are kept in the store but not scheduled.
func (s *reminderService) RestoreSchedules(ctx context.Context) error {
	s.log.Info("Restoring notification schedules from store...")
	reminders, err := s.load(ctx)
	if err != nil {
		s.log.Error("Failed to retrieve reminders for restore", err)
		return err
	}

	now := s.now()
	scheduledCount := 0
	skippedCount := 0

	for _, r := range reminders {
		if r.Frequency == constant.FrequencyOnce && !r.Time.After(now) {
			skippedCount++
			s.log.Debug(fmt.Sprintf("Reminder %s already fired, not rescheduling.", r.ID))
			continue
		}
		if err := s.reschedule(ctx, r); err != nil {
			// Continue trying to schedule others
			s.log.Error(fmt.Sprintf("Failed to schedule reminder %s during restore", r.ID), err)
			continue
		}
		scheduledCount++
	}

	s.log.Info(fmt.Sprintf("Schedule restore complete. Scheduled: %d, Skipped past: %d", scheduledCount, skippedCount))
	return nil
}
