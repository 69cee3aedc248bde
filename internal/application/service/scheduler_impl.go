package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"medreminder/internal/domain/recurrence"
	"medreminder/internal/infrastructure/scheduler"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const notifyTimeout = 30 * time.Second

type schedulerService struct {
	cronScheduler *scheduler.Scheduler
	notifier      Notifier
	metrics       *metrics.Metrics
	log           logger.Logger
	now           func() time.Time
	// Job IDs keyed by reminder ID
	jobStore map[string]cron.EntryID
	mu       sync.Mutex // Protect jobStore access
}

// NewSchedulerService creates a cron-backed notification scheduler that
// delivers fired reminders through notifier.
func NewSchedulerService(
	cronScheduler *scheduler.Scheduler,
	notifier Notifier,
	m *metrics.Metrics,
	log logger.Logger,
) SchedulerService {
	return newSchedulerService(cronScheduler, notifier, m, log, time.Now)
}

func newSchedulerService(
	cronScheduler *scheduler.Scheduler,
	notifier Notifier,
	m *metrics.Metrics,
	log logger.Logger,
	now func() time.Time,
) *schedulerService {
	if m == nil {
		m = metrics.New("medreminder", nil)
	}
	return &schedulerService{
		cronScheduler: cronScheduler,
		notifier:      notifier,
		metrics:       m,
		log:           log,
		now:           now,
		jobStore:      make(map[string]cron.EntryID),
	}
}

// formatCronSpec generates a seconds-precision cron spec for a trigger.
// One-shot triggers pin day and month; the job removes itself after it fires.
func formatCronSpec(trigger recurrence.TriggerSpec) (string, error) {
	loc := trigger.Location
	if loc == nil {
		loc = time.UTC
	}
	prefix := "CRON_TZ=" + loc.String() + " "

	switch trigger.Kind {
	case recurrence.TriggerDate:
		t := trigger.Date.In(loc)
		// Seconds Minutes Hours DayOfMonth Month DayOfWeek
		return prefix + fmt.Sprintf("%d %d %d %d %d *", t.Second(), t.Minute(), t.Hour(), t.Day(), int(t.Month())), nil
	case recurrence.TriggerDaily:
		return prefix + fmt.Sprintf("0 %d %d * * *", trigger.Minute, trigger.Hour), nil
	case recurrence.TriggerWeekly:
		// cron counts weekdays 0=Sunday, the trigger carries 1=Sunday.
		dow, err := recurrence.StorageWeekday(trigger.Weekday)
		if err != nil {
			return "", err
		}
		return prefix + fmt.Sprintf("0 %d %d * * %d", trigger.Minute, trigger.Hour, dow), nil
	}
	return "", fmt.Errorf("unsupported trigger kind %q", trigger.Kind)
}

// removeJobID removes and returns the cron EntryID for a reminder.
func (s *schedulerService) removeJobID(reminderID string) (cron.EntryID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entryID, ok := s.jobStore[reminderID]
	if ok {
		delete(s.jobStore, reminderID)
		s.metrics.ScheduledJobs.Set(float64(len(s.jobStore)))
	}
	return entryID, ok
}

// Schedule registers a cron job for the reminder. A one-shot trigger whose
// date is not in the future fails with ErrScheduling instead of firing.
func (s *schedulerService) Schedule(ctx context.Context, id string, trigger recurrence.TriggerSpec, payload recurrence.Payload) error {
	if trigger.Kind == recurrence.TriggerDate && !trigger.Date.After(s.now()) {
		s.log.Warn(fmt.Sprintf("Attempted to schedule reminder %s with past time: %v", id, trigger.Date))
		return fmt.Errorf("%w: trigger date %s already elapsed", appErrors.ErrScheduling, trigger.Date.Format(time.RFC3339))
	}

	spec, err := formatCronSpec(trigger)
	if err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
	}

	// Replace any existing job for this reminder
	if err := s.Cancel(ctx, id); err != nil {
		return err
	}

	oneShot := trigger.Kind == recurrence.TriggerDate
	var entryID cron.EntryID // guarded by s.mu
	jobFunc := func() {
		// A pinned day and month also matches in later years.
		if oneShot && s.now().Before(trigger.Date.Add(-time.Minute)) {
			s.log.Debug(fmt.Sprintf("Skipping early activation for reminder %s", id))
			return
		}

		s.log.Info(fmt.Sprintf("Executing notification job for reminder %s", id))
		notifyCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(notifyCtx, id, payload); err != nil {
			s.metrics.NotificationsSent.WithLabelValues(metrics.StatusFailed).Inc()
			s.log.Error(fmt.Sprintf("Error delivering notification for reminder %s", id), err)
		} else {
			s.metrics.NotificationsSent.WithLabelValues(metrics.StatusOK).Inc()
		}

		if oneShot {
			s.mu.Lock()
			own := s.jobStore[id] == entryID
			if own {
				delete(s.jobStore, id)
				s.metrics.ScheduledJobs.Set(float64(len(s.jobStore)))
			}
			s.mu.Unlock()
			if own {
				s.cronScheduler.RemoveJob(entryID)
			}
		}
	}

	s.mu.Lock()
	entryID, err = s.cronScheduler.AddJob(spec, jobFunc)
	if err == nil {
		s.jobStore[id] = entryID
		s.metrics.ScheduledJobs.Set(float64(len(s.jobStore)))
	}
	added := entryID
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
	}

	s.log.Info(fmt.Sprintf("Scheduled notification for reminder %s with %s (Job ID: %d)", id, trigger, added))
	return nil
}

// Cancel removes the cron job for a reminder, if any.
func (s *schedulerService) Cancel(ctx context.Context, id string) error {
	if entryID, ok := s.removeJobID(id); ok {
		s.cronScheduler.RemoveJob(entryID)
		s.log.Info(fmt.Sprintf("Cancelled notification schedule for reminder %s (Job ID: %d)", id, entryID))
	} else {
		s.log.Debug(fmt.Sprintf("No active notification schedule found for reminder %s to cancel.", id))
	}
	return nil
}

// Scheduled reports whether a job is registered for the reminder.
func (s *schedulerService) Scheduled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobStore[id]
	return ok
}

// next returns the next activation time of the reminder's job.
func (s *schedulerService) next(id string) (time.Time, bool) {
	s.mu.Lock()
	entryID, ok := s.jobStore[id]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	entry := s.cronScheduler.Entry(entryID)
	return entry.Next, entry.Valid()
}

// Stop stops the underlying scheduler.
func (s *schedulerService) Stop() {
	s.cronScheduler.Stop()
}
