package service

import (
	"context"

	"medreminder/internal/domain/recurrence"
)

// NotificationScheduler registers and cancels notifications by reminder ID.
type NotificationScheduler interface {
	// Schedule registers a notification for id. An existing entry for id is replaced.
	Schedule(ctx context.Context, id string, trigger recurrence.TriggerSpec, payload recurrence.Payload) error
	// Cancel removes the notification for id. Cancelling an unknown id is not an error.
	Cancel(ctx context.Context, id string) error
}

// SchedulerService is a NotificationScheduler with a lifecycle.
type SchedulerService interface {
	NotificationScheduler
	// Scheduled reports whether a notification is registered for id.
	Scheduled(id string) bool
	// Stop stops the underlying scheduler and waits for running jobs.
	Stop()
}

// Notifier delivers a fired notification to the user.
type Notifier interface {
	Notify(ctx context.Context, reminderID string, payload recurrence.Payload) error
}
