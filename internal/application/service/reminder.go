package service

import (
	"context"

	"medreminder/internal/application/dto"
	"medreminder/internal/domain/entity"
)

// ReminderService keeps the persisted reminder collection in lockstep with
// the notification scheduler. The store is the only source of truth.
type ReminderService interface {
	// CreateReminder validates the request, then schedules and persists a new reminder.
	CreateReminder(ctx context.Context, req dto.CreateReminderRequest) (*entity.Reminder, error)
	// ListReminders returns all reminders sorted ascending by time.
	ListReminders(ctx context.Context) ([]entity.Reminder, error)
	// GetReminder retrieves a reminder by its ID.
	GetReminder(ctx context.Context, id string) (*entity.Reminder, error)
	// DeleteReminder cancels and unpersists a reminder. It always returns the
	// collection reloaded from the store, also when the delete failed.
	DeleteReminder(ctx context.Context, id string) ([]entity.Reminder, error)
	// RestoreSchedules registers every stored reminder with the scheduler on startup.
	RestoreSchedules(ctx context.Context) error
}
