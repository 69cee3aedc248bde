package dto

import (
	"encoding/json"
	"time"

	"medreminder/internal/domain/entity"
	"medreminder/internal/domain/recurrence"
)

// CreateReminderRequest is the DTO for creating a new reminder.
// Date (YYYY-MM-DD) and Time (HH:MM) are read in the configured target timezone;
// an empty Date means today.
type CreateReminderRequest struct {
	Category   string      `json:"category"`
	Medication string      `json:"medication"`
	Dose       string      `json:"dose"`
	Quantity   json.Number `json:"quantity"`
	Notes      string      `json:"notes"`
	Date       string      `json:"date"`
	Time       string      `json:"time"`
	Frequency  string      `json:"frequency"`
	WeekDay    int         `json:"weekDay"`
}

// DisplayResponse carries the rendered schedule text for list and detail views.
type DisplayResponse struct {
	Text          string     `json:"text"`
	Clock         string     `json:"clock"`
	Label         string     `json:"label"`
	FrequencyName string     `json:"frequencyName"`
	DayName       string     `json:"dayName,omitempty"`
	Date          string     `json:"date,omitempty"`
	Next          *time.Time `json:"next,omitempty"`
}

// ReminderResponse is the DTO for sending reminder information to the client.
type ReminderResponse struct {
	ID         string          `json:"id"`
	Category   string          `json:"category"`
	Medication string          `json:"medication"`
	Dose       string          `json:"dose"`
	Quantity   int             `json:"quantity"`
	Notes      string          `json:"notes,omitempty"`
	Time       time.Time       `json:"time"`
	Frequency  string          `json:"frequency"`
	WeekDay    int             `json:"weekDay"`
	Display    DisplayResponse `json:"display"`
}

// ToReminderResponse converts an entity.Reminder and its display text to a ReminderResponse DTO.
func ToReminderResponse(r entity.Reminder, d recurrence.DisplayText) ReminderResponse {
	display := DisplayResponse{
		Text:          d.Text,
		Clock:         d.Clock,
		Label:         d.Label,
		FrequencyName: d.FrequencyName,
		DayName:       d.DayName,
		Date:          d.Date,
	}
	if !d.Next.IsZero() {
		next := d.Next
		display.Next = &next
	}
	return ReminderResponse{
		ID:         r.ID,
		Category:   r.Category,
		Medication: r.Medication,
		Dose:       r.Dose,
		Quantity:   r.Quantity,
		Notes:      r.Notes,
		Time:       r.Time,
		Frequency:  r.Frequency.String(),
		WeekDay:    r.WeekDay,
		Display:    display,
	}
}

// ToReminderResponseList renders every reminder with model at now.
func ToReminderResponseList(reminders []entity.Reminder, model *recurrence.Model, now time.Time) []ReminderResponse {
	list := make([]ReminderResponse, len(reminders))
	for i, r := range reminders {
		list[i] = ToReminderResponse(r, model.DescribeOccurrence(r, now))
	}
	return list
}

// ErrorResponse is returned by the API on failure. Reminders is set when a
// failed delete reloaded the authoritative collection.
type ErrorResponse struct {
	Error     string             `json:"error"`
	Field     string             `json:"field,omitempty"`
	Reminders []ReminderResponse `json:"reminders,omitempty"`
}
