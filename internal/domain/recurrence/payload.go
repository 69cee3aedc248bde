package recurrence

import (
	"fmt"

	"medreminder/internal/domain/entity"
)

// Payload is the notification content handed to the scheduler.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// BuildPayload renders the notification title and body for a reminder.
func BuildPayload(r entity.Reminder) Payload {
	body := fmt.Sprintf("Es hora de tomar %d %s de %s", r.Quantity, r.Dose, r.Medication)
	if r.Notes != "" {
		body += ". Nota: " + r.Notes
	}
	return Payload{
		Title: "Recordatorio de medicamento: " + r.Medication,
		Body:  body,
	}
}
