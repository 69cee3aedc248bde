package entity

import (
	"time"

	"medreminder/internal/domain/constant"
)

// Reminder represents one medication dose and its delivery schedule.
// It is stored as an element of a JSON array under constant.StoreKey.
type Reminder struct {
	ID         string             `json:"id"`
	Category   string             `json:"category"`
	Medication string             `json:"medication"`
	Dose       string             `json:"dose"`
	Quantity   int                `json:"quantity"`
	Notes      string             `json:"notes,omitempty"`
	Time       time.Time          `json:"time"`
	Frequency  constant.Frequency `json:"frequency"`
	WeekDay    int                `json:"weekDay"` // 0=Sunday..6=Saturday, weekly only
}

// Draft holds user input for a reminder that has not been created yet.
type Draft struct {
	Category   string
	Medication string
	Dose       string
	Quantity   int
	Notes      string
	Time       time.Time
	Frequency  constant.Frequency
	WeekDay    int
}
