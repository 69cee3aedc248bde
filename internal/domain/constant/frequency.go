package constant

// Frequency defines how often a reminder fires.
type Frequency string

const (
	// FrequencyOnce fires a single time at the reminder's absolute time.
	FrequencyOnce Frequency = "once"
	// FrequencyDaily fires every day at the reminder's hour and minute.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly fires every week on the chosen weekday at the reminder's hour and minute.
	FrequencyWeekly Frequency = "weekly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

func (f Frequency) String() string {
	return string(f)
}

// StoreKey is the single key under which the whole reminder collection is persisted.
const StoreKey = "medicationReminders"
