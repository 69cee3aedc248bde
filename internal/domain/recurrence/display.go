package recurrence

import (
	"fmt"
	"slices"
	"time"

	"medreminder/internal/domain/constant"
	"medreminder/internal/domain/entity"
)

const (
	clockLayout = "15:04"
	dateLayout  = "02/01/2006"
)

var dayNames = [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

// DayName returns the Spanish name of a storage weekday (0=Sunday), or "" when out of range.
func DayName(weekDay int) string {
	if weekDay < 0 || weekDay >= len(dayNames) {
		return ""
	}
	return dayNames[weekDay]
}

// FrequencyName returns the detail-view name of a frequency.
func FrequencyName(f constant.Frequency) string {
	switch f {
	case constant.FrequencyDaily:
		return "Diario"
	case constant.FrequencyWeekly:
		return "Semanal"
	default:
		return "Una vez"
	}
}

// DisplayText is what list and detail views render for a reminder.
type DisplayText struct {
	Clock         string    // "08:30"
	Label         string    // "(Diario)", "(Cada lunes)", "(Una vez)"
	Text          string    // Clock + " " + Label
	FrequencyName string    // "Diario", "Semanal", "Una vez"
	DayName       string    // weekly only
	Date          string    // once only, DD/MM/YYYY
	Next          time.Time // zero when a once-reminder already fired
}

// DescribeOccurrence renders the reminder for display. It does not modify r.
func (m *Model) DescribeOccurrence(r entity.Reminder, now time.Time) DisplayText {
	local := m.Normalize(r.Time)

	d := DisplayText{
		Clock:         local.Format(clockLayout),
		FrequencyName: FrequencyName(r.Frequency),
		Next:          m.NextOccurrence(r, now),
	}

	switch r.Frequency {
	case constant.FrequencyDaily:
		d.Label = "(Diario)"
	case constant.FrequencyWeekly:
		d.DayName = DayName(r.WeekDay)
		d.Label = fmt.Sprintf("(Cada %s)", d.DayName)
	default:
		d.Label = "(Una vez)"
		d.Date = local.Format(dateLayout)
	}
	d.Text = d.Clock + " " + d.Label
	return d
}

// NextOccurrence returns the first firing instant at or after now, or the zero
// time when a once-reminder has already passed.
func (m *Model) NextOccurrence(r entity.Reminder, now time.Time) time.Time {
	local := m.Normalize(r.Time)
	ref := m.Normalize(now)

	switch r.Frequency {
	case constant.FrequencyDaily:
		next := time.Date(ref.Year(), ref.Month(), ref.Day(), local.Hour(), local.Minute(), 0, 0, m.loc)
		if next.Before(ref) {
			next = time.Date(ref.Year(), ref.Month(), ref.Day()+1, local.Hour(), local.Minute(), 0, 0, m.loc)
		}
		return next
	case constant.FrequencyWeekly:
		if r.WeekDay < 0 || r.WeekDay > 6 {
			return time.Time{}
		}
		offset := (r.WeekDay - int(ref.Weekday()) + 7) % 7
		next := time.Date(ref.Year(), ref.Month(), ref.Day()+offset, local.Hour(), local.Minute(), 0, 0, m.loc)
		if next.Before(ref) {
			next = time.Date(ref.Year(), ref.Month(), ref.Day()+offset+7, local.Hour(), local.Minute(), 0, 0, m.loc)
		}
		return next
	default:
		if local.Before(ref) {
			return time.Time{}
		}
		return local
	}
}

// SortByTime returns a copy of reminders ordered ascending by Time.
// Equal times keep their relative order.
func SortByTime(reminders []entity.Reminder) []entity.Reminder {
	sorted := slices.Clone(reminders)
	slices.SortStableFunc(sorted, func(a, b entity.Reminder) int {
		return a.Time.Compare(b.Time)
	})
	if sorted == nil {
		sorted = []entity.Reminder{}
	}
	return sorted
}
