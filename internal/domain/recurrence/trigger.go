// Package recurrence maps a reminder's schedule fields to scheduler triggers
// and to the text shown on list and detail views. Everything here is pure.
package recurrence

import (
	"fmt"
	"time"

	"medreminder/internal/domain/constant"
	"medreminder/internal/domain/entity"
)

// TriggerKind identifies the shape of a TriggerSpec.
type TriggerKind string

const (
	// TriggerDate fires once at an absolute instant.
	TriggerDate TriggerKind = "date"
	// TriggerDaily repeats every day at Hour:Minute.
	TriggerDaily TriggerKind = "daily"
	// TriggerWeekly repeats every week on Weekday at Hour:Minute.
	TriggerWeekly TriggerKind = "weekly"
)

// TriggerSpec is the scheduler-facing description of when a notification fires.
type TriggerSpec struct {
	Kind TriggerKind
	// Date is set for TriggerDate only.
	Date time.Time
	// Weekday uses the scheduler convention 1=Sunday..7=Saturday. Set for TriggerWeekly only.
	Weekday int
	Hour    int
	Minute  int
	Repeats bool
	// Location is the zone Hour/Minute/Weekday are expressed in.
	Location *time.Location
}

func (t TriggerSpec) String() string {
	switch t.Kind {
	case TriggerDate:
		return fmt.Sprintf("date(%s)", t.Date.Format(time.RFC3339))
	case TriggerDaily:
		return fmt.Sprintf("daily(%02d:%02d %s)", t.Hour, t.Minute, t.Location)
	case TriggerWeekly:
		return fmt.Sprintf("weekly(%d %02d:%02d %s)", t.Weekday, t.Hour, t.Minute, t.Location)
	}
	return "unknown"
}

// weekdayCodes maps the storage weekday (0=Sunday..6=Saturday) to the scheduler code.
var weekdayCodes = [7]int{
	0: 1, // Sunday
	1: 2, // Monday
	2: 3, // Tuesday
	3: 4, // Wednesday
	4: 5, // Thursday
	5: 6, // Friday
	6: 7, // Saturday
}

// WeekdayCode translates a storage weekday into the scheduler weekday code.
func WeekdayCode(weekDay int) (int, error) {
	if weekDay < 0 || weekDay >= len(weekdayCodes) {
		return 0, fmt.Errorf("weekday %d out of range 0-6", weekDay)
	}
	return weekdayCodes[weekDay], nil
}

// StorageWeekday is the inverse of WeekdayCode.
func StorageWeekday(code int) (int, error) {
	for day, c := range weekdayCodes {
		if c == code {
			return day, nil
		}
	}
	return 0, fmt.Errorf("weekday code %d out of range 1-7", code)
}

// Model computes triggers and display text in a fixed target timezone.
type Model struct {
	loc *time.Location
}

// New returns a Model for the given target zone. A nil zone means UTC.
func New(loc *time.Location) *Model {
	if loc == nil {
		loc = time.UTC
	}
	return &Model{loc: loc}
}

// Location returns the target timezone.
func (m *Model) Location() *time.Location {
	return m.loc
}

// Normalize expresses t in the target timezone.
func (m *Model) Normalize(t time.Time) time.Time {
	return t.In(m.loc)
}

// ComputeTrigger translates a reminder's time, frequency and weekday into a TriggerSpec.
// A once-reminder whose time already passed is not special-cased here.
func (m *Model) ComputeTrigger(r entity.Reminder) (TriggerSpec, error) {
	local := m.Normalize(r.Time)

	switch r.Frequency {
	case constant.FrequencyOnce:
		return TriggerSpec{
			Kind:     TriggerDate,
			Date:     local,
			Location: m.loc,
		}, nil
	case constant.FrequencyDaily:
		return TriggerSpec{
			Kind:     TriggerDaily,
			Hour:     local.Hour(),
			Minute:   local.Minute(),
			Repeats:  true,
			Location: m.loc,
		}, nil
	case constant.FrequencyWeekly:
		// The calendar day of Time only seeds hour and minute; the weekday is chosen separately.
		code, err := WeekdayCode(r.WeekDay)
		if err != nil {
			return TriggerSpec{}, err
		}
		return TriggerSpec{
			Kind:     TriggerWeekly,
			Weekday:  code,
			Hour:     local.Hour(),
			Minute:   local.Minute(),
			Repeats:  true,
			Location: m.loc,
		}, nil
	}
	return TriggerSpec{}, fmt.Errorf("unknown frequency %q", r.Frequency)
}

// BuildTime combines a calendar date (YYYY-MM-DD, empty for today) and a clock
// time (HH:MM or HH:MM:SS) into an instant in the target timezone.
func (m *Model) BuildTime(date, clock string, now time.Time) (time.Time, error) {
	var day time.Time
	if date == "" {
		day = m.Normalize(now)
	} else {
		d, err := time.ParseInLocation("2006-01-02", date, m.loc)
		if err != nil {
			return time.Time{}, err
		}
		day = d
	}

	var c time.Time
	var err error
	if len(clock) > len("15:04") {
		c, err = time.Parse("15:04:05", clock)
	} else {
		c, err = time.Parse("15:04", clock)
	}
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, m.loc), nil
}
