package calendar

import (
	"fmt"
	"time"
)

// DateFormat is the civil-date layout used for holiday lookups.
const DateFormat = "2006-01-02"

// InstantFormat is the wire layout for result instants: UTC with
// millisecond precision and a literal Z suffix.
const InstantFormat = "2006-01-02T15:04:05.000Z"

// HolidayChecker reports whether a date is a holiday. Implementations must
// be safe for concurrent use and must not perform I/O on the lookup path.
// The engine always passes moments already expressed in the calendar's
// location; only the wall calendar date is significant.
type HolidayChecker interface {
	IsHoliday(t time.Time) bool
}

// HolidayCheckerFunc adapts a function to the HolidayChecker interface.
type HolidayCheckerFunc func(t time.Time) bool

func (f HolidayCheckerFunc) IsHoliday(t time.Time) bool { return f(t) }

// Config describes the working calendar: the timezone all arithmetic
// happens in, the daily working-hour window, the lunch break and the set
// of working weekdays. Hour boundaries must satisfy
// WorkStart < LunchStart < LunchEnd < WorkEnd, all within [0, 24).
type Config struct {
	Location   *time.Location
	WorkStart  int
	WorkEnd    int
	LunchStart int
	LunchEnd   int

	weekdays map[time.Weekday]bool
}

// NewConfig validates the hour boundaries and weekday set.
func NewConfig(loc *time.Location, workStart, lunchStart, lunchEnd, workEnd int, weekdays []time.Weekday) (Config, error) {
	if loc == nil {
		return Config{}, fmt.Errorf("calendar location is required")
	}
	if workStart < 0 || workEnd >= 24 {
		return Config{}, fmt.Errorf("hour boundaries must be within [0, 24)")
	}
	if !(workStart < lunchStart && lunchStart < lunchEnd && lunchEnd < workEnd) {
		return Config{}, fmt.Errorf("hour boundaries must be ordered: work_start < lunch_start < lunch_end < work_end")
	}
	if len(weekdays) == 0 {
		return Config{}, fmt.Errorf("at least one working weekday is required")
	}

	set := make(map[time.Weekday]bool, len(weekdays))
	for _, d := range weekdays {
		if d < time.Sunday || d > time.Saturday {
			return Config{}, fmt.Errorf("invalid weekday %d", d)
		}
		set[d] = true
	}

	return Config{
		Location:   loc,
		WorkStart:  workStart,
		WorkEnd:    workEnd,
		LunchStart: lunchStart,
		LunchEnd:   lunchEnd,
		weekdays:   set,
	}, nil
}

// DefaultConfig returns the Colombian business calendar: Monday to Friday,
// 08:00-17:00 with lunch 12:00-13:00, in America/Bogota.
func DefaultConfig() (Config, error) {
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		return Config{}, fmt.Errorf("load timezone: %w", err)
	}
	return NewConfig(loc, 8, 12, 13, 17, []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	})
}

// IsWorkingWeekday reports whether d belongs to the working week.
func (c Config) IsWorkingWeekday(d time.Weekday) bool {
	return c.weekdays[d]
}

// FormatInstant serializes t as a UTC instant with millisecond precision.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantFormat)
}
