package calendar

import "time"

// Engine performs business day and hour arithmetic over a Config and a
// holiday lookup. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg      Config
	holidays HolidayChecker
}

// NewEngine creates an engine for the given calendar and holiday lookup.
func NewEngine(cfg Config, holidays HolidayChecker) *Engine {
	return &Engine{cfg: cfg, holidays: holidays}
}

// Calculate runs the full pipeline: the start instant (or now, when the
// request carries no explicit start) is moved into the calendar's timezone,
// snapped to the nearest working instant at or after it, then days are added
// before hours regardless of how the request was ordered. The result is
// returned in UTC.
func (e *Engine) Calculate(req Request, now func() time.Time) time.Time {
	start := now()
	if req.Start != nil {
		start = *req.Start
	}

	m := e.Snap(start.In(e.cfg.Location))
	if req.Days > 0 {
		m = e.AddBusinessDays(m, req.Days)
	}
	if req.Hours > 0 {
		m = e.AddBusinessHours(m, req.Hours)
	}
	return m.UTC()
}

// Snap moves m to the nearest valid working instant at or after it:
// non-working dates roll forward to the next working date at WorkStart,
// before-hours clamps to WorkStart, after-hours rolls to the next working
// date at WorkStart, and lunch clamps to LunchEnd. Moments already inside a
// working sub-window are returned unchanged, so Snap is idempotent.
func (e *Engine) Snap(m time.Time) time.Time {
	for !e.isWorkingDay(m) {
		m = e.startOfWork(m, 1)
	}

	switch h := m.Hour(); {
	case h < e.cfg.WorkStart:
		m = e.startOfWork(m, 0)
	case h >= e.cfg.WorkEnd:
		m = e.startOfWork(m, 1)
		for !e.isWorkingDay(m) {
			m = e.startOfWork(m, 1)
		}
	case h >= e.cfg.LunchStart && h < e.cfg.LunchEnd:
		y, mo, d := m.Date()
		m = time.Date(y, mo, d, e.cfg.LunchEnd, 0, 0, 0, e.cfg.Location)
	}
	return m
}

// AddBusinessDays advances m by n working dates, skipping weekends and
// holidays. The time-of-day is preserved unchanged across every step:
// Tuesday 15:00 plus one day is Wednesday 15:00. m must already be a valid
// working instant.
func (e *Engine) AddBusinessDays(m time.Time, n int) time.Time {
	for i := 0; i < n; i++ {
		m = m.AddDate(0, 0, 1)
		for !e.isWorkingDay(m) {
			m = m.AddDate(0, 0, 1)
		}
	}
	return m
}

// AddBusinessHours consumes n working hours starting at m, skipping the
// lunch break and rolling onto the next working date at WorkStart whenever
// the current date's remaining capacity is exhausted. m must already be a
// valid working instant.
func (e *Engine) AddBusinessHours(m time.Time, n int) time.Time {
	remaining := float64(n)

	for remaining > 0 {
		h := m.Hour()
		frac := float64(m.Minute()) / 60

		var beforeLunch, afterLunch float64
		if h < e.cfg.LunchStart {
			beforeLunch = float64(e.cfg.LunchStart-h) - frac
		}
		switch {
		case h < e.cfg.LunchEnd:
			afterLunch = float64(e.cfg.WorkEnd - e.cfg.LunchEnd)
		case h < e.cfg.WorkEnd:
			afterLunch = float64(e.cfg.WorkEnd-h) - frac
		}
		total := beforeLunch + afterLunch

		if remaining <= total {
			if h >= e.cfg.LunchEnd || remaining <= beforeLunch {
				return m.Add(toDuration(remaining))
			}
			// Crosses the lunch break: the remainder resumes at LunchEnd.
			y, mo, d := m.Date()
			m = time.Date(y, mo, d, e.cfg.LunchEnd, 0, 0, 0, e.cfg.Location)
			return m.Add(toDuration(remaining - beforeLunch))
		}

		// Today is exhausted; carry the remainder onto the next working date.
		remaining -= total
		m = e.startOfWork(m, 1)
		for !e.isWorkingDay(m) {
			m = e.startOfWork(m, 1)
		}
	}
	return m
}

// isWorkingDay reports whether the calendar date of m is a working weekday
// and not a holiday.
func (e *Engine) isWorkingDay(m time.Time) bool {
	if !e.cfg.IsWorkingWeekday(m.Weekday()) {
		return false
	}
	return !e.holidays.IsHoliday(m)
}

// startOfWork returns m's date, offset by addDays, at WorkStart:00:00.000.
func (e *Engine) startOfWork(m time.Time, addDays int) time.Time {
	y, mo, d := m.Date()
	return time.Date(y, mo, d+addDays, e.cfg.WorkStart, 0, 0, 0, e.cfg.Location)
}

// toDuration converts fractional hours to a Duration rounded to the nearest
// millisecond, so minute fractions like 1/60 never leak sub-millisecond
// noise into results.
func toDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour)).Round(time.Millisecond)
}
