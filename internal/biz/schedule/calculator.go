package schedule

import "time"

// NextExecution returns the next instant cfg fires strictly after now, or nil
// when the schedule has nothing left to run. All wall-clock arithmetic happens
// in now's location.
func NextExecution(cfg Config, now time.Time) *time.Time {
	var next time.Time
	switch c := cfg.(type) {
	case OnceConfig:
		if c.ExecuteAt.IsZero() {
			return nil
		}
		next = c.ExecuteAt
	case IntervalConfig:
		interval := time.Duration(c.IntervalHours * float64(time.Hour))
		if interval <= 0 || c.StartAt.IsZero() {
			return nil
		}
		if c.StartAt.After(now) {
			next = c.StartAt
			break
		}
		elapsed := now.Sub(c.StartAt) / interval
		next = c.StartAt.Add(time.Duration(int64(elapsed)+1) * interval)
	case DailyConfig:
		hour, minute, err := ParseClock(c.Time)
		if err != nil {
			return nil
		}
		next = time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
	case WeeklyConfig:
		hour, minute, err := ParseClock(c.Time)
		if err != nil {
			return nil
		}
		day := now.Day() - int(now.Weekday()) + c.DayOfWeek
		next = time.Date(now.Year(), now.Month(), day, hour, minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
	case MonthlyConfig:
		hour, minute, err := ParseClock(c.Time)
		if err != nil {
			return nil
		}
		next = monthlyAt(now.Year(), now.Month(), c.DayOfMonth, hour, minute, now.Location())
		if !next.After(now) {
			first := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
			next = monthlyAt(first.Year(), first.Month(), c.DayOfMonth, hour, minute, now.Location())
		}
	default:
		return nil
	}
	return &next
}

// monthlyAt clamps day to the month's length so day 31 never spills over.
func monthlyAt(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
