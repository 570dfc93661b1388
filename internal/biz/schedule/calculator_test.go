package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestNextExecutionOnce(t *testing.T) {
	executeAt := at(2026, 3, 1, 9, 0)

	next := NextExecution(OnceConfig{ExecuteAt: executeAt}, at(2026, 1, 1, 0, 0))
	require.NotNil(t, next)
	assert.True(t, next.Equal(executeAt))

	// a past instant is returned verbatim, never recomputed
	next = NextExecution(OnceConfig{ExecuteAt: executeAt}, at(2026, 5, 1, 0, 0))
	require.NotNil(t, next)
	assert.True(t, next.Equal(executeAt))

	assert.Nil(t, NextExecution(OnceConfig{}, at(2026, 1, 1, 0, 0)))
}

func TestNextExecutionInterval(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 17, 33, 0, time.UTC)

	cases := []struct {
		name string
		cfg  IntervalConfig
		want time.Time
	}{
		{"next multiple after now", IntervalConfig{StartAt: now.Add(-2 * time.Hour), IntervalHours: 1}, now.Add(-2 * time.Hour).Add(3 * time.Hour)},
		{"anchor in the future", IntervalConfig{StartAt: now.Add(30 * time.Minute), IntervalHours: 6}, now.Add(30 * time.Minute)},
		{"anchor equals now", IntervalConfig{StartAt: now, IntervalHours: 2}, now.Add(2 * time.Hour)},
		{"fractional hours", IntervalConfig{StartAt: now.Add(-45 * time.Minute), IntervalHours: 0.5}, now.Add(-45 * time.Minute).Add(time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := NextExecution(tc.cfg, now)
			require.NotNil(t, next)
			assert.True(t, next.Equal(tc.want), "got %s want %s", next, tc.want)
			assert.True(t, next.After(now))
		})
	}

	assert.Nil(t, NextExecution(IntervalConfig{StartAt: now, IntervalHours: 0}, now))
}

func TestNextExecutionDaily(t *testing.T) {
	cfg := DailyConfig{Time: "09:00"}

	next := NextExecution(cfg, at(2026, 6, 15, 8, 0))
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 6, 15, 9, 0), *next)

	next = NextExecution(cfg, at(2026, 6, 15, 10, 0))
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 6, 16, 9, 0), *next)

	// exactly at the fire time counts as already passed
	next = NextExecution(cfg, at(2026, 6, 15, 9, 0))
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 6, 16, 9, 0), *next)

	// seconds of now never leak into the result
	next = NextExecution(cfg, time.Date(2026, 12, 31, 8, 59, 59, 999, time.UTC))
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 12, 31, 9, 0), *next)
}

func TestNextExecutionWeekly(t *testing.T) {
	// 2026-06-17 is a Wednesday
	wednesday := at(2026, 6, 17, 12, 0)
	require.Equal(t, time.Wednesday, wednesday.Weekday())

	next := NextExecution(WeeklyConfig{DayOfWeek: 5, Time: "08:30"}, wednesday)
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 6, 19, 8, 30), *next)

	// Monday already passed this week
	next = NextExecution(WeeklyConfig{DayOfWeek: 1, Time: "08:30"}, wednesday)
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 6, 22, 8, 30), *next)

	// same day, later hour
	next = NextExecution(WeeklyConfig{DayOfWeek: 3, Time: "18:00"}, wednesday)
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 6, 17, 18, 0), *next)

	// Sunday is day 0
	next = NextExecution(WeeklyConfig{DayOfWeek: 0, Time: "00:00"}, wednesday)
	require.NotNil(t, next)
	assert.Equal(t, time.Sunday, next.Weekday())
	assert.Equal(t, at(2026, 6, 21, 0, 0), *next)
}

func TestNextExecutionMonthly(t *testing.T) {
	cfg := MonthlyConfig{DayOfMonth: 31, Time: "09:00"}

	// February of a common year clamps to the 28th
	next := NextExecution(cfg, at(2026, 2, 3, 10, 0))
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 2, 28, 9, 0), *next)

	// leap year clamps to the 29th
	next = NextExecution(cfg, at(2028, 2, 3, 10, 0))
	require.NotNil(t, next)
	assert.Equal(t, at(2028, 2, 29, 9, 0), *next)

	// passed this month: advance and re-clamp to April's 30 days
	next = NextExecution(cfg, at(2026, 3, 31, 10, 0))
	require.NotNil(t, next)
	assert.Equal(t, at(2026, 4, 30, 9, 0), *next)

	// year rollover
	next = NextExecution(MonthlyConfig{DayOfMonth: 15, Time: "07:05"}, at(2026, 12, 20, 0, 0))
	require.NotNil(t, next)
	assert.Equal(t, at(2027, 1, 15, 7, 5), *next)

	// January 31 passed: February clamps instead of wrapping into March
	next = NextExecution(cfg, at(2026, 1, 31, 23, 0))
	require.NotNil(t, next)
	assert.Equal(t, time.February, next.Month())
	assert.Equal(t, 28, next.Day())
}

func TestNextExecutionUnknownType(t *testing.T) {
	assert.Nil(t, NextExecution(nil, at(2026, 1, 1, 0, 0)))
	assert.Nil(t, NextExecution(DailyConfig{Time: "25:00"}, at(2026, 1, 1, 0, 0)))
}

func TestNextExecutionKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 6, 15, 8, 0, 0, 0, loc)

	next := NextExecution(DailyConfig{Time: "09:00"}, now)
	require.NotNil(t, next)
	assert.Equal(t, loc, next.Location())
	assert.Equal(t, 9, next.Hour())
}

func TestDecodeAndValidate(t *testing.T) {
	cfg, err := Decode(TypeWeekly, []byte(`{"dayOfWeek":2,"time":"07:30"}`))
	require.NoError(t, err)
	assert.Equal(t, WeeklyConfig{DayOfWeek: 2, Time: "07:30"}, cfg)
	assert.NoError(t, cfg.Validate())

	cfg, err = Decode(TypeOnce, []byte(`{"executeAt":"2026-03-01T09:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, at(2026, 3, 1, 9, 0), cfg.(OnceConfig).ExecuteAt)

	_, err = Decode("yearly", []byte(`{}`))
	assert.Error(t, err)

	_, err = Decode(TypeDaily, []byte(`not json`))
	assert.Error(t, err)

	assert.Error(t, WeeklyConfig{DayOfWeek: 7, Time: "07:30"}.Validate())
	assert.Error(t, MonthlyConfig{DayOfMonth: 0, Time: "07:30"}.Validate())
	assert.Error(t, DailyConfig{Time: "7pm"}.Validate())
	assert.Error(t, IntervalConfig{StartAt: at(2026, 1, 1, 0, 0)}.Validate())
	assert.Error(t, IntervalConfig{StartAt: at(2026, 1, 1, 0, 0), IntervalHours: 1e7}.Validate())
	assert.NoError(t, IntervalConfig{StartAt: at(2026, 1, 1, 0, 0), IntervalHours: MaxIntervalHours}.Validate())
	assert.Error(t, OnceConfig{}.Validate())
}
