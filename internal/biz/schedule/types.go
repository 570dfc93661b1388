package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	derr "github.com/notify/scheduler/internal/domain/error"
)

type Type string

const (
	TypeOnce     Type = "once"
	TypeInterval Type = "interval"
	TypeDaily    Type = "daily"
	TypeWeekly   Type = "weekly"
	TypeMonthly  Type = "monthly"
)

func (t Type) Valid() bool {
	switch t {
	case TypeOnce, TypeInterval, TypeDaily, TypeWeekly, TypeMonthly:
		return true
	}
	return false
}

// Config is the recurrence configuration variant selected by Type.
type Config interface {
	Type() Type
	Validate() error
}

type OnceConfig struct {
	ExecuteAt time.Time `json:"executeAt"`
}

type IntervalConfig struct {
	StartAt       time.Time `json:"startAt"`
	IntervalHours float64   `json:"intervalHours"`
}

type DailyConfig struct {
	Time string `json:"time"`
}

type WeeklyConfig struct {
	DayOfWeek int    `json:"dayOfWeek"` // 0 = Sunday
	Time      string `json:"time"`
}

type MonthlyConfig struct {
	DayOfMonth int    `json:"dayOfMonth"`
	Time       string `json:"time"`
}

func (OnceConfig) Type() Type     { return TypeOnce }
func (IntervalConfig) Type() Type { return TypeInterval }
func (DailyConfig) Type() Type    { return TypeDaily }
func (WeeklyConfig) Type() Type   { return TypeWeekly }
func (MonthlyConfig) Type() Type  { return TypeMonthly }

func (c OnceConfig) Validate() error {
	if c.ExecuteAt.IsZero() {
		return derr.Validation("once schedule requires executeAt")
	}
	return nil
}

// MaxIntervalHours keeps an interval well inside time.Duration (about 292 years).
const MaxIntervalHours = 24 * 365 * 100

func (c IntervalConfig) Validate() error {
	if c.StartAt.IsZero() {
		return derr.Validation("interval schedule requires startAt")
	}
	if c.IntervalHours <= 0 {
		return derr.Validation("intervalHours must be positive")
	}
	if c.IntervalHours > MaxIntervalHours {
		return derr.Validation(fmt.Sprintf("intervalHours must not exceed %d", MaxIntervalHours))
	}
	return nil
}

func (c DailyConfig) Validate() error {
	_, _, err := ParseClock(c.Time)
	return err
}

func (c WeeklyConfig) Validate() error {
	if c.DayOfWeek < 0 || c.DayOfWeek > 6 {
		return derr.Validation("dayOfWeek must be between 0 and 6")
	}
	_, _, err := ParseClock(c.Time)
	return err
}

func (c MonthlyConfig) Validate() error {
	if c.DayOfMonth < 1 || c.DayOfMonth > 31 {
		return derr.Validation("dayOfMonth must be between 1 and 31")
	}
	_, _, err := ParseClock(c.Time)
	return err
}

// ParseClock parses an "HH:mm" wall clock.
func ParseClock(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, derr.Validation(fmt.Sprintf("time %q must be HH:mm", s))
	}
	hour, errH := strconv.Atoi(hh)
	minute, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, derr.Validation(fmt.Sprintf("time %q must be HH:mm", s))
	}
	return hour, minute, nil
}

// Decode unmarshals a persisted or submitted config into the variant for t.
func Decode(t Type, raw []byte) (Config, error) {
	var (
		cfg Config
		err error
	)
	switch t {
	case TypeOnce:
		var c OnceConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case TypeInterval:
		var c IntervalConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case TypeDaily:
		var c DailyConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case TypeWeekly:
		var c WeeklyConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	case TypeMonthly:
		var c MonthlyConfig
		err = json.Unmarshal(raw, &c)
		cfg = c
	default:
		return nil, derr.Validation(fmt.Sprintf("unknown schedule type %q", t))
	}
	if err != nil {
		return nil, derr.NewBusinessError(derr.CodeValidation, fmt.Sprintf("decode %s schedule config", t), err)
	}
	return cfg, nil
}
