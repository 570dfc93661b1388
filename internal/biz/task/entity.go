package task

import (
	"fmt"
	"time"

	"github.com/notify/scheduler/internal/biz/schedule"
	derr "github.com/notify/scheduler/internal/domain/error"
)

type NotificationTask struct {
	ID          uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	Description string
	UserID      uint64

	Channel       Channel
	ChannelConfig ChannelConfig
	Content       map[string]any

	ScheduleType   schedule.Type
	ScheduleConfig schedule.Config

	Status          TaskStatus
	NextExecuteAt   *time.Time
	LastExecuteAt   *time.Time
	ExecuteCount    int
	MaxExecuteCount *int
}

// Validate checks that both config variants match their tags.
func (t *NotificationTask) Validate() error {
	if t.Name == "" {
		return derr.Validation("task name is required")
	}
	if err := validateChannel(t.Channel, t.ChannelConfig); err != nil {
		return err
	}
	if err := validateSchedule(t.ScheduleType, t.ScheduleConfig); err != nil {
		return err
	}
	if t.MaxExecuteCount != nil && *t.MaxExecuteCount < 1 {
		return derr.Validation("maxExecuteCount must be at least 1")
	}
	return nil
}

func validateChannel(ch Channel, cfg ChannelConfig) error {
	if !ch.Valid() {
		return derr.Validation(fmt.Sprintf("unknown channel %q", ch))
	}
	if cfg == nil {
		return derr.Validation(fmt.Sprintf("channel %s requires a config", ch))
	}
	if cfg.Channel() != ch {
		return derr.Validation(fmt.Sprintf("channel config is %s, task channel is %s", cfg.Channel(), ch))
	}
	return cfg.Validate()
}

func validateSchedule(typ schedule.Type, cfg schedule.Config) error {
	if !typ.Valid() {
		return derr.Validation(fmt.Sprintf("unknown schedule type %q", typ))
	}
	if cfg == nil {
		return derr.Validation(fmt.Sprintf("schedule type %s requires a config", typ))
	}
	if cfg.Type() != typ {
		return derr.Validation(fmt.Sprintf("schedule config is %s, task schedule type is %s", cfg.Type(), typ))
	}
	return cfg.Validate()
}

// Reschedule recomputes NextExecuteAt from now.
func (t *NotificationTask) Reschedule(now time.Time) {
	t.NextExecuteAt = schedule.NextExecution(t.ScheduleConfig, now)
}

// Pause keeps NextExecuteAt as an informational value; the due-task query
// ignores paused tasks.
func (t *NotificationTask) Pause() error {
	if t.Status != TaskStatusActive {
		return derr.State(fmt.Sprintf("task %d is %s, only active tasks can be paused", t.ID, t.Status))
	}
	t.Status = TaskStatusPaused
	return nil
}

func (t *NotificationTask) Resume(now time.Time) error {
	if t.Status != TaskStatusPaused {
		return derr.State(fmt.Sprintf("task %d is %s, only paused tasks can be resumed", t.ID, t.Status))
	}
	t.Status = TaskStatusActive
	t.Reschedule(now)
	return nil
}

// ApplyExecution advances the lifecycle after one dispatch attempt. A failed
// attempt always ends in TaskStatusFailed; only Resume brings it back.
func (t *NotificationTask) ApplyExecution(success bool, now time.Time) {
	executedAt := now
	t.LastExecuteAt = &executedAt
	t.ExecuteCount++

	if t.ScheduleType == schedule.TypeOnce {
		t.Status = TaskStatusCompleted
	} else {
		t.Reschedule(now)
		if t.MaxExecuteCount != nil && t.ExecuteCount >= *t.MaxExecuteCount {
			t.Status = TaskStatusCompleted
		}
	}
	if !success {
		t.Status = TaskStatusFailed
	}
	if t.Status != TaskStatusActive {
		t.NextExecuteAt = nil
	}
}

// IsDue reports whether the task should be dispatched at now.
func (t *NotificationTask) IsDue(now time.Time) bool {
	return t.Status == TaskStatusActive && t.NextExecuteAt != nil && !t.NextExecuteAt.After(now)
}
