package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/notify/scheduler/internal/biz/schedule"
	derr "github.com/notify/scheduler/internal/domain/error"
	"github.com/samber/mo"
	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(NewUsecaseIn)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Usecase owns every status transition of a notification task.
type Usecase struct {
	repo   Repo
	logger *zap.Logger
	now    func() time.Time
}

func NewUsecase(repo Repo, logger *zap.Logger) *Usecase {
	return &Usecase{repo: repo, logger: logger, now: time.Now}
}

// NewUsecaseIn is NewUsecase with schedules resolved in loc.
func NewUsecaseIn(repo Repo, logger *zap.Logger, loc *time.Location) *Usecase {
	u := NewUsecase(repo, logger)
	u.SetLocation(loc)
	return u
}

// SetLocation makes wall-clock schedules (daily, weekly, monthly) resolve in loc.
func (u *Usecase) SetLocation(loc *time.Location) {
	u.now = func() time.Time { return time.Now().In(loc) }
}

type CreateRequest struct {
	Name            string
	Description     string
	UserID          uint64
	Channel         Channel
	ChannelConfig   ChannelConfig
	Content         map[string]any
	ScheduleType    schedule.Type
	ScheduleConfig  schedule.Config
	MaxExecuteCount *int
}

func (u *Usecase) Create(ctx context.Context, req *CreateRequest) (*NotificationTask, error) {
	task := &NotificationTask{
		ID:              uint64(idgen.NextId()),
		Name:            req.Name,
		Description:     req.Description,
		UserID:          req.UserID,
		Channel:         req.Channel,
		ChannelConfig:   req.ChannelConfig,
		Content:         req.Content,
		ScheduleType:    req.ScheduleType,
		ScheduleConfig:  req.ScheduleConfig,
		Status:          TaskStatusActive,
		MaxExecuteCount: req.MaxExecuteCount,
	}
	if task.Content == nil {
		task.Content = map[string]any{}
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	task.Reschedule(u.now())
	if task.NextExecuteAt == nil {
		return nil, derr.Validation("schedule never fires")
	}

	if err := u.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	u.logger.Info("task created",
		zap.Uint64("task_id", task.ID),
		zap.String("channel", string(task.Channel)),
		zap.String("schedule_type", string(task.ScheduleType)),
		zap.Timep("next_execute_at", task.NextExecuteAt))
	return task, nil
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*NotificationTask, error) {
	task, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	} else if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, derr.ErrTaskNotFound)
	}
	return task, nil
}

type Page struct {
	Page     int
	PageSize int
}

type PageResult struct {
	Items    []*NotificationTask
	Total    int64
	Page     int
	PageSize int
}

func (u *Usecase) List(ctx context.Context, filter TaskFilter, page Page) (*PageResult, error) {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = defaultPageSize
	} else if page.PageSize > maxPageSize {
		page.PageSize = maxPageSize
	}

	items, total, err := u.repo.List(ctx, filter, (page.Page-1)*page.PageSize, page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return &PageResult{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

type UpdateRequest struct {
	Name            mo.Option[string]
	Description     mo.Option[string]
	Content         mo.Option[map[string]any]
	Channel         mo.Option[Channel]
	ChannelConfig   mo.Option[ChannelConfig]
	ScheduleType    mo.Option[schedule.Type]
	ScheduleConfig  mo.Option[schedule.Config]
	MaxExecuteCount mo.Option[*int]
}

func (u *Usecase) Update(ctx context.Context, id uint64, req *UpdateRequest) (*NotificationTask, error) {
	return u.mutate(ctx, id, "update", func(task *NotificationTask) error {
		if v, ok := req.Name.Get(); ok {
			task.Name = v
		}
		if v, ok := req.Description.Get(); ok {
			task.Description = v
		}
		if v, ok := req.Content.Get(); ok {
			task.Content = v
		}
		if v, ok := req.MaxExecuteCount.Get(); ok {
			task.MaxExecuteCount = v
		}

		// a new channel without a new config would leave the old variant behind
		if req.Channel.IsPresent() && !req.ChannelConfig.IsPresent() && req.Channel.MustGet() != task.Channel {
			return derr.Validation("changing channel requires a new channel config")
		}
		task.Channel = req.Channel.OrElse(task.Channel)
		task.ChannelConfig = req.ChannelConfig.OrElse(task.ChannelConfig)

		scheduleChanged := req.ScheduleType.IsPresent() || req.ScheduleConfig.IsPresent()
		if req.ScheduleType.IsPresent() && !req.ScheduleConfig.IsPresent() && req.ScheduleType.MustGet() != task.ScheduleType {
			return derr.Validation("changing schedule type requires a new schedule config")
		}
		task.ScheduleType = req.ScheduleType.OrElse(task.ScheduleType)
		task.ScheduleConfig = req.ScheduleConfig.OrElse(task.ScheduleConfig)

		if err := task.Validate(); err != nil {
			return err
		}

		// completed and failed tasks stay unscheduled until resumed
		if scheduleChanged && (task.Status == TaskStatusActive || task.Status == TaskStatusPaused) {
			task.Reschedule(u.now())
		}
		return nil
	})
}

func (u *Usecase) Delete(ctx context.Context, id uint64) error {
	err := u.repo.Execute(ctx, func(ctx context.Context) error {
		if _, err := u.Get(ctx, id); err != nil {
			return err
		}
		if err := u.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete task %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	u.logger.Info("task deleted", zap.Uint64("task_id", id))
	return nil
}

func (u *Usecase) Pause(ctx context.Context, id uint64) (*NotificationTask, error) {
	task, err := u.mutate(ctx, id, "pause", func(task *NotificationTask) error {
		return task.Pause()
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info("task paused", zap.Uint64("task_id", id))
	return task, nil
}

func (u *Usecase) Resume(ctx context.Context, id uint64) (*NotificationTask, error) {
	task, err := u.mutate(ctx, id, "resume", func(task *NotificationTask) error {
		return task.Resume(u.now())
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info("task resumed",
		zap.Uint64("task_id", id),
		zap.Timep("next_execute_at", task.NextExecuteAt))
	return task, nil
}

// mutate loads a task, applies fn and saves it in one transaction. Nothing is
// saved when fn fails.
func (u *Usecase) mutate(ctx context.Context, id uint64, op string, fn func(task *NotificationTask) error) (*NotificationTask, error) {
	var out *NotificationTask
	err := u.repo.Execute(ctx, func(ctx context.Context) error {
		task, err := u.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(task); err != nil {
			return err
		}
		if err := u.repo.Save(ctx, task); err != nil {
			return fmt.Errorf("%s task %d: %w", op, id, err)
		}
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordExecution persists the lifecycle outcome of one dispatch attempt.
// The task is reloaded inside a transaction so changes made while the send
// was in flight are kept. A task deleted meanwhile stays deleted and
// (nil, nil) is returned.
func (u *Usecase) RecordExecution(ctx context.Context, id uint64, success bool) (*NotificationTask, error) {
	var out *NotificationTask
	err := u.repo.Execute(ctx, func(ctx context.Context) error {
		task, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("record execution of task %d: %w", id, err)
		} else if task == nil {
			return nil
		}
		task.ApplyExecution(success, u.now())
		if err := u.repo.Save(ctx, task); err != nil {
			return fmt.Errorf("record execution of task %d: %w", id, err)
		}
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		u.logger.Info("task deleted during execution, nothing recorded", zap.Uint64("task_id", id))
		return nil, nil
	}
	u.logger.Debug("task execution recorded",
		zap.Uint64("task_id", id),
		zap.Bool("success", success),
		zap.String("status", string(out.Status)),
		zap.Int("execute_count", out.ExecuteCount),
		zap.Timep("next_execute_at", out.NextExecuteAt))
	return out, nil
}

func (u *Usecase) FindDue(ctx context.Context, now time.Time) ([]*NotificationTask, error) {
	tasks, err := u.repo.FindDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("find due tasks: %w", err)
	}
	return tasks, nil
}
