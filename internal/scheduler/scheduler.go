package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/google/wire"
	"github.com/notify/scheduler/internal/biz/account"
	"github.com/notify/scheduler/internal/biz/notifylog"
	"github.com/notify/scheduler/internal/biz/task"
	"github.com/notify/scheduler/internal/channel"
	derr "github.com/notify/scheduler/internal/domain/error"
	"github.com/notify/scheduler/pkg/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(
	New,
	wire.Bind(new(TaskStore), new(*task.Usecase)),
	wire.Bind(new(ProfileLookup), new(*account.Lookup)),
	wire.Bind(new(Dispatcher), new(*channel.Dispatcher)),
	wire.Bind(new(LogRecorder), new(*notifylog.Recorder)),
)

type TaskStore interface {
	FindDue(ctx context.Context, now time.Time) ([]*task.NotificationTask, error)
	Get(ctx context.Context, id uint64) (*task.NotificationTask, error)
	RecordExecution(ctx context.Context, id uint64, success bool) (*task.NotificationTask, error)
}

type ProfileLookup interface {
	Profile(ctx context.Context, userID uint64) (*account.UserProfile, error)
}

type Dispatcher interface {
	Send(ctx context.Context, msg *channel.Message) (*channel.Result, error)
}

type LogRecorder interface {
	Record(ctx context.Context, t *task.NotificationTask, result *channel.Result, sendErr error, executeAt time.Time) (*notifylog.NotificationLog, error)
}

// Scheduler 定时扫描到期任务并逐个串行发送。假定单实例运行，没有分布式锁。
type Scheduler struct {
	config     config.SchedulerConfig
	cron       *cron.Cron
	location   *time.Location
	logger     *zap.Logger
	tasks      TaskStore
	profiles   ProfileLookup
	dispatcher Dispatcher
	recorder   LogRecorder

	// runMu serializes ticks and manual executions
	runMu sync.Mutex

	statsMu  sync.RWMutex
	lastTick *TickStats
	now      func() time.Time
}

func New(
	cfg config.SchedulerConfig,
	logger *zap.Logger,
	tasks TaskStore,
	profiles ProfileLookup,
	dispatcher Dispatcher,
	recorder LogRecorder,
) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	s := &Scheduler{
		config:     cfg,
		location:   loc,
		logger:     logger,
		tasks:      tasks,
		profiles:   profiles,
		dispatcher: dispatcher,
		recorder:   recorder,
		now:        func() time.Time { return time.Now().In(loc) },
	}

	cronLogger := NewCronLogger(logger)
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := s.cron.AddFunc(cfg.TickSpec, s.onTick); err != nil {
		return nil, fmt.Errorf("invalid tick spec %q: %w", cfg.TickSpec, err)
	}
	return s, nil
}

// Start 启动定时器
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("tick_spec", s.config.TickSpec),
		zap.String("timezone", s.location.String()))

	if s.config.RunOnStart {
		go s.onTick()
	}
	s.cron.Start()
}

// Stop 停止定时器并等待正在执行的 tick 结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) onTick() {
	if _, err := s.Tick(context.Background()); err != nil {
		s.logger.Error("scheduler tick failed", zap.Error(err))
	}
}

// Tick processes every due task in repository order. A failure on one task
// is recorded against that task only.
func (s *Scheduler) Tick(ctx context.Context) (*TickStats, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	stats := &TickStats{ID: uuid.NewString(), StartedAt: s.now()}
	logger := s.logger.With(zap.String("tick_id", stats.ID))

	due, err := s.tasks.FindDue(ctx, stats.StartedAt)
	if err != nil {
		stats.FinishedAt = s.now()
		stats.Error = err.Error()
		s.setLastTick(stats)
		return stats, err
	}
	stats.Due = len(due)
	if len(due) > 0 {
		logger.Info("processing due tasks", zap.Int("count", len(due)))
	}

	for _, t := range due {
		result, err := s.execute(ctx, t, logger)
		if err == nil && result != nil && result.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}

	stats.FinishedAt = s.now()
	s.setLastTick(stats)
	logger.Debug("tick finished",
		zap.Int("due", stats.Due),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Duration("elapsed", stats.FinishedAt.Sub(stats.StartedAt)))
	return stats, nil
}

// ExecuteNow dispatches a task immediately, whatever its due time, through
// the same log and lifecycle path as a tick.
func (s *Scheduler) ExecuteNow(ctx context.Context, id uint64) (*channel.Result, error) {
	// 先拿锁再读任务，避免等待中的 tick 把读到的副本变旧
	s.runMu.Lock()
	defer s.runMu.Unlock()

	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, t, s.logger.With(zap.String("trigger", "manual")))
}

// execute runs send, log and lifecycle update for one task. The returned
// error is the dispatch error, already recorded as a failed execution.
func (s *Scheduler) execute(ctx context.Context, t *task.NotificationTask, logger *zap.Logger) (result *channel.Result, sendErr error) {
	executeAt := s.now()
	logger = logger.With(zap.Uint64("task_id", t.ID), zap.String("channel", string(t.Channel)))

	result, sendErr = s.dispatch(ctx, t)
	if sendErr != nil {
		logger.Error("task dispatch failed", zap.Error(sendErr))
	}

	if _, err := s.recorder.Record(ctx, t, result, sendErr, executeAt); err != nil {
		logger.Error("failed to record notification log", zap.Error(err))
	}

	success := sendErr == nil && result != nil && result.Success
	if _, err := s.tasks.RecordExecution(ctx, t.ID, success); err != nil {
		logger.Error("failed to update task after execution", zap.Error(err))
	}
	return result, sendErr
}

func (s *Scheduler) dispatch(ctx context.Context, t *task.NotificationTask) (result *channel.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("panic while dispatching task %d: %v", t.ID, r)
		}
	}()

	// 用户不存在时仍可发送，只是没有用户变量
	user, err := s.profiles.Profile(ctx, t.UserID)
	if err != nil && !derr.IsNotFound(err) {
		return nil, err
	}
	return s.dispatcher.Send(ctx, channel.NewMessage(t, user))
}
