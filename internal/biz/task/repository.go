package task

import (
	"context"
	"time"

	"github.com/samber/mo"
)

type Repo interface {
	// Execute runs fn in one transaction; calls made with its ctx join it.
	Execute(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, task *NotificationTask) error
	// GetByID returns (nil, nil) when the task does not exist.
	GetByID(ctx context.Context, id uint64) (*NotificationTask, error)
	Save(ctx context.Context, task *NotificationTask) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, filter TaskFilter, offset, limit int) ([]*NotificationTask, int64, error)

	// FindDue 查找 status=active 且 next_execute_at <= now 的任务
	FindDue(ctx context.Context, now time.Time) ([]*NotificationTask, error)
}

type TaskFilter struct {
	UserID  mo.Option[uint64]
	Channel mo.Option[Channel]
	Status  mo.Option[TaskStatus]
}
