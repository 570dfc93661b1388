package notifylog

import (
	"context"

	"github.com/samber/mo"
)

type Repo interface {
	Create(ctx context.Context, log *NotificationLog) error
	List(ctx context.Context, filter LogFilter, offset, limit int) ([]*NotificationLog, int64, error)
}

type LogFilter struct {
	TaskID mo.Option[uint64]
	Status mo.Option[Status]
}
