package notifylog

import (
	"time"

	"github.com/notify/scheduler/internal/biz/task"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// NotificationLog 每次发送尝试一条，只追加不修改
type NotificationLog struct {
	ID           uint64
	CreatedAt    time.Time
	TaskID       uint64
	UserID       uint64
	Channel      task.Channel
	Status       Status
	RequestData  any
	ResponseData any
	ErrorMessage *string
	ExecuteAt    time.Time
}
