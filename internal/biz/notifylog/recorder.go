package notifylog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/notify/scheduler/internal/biz/task"
	"github.com/notify/scheduler/internal/channel"
	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(NewRecorder)

type Recorder struct {
	repo   Repo
	logger *zap.Logger
}

func NewRecorder(repo Repo, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record appends the outcome of one dispatch attempt. sendErr is set when the
// dispatcher refused the task (misconfiguration) and result is then ignored.
func (r *Recorder) Record(ctx context.Context, t *task.NotificationTask, result *channel.Result, sendErr error, executeAt time.Time) (*NotificationLog, error) {
	entry := &NotificationLog{
		ID:        uint64(idgen.NextId()),
		TaskID:    t.ID,
		UserID:    t.UserID,
		Channel:   t.Channel,
		Status:    StatusFailed,
		ExecuteAt: executeAt,
	}

	switch {
	case sendErr != nil:
		msg := sendErr.Error()
		entry.ErrorMessage = &msg
	case result == nil:
		msg := "no dispatch result"
		entry.ErrorMessage = &msg
	default:
		entry.RequestData = result.Request
		entry.ResponseData = result.Data
		if result.Success {
			entry.Status = StatusSuccess
		} else {
			msg := result.Message
			entry.ErrorMessage = &msg
		}
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("record notification log for task %d: %w", t.ID, err)
	}
	r.logger.Info("notification executed",
		zap.Uint64("task_id", t.ID),
		zap.String("channel", string(t.Channel)),
		zap.String("status", string(entry.Status)),
		zap.Stringp("error", entry.ErrorMessage))
	return entry, nil
}
