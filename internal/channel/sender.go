package channel

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/notify/scheduler/internal/biz/account"
	"github.com/notify/scheduler/internal/biz/task"
	derr "github.com/notify/scheduler/internal/domain/error"
	"github.com/notify/scheduler/pkg/config"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(NewHTTPClient, NewDispatcher)

// Message 一次发送所需的全部上下文
type Message struct {
	Task *task.NotificationTask
	// Recipient is the task owner, nil when the profile could not be found.
	Recipient *account.UserProfile
	Vars      map[string]any
}

func NewMessage(t *task.NotificationTask, recipient *account.UserProfile) *Message {
	return &Message{Task: t, Recipient: recipient, Vars: BuildVars(recipient, t.Content)}
}

// Result is the uniform outcome of a send. Request is the snapshot of what was
// sent, Data the remote response.
type Result struct {
	Success bool
	Message string
	Data    any
	Request any
}

func failed(request any, format string, args ...any) *Result {
	return &Result{Success: false, Message: fmt.Sprintf(format, args...), Request: request}
}

// Sender delivers a message over one channel. Remote failures come back as
// Result.Success=false; the error return is reserved for misconfiguration.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
}

type CredentialLookup interface {
	WechatCredential(ctx context.Context, accountID string) (*account.WechatCredential, error)
}

type Dispatcher struct {
	senders map[task.Channel]Sender
	logger  *zap.Logger
}

func NewDispatcher(client *HTTPClient, credentials CredentialLookup, cfg config.ChannelsConfig, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{senders: map[task.Channel]Sender{}, logger: logger}
	d.Register(task.ChannelFeishu, NewFeishuSender(client, cfg.FeishuBaseURL))
	d.Register(task.ChannelWechatMini, NewWechatMiniSender(client, credentials, cfg.WechatBaseURL))
	d.Register(task.ChannelWechatMp, NewWechatMpSender(client, credentials, cfg.WechatBaseURL))
	d.Register(task.ChannelURL, NewWebhookSender(client))
	return d
}

func (d *Dispatcher) Register(ch task.Channel, s Sender) {
	d.senders[ch] = s
}

func (d *Dispatcher) Send(ctx context.Context, msg *Message) (*Result, error) {
	s, ok := d.senders[msg.Task.Channel]
	if !ok {
		return nil, derr.Validation(fmt.Sprintf("no sender registered for channel %q", msg.Task.Channel))
	}
	if msg.Vars == nil {
		msg.Vars = BuildVars(msg.Recipient, msg.Task.Content)
	}

	result, err := s.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		d.logger.Warn("notification not delivered",
			zap.Uint64("task_id", msg.Task.ID),
			zap.String("channel", string(msg.Task.Channel)),
			zap.String("message", result.Message))
	}
	return result, nil
}

// configAs extracts the expected config variant or reports a mismatch.
func configAs[T task.ChannelConfig](t *task.NotificationTask) (T, error) {
	cfg, ok := t.ChannelConfig.(T)
	if !ok {
		var zero T
		return zero, derr.Validation(fmt.Sprintf("task %d has %T config for channel %s", t.ID, t.ChannelConfig, t.Channel))
	}
	return cfg, nil
}
