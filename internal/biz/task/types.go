package task

type Channel string

const (
	ChannelFeishu     Channel = "feishu"
	ChannelWechatMini Channel = "wechat_mini"
	ChannelWechatMp   Channel = "wechat_mp"
	ChannelURL        Channel = "url"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelFeishu, ChannelWechatMini, ChannelWechatMp, ChannelURL:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusPaused    TaskStatus = "paused"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)
