package taskrepo

import (
	"time"

	"github.com/notify/scheduler/internal/biz/schedule"
	domain "github.com/notify/scheduler/internal/biz/task"
	"github.com/notify/scheduler/internal/infra/persistence/commonrepo"
	"gorm.io/datatypes"
)

type TaskPo struct {
	commonrepo.Model
	Name        string `gorm:"column:name;size:255;not null"`
	Description string `gorm:"column:description;type:text"`
	UserID      uint64 `gorm:"column:user_id;not null;index"`

	Channel       domain.Channel    `gorm:"column:channel;size:32;not null;index"`
	ChannelConfig datatypes.JSON    `gorm:"column:channel_config;type:json"` // 按 channel 解析
	Content       datatypes.JSONMap `gorm:"column:content;type:json"`

	ScheduleType   schedule.Type  `gorm:"column:schedule_type;size:32;not null"`
	ScheduleConfig datatypes.JSON `gorm:"column:schedule_config;type:json"` // 按 schedule_type 解析

	Status          domain.TaskStatus `gorm:"column:status;size:32;not null;index:idx_status_next_execute"`
	NextExecuteAt   *time.Time        `gorm:"column:next_execute_at;index:idx_status_next_execute"`
	LastExecuteAt   *time.Time        `gorm:"column:last_execute_at"`
	ExecuteCount    int               `gorm:"column:execute_count;not null;default:0"`
	MaxExecuteCount *int              `gorm:"column:max_execute_count"`
}

func (TaskPo) TableName() string {
	return "notification_tasks"
}
