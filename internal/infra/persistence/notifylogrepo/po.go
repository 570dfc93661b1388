package notifylogrepo

import (
	"encoding/json"
	"time"

	domain "github.com/notify/scheduler/internal/biz/notifylog"
	"github.com/notify/scheduler/internal/biz/task"
	"gorm.io/datatypes"
)

// NotificationLogPo 只追加，没有 updated_at
type NotificationLogPo struct {
	ID           uint64         `gorm:"primarykey"`
	CreatedAt    time.Time      `gorm:"index;autoCreateTime"`
	TaskID       uint64         `gorm:"column:task_id;not null;index:idx_task_execute"`
	UserID       uint64         `gorm:"column:user_id;not null;index"`
	Channel      task.Channel   `gorm:"column:channel;size:32;not null"`
	Status       domain.Status  `gorm:"column:status;size:16;not null;index"`
	RequestData  datatypes.JSON `gorm:"column:request_data;type:json"`
	ResponseData datatypes.JSON `gorm:"column:response_data;type:json"`
	ErrorMessage *string        `gorm:"column:error_message;type:text"`
	ExecuteAt    time.Time      `gorm:"column:execute_at;not null;index:idx_task_execute"`
}

func (NotificationLogPo) TableName() string {
	return "notification_logs"
}

func (po *NotificationLogPo) FromDomain(in *domain.NotificationLog) *NotificationLogPo {
	return &NotificationLogPo{
		ID:           in.ID,
		CreatedAt:    in.CreatedAt,
		TaskID:       in.TaskID,
		UserID:       in.UserID,
		Channel:      in.Channel,
		Status:       in.Status,
		RequestData:  snapshot(in.RequestData),
		ResponseData: snapshot(in.ResponseData),
		ErrorMessage: in.ErrorMessage,
		ExecuteAt:    in.ExecuteAt,
	}
}

func (po *NotificationLogPo) ToDomain() *domain.NotificationLog {
	return &domain.NotificationLog{
		ID:           po.ID,
		CreatedAt:    po.CreatedAt,
		TaskID:       po.TaskID,
		UserID:       po.UserID,
		Channel:      po.Channel,
		Status:       po.Status,
		RequestData:  restore(po.RequestData),
		ResponseData: restore(po.ResponseData),
		ErrorMessage: po.ErrorMessage,
		ExecuteAt:    po.ExecuteAt,
	}
}

// snapshot 无法编码的内容退化为字符串，日志不能因此丢失
func snapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(err.Error())
	}
	return data
}

func restore(data datatypes.JSON) any {
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}
