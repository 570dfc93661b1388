package taskrepo

import (
	"encoding/json"
	"fmt"

	"github.com/notify/scheduler/internal/biz/schedule"
	domain "github.com/notify/scheduler/internal/biz/task"
	"github.com/notify/scheduler/internal/infra/persistence/commonrepo"
)

func (po *TaskPo) FromDomain(in *domain.NotificationTask) (*TaskPo, error) {
	channelConfig, err := json.Marshal(in.ChannelConfig)
	if err != nil {
		return nil, fmt.Errorf("encode channel config: %w", err)
	}
	scheduleConfig, err := json.Marshal(in.ScheduleConfig)
	if err != nil {
		return nil, fmt.Errorf("encode schedule config: %w", err)
	}
	return &TaskPo{
		Model: commonrepo.Model{
			ID:        in.ID,
			CreatedAt: in.CreatedAt,
			UpdatedAt: in.UpdatedAt,
		},
		Name:            in.Name,
		Description:     in.Description,
		UserID:          in.UserID,
		Channel:         in.Channel,
		ChannelConfig:   channelConfig,
		Content:         in.Content,
		ScheduleType:    in.ScheduleType,
		ScheduleConfig:  scheduleConfig,
		Status:          in.Status,
		NextExecuteAt:   in.NextExecuteAt,
		LastExecuteAt:   in.LastExecuteAt,
		ExecuteCount:    in.ExecuteCount,
		MaxExecuteCount: in.MaxExecuteCount,
	}, nil
}

func (po *TaskPo) ToDomain() (*domain.NotificationTask, error) {
	channelConfig, err := domain.DecodeChannelConfig(po.Channel, po.ChannelConfig)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", po.ID, err)
	}
	scheduleConfig, err := schedule.Decode(po.ScheduleType, po.ScheduleConfig)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", po.ID, err)
	}
	content := map[string]any(po.Content)
	if content == nil {
		content = map[string]any{}
	}
	return &domain.NotificationTask{
		ID:              po.ID,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
		Name:            po.Name,
		Description:     po.Description,
		UserID:          po.UserID,
		Channel:         po.Channel,
		ChannelConfig:   channelConfig,
		Content:         content,
		ScheduleType:    po.ScheduleType,
		ScheduleConfig:  scheduleConfig,
		Status:          po.Status,
		NextExecuteAt:   po.NextExecuteAt,
		LastExecuteAt:   po.LastExecuteAt,
		ExecuteCount:    po.ExecuteCount,
		MaxExecuteCount: po.MaxExecuteCount,
	}, nil
}

func toDomainList(pos []TaskPo) ([]*domain.NotificationTask, error) {
	out := make([]*domain.NotificationTask, 0, len(pos))
	for i := range pos {
		t, err := pos[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
