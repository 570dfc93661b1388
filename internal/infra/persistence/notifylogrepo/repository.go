package notifylogrepo

import (
	"context"

	"github.com/google/wire"
	domain "github.com/notify/scheduler/internal/biz/notifylog"
	"github.com/notify/scheduler/internal/infra/persistence/commonrepo"
	"github.com/samber/lo"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

func (r *MysqlRepositoryImpl) Create(ctx context.Context, log *domain.NotificationLog) error {
	po := new(NotificationLogPo).FromDomain(log)
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	log.ID = po.ID
	log.CreatedAt = po.CreatedAt
	return nil
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter domain.LogFilter, offset, limit int) ([]*domain.NotificationLog, int64, error) {
	query := r.Db(ctx).Model(&NotificationLogPo{})
	if filter.TaskID.IsPresent() {
		query = query.Where("task_id = ?", filter.TaskID.MustGet())
	}
	if filter.Status.IsPresent() {
		query = query.Where("status = ?", filter.Status.MustGet())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []NotificationLogPo
	if err := query.Order("execute_at DESC").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return lo.Map(pos, func(po NotificationLogPo, _ int) *domain.NotificationLog {
		return po.ToDomain()
	}), total, nil
}
