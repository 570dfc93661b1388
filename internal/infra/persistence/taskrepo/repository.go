package taskrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/wire"
	domain "github.com/notify/scheduler/internal/biz/task"
	derr "github.com/notify/scheduler/internal/domain/error"
	"github.com/notify/scheduler/internal/infra/persistence/commonrepo"
	"gorm.io/gorm"
)

var Provider = wire.NewSet(NewMysqlRepositoryImpl)

type MysqlRepositoryImpl struct {
	commonrepo.DefaultRepo
}

func NewMysqlRepositoryImpl(db commonrepo.DB) domain.Repo {
	return &MysqlRepositoryImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

func (r *MysqlRepositoryImpl) Create(ctx context.Context, task *domain.NotificationTask) error {
	po, err := new(TaskPo).FromDomain(task)
	if err != nil {
		return err
	}
	if err := r.Db(ctx).Create(po).Error; err != nil {
		return err
	}
	task.ID = po.ID
	task.CreatedAt = po.CreatedAt
	task.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) GetByID(ctx context.Context, id uint64) (*domain.NotificationTask, error) {
	var po TaskPo
	if err := r.Db(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain()
}

func (r *MysqlRepositoryImpl) Save(ctx context.Context, task *domain.NotificationTask) error {
	po, err := new(TaskPo).FromDomain(task)
	if err != nil {
		return err
	}
	// 只更新已有行，不能用 Save（UPDATE 命中0行时会重新插入）
	res := r.Db(ctx).Model(&TaskPo{}).Select("*").Omit("id", "created_at").Where("id = ?", po.ID).Updates(po)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.Db(ctx).Model(&TaskPo{}).Where("id = ?", po.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("task %d: %w", po.ID, derr.ErrTaskNotFound)
		}
	}
	task.UpdatedAt = po.UpdatedAt
	return nil
}

func (r *MysqlRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.Db(ctx).Delete(&TaskPo{}, id).Error
}

func (r *MysqlRepositoryImpl) List(ctx context.Context, filter domain.TaskFilter, offset, limit int) ([]*domain.NotificationTask, int64, error) {
	query := r.Db(ctx).Model(&TaskPo{})
	if filter.UserID.IsPresent() {
		query = query.Where("user_id = ?", filter.UserID.MustGet())
	}
	if filter.Channel.IsPresent() {
		query = query.Where("channel = ?", filter.Channel.MustGet())
	}
	if filter.Status.IsPresent() {
		query = query.Where("status = ?", filter.Status.MustGet())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []TaskPo
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	tasks, err := toDomainList(pos)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *MysqlRepositoryImpl) FindDue(ctx context.Context, now time.Time) ([]*domain.NotificationTask, error) {
	var pos []TaskPo
	if err := r.Db(ctx).
		Where("status = ? AND next_execute_at <= ?", domain.TaskStatusActive, now).
		Order("next_execute_at ASC").
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return toDomainList(pos)
}
