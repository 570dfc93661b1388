package accountrepo

import (
	"context"
	"errors"

	"github.com/google/wire"
	domain "github.com/notify/scheduler/internal/biz/account"
	"github.com/notify/scheduler/internal/infra/persistence/commonrepo"
	"gorm.io/gorm"
)

var Provider = wire.NewSet(NewUserRepo, NewCredentialRepo)

type UserRepoImpl struct {
	commonrepo.DefaultRepo
}

func NewUserRepo(db commonrepo.DB) domain.UserRepo {
	return &UserRepoImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

func (r *UserRepoImpl) GetByID(ctx context.Context, id uint64) (*domain.UserProfile, error) {
	var po UserPo
	if err := r.Db(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

type CredentialRepoImpl struct {
	commonrepo.DefaultRepo
}

func NewCredentialRepo(db commonrepo.DB) domain.CredentialRepo {
	return &CredentialRepoImpl{DefaultRepo: commonrepo.NewDefaultRepo(db)}
}

func (r *CredentialRepoImpl) GetByAccountID(ctx context.Context, accountID string) (*domain.WechatCredential, error) {
	var po WechatAccountPo
	if err := r.Db(ctx).Where("account_id = ?", accountID).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return po.ToDomain(), nil
}

func (r *CredentialRepoImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.Db(ctx).Model(&WechatAccountPo{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
