package accountrepo

import (
	domain "github.com/notify/scheduler/internal/biz/account"
	"github.com/notify/scheduler/internal/infra/persistence/commonrepo"
)

type UserPo struct {
	commonrepo.Model
	Username string `gorm:"column:username;size:64;not null;uniqueIndex"`
	Phone    string `gorm:"column:phone;size:32"`
	Email    string `gorm:"column:email;size:255"`
	OpenID   string `gorm:"column:openid;size:64;index"` // 微信 openid，未绑定为空
}

func (UserPo) TableName() string {
	return "users"
}

func (po *UserPo) ToDomain() *domain.UserProfile {
	return &domain.UserProfile{
		ID:       po.ID,
		Username: po.Username,
		Phone:    po.Phone,
		Email:    po.Email,
		OpenID:   po.OpenID,
	}
}

type WechatAccountPo struct {
	commonrepo.Model
	AccountID string `gorm:"column:account_id;size:64;not null;uniqueIndex"`
	Name      string `gorm:"column:name;size:128"`
	AppID     string `gorm:"column:app_id;size:64;not null"`
	AppSecret string `gorm:"column:app_secret;size:128;not null"`
}

func (WechatAccountPo) TableName() string {
	return "wechat_accounts"
}

func (po *WechatAccountPo) ToDomain() *domain.WechatCredential {
	return &domain.WechatCredential{
		AccountID: po.AccountID,
		Name:      po.Name,
		AppID:     po.AppID,
		AppSecret: po.AppSecret,
	}
}
