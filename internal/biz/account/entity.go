package account

// UserProfile 通知接收人资料
type UserProfile struct {
	ID       uint64
	Username string
	Phone    string
	Email    string
	// OpenID is the user's bound WeChat openid, empty when not bound.
	OpenID string
}

// WechatCredential 微信公众号/小程序凭证
type WechatCredential struct {
	AccountID string
	Name      string
	AppID     string
	AppSecret string
}
