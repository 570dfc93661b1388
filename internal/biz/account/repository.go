package account

import "context"

type UserRepo interface {
	// GetByID returns (nil, nil) when the user does not exist.
	GetByID(ctx context.Context, id uint64) (*UserProfile, error)
}

type CredentialRepo interface {
	// GetByAccountID returns (nil, nil) when the account does not exist.
	GetByAccountID(ctx context.Context, accountID string) (*WechatCredential, error)
	Count(ctx context.Context) (int64, error)
}
