package account

import (
	"context"
	"fmt"

	"github.com/google/wire"
	derr "github.com/notify/scheduler/internal/domain/error"
)

var Provider = wire.NewSet(NewLookup)

// Lookup resolves recipients and channel credentials for the dispatcher.
type Lookup struct {
	users       UserRepo
	credentials CredentialRepo
}

func NewLookup(users UserRepo, credentials CredentialRepo) *Lookup {
	return &Lookup{users: users, credentials: credentials}
}

func (l *Lookup) Profile(ctx context.Context, userID uint64) (*UserProfile, error) {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	} else if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, derr.ErrUserNotFound)
	}
	return user, nil
}

// WechatCredential fails with ErrCredentialStoreEmpty before ErrAccountNotFound
// so a store that was never provisioned is reported as such.
func (l *Lookup) WechatCredential(ctx context.Context, accountID string) (*WechatCredential, error) {
	count, err := l.credentials.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count wechat accounts: %w", err)
	}
	if count == 0 {
		return nil, derr.ErrCredentialStoreEmpty
	}

	cred, err := l.credentials.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get wechat account %s: %w", accountID, err)
	} else if cred == nil {
		return nil, fmt.Errorf("wechat account %s: %w", accountID, derr.ErrAccountNotFound)
	}
	return cred, nil
}
