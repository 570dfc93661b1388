package account

import (
	"context"
	"errors"
	"testing"

	derr "github.com/notify/scheduler/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers map[uint64]*UserProfile

func (m memUsers) GetByID(_ context.Context, id uint64) (*UserProfile, error) {
	return m[id], nil
}

type memCredentials map[string]*WechatCredential

func (m memCredentials) GetByAccountID(_ context.Context, id string) (*WechatCredential, error) {
	return m[id], nil
}

func (m memCredentials) Count(context.Context) (int64, error) {
	return int64(len(m)), nil
}

func TestProfile(t *testing.T) {
	l := NewLookup(memUsers{1: {ID: 1, Username: "jo"}}, memCredentials{})

	user, err := l.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "jo", user.Username)

	_, err = l.Profile(context.Background(), 2)
	assert.True(t, errors.Is(err, derr.ErrUserNotFound))
}

func TestWechatCredential(t *testing.T) {
	ctx := context.Background()

	_, err := NewLookup(memUsers{}, memCredentials{}).WechatCredential(ctx, "acc")
	assert.True(t, errors.Is(err, derr.ErrCredentialStoreEmpty))

	l := NewLookup(memUsers{}, memCredentials{"acc": {AccountID: "acc", AppID: "wx1", AppSecret: "s"}})
	cred, err := l.WechatCredential(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, "wx1", cred.AppID)

	_, err = l.WechatCredential(ctx, "other")
	assert.True(t, errors.Is(err, derr.ErrAccountNotFound))
	assert.True(t, derr.IsNotFound(err))
}
