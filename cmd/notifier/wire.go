//go:build wireinject
// +build wireinject

package main

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

import (
	"github.com/google/wire"
	"github.com/notify/scheduler/internal/api"
	"github.com/notify/scheduler/internal/api/handler"
	"github.com/notify/scheduler/internal/biz/account"
	"github.com/notify/scheduler/internal/biz/notifylog"
	"github.com/notify/scheduler/internal/biz/task"
	"github.com/notify/scheduler/internal/channel"
	"github.com/notify/scheduler/internal/infra/persistence/accountrepo"
	"github.com/notify/scheduler/internal/infra/persistence/commonrepo"
	"github.com/notify/scheduler/internal/infra/persistence/notifylogrepo"
	"github.com/notify/scheduler/internal/infra/persistence/taskrepo"
	"github.com/notify/scheduler/internal/orm"
	"github.com/notify/scheduler/internal/scheduler"
	"github.com/notify/scheduler/pkg/config"
	"go.uber.org/zap"
)

func InitializeApp(logger *zap.Logger, cfg config.Config, storage *orm.Storage, db commonrepo.DB) (*App, error) {
	wire.Build(
		NewApp,

		wire.FieldsOf(new(config.Config), "Scheduler", "Channels"),
		provideLocation,
		wire.Bind(new(channel.CredentialLookup), new(*account.Lookup)),
		wire.Bind(new(handler.Pinger), new(*orm.Storage)),
		wire.Bind(new(handler.StatsSource), new(*scheduler.Scheduler)),

		// http api providers
		api.Provider,

		// scheduler + channels
		scheduler.Provider,
		channel.Provider,

		// biz providers
		task.Provider,
		account.Provider,
		notifylog.Provider,

		// infra providers
		taskrepo.Provider,
		notifylogrepo.Provider,
		accountrepo.Provider,
	)
	return nil, nil
}
