package main

import (
	"time"

	"github.com/notify/scheduler/internal/api"
	"github.com/notify/scheduler/internal/scheduler"
	"github.com/notify/scheduler/pkg/config"
)

// App is what the wire injector assembles.
type App struct {
	Scheduler *scheduler.Scheduler
	Server    *api.Server
}

func NewApp(sched *scheduler.Scheduler, server *api.Server) *App {
	return &App{Scheduler: sched, Server: server}
}

// provideLocation 调度时区，cron 和任务时间计算共用
func provideLocation(cfg config.SchedulerConfig) (*time.Location, error) {
	return cfg.Location()
}
