package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notify/scheduler/internal/api"
	"github.com/notify/scheduler/internal/biz/account"
	"github.com/notify/scheduler/internal/biz/notifylog"
	"github.com/notify/scheduler/internal/biz/task"
	"github.com/notify/scheduler/internal/channel"
	"github.com/notify/scheduler/internal/infra/persistence/accountrepo"
	"github.com/notify/scheduler/internal/infra/persistence/notifylogrepo"
	"github.com/notify/scheduler/internal/infra/persistence/taskrepo"
	"github.com/notify/scheduler/internal/orm"
	"github.com/notify/scheduler/internal/scheduler"
	"github.com/notify/scheduler/pkg/config"
	"github.com/notify/scheduler/pkg/logger"
	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// WorkerIdBitLength 默认6，最多64个节点
	var options = idgen.NewIdGeneratorOptions(1)
	options.BaseTime = 1755937966000
	idgen.SetIdGenerator(options)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting notification scheduler",
		zap.String("tick_spec", cfg.Scheduler.TickSpec))

	storage, err := orm.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer storage.Close()

	loc, err := provideLocation(cfg.Scheduler)
	if err != nil {
		zapLogger.Fatal("Invalid scheduler timezone", zap.Error(err))
	}

	taskUsecase := task.NewUsecaseIn(taskrepo.NewMysqlRepositoryImpl(storage.DB()), zapLogger, loc)

	lookup := account.NewLookup(
		accountrepo.NewUserRepo(storage.DB()),
		accountrepo.NewCredentialRepo(storage.DB()),
	)
	dispatcher := channel.NewDispatcher(channel.NewHTTPClient(cfg.Channels), lookup, cfg.Channels, zapLogger)
	recorder := notifylog.NewRecorder(notifylogrepo.NewMysqlRepositoryImpl(storage.DB()), zapLogger)

	sched, err := scheduler.New(cfg.Scheduler, zapLogger, taskUsecase, lookup, dispatcher, recorder)
	if err != nil {
		zapLogger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	app := NewApp(sched, api.NewServer(storage, sched, zapLogger))
	app.Scheduler.Start()

	httpServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.Server.Router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("Starting ops server",
			zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start ops server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zapLogger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown ops server", zap.Error(err))
	}

	// 等待正在执行的 tick 完成
	app.Scheduler.Stop()

	zapLogger.Info("Shutdown complete")
}
