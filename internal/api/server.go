package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/notify/scheduler/internal/api/handler"
	"github.com/notify/scheduler/internal/api/middleware"
	"go.uber.org/zap"
)

var Provider = wire.NewSet(NewServer)

type Server struct {
	router *gin.Engine
}

func NewServer(storage handler.Pinger, stats handler.StatsSource, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{}
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.ErrorHandlingMiddleware(logger))
	s.router.Use(middleware.Cors())

	common := handler.NewCommonHandler(storage, stats)
	s.router.GET("/health", common.HealthCheck)
	s.router.GET("/api/v1/scheduler/stats", common.SchedulerStats)

	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
