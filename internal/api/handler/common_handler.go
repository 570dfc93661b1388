package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/notify/scheduler/internal/scheduler"
)

type Pinger interface {
	Ping() error
}

type StatsSource interface {
	LastTick() (scheduler.TickStats, bool)
}

type CommonHandler struct {
	storage Pinger
	stats   StatsSource
}

// NewCommonHandler 健康检查与调度统计
func NewCommonHandler(storage Pinger, stats StatsSource) *CommonHandler {
	return &CommonHandler{storage: storage, stats: stats}
}

// HealthCheck
// @GET(health)
func (h *CommonHandler) HealthCheck(c *gin.Context) {
	if err := h.storage.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
			"time":   time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// SchedulerStats 最近一次扫描的结果
// @GET(api/v1/scheduler/stats)
func (h *CommonHandler) SchedulerStats(c *gin.Context) {
	stats, ok := h.stats.LastTick()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"lastTick": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastTick": stats})
}
