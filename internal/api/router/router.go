package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DylanChiang-Dev/caicaizi-class/config"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/api/handler"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/api/middleware"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/metrics"
)

const (
	importBodyLimit = 2 << 20 // ICS 文件上限 2MB

	syncRateLimit  = 6
	syncRateWindow = time.Minute

	healthCheckTimeout = time.Second
)

// Redis 路由层用到的 Redis 能力（由 *redis.Client 实现）
type Redis interface {
	middleware.RateLimiter
	Healthy(ctx context.Context) bool
}

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不限流；rec 为 nil 时不暴露 /metrics
func Setup(cfg *config.Config, h *handler.Handler, rec *metrics.Recorder, rdb Redis, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	if rec != nil {
		r.Use(rec.Middleware())
	}
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())

	// ── 健康检查 ──
	r.GET("/health", health(rdb))

	if rec != nil {
		r.GET("/metrics", gin.WrapH(rec.Handler()))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 时钟模块
		clock := v1.Group("/clock")
		{
			clock.GET("", h.Clock.GetStatus)
			clock.POST("/sync", middleware.RateLimit(rateLimiter(rdb), syncRateLimit, syncRateWindow), h.Clock.Sync)
		}

		// 周次模块
		weeks := v1.Group("/weeks")
		{
			weeks.GET("/current", h.Schedule.GetCurrentWeek)
			weeks.GET("/:week", h.Schedule.GetWeek)
		}

		v1.GET("/time-slots", h.TimeSlot.ListTimeSlots)

		// 课程模块
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Schedule.ListCourses)
			courses.GET("/:id", h.Schedule.GetCourse)
			courses.POST("/import", middleware.BodyLimit(importBodyLimit), h.Import.PreviewICS)
		}

		// 进度模块
		progress := v1.Group("/progress")
		{
			progress.GET("", h.Progress.GetProgress)
			progress.GET("/courses", h.Progress.ListCourseProgress)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/weeks/:week", h.Export.ExportWeek)
		}
	}

	return r
}

// rateLimiter 避免把 nil Redis 包装成非 nil 接口
func rateLimiter(rdb Redis) middleware.RateLimiter {
	if rdb == nil {
		return nil
	}
	return rdb
}

// health Redis 仅用于限流，不可用时标记 degraded 但仍返回 200
func health(rdb Redis) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if !rdb.Healthy(ctx) {
			c.JSON(http.StatusOK, gin.H{"status": "degraded", "redis": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": "up"})
	}
}
