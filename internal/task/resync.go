package task

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Syncer 可被周期触发的校时器（由 *clock.Source 实现）
type Syncer interface {
	Sync(ctx context.Context) bool
}

// Resync 后台定时校时任务
type Resync struct {
	syncer    Syncer
	interval  time.Duration
	onStartup bool
	logger    *zap.Logger
}

// NewResync 创建定时校时任务
// interval <= 0 时不做周期校时；onStartup 控制启动时是否立即校时一次
func NewResync(syncer Syncer, interval time.Duration, onStartup bool, logger *zap.Logger) *Resync {
	return &Resync{
		syncer:    syncer,
		interval:  interval,
		onStartup: onStartup,
		logger:    logger,
	}
}

// Run 阻塞运行直到 ctx 取消
func (r *Resync) Run(ctx context.Context) {
	if r.onStartup {
		r.syncer.Sync(ctx)
	}
	if r.interval <= 0 {
		r.logger.Info("定时校时已关闭")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("定时校时已启动", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("定时校时已停止")
			return
		case <-ticker.C:
			// 在途请求会被 Source 自行忽略
			r.syncer.Sync(ctx)
		}
	}
}
