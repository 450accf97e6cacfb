package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/dto"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/clock"
)

// ClockSource 网络校时时钟（由 *clock.Source 实现）
type ClockSource interface {
	Clock
	Status() clock.State
	InFlight() bool
	TrySync(ctx context.Context) (bool, error)
}

// ClockService 时钟业务接口
type ClockService interface {
	// 当前时间与校时状态
	Status(ctx context.Context) (*dto.ClockStatusResponse, error)
	// 手动触发一次网络校时
	Sync(ctx context.Context) (*dto.ClockSyncResponse, error)
}

type clockService struct {
	src    ClockSource
	cal    *Calendar
	logger *zap.Logger
}

// NewClockService 创建 ClockService 实例
func NewClockService(src ClockSource, cal *Calendar, logger *zap.Logger) ClockService {
	return &clockService{src: src, cal: cal, logger: logger}
}

func (s *clockService) Status(_ context.Context) (*dto.ClockStatusResponse, error) {
	resp := s.snapshot()
	return &resp, nil
}

// Sync 已有请求在途时返回 ErrSyncInProgress
// 校时不随 HTTP 请求取消而中断，单次请求仍受 request_timeout 限制
func (s *clockService) Sync(ctx context.Context) (*dto.ClockSyncResponse, error) {
	ok, err := s.src.TrySync(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Info("手动校时未成功，继续使用本地时间")
	}
	return &dto.ClockSyncResponse{
		Success: ok,
		Status:  s.snapshot(),
	}, nil
}

// snapshot 先取 Now 再取状态：Now 可能将过期的网络时间标记为失效
func (s *clockService) snapshot() dto.ClockStatusResponse {
	now := s.src.Now().In(s.cal.Location())
	st := s.src.Status()

	source := "local"
	if st.IsNetworkTime {
		source = "network"
	}
	var last *time.Time
	if st.LastSyncTime != nil {
		t := st.LastSyncTime.In(s.cal.Location())
		last = &t
	}

	return dto.ClockStatusResponse{
		Now:           now,
		Source:        source,
		IsNetworkTime: st.IsNetworkTime,
		LastSyncTime:  last,
		Error:         st.Error,
		OffsetMs:      st.Offset.Milliseconds(),
		Syncing:       s.src.InFlight(),
		Week:          s.cal.WeekOf(now),
		Weekday:       isoWeekday(now.Weekday()),
	}
}
