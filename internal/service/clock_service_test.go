package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DylanChiang-Dev/caicaizi-class/pkg/clock"
	apperrors "github.com/DylanChiang-Dev/caicaizi-class/pkg/errors"
)

// fakeSource 可控的 ClockSource
// raced 模拟 InFlight 为 false 但校时开始时已被其他请求占用
type fakeSource struct {
	now      time.Time
	state    clock.State
	inFlight bool
	raced    bool
	syncOK   bool
	calls    atomic.Int32
	ctxErr   error
}

func (f *fakeSource) Now() time.Time      { return f.now }
func (f *fakeSource) Status() clock.State { return f.state }
func (f *fakeSource) InFlight() bool      { return f.inFlight }

func (f *fakeSource) TrySync(ctx context.Context) (bool, error) {
	f.calls.Add(1)
	if f.inFlight || f.raced {
		return false, apperrors.ErrSyncInProgress
	}
	f.ctxErr = ctx.Err()
	if f.syncOK {
		last := f.now
		f.state = clock.State{IsNetworkTime: true, LastSyncTime: &last, Offset: 1500 * time.Millisecond}
	} else {
		msg := "worldtimeapi: HTTP 503"
		f.state.Error = &msg
	}
	return f.syncOK, nil
}

func setupTestClockService(src *fakeSource) ClockService {
	cal := NewCalendar(src, time.Date(2025, 9, 15, 0, 0, 0, 0, taipei), taipei)
	return NewClockService(src, cal, zap.NewNop())
}

func TestClockService_Status_Local(t *testing.T) {
	src := &fakeSource{now: time.Date(2025, 10, 4, 2, 30, 0, 0, time.UTC)}
	svc := setupTestClockService(src)

	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status 应成功: %v", err)
	}
	if st.Source != "local" || st.IsNetworkTime {
		t.Errorf("未校时应为本地时间: %+v", st)
	}
	if st.Week != 3 || st.Weekday != 6 {
		t.Errorf("期望第 3 周星期 6，实际 %d/%d", st.Week, st.Weekday)
	}
	if st.Now.Location() != taipei {
		t.Error("Now 应转换到学期时区")
	}
	if st.LastSyncTime != nil || st.Error != nil {
		t.Error("未校时时 LastSyncTime / Error 应为空")
	}
}

func TestClockService_Sync_Success(t *testing.T) {
	src := &fakeSource{now: time.Date(2025, 10, 4, 2, 30, 0, 0, time.UTC), syncOK: true}
	svc := setupTestClockService(src)

	res, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync 应成功: %v", err)
	}
	if !res.Success || res.Status.Source != "network" || res.Status.OffsetMs != 1500 {
		t.Errorf("校时结果错误: %+v", res)
	}
	if res.Status.LastSyncTime == nil {
		t.Error("应记录 LastSyncTime")
	}
}

func TestClockService_Sync_Failure(t *testing.T) {
	src := &fakeSource{now: time.Date(2025, 10, 4, 2, 30, 0, 0, time.UTC)}
	svc := setupTestClockService(src)

	res, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("失败的校时不应返回错误: %v", err)
	}
	if res.Success || res.Status.Error == nil {
		t.Errorf("期望失败并带错误信息: %+v", res)
	}
}

func TestClockService_Sync_InProgress(t *testing.T) {
	src := &fakeSource{inFlight: true}
	svc := setupTestClockService(src)

	_, err := svc.Sync(context.Background())
	if !errors.Is(err, apperrors.ErrSyncInProgress) {
		t.Errorf("期望 ErrSyncInProgress，实际: %v", err)
	}
	if src.state.Error != nil || src.state.IsNetworkTime {
		t.Error("在途时不应修改校时状态")
	}
}

func TestClockService_Sync_InProgressAfterCheck(t *testing.T) {
	src := &fakeSource{now: time.Date(2025, 10, 4, 2, 30, 0, 0, time.UTC), raced: true, syncOK: true}
	svc := setupTestClockService(src)

	res, err := svc.Sync(context.Background())
	if !errors.Is(err, apperrors.ErrSyncInProgress) {
		t.Fatalf("校时开始时已在途应返回 ErrSyncInProgress，实际 res=%+v err=%v", res, err)
	}
	if src.calls.Load() != 1 {
		t.Errorf("期望调用 1 次，实际 %d", src.calls.Load())
	}
}

func TestClockService_Sync_IgnoresCallerCancel(t *testing.T) {
	src := &fakeSource{syncOK: true}
	svc := setupTestClockService(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Sync(ctx); err != nil {
		t.Fatalf("Sync 应成功: %v", err)
	}
	if src.ctxErr != nil {
		t.Errorf("传给时钟的 ctx 不应被调用方取消: %v", src.ctxErr)
	}
}
