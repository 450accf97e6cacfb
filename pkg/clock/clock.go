package clock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/DylanChiang-Dev/caicaizi-class/pkg/errors"
)

const (
	DefaultSyncInterval   = 30 * time.Minute
	DefaultRequestTimeout = 5 * time.Second
	DefaultStateKey       = "timeSync"

	storeTimeout    = 3 * time.Second
	maxResponseSize = 64 * 1024
)

var errAllProvidersFailed = errors.New("所有时间接口都无法连接")

// Observer 校时结果观测（如 Prometheus 指标），可为空
type Observer interface {
	ObserveSync(provider string, ok bool, offset time.Duration)
}

// Options 时钟配置；零值字段使用默认值
type Options struct {
	StateKey       string
	SyncInterval   time.Duration
	RequestTimeout time.Duration
	Location       *time.Location
	Providers      []Provider
	HTTPClient     *http.Client
	LocalNow       func() time.Time
	Observer       Observer
}

// Source 当前时间来源：优先使用网络校时偏移，过期或失败时回退本地时间
// 状态在首次使用时从 Store 惰性加载，每次变更后写回
type Source struct {
	store     Store
	key       string
	interval  time.Duration
	timeout   time.Duration
	loc       *time.Location
	providers []Provider
	client    *http.Client
	localNow  func() time.Time
	observer  Observer
	logger    *zap.Logger

	loadOnce sync.Once
	mu       sync.Mutex
	state    State
	inFlight atomic.Bool
}

// New 创建时钟
func New(store Store, opts Options, logger *zap.Logger) *Source {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{
		store:     store,
		key:       opts.StateKey,
		interval:  opts.SyncInterval,
		timeout:   opts.RequestTimeout,
		loc:       opts.Location,
		providers: opts.Providers,
		client:    opts.HTTPClient,
		localNow:  opts.LocalNow,
		observer:  opts.Observer,
		logger:    logger,
	}
	if s.key == "" {
		s.key = DefaultStateKey
	}
	if s.interval <= 0 {
		s.interval = DefaultSyncInterval
	}
	if s.timeout <= 0 {
		s.timeout = DefaultRequestTimeout
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.providers == nil {
		s.providers = DefaultProviders()
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	if s.localNow == nil {
		s.localNow = time.Now
	}
	return s
}

// Location 返回时钟所用时区
func (s *Source) Location() *time.Location {
	return s.loc
}

// Now 返回当前时间
// 网络时间在 SyncInterval 内有效；过期后回退本地时间并将 IsNetworkTime 置为 false
func (s *Source) Now() time.Time {
	s.ensureLoaded()
	local := s.localNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsNetworkTime {
		return local.In(s.loc)
	}
	if s.freshLocked(local) {
		return local.Add(s.state.Offset).In(s.loc)
	}

	s.state.IsNetworkTime = false
	s.persistLocked()
	s.logger.Info("网络时间已过期，回退本地时间")
	return local.In(s.loc)
}

// Status 返回校时状态副本
func (s *Source) Status() State {
	s.ensureLoaded()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// InFlight 是否有校时请求正在进行
func (s *Source) InFlight() bool {
	return s.inFlight.Load()
}

// Sync 向外部时间接口校时，返回是否成功
// 同一时刻至多一次请求；已有请求在途时直接返回 false 且不修改状态
// 失败不会向外抛出，只记录在 State.Error 中
func (s *Source) Sync(ctx context.Context) bool {
	ok, _ := s.TrySync(ctx)
	return ok
}

// TrySync 同 Sync，但已有请求在途时返回 ErrSyncInProgress，
// 调用方据此区分“被跳过”与“校时失败”
func (s *Source) TrySync(ctx context.Context) (bool, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("已有校时请求在途，忽略本次触发")
		return false, apperrors.ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	return s.syncOnce(ctx), nil
}

func (s *Source) syncOnce(ctx context.Context) bool {
	s.ensureLoaded()

	remote, provider, err := s.fetch(ctx)
	local := s.localNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		msg := err.Error()
		s.state.Error = &msg
		if !s.freshLocked(local) {
			s.state.IsNetworkTime = false
		}
		s.persistLocked()
		s.logger.Warn("时间同步失败，使用本地时间", zap.Error(err))
		return false
	}

	offset := time.Duration(remote.Sub(local).Milliseconds()) * time.Millisecond
	s.state = State{
		IsNetworkTime: true,
		LastSyncTime:  &local,
		Offset:        offset,
	}
	s.persistLocked()

	if s.observer != nil {
		s.observer.ObserveSync(provider, true, offset)
	}
	s.logger.Info("时间同步成功",
		zap.String("provider", provider),
		zap.Duration("offset", offset),
	)
	return true
}

// ── 内部辅助方法 ──

func (s *Source) freshLocked(local time.Time) bool {
	if s.state.LastSyncTime == nil {
		return false
	}
	return local.Sub(*s.state.LastSyncTime) <= s.interval
}

func (s *Source) ensureLoaded() {
	s.loadOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		raw, err := s.store.Get(ctx, s.key)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.logger.Warn("读取校时状态失败，使用默认状态", zap.Error(err))
			}
			return
		}

		st, err := DecodeState(raw)
		if err != nil {
			s.logger.Warn("校时状态已损坏，使用默认状态", zap.Error(err))
			return
		}

		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
	})
}

func (s *Source) persistLocked() {
	raw, err := EncodeState(s.state)
	if err != nil {
		s.logger.Error("编码校时状态失败", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := s.store.Put(ctx, s.key, raw); err != nil {
		s.logger.Error("保存校时状态失败", zap.String("key", s.key), zap.Error(err))
	}
}

// fetch 依次尝试各时间接口，返回第一个成功的结果
func (s *Source) fetch(ctx context.Context) (time.Time, string, error) {
	var lastErr error
	for _, p := range s.providers {
		t, err := s.fetchOne(ctx, p)
		if err == nil {
			return t, p.Name, nil
		}

		lastErr = fmt.Errorf("%s: %w", p.Name, err)
		s.logger.Warn("时间接口请求失败",
			zap.String("provider", p.Name),
			zap.String("url", p.URL),
			zap.Error(err),
		)
		if s.observer != nil {
			s.observer.ObserveSync(p.Name, false, 0)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = errAllProvidersFailed
	}
	return time.Time{}, "", lastErr
}

func (s *Source) fetchOne(ctx context.Context, p Provider) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return time.Time{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return time.Time{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return time.Time{}, err
	}
	return p.Parse(body, s.loc)
}
