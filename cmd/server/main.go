package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DylanChiang-Dev/caicaizi-class/config"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/api/handler"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/api/router"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/repository"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/service"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/task"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/boltdb"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/clock"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/database"
	applogger "github.com/DylanChiang-Dev/caicaizi-class/pkg/logger"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/metrics"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/redis"
)

func main() {
	// 0. 加载 .env（不存在时忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("CLASS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("semester_start", cfg.Semester.StartDate),
		zap.String("state_backend", cfg.Clock.StateBackend),
	)

	// 3. 加载课表数据
	data, err := repository.LoadScheduleFile(cfg.Schedule.DataFile)
	if err != nil {
		logger.Fatal("加载课表数据失败", zap.String("file", cfg.Schedule.DataFile), zap.Error(err))
	}
	logger.Info("课表数据已加载",
		zap.Int("courses", len(data.Courses)),
		zap.Int("time_slots", len(data.TimeSlots)),
	)

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，接口限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 校时状态存储
	stores, err := openStateStore(cfg, rdb, logger)
	if err != nil {
		logger.Warn("校时状态存储不可用，降级为内存存储", zap.Error(err))
		stores = &stateStores{store: clock.NewMemoryStore()}
	}

	// 6. 时钟与指标
	rec := metrics.New()
	loc, _ := cfg.Semester.Location()
	src := clock.New(stores.store, clock.Options{
		StateKey:       cfg.Clock.StateKey,
		SyncInterval:   cfg.Clock.SyncInterval,
		RequestTimeout: cfg.Clock.RequestTimeout,
		Location:       loc,
		Observer:       rec,
	}, logger)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(data, stores.db)
	svc, err := service.NewService(cfg, repo, src, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	var routerRedis router.Redis
	if rdb != nil {
		routerRedis = rdb
	}
	engine := router.Setup(cfg, h, rec, routerRedis, logger)

	// 9. 后台定时校时
	taskCtx, stopTasks := context.WithCancel(context.Background())
	resyncDone := make(chan struct{})
	go func() {
		defer close(resyncDone)
		task.NewResync(src, cfg.Clock.ResyncInterval, cfg.Clock.SyncOnStartup, logger).Run(taskCtx)
	}()

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	stopTasks()
	<-resyncDone

	stores.Close(logger)
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// stateStores 校时状态存储及其底层连接
type stateStores struct {
	store clock.Store
	db    *gorm.DB
	bolt  *boltdb.Store
}

// openStateStore 按 clock.state_backend 选择存储后端
func openStateStore(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (*stateStores, error) {
	switch cfg.Clock.StateBackend {
	case "bolt":
		bs, err := boltdb.Open(cfg.Clock.BoltPath, logger)
		if err != nil {
			return nil, err
		}
		return &stateStores{store: bs, bolt: bs}, nil

	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("state_backend=redis 但 Redis 未连接")
		}
		return &stateStores{store: rdb}, nil

	case "postgres":
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			sqlDB.Close()
			return nil, err
		}
		return &stateStores{store: repository.NewKVRepo(db), db: db}, nil

	default:
		return &stateStores{store: clock.NewMemoryStore()}, nil
	}
}

// Close 关闭底层连接（Redis 由调用方关闭）
func (s *stateStores) Close(logger *zap.Logger) {
	if s.bolt != nil {
		if err := s.bolt.Close(); err != nil {
			logger.Error("关闭 bolt 存储失败", zap.Error(err))
		}
	}
	if s.db != nil {
		if sqlDB, _ := s.db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}
}
