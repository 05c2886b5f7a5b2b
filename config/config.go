package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Paths    PathsConfig    `mapstructure:"paths"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig SQLite 嵌入式数据库配置
type DatabaseConfig struct {
	Path          string      `mapstructure:"path"`
	BusyTimeoutMS int         `mapstructure:"busy_timeout_ms"` // 写锁等待时间（毫秒）
	CacheSizeKB   int         `mapstructure:"cache_size_kb"`
	MmapSizeBytes int64       `mapstructure:"mmap_size_bytes"`
	LogSQL        bool        `mapstructure:"log_sql"`
	Retry         RetryConfig `mapstructure:"retry"`
}

// RetryConfig 锁竞争重试策略
type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

// DSN 生成 go-sqlite3 连接字符串
// _txlock=immediate 使 BEGIN 立即申请写锁，锁竞争在获取会话时暴露
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL&_foreign_keys=on&_txlock=immediate",
		c.Path, c.BusyTimeoutMS,
	)
}

// RedisConfig Redis 配置（可选，用于批量操作限流）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 操作员 JWT 配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PathsConfig 文件存储路径
type PathsConfig struct {
	ExpedientesRoot string `mapstructure:"expedientes_root"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}
	return decode(v)
}

// Watch 监听配置文件变更，每次变更后重新解析并回调 onChange。
// 仅 db.retry 等运行期可调的配置项会被调用方采用；找不到配置文件时不监听，返回 false
func Watch(path string, onChange func(*Config, error)) (bool, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		return false, fmt.Errorf("读取配置文件失败: %w", err)
	}
	v.OnConfigChange(func(fsnotify.Event) {
		reload(v, onChange)
	})
	v.WatchConfig()
	return true, nil
}

// reload 解析已重新读取的配置并回调
func reload(v *viper.Viper, onChange func(*Config, error)) {
	cfg, err := decode(v)
	onChange(cfg, err)
}

func newViper(path string) *viper.Viper {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.max_body_bytes", 25<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.path", "./data/sgte.db")
	v.SetDefault("db.busy_timeout_ms", 30000)
	v.SetDefault("db.cache_size_kb", 131072)
	v.SetDefault("db.mmap_size_bytes", 268435456)
	v.SetDefault("db.log_sql", false)
	v.SetDefault("db.retry.max_attempts", 5)
	v.SetDefault("db.retry.initial_interval", "500ms")
	v.SetDefault("db.retry.max_interval", "10s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.issuer", "sgte")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("paths.expedientes_root", "./data/expedientes")

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
	v.SetEnvPrefix("SGTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
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
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("配置校验失败: db.path 不能为空")
	}
	if c.Database.BusyTimeoutMS < 0 {
		return fmt.Errorf("配置校验失败: db.busy_timeout_ms 不能为负数")
	}
	if c.Database.Retry.MaxAttempts < 1 {
		return fmt.Errorf("配置校验失败: db.retry.max_attempts 至少为 1")
	}
	if c.Database.Retry.InitialInterval <= 0 || c.Database.Retry.MaxInterval < c.Database.Retry.InitialInterval {
		return fmt.Errorf("配置校验失败: db.retry 间隔配置无效")
	}
	return nil
}
