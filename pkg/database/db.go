package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sgte/backend/config"
	pkgerrors "sgte/backend/pkg/errors"
	applogger "sgte/backend/pkg/logger"
	"sgte/backend/pkg/metrics"
)

// RetryPolicy 锁竞争重试策略（每次调用时读取，可在运行期更新）
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// PolicyFromConfig 由配置项生成重试策略
func PolicyFromConfig(c config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     c.MaxAttempts,
		InitialInterval: c.InitialInterval,
		MaxInterval:     c.MaxInterval,
	}
}

// Gateway 持久层网关：持有唯一的 SQLite 连接，提供带重试的工作单元
type Gateway struct {
	db      *gorm.DB
	path    string
	logger  *zap.Logger
	metrics *metrics.Gateway

	mu     sync.RWMutex
	policy RetryPolicy
}

// Open 打开 SQLite 数据库并应用性能 PRAGMA
func Open(cfg *config.DatabaseConfig, logger *zap.Logger, m *metrics.Gateway) (*Gateway, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{
		Logger:                 applogger.NewGormLogger(logger, cfg.LogSQL),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// SQLite 单写者：连接池固定为 1，且连接不过期，保证 PRAGMA 持续生效
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pragmas := []string{
		fmt.Sprintf("PRAGMA cache_size=-%d", cfg.CacheSizeKB),
		"PRAGMA temp_store=MEMORY",
		fmt.Sprintf("PRAGMA mmap_size=%d", cfg.MmapSizeBytes),
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("设置 %s 失败: %w", p, err)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	if m == nil {
		m = metrics.NewGateway(nil)
	}

	g := &Gateway{
		db:      db,
		path:    cfg.Path,
		logger:  logger,
		metrics: m,
		policy:  PolicyFromConfig(cfg.Retry),
	}

	logger.Info("数据库连接成功",
		zap.String("path", cfg.Path),
		zap.Int("busy_timeout_ms", cfg.BusyTimeoutMS),
		zap.Int("max_attempts", cfg.Retry.MaxAttempts),
	)

	return g, nil
}

// DB 返回不在事务中的 gorm 句柄（只读查询与迁移使用）
func (g *Gateway) DB() *gorm.DB {
	return g.db
}

// RetryPolicy 返回当前重试策略
func (g *Gateway) RetryPolicy() RetryPolicy {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.policy
}

// SetRetryPolicy 更新重试策略，对之后的工作单元生效
func (g *Gateway) SetRetryPolicy(p RetryPolicy) error {
	if p.MaxAttempts < 1 || p.InitialInterval <= 0 || p.MaxInterval < p.InitialInterval {
		return pkgerrors.NewValidation("retry", "重试策略无效")
	}
	g.mu.Lock()
	g.policy = p
	g.mu.Unlock()
	return nil
}

// Transaction 执行一个工作单元：begin → fn → commit；fn 出错或 panic 时回滚。
//
// 遇到 SQLite 锁竞争（BUSY/LOCKED）时整体重试，间隔按指数退避；
// 重试耗尽返回 ErrStorageBusy，其他驱动错误包装为 ErrStorageFault，
// fn 返回的业务错误原样返回。
func (g *Gateway) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	policy := g.RetryPolicy()
	start := time.Now()
	attempt := 0

	op := func() error {
		attempt++
		err := g.db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if IsLockError(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1)), ctx)

	err := backoff.RetryNotify(op, bo, func(err error, wait time.Duration) {
		g.metrics.Retries.Inc()
		g.logger.Warn("数据库被锁定，稍后重试",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	g.metrics.Duration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		g.metrics.UnitsOfWork.WithLabelValues("ok").Inc()
		return nil
	case IsLockError(err):
		g.metrics.UnitsOfWork.WithLabelValues("busy").Inc()
		g.logger.Error("数据库锁竞争，重试次数耗尽", zap.Int("attempts", attempt), zap.Error(err))
		return fmt.Errorf("%w: %w", pkgerrors.ErrStorageBusy, err)
	case isDriverError(err):
		g.metrics.UnitsOfWork.WithLabelValues("fault").Inc()
		g.logger.Error("工作单元失败，已回滚", zap.Error(err))
		return fmt.Errorf("%w: %w", pkgerrors.ErrStorageFault, err)
	default:
		g.metrics.UnitsOfWork.WithLabelValues("error").Inc()
		return err
	}
}

// Health 数据库健康状态
type Health struct {
	Status      string   `json:"status"`
	Path        string   `json:"path"`
	JournalMode string   `json:"journal_mode"`
	WAL         bool     `json:"wal_mode"`
	Tables      []string `json:"tables"`
	Error       string   `json:"error,omitempty"`
}

// Health 检查 WAL 模式并列出数据表
func (g *Gateway) Health(ctx context.Context) *Health {
	h := &Health{Status: "healthy", Path: g.path}

	if err := g.db.WithContext(ctx).Raw("PRAGMA journal_mode").Scan(&h.JournalMode).Error; err != nil {
		h.Status, h.Error = "error", err.Error()
		return h
	}
	h.WAL = strings.EqualFold(h.JournalMode, "wal")

	err := g.db.WithContext(ctx).
		Raw("SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name").
		Scan(&h.Tables).Error
	if err != nil {
		h.Status, h.Error = "error", err.Error()
	}
	return h
}

// Close 关闭底层连接
func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsLockError 判断是否为 SQLite 锁竞争错误
func IsLockError(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

func isDriverError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se)
}
