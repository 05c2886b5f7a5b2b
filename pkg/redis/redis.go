package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sgte/backend/config"
)

// Client Redis 客户端封装
// 用于批量操作限流与操作员 Token 吊销；未启用 Redis 时调用方传 nil 降级
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 速率限制 ──

// CheckRateLimit 滑动窗口计数：窗口内请求数未超过 limit 时返回 true 并记录本次请求
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	minScore := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+minScore)
	count := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if count.Val() >= int64(limit) {
		return false, nil
	}

	pipe = c.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ── Token 吊销 ──

const revokedPrefix = "token:revoked:"

// RevokeToken 将 JWT ID 加入吊销列表，TTL 与 Token 剩余有效期一致
func (c *Client) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需吊销
	}
	return c.rdb.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
}

// IsRevoked 检查 JWT ID 是否已吊销
func (c *Client) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
