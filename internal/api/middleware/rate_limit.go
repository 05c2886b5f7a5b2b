package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sgte/backend/pkg/redis"
	"sgte/backend/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// 按操作员计数（未认证时按 IP）；rdb 为 nil 时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		who := c.GetString(ContextOperatorID)
		if who == "" {
			who = c.ClientIP()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", who, c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			logger.Warn("限流检查失败，降级放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
