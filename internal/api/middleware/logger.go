package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 探活与指标抓取频繁，不写访问日志
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Logger 访问日志中间件（zap 结构化日志）
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		statusCode := c.Writer.Status()
		if _, quiet := quietPaths[path]; quiet && statusCode < 400 {
			return
		}

		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if op := c.GetString(ContextOperatorID); op != "" {
			fields = append(fields, zap.String("operator", op))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case statusCode >= 500:
			logger.Error("请求处理失败", fields...)
		case statusCode >= 400:
			logger.Warn("客户端错误", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}
