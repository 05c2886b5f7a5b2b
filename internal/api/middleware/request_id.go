package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID 请求追踪 ID 中间件
// 沿用上游代理传入的 X-Request-ID（需为 UUID），否则生成新的 UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}
