package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeaders 安全 HTTP 头中间件
// 接口只返回 JSON 与导出文件，CSP 禁止加载任何资源；API 响应含个人信息，禁止缓存
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
