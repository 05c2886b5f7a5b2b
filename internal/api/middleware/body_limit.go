package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sgte/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// maxBytes 需大于单个材料文件上限，multipart 边界与表单字段也计入请求体
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		// 未声明 Content-Length 的请求在读取时才会触发上限
		if c.Writer.Written() {
			return
		}
		for _, ginErr := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(ginErr.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
