package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"sgte/backend/internal/api/middleware"
	"sgte/backend/pkg/response"
)

// MustGetOperatorID 从 Gin 上下文中安全提取 operator_id。
// 如果 JWT 中间件未正确注入 operator_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOperatorID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextOperatorID)
	if !exists {
		response.Unauthorized(c, codeUnauthorized, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, codeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}

// MustGetUintParam 解析路径中的数字 ID，失败时写入 400
func MustGetUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, codeValidation, name+" 必须为正整数")
		return 0, false
	}
	return uint(id), true
}
