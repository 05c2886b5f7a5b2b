package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sgte/backend/pkg/database"
)

// HealthChecker 数据库健康检查
type HealthChecker interface {
	Health(ctx context.Context) *database.Health
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health 返回数据库 WAL 状态与数据表列表
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	health := h.checker.Health(c.Request.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
