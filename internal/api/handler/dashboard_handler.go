package handler

import (
	"github.com/gin-gonic/gin"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/service"
	"sgte/backend/pkg/response"
)

// DashboardHandler 首页看板 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// GetMetrics 看板汇总
// GET /api/v1/dashboard?latest=10
func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	var req dto.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	metrics, err := h.dashboardSvc.Metrics(c.Request.Context(), req.Latest)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, metrics)
}
