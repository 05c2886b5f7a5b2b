package handler

import (
	"github.com/gin-gonic/gin"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/service"
	"sgte/backend/pkg/response"
)

// AuditHandler 操作日志 HTTP 处理器
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// ListAuditLogs 分页查询操作日志
// GET /api/v1/audit?table=&record_id=&user=&page=&page_size=
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var req dto.ListAuditRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	list, total, err := h.auditSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
