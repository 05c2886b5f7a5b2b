package handler

import (
	"github.com/gin-gonic/gin"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/service"
	"sgte/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportExpedientes 导出学院总表
// GET /api/v1/export/expedientes
func (h *ExportHandler) ExportExpedientes(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportExpedientes(c.Request.Context(), operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}

// ExportAuditLog 导出操作日志
// GET /api/v1/export/audit?limit=1000
func (h *ExportHandler) ExportAuditLog(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	var req dto.ExportAuditRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportAuditLog(c.Request.Context(), req.Limit, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}
