package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/model"
	"sgte/backend/internal/service"
	"sgte/backend/pkg/response"
)

// ExpedienteHandler 卷宗模块 HTTP 处理器
type ExpedienteHandler struct {
	expedienteSvc service.ExpedienteService
}

// NewExpedienteHandler 创建 ExpedienteHandler
func NewExpedienteHandler(expedienteSvc service.ExpedienteService) *ExpedienteHandler {
	return &ExpedienteHandler{expedienteSvc: expedienteSvc}
}

// ListExpedientes 卷宗列表
// GET /api/v1/expedientes?status=&run=&term=
func (h *ExpedienteHandler) ListExpedientes(c *gin.Context) {
	var req dto.ListExpedientesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.expedienteSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetStats 按状态统计卷宗
// GET /api/v1/expedientes/stats
func (h *ExpedienteHandler) GetStats(c *gin.Context) {
	result, err := h.expedienteSvc.Stats(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetExpediente 获取项目卷宗
// GET /api/v1/projects/:id/expediente
func (h *ExpedienteHandler) GetExpediente(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.expedienteSvc.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateExpediente 更新备注 / 毕业标记
// PUT /api/v1/projects/:id/expediente
func (h *ExpedienteHandler) UpdateExpediente(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateExpedienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.expedienteSvc.Update(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetStatus 获取卷宗状态
// GET /api/v1/projects/:id/expediente/status
func (h *ExpedienteHandler) GetStatus(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	status, err := h.expedienteSvc.GetStatus(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, dto.StatusResponse{
		ProjectID: id,
		Status:    status.String(),
		Label:     status.Label(),
	})
}

// SetStatus 人工设置卷宗状态
// PUT /api/v1/projects/:id/expediente/status
func (h *ExpedienteHandler) SetStatus(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}
	status, err := model.ParseExpedienteStatus(req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result, err := h.expedienteSvc.SetStatus(c.Request.Context(), id, status, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// MarkSent 标记已发送至登记处
// POST /api/v1/projects/:id/expediente/sent
func (h *ExpedienteHandler) MarkSent(c *gin.Context) {
	h.transition(c, h.expedienteSvc.MarkSent)
}

// RecordApproval 登记处审批通过
// POST /api/v1/projects/:id/expediente/approval
func (h *ExpedienteHandler) RecordApproval(c *gin.Context) {
	h.transition(c, h.expedienteSvc.RecordApproval)
}

// SyncWithChecklist 按材料清单同步提交前状态
// POST /api/v1/projects/:id/expediente/sync
func (h *ExpedienteHandler) SyncWithChecklist(c *gin.Context) {
	h.transition(c, h.expedienteSvc.SyncWithChecklist)
}

// RecordGraduation 登记毕业
// POST /api/v1/projects/:id/expediente/graduation
func (h *ExpedienteHandler) RecordGraduation(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.GraduationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.expedienteSvc.RecordGraduation(c.Request.Context(), id, req.Term, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// BulkSetStatus 批量设置状态，逐项返回结果
// POST /api/v1/expedientes/bulk-status
func (h *ExpedienteHandler) BulkSetStatus(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}
	status, err := model.ParseExpedienteStatus(req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result, err := h.expedienteSvc.BulkSetStatus(c.Request.Context(), req.ProjectIDs, status, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

type transitionFunc func(ctx context.Context, projectID uint, actor string) (*dto.ExpedienteResponse, error)

// transition 无请求体的状态操作共用流程
func (h *ExpedienteHandler) transition(c *gin.Context, fn transitionFunc) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), id, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
