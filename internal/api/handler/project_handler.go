package handler

import (
	"github.com/gin-gonic/gin"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/service"
	"sgte/backend/pkg/response"
)

// ProjectHandler 项目模块 HTTP 处理器（含委员会与里程碑）
type ProjectHandler struct {
	projectSvc service.ProjectService
	exportSvc  service.ExportService
}

// NewProjectHandler 创建 ProjectHandler
func NewProjectHandler(projectSvc service.ProjectService, exportSvc service.ExportService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc, exportSvc: exportSvc}
}

// CreateProject 创建毕业项目（同时创建委员会与卷宗）
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.projectSvc.Create(c.Request.Context(), &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// GetProject 获取项目详情
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.projectSvc.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteProject 删除项目
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectSvc.Delete(c.Request.Context(), id, operatorID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// UpdateCommittee 设置委员会
// PUT /api/v1/projects/:id/committee
func (h *ProjectHandler) UpdateCommittee(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.CommitteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.projectSvc.UpdateCommittee(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// AddMilestone 新增里程碑
// POST /api/v1/projects/:id/milestones
func (h *ProjectHandler) AddMilestone(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.projectSvc.AddMilestone(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateMilestone 更新里程碑
// PUT /api/v1/milestones/:id
func (h *ProjectHandler) UpdateMilestone(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.projectSvc.UpdateMilestone(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ExportMilestones 导出项目里程碑日历
// GET /api/v1/projects/:id/milestones.ics
func (h *ProjectHandler) ExportMilestones(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportMilestonesICS(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Attachment(c, filename, "text/calendar; charset=utf-8", buf.Bytes())
}
