package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/service"
	"sgte/backend/pkg/response"
	"sgte/backend/pkg/run"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc  service.StudentService
	projectSvc  service.ProjectService
	documentSvc service.DocumentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService, projectSvc service.ProjectService, documentSvc service.DocumentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, projectSvc: projectSvc, documentSvc: documentSvc}
}

// ValidateIdentity 校验 RUN 并返回规范格式
// GET /api/v1/identity/validate?run=xxx
func (h *StudentHandler) ValidateIdentity(c *gin.Context) {
	raw := c.Query("run")
	if raw == "" {
		response.BadRequest(c, codeValidation, "run 不能为空")
		return
	}

	valid, canonical, reason := run.Check(raw)
	response.OK(c, dto.IdentityCheckResponse{
		Valid:     valid,
		Canonical: canonical,
		Reason:    reason,
	})
}

// ChecklistStatus 批量查询学生材料是否齐全
// GET /api/v1/students/checklist-status?runs=a,b
func (h *StudentHandler) ChecklistStatus(c *gin.Context) {
	var runs []string
	for _, r := range strings.Split(c.Query("runs"), ",") {
		if r = strings.TrimSpace(r); r != "" {
			runs = append(runs, r)
		}
	}
	if len(runs) == 0 {
		response.BadRequest(c, codeValidation, "runs 不能为空")
		return
	}

	ready, err := h.documentSvc.ReadinessBatch(c.Request.Context(), runs)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := make(map[string]dto.ReadinessStatus, len(ready))
	for r, ok := range ready {
		result[r] = dto.ReadinessStatus{Ready: ok}
	}
	response.OK(c, result)
}

// CreateStudent 创建学生
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Create(c.Request.Context(), &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// SearchStudents 搜索学生
// GET /api/v1/students?q=&program=&modality=&ready=&limit=
func (h *StudentHandler) SearchStudents(c *gin.Context) {
	var req dto.SearchStudentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Search(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetStudent 获取学生详情
// GET /api/v1/students/:run
func (h *StudentHandler) GetStudent(c *gin.Context) {
	result, err := h.studentSvc.Get(c.Request.Context(), c.Param("run"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateStudent 更新学生（RUN 不可修改）
// PUT /api/v1/students/:run
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Update(c.Request.Context(), c.Param("run"), &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteStudent 删除学生
// DELETE /api/v1/students/:run
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("run"), operatorID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListProjects 学生参与的项目（含共同作者）
// GET /api/v1/students/:run/projects
func (h *StudentHandler) ListProjects(c *gin.Context) {
	result, err := h.projectSvc.ListByStudent(c.Request.Context(), c.Param("run"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// ListDocuments 学生已登记的材料
// GET /api/v1/students/:run/documents
func (h *StudentHandler) ListDocuments(c *gin.Context) {
	result, err := h.documentSvc.ListByStudent(c.Request.Context(), c.Param("run"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetChecklist 学生材料清单
// GET /api/v1/students/:run/checklist
func (h *StudentHandler) GetChecklist(c *gin.Context) {
	result, err := h.documentSvc.GetChecklist(c.Request.Context(), c.Param("run"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
