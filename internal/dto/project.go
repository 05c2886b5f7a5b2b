package dto

// ── 项目模块 DTO ──

// CreateProjectRequest 创建毕业项目请求
type CreateProjectRequest struct {
	StudentRUN1  string            `json:"student_run1"  binding:"required,run"`
	StudentRUN2  *string           `json:"student_run2"  binding:"omitempty,run"`
	Term         string            `json:"term"          binding:"required,max=10"`
	Modality     string            `json:"modality"      binding:"required"`
	Title        string            `json:"title"         binding:"max=500"`
	DocumentLink string            `json:"document_link" binding:"omitempty,max=500"`
	Committee    *CommitteeRequest `json:"committee"`
}

// CommitteeRequest 委员会（教师均可为空）
type CommitteeRequest struct {
	Advisor   string `json:"advisor"   binding:"max=150"`
	Reviewer1 string `json:"reviewer1" binding:"max=150"`
	Reviewer2 string `json:"reviewer2" binding:"max=150"`
}

// CommitteeResponse 委员会响应
type CommitteeResponse struct {
	Advisor   string `json:"advisor"`
	Reviewer1 string `json:"reviewer1"`
	Reviewer2 string `json:"reviewer2"`
}

// ProjectResponse 项目详情响应
type ProjectResponse struct {
	ID            uint                `json:"id"`
	StudentRUN1   string              `json:"student_run1"`
	StudentRUN2   string              `json:"student_run2,omitempty"`
	Term          string              `json:"term"`
	Modality      string              `json:"modality"`
	ModalityLabel string              `json:"modality_label"`
	Title         string              `json:"title"`
	DocumentLink  string              `json:"document_link,omitempty"`
	Committee     *CommitteeResponse  `json:"committee,omitempty"`
	Expediente    *ExpedienteResponse `json:"expediente,omitempty"`
	Milestones    []MilestoneResponse `json:"milestones,omitempty"`
	CreatedAt     string              `json:"created_at"`
}

// ── 里程碑 ──

// CreateMilestoneRequest 新增里程碑
type CreateMilestoneRequest struct {
	Type      string  `json:"type"  binding:"required"`
	Date      *string `json:"date"` // "2026-11-20"
	Completed bool    `json:"completed"`
	Notes     string  `json:"notes"`
}

// UpdateMilestoneRequest 更新里程碑
type UpdateMilestoneRequest struct {
	Date      *string `json:"date"`
	Completed *bool   `json:"completed"`
	Notes     *string `json:"notes"`
}

// MilestoneResponse 里程碑响应
type MilestoneResponse struct {
	ID        uint   `json:"id"`
	ProjectID uint   `json:"project_id"`
	Type      string `json:"type"`
	TypeLabel string `json:"type_label"`
	Date      string `json:"date,omitempty"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes"`
}
