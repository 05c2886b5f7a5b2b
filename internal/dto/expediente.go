package dto

// ── 卷宗模块 DTO ──

// SetStatusRequest 设置卷宗状态
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GraduationRequest 登记毕业
type GraduationRequest struct {
	Term string `json:"term" binding:"required,max=10"`
}

// UpdateExpedienteRequest 更新备注 / 毕业标记
type UpdateExpedienteRequest struct {
	Notes     *string `json:"notes"`
	Graduated *bool   `json:"graduated"`
}

// BulkStatusRequest 批量设置状态
type BulkStatusRequest struct {
	ProjectIDs []uint `json:"project_ids" binding:"required,min=1,max=500"`
	Status     string `json:"status"      binding:"required"`
}

// BulkSkip 批量操作中被跳过的项目
type BulkSkip struct {
	ProjectID uint   `json:"project_id"`
	Reason    string `json:"reason"`
}

// BulkStatusResult 批量操作结果（逐项报告，非全有全无）
type BulkStatusResult struct {
	UpdatedCount int        `json:"updated_count"`
	Updated      []uint     `json:"updated"`
	Skipped      []BulkSkip `json:"skipped"`
}

// ListExpedientesRequest 卷宗列表参数
type ListExpedientesRequest struct {
	Status string `form:"status"`
	RUN    string `form:"run"`
	Term   string `form:"term"`
}

// ExpedienteResponse 卷宗响应
type ExpedienteResponse struct {
	ID             uint   `json:"id"`
	ProjectID      uint   `json:"project_id"`
	Status         string `json:"status"`
	StatusLabel    string `json:"status_label"`
	Notes          string `json:"notes"`
	SentAt         string `json:"sent_at,omitempty"`
	ApprovedAt     string `json:"approved_at,omitempty"`
	Graduated      bool   `json:"graduated"`
	GraduationTerm string `json:"graduation_term,omitempty"`
	Version        int    `json:"version"`
	UpdatedAt      string `json:"updated_at"`
}

// StatusResponse 卷宗状态
type StatusResponse struct {
	ProjectID uint   `json:"project_id"`
	Status    string `json:"status"`
	Label     string `json:"label"`
}

// ExpedienteStats 卷宗统计
type ExpedienteStats struct {
	ByStatus  map[string]int64 `json:"by_status"`
	Total     int64            `json:"total"`
	Graduated int64            `json:"graduated"`
}
