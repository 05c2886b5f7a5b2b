package dto

// ── 材料模块 DTO ──

// UpsertDocumentRequest 登记材料文件路径
type UpsertDocumentRequest struct {
	RUN      string `json:"run"      binding:"required,run"`
	Category string `json:"category" binding:"required"`
	Path     string `json:"path"     binding:"required,max=500"`
}

// SetValidationRequest 审核材料
type SetValidationRequest struct {
	Validated *bool `json:"validated" binding:"required"`
}

// DocumentResponse 材料响应
type DocumentResponse struct {
	ID            uint   `json:"id"`
	StudentRUN    string `json:"student_run"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	Path          string `json:"path"`
	Validated     bool   `json:"validated"`
	UploadedAt    string `json:"uploaded_at"`
	ValidatedAt   string `json:"validated_at,omitempty"`
	ValidatedBy   string `json:"validated_by,omitempty"`
}

// UpsertDocumentResponse 登记结果
type UpsertDocumentResponse struct {
	ID      uint `json:"id"`
	Created bool `json:"created"`
}

// ── 材料清单 ──

// ChecklistItem 清单中的一项；财务结清项以实际采用的类别表示
type ChecklistItem struct {
	Category    string `json:"category"`
	Label       string `json:"label"`
	Required    bool   `json:"required"`
	HasDocument bool   `json:"has_document"`
	IsValidated bool   `json:"is_validated"`
	DocumentID  *uint  `json:"document_id,omitempty"`
	Path        string `json:"path,omitempty"`
}

// ChecklistSummary 清单汇总（只统计必需项）
type ChecklistSummary struct {
	TotalRequired      int  `json:"total_required"`
	ValidatedCount     int  `json:"validated_count"`
	MissingCount       int  `json:"missing_count"`
	ReadyForSubmission bool `json:"ready_for_submission"`
}

// Checklist 学生材料清单
type Checklist struct {
	StudentRUN string           `json:"student_run"`
	Items      []ChecklistItem  `json:"items"`
	Summary    ChecklistSummary `json:"summary"`
}

// ReadinessStatus 批量查询中单名学生的结果
type ReadinessStatus struct {
	Ready bool `json:"ready"`
}
