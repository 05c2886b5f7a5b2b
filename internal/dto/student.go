package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	RUN         string `json:"run"          binding:"required,run"`
	GivenNames  string `json:"given_names"  binding:"required,max=100"`
	FamilyNames string `json:"family_names" binding:"required,max=100"`
	Program     string `json:"program"      binding:"required,max=150"`
	Modality    string `json:"modality"     binding:"required,oneof=diurno vespertino online Diurno Vespertino Online"`
	Email       string `json:"email"        binding:"omitempty,email,max=150"`
}

// UpdateStudentRequest 更新学生请求（RUN 不可修改）
type UpdateStudentRequest struct {
	GivenNames  *string `json:"given_names"  binding:"omitempty,max=100"`
	FamilyNames *string `json:"family_names" binding:"omitempty,max=100"`
	Program     *string `json:"program"      binding:"omitempty,max=150"`
	Modality    *string `json:"modality"     binding:"omitempty,oneof=diurno vespertino online Diurno Vespertino Online"`
	Email       *string `json:"email"        binding:"omitempty,email,max=150"`
}

// SearchStudentRequest 学生搜索参数
type SearchStudentRequest struct {
	Q        string `form:"q"`
	Program  string `form:"program"`
	Modality string `form:"modality"`
	// Ready 非空时按材料是否齐全过滤
	Ready *bool `form:"ready"`
	Limit int   `form:"limit" binding:"omitempty,min=1,max=500"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	RUN           string `json:"run"`
	GivenNames    string `json:"given_names"`
	FamilyNames   string `json:"family_names"`
	FullName      string `json:"full_name"`
	Program       string `json:"program"`
	Modality      string `json:"modality"`
	ModalityLabel string `json:"modality_label"`
	Email         string `json:"email,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}
