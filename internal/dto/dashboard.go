package dto

// ── 首页看板 DTO ──

// DashboardRequest 看板查询参数
type DashboardRequest struct {
	Latest int `form:"latest" binding:"omitempty,min=1,max=50"`
}

// ProgramCount 某专业的学生人数
type ProgramCount struct {
	Program string `json:"program"`
	Total   int64  `json:"total"`
}

// RecentStudent 最近登记的学生
type RecentStudent struct {
	RUN          string `json:"run"`
	FullName     string `json:"full_name"`
	Program      string `json:"program"`
	RegisteredAt string `json:"registered_at"`
}

// DashboardMetrics 看板汇总
type DashboardMetrics struct {
	TotalStudents int64            `json:"total_students"`
	TotalProjects int64            `json:"total_projects"`
	ByStatus      map[string]int64 `json:"by_status"`
	Graduated     int64            `json:"graduated"`
	ByProgram     []ProgramCount   `json:"by_program"`
	Latest        []RecentStudent  `json:"latest"`
}
