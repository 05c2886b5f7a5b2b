package dto

import "encoding/json"

// ── 操作日志 DTO ──

// ListAuditRequest 操作日志查询参数
type ListAuditRequest struct {
	PaginationRequest
	Table    string `form:"table"`
	RecordID string `form:"record_id"`
	User     string `form:"user"`
}

// ExportAuditRequest 操作日志导出参数
type ExportAuditRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=10000"`
}

// AuditLogResponse 操作日志响应
type AuditLogResponse struct {
	ID          uint            `json:"id"`
	Table       string          `json:"table"`
	RecordID    string          `json:"record_id"`
	Action      string          `json:"action"`
	User        string          `json:"user"`
	Description string          `json:"description"`
	Before      json.RawMessage `json:"before,omitempty"`
	After       json.RawMessage `json:"after,omitempty"`
	Timestamp   string          `json:"timestamp"`
}
