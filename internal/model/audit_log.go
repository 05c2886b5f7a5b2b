package model

import (
	"time"

	"gorm.io/datatypes"
)

// 审计动作
const (
	AuditCreate   = "CREATE"
	AuditUpdate   = "UPDATE"
	AuditDelete   = "DELETE"
	AuditValidate = "VALIDATE"
	AuditStatus   = "STATUS"
	AuditExport   = "EXPORT"
)

// AuditLog 操作日志 — 对应 bitacora，只追加
type AuditLog struct {
	ID          uint           `gorm:"column:id;primaryKey;autoIncrement"   json:"id"`
	Table       string         `gorm:"column:tabla;type:varchar(50);not null"  json:"table"`
	RecordID    string         `gorm:"column:registro_id;type:varchar(50);not null" json:"record_id"`
	Action      string         `gorm:"column:accion;type:varchar(50);not null" json:"action"`
	User        string         `gorm:"column:usuario;type:varchar(100)"        json:"user"`
	Description string         `gorm:"column:descripcion;type:text"            json:"description"`
	Before      datatypes.JSON `gorm:"column:valores_anteriores"              json:"before,omitempty"`
	After       datatypes.JSON `gorm:"column:valores_nuevos"                  json:"after,omitempty"`
	Timestamp   time.Time      `gorm:"column:timestamp;not null"               json:"timestamp"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "bitacora" }
