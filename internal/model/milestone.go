package model

import "time"

// Milestone 里程碑 — 对应 hitos
type Milestone struct {
	ID        uint          `gorm:"column:id;primaryKey;autoIncrement"  json:"id"`
	ProjectID uint          `gorm:"column:proyecto_id;not null;index"   json:"project_id"`
	Type      MilestoneType `gorm:"column:tipo;type:varchar(30);not null" json:"type"`
	Date      *time.Time    `gorm:"column:fecha"                        json:"date,omitempty"`
	Completed bool          `gorm:"column:completado;not null;default:false" json:"completed"`
	Notes     string        `gorm:"column:observaciones;type:text"      json:"notes"`
}

// TableName 指定表名
func (Milestone) TableName() string { return "hitos" }
