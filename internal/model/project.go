package model

// Project 毕业项目表 — 对应 proyectos，最多两名作者
type Project struct {
	ID           uint            `gorm:"column:id;primaryKey;autoIncrement"                 json:"id"`
	StudentRUN1  string          `gorm:"column:estudiante_run1;type:varchar(12);not null;index" json:"student_run1"`
	StudentRUN2  *string         `gorm:"column:estudiante_run2;type:varchar(12);index"          json:"student_run2,omitempty"`
	Term         string          `gorm:"column:semestre;type:varchar(10);not null"              json:"term"` // 如 2026-1
	Modality     ProjectModality `gorm:"column:modalidad_titulacion;type:varchar(50);not null"  json:"modality"`
	Title        string          `gorm:"column:titulo;type:varchar(500)"                        json:"title"`
	DocumentLink string          `gorm:"column:link_documento;type:varchar(500)"                json:"document_link,omitempty"`
	BaseModel

	// 关联
	Author1    *Student    `gorm:"foreignKey:StudentRUN1;references:RUN" json:"author1,omitempty"`
	Author2    *Student    `gorm:"foreignKey:StudentRUN2;references:RUN" json:"author2,omitempty"`
	Committee  *Committee  `gorm:"foreignKey:ProjectID"                  json:"committee,omitempty"`
	Expediente *Expediente `gorm:"foreignKey:ProjectID"                  json:"expediente,omitempty"`
	Milestones []Milestone `gorm:"foreignKey:ProjectID"                  json:"milestones,omitempty"`
}

// TableName 指定表名
func (Project) TableName() string { return "proyectos" }

// AuthorRUNs 返回全部作者 RUN
func (p *Project) AuthorRUNs() []string {
	runs := []string{p.StudentRUN1}
	if p.StudentRUN2 != nil && *p.StudentRUN2 != "" {
		runs = append(runs, *p.StudentRUN2)
	}
	return runs
}

// Committee 评审委员会 — 对应 comisiones，每个项目一条
type Committee struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement"   json:"id"`
	ProjectID uint   `gorm:"column:proyecto_id;not null;uniqueIndex" json:"project_id"`
	Advisor   string `gorm:"column:profesor_guia;type:varchar(150)"  json:"advisor"`
	Reviewer1 string `gorm:"column:corrector_1;type:varchar(150)"    json:"reviewer1"`
	Reviewer2 string `gorm:"column:corrector_2;type:varchar(150)"    json:"reviewer2"`
}

// TableName 指定表名
func (Committee) TableName() string { return "comisiones" }
