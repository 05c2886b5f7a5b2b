package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"sgte/backend/internal/model"
)

// StudentFilter 学生搜索条件
type StudentFilter struct {
	Term     string // 模糊匹配 RUN / 名 / 姓
	Program  string
	Modality model.EnrollmentModality
	Limit    int
}

// ProgramCount 某专业的学生人数
type ProgramCount struct {
	Program string
	Total   int64
}

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByRUN(ctx context.Context, run string) (*model.Student, error)
	Exists(ctx context.Context, run string) (bool, error)
	Search(ctx context.Context, filter StudentFilter) ([]model.Student, error)
	Count(ctx context.Context) (int64, error)
	// CountByProgram 按专业分组计数，人数多的在前
	CountByProgram(ctx context.Context) ([]ProgramCount, error)
	// ListRecent 最近登记的学生
	ListRecent(ctx context.Context, limit int) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, run string) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByRUN(ctx context.Context, run string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("run = ?", run).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) Exists(ctx context.Context, run string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("run = ?", run).
		Count(&count).Error
	return count > 0, err
}

func (r *studentRepo) Search(ctx context.Context, filter StudentFilter) ([]model.Student, error) {
	query := r.db.WithContext(ctx).Model(&model.Student{})

	if term := strings.TrimSpace(filter.Term); term != "" {
		like := "%" + term + "%"
		query = query.Where("run LIKE ? OR nombres LIKE ? OR apellidos LIKE ?", like, like, like)
	}
	if filter.Program != "" {
		query = query.Where("carrera = ?", filter.Program)
	}
	if filter.Modality != "" {
		query = query.Where("modalidad = ?", filter.Modality)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var students []model.Student
	err := query.
		Order("apellidos ASC, nombres ASC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&count).Error
	return count, err
}

func (r *studentRepo) CountByProgram(ctx context.Context) ([]ProgramCount, error) {
	var rows []struct {
		Carrera string
		Total   int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Select("carrera, COUNT(*) AS total").
		Group("carrera").
		Order("total DESC, carrera ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]ProgramCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, ProgramCount{Program: row.Carrera, Total: row.Total})
	}
	return result, nil
}

func (r *studentRepo) ListRecent(ctx context.Context, limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Order("created_at DESC, run ASC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// Delete 删除学生，其项目、卷宗、材料由外键级联删除
func (r *studentRepo) Delete(ctx context.Context, run string) error {
	return r.db.WithContext(ctx).
		Where("run = ?", run).
		Delete(&model.Student{}).Error
}
