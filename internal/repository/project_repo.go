package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sgte/backend/internal/model"
)

// ProjectRepository 毕业项目数据访问接口
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uint) (*model.Project, error)
	GetDetail(ctx context.Context, id uint) (*model.Project, error)
	ListByStudent(ctx context.Context, run string) ([]model.Project, error)
	ListDetailed(ctx context.Context) ([]model.Project, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id uint) error
}

// CommitteeRepository 评审委员会数据访问接口
type CommitteeRepository interface {
	GetByProject(ctx context.Context, projectID uint) (*model.Committee, error)
	Save(ctx context.Context, committee *model.Committee) error
}

// ── Project Repository 实现 ──

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo 创建 ProjectRepository 实例
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetDetail 附带作者、委员会、卷宗与里程碑
func (r *projectRepo) GetDetail(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	err := r.withDetail(ctx).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) ListByStudent(ctx context.Context, run string) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("Committee").
		Preload("Expediente").
		Where("estudiante_run1 = ? OR estudiante_run2 = ?", run, run).
		Order("id ASC").
		Find(&projects).Error
	return projects, err
}

// ListDetailed 全部项目（导出用）
func (r *projectRepo) ListDetailed(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.withDetail(ctx).
		Order("semestre DESC, id ASC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Project{}).Count(&count).Error
	return count, err
}

func (r *projectRepo) withDetail(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author1").
		Preload("Author2").
		Preload("Committee").
		Preload("Expediente").
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("fecha ASC, id ASC")
		})
}

func (r *projectRepo) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

func (r *projectRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Project{}).Error
}

// ── Committee Repository 实现 ──

type committeeRepo struct {
	db *gorm.DB
}

// NewCommitteeRepo 创建 CommitteeRepository 实例
func NewCommitteeRepo(db *gorm.DB) CommitteeRepository {
	return &committeeRepo{db: db}
}

func (r *committeeRepo) GetByProject(ctx context.Context, projectID uint) (*model.Committee, error) {
	var committee model.Committee
	err := r.db.WithContext(ctx).
		Where("proyecto_id = ?", projectID).
		First(&committee).Error
	if err != nil {
		return nil, err
	}
	return &committee, nil
}

// Save ID 为 0 时插入，否则整行更新
func (r *committeeRepo) Save(ctx context.Context, committee *model.Committee) error {
	return r.db.WithContext(ctx).Save(committee).Error
}
