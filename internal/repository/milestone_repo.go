package repository

import (
	"context"

	"gorm.io/gorm"

	"sgte/backend/internal/model"
)

// MilestoneRepository 里程碑数据访问接口
type MilestoneRepository interface {
	Create(ctx context.Context, milestone *model.Milestone) error
	GetByID(ctx context.Context, id uint) (*model.Milestone, error)
	ListByProject(ctx context.Context, projectID uint) ([]model.Milestone, error)
	Update(ctx context.Context, milestone *model.Milestone) error
}

type milestoneRepo struct {
	db *gorm.DB
}

// NewMilestoneRepo 创建 MilestoneRepository 实例
func NewMilestoneRepo(db *gorm.DB) MilestoneRepository {
	return &milestoneRepo{db: db}
}

func (r *milestoneRepo) Create(ctx context.Context, milestone *model.Milestone) error {
	return r.db.WithContext(ctx).Create(milestone).Error
}

func (r *milestoneRepo) GetByID(ctx context.Context, id uint) (*model.Milestone, error) {
	var milestone model.Milestone
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&milestone).Error
	if err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (r *milestoneRepo) ListByProject(ctx context.Context, projectID uint) ([]model.Milestone, error) {
	var milestones []model.Milestone
	err := r.db.WithContext(ctx).
		Where("proyecto_id = ?", projectID).
		Order("fecha ASC, id ASC").
		Find(&milestones).Error
	return milestones, err
}

func (r *milestoneRepo) Update(ctx context.Context, milestone *model.Milestone) error {
	return r.db.WithContext(ctx).Save(milestone).Error
}
