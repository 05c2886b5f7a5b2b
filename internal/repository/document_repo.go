package repository

import (
	"context"

	"gorm.io/gorm"

	"sgte/backend/internal/model"
)

// DocumentRepository 学生材料数据访问接口
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id uint) (*model.Document, error)
	GetByStudentAndCategory(ctx context.Context, run string, category model.DocumentCategory) (*model.Document, error)
	ListByStudent(ctx context.Context, run string) ([]model.Document, error)
	// ListByStudents 多名学生的材料，按 ID 升序
	ListByStudents(ctx context.Context, runs []string) ([]model.Document, error)
	Update(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, id uint) error
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo 创建 DocumentRepository 实例
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByStudentAndCategory 同一类别有多条历史记录时取最新一条
func (r *documentRepo) GetByStudentAndCategory(ctx context.Context, run string, category model.DocumentCategory) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("estudiante_run = ? AND tipo = ?", run, category).
		Order("id DESC").
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListByStudent(ctx context.Context, run string) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("estudiante_run = ?", run).
		Order("id ASC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) ListByStudents(ctx context.Context, runs []string) ([]model.Document, error) {
	if len(runs) == 0 {
		return nil, nil
	}
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("estudiante_run IN ?", runs).
		Order("id ASC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) Update(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *documentRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Document{}).Error
}
