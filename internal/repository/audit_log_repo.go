package repository

import (
	"context"

	"gorm.io/gorm"

	"sgte/backend/internal/model"
)

// AuditLogFilter 操作日志查询条件
type AuditLogFilter struct {
	Table    string
	RecordID string
	User     string
}

// AuditLogRepository 操作日志数据访问接口（只追加）
type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter, offset, limit int) ([]model.AuditLog, int64, error)
}

type auditLogRepo struct {
	db *gorm.DB
}

// NewAuditLogRepo 创建 AuditLogRepository 实例
func NewAuditLogRepo(db *gorm.DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepo) List(ctx context.Context, filter AuditLogFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if filter.Table != "" {
		query = query.Where("tabla = ?", filter.Table)
	}
	if filter.RecordID != "" {
		query = query.Where("registro_id = ?", filter.RecordID)
	}
	if filter.User != "" {
		query = query.Where("usuario = ?", filter.User)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.AuditLog
	err := query.
		Order("timestamp DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	return entries, total, err
}
