package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/model"
	"sgte/backend/internal/repository"
)

// AuditEntry 一条待记录的操作日志
type AuditEntry struct {
	Table       string
	RecordID    string
	Action      string
	User        string
	Description string
	Before      interface{}
	After       interface{}
}

// AuditService 操作日志接口
// Record 在业务工作单元提交之后单独执行，失败只记录 warn 日志，不影响业务结果
type AuditService interface {
	Record(ctx context.Context, entry AuditEntry)
	List(ctx context.Context, req *dto.ListAuditRequest) ([]dto.AuditLogResponse, int64, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Record ──────────────────────

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	entryLog := &model.AuditLog{
		Table:       entry.Table,
		RecordID:    entry.RecordID,
		Action:      entry.Action,
		User:        entry.User,
		Description: entry.Description,
		Before:      s.toJSON(entry.Before),
		After:       s.toJSON(entry.After),
		Timestamp:   s.now(),
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.AuditLog.Create(ctx, entryLog)
	})
	if err != nil {
		s.logger.Warn("写入操作日志失败，已忽略",
			zap.String("table", entry.Table),
			zap.String("record_id", entry.RecordID),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func (s *auditService) toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("操作日志序列化失败", zap.Error(err))
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

// ────────────────────── List ──────────────────────

func (s *auditService) List(ctx context.Context, req *dto.ListAuditRequest) ([]dto.AuditLogResponse, int64, error) {
	var (
		entries []model.AuditLog
		total   int64
	)
	filter := repository.AuditLogFilter{Table: req.Table, RecordID: req.RecordID, User: req.User}
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		entries, total, err = tx.AuditLog.List(ctx, filter, req.GetOffset(), req.GetPageSize())
		return err
	})
	if err != nil {
		s.logger.Error("查询操作日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AuditLogResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		result = append(result, dto.AuditLogResponse{
			ID:          e.ID,
			Table:       e.Table,
			RecordID:    e.RecordID,
			Action:      e.Action,
			User:        e.User,
			Description: e.Description,
			Before:      json.RawMessage(e.Before),
			After:       json.RawMessage(e.After),
			Timestamp:   formatTime(e.Timestamp),
		})
	}
	return result, total, nil
}
