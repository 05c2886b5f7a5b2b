package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/model"
	"sgte/backend/internal/repository"
	"sgte/backend/pkg/run"
)

// ExpedienteService 卷宗状态机业务接口
//
// 状态按 pendiente → en_proceso → listo_envio → enviado → aprobado → titulado 推进。
// SetStatus 允许管理员设置任意状态（回退时记录 warn 日志）；离开 titulado 时清除毕业标记。
type ExpedienteService interface {
	Get(ctx context.Context, projectID uint) (*dto.ExpedienteResponse, error)
	GetStatus(ctx context.Context, projectID uint) (model.ExpedienteStatus, error)
	SetStatus(ctx context.Context, projectID uint, status model.ExpedienteStatus, actor string) (*dto.ExpedienteResponse, error)
	// MarkSent 邮件成功发送至登记处后调用
	MarkSent(ctx context.Context, projectID uint, actor string) (*dto.ExpedienteResponse, error)
	RecordApproval(ctx context.Context, projectID uint, actor string) (*dto.ExpedienteResponse, error)
	RecordGraduation(ctx context.Context, projectID uint, term, actor string) (*dto.ExpedienteResponse, error)
	Update(ctx context.Context, projectID uint, req *dto.UpdateExpedienteRequest, actor string) (*dto.ExpedienteResponse, error)
	// BulkSetStatus 逐个项目独立提交；失败的项目列入 Skipped，不影响其他项目
	BulkSetStatus(ctx context.Context, projectIDs []uint, status model.ExpedienteStatus, actor string) (*dto.BulkStatusResult, error)
	// SyncWithChecklist 根据全部作者的材料清单调整提交前状态，enviado 及之后的状态不变
	SyncWithChecklist(ctx context.Context, projectID uint, actor string) (*dto.ExpedienteResponse, error)
	Stats(ctx context.Context) (*dto.ExpedienteStats, error)
	List(ctx context.Context, req *dto.ListExpedientesRequest) ([]dto.ExpedienteResponse, error)
}

type expedienteService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
	now    func() time.Time
}

// NewExpedienteService 创建 ExpedienteService 实例
func NewExpedienteService(repo *repository.Repository, audit AuditService, logger *zap.Logger) ExpedienteService {
	return &expedienteService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// mutation 修改卷宗；返回 false 表示无需写入
type mutation func(tx *repository.Repository, e *model.Expediente) (bool, error)

// ────────────────────── Get ──────────────────────

func (s *expedienteService) Get(ctx context.Context, projectID uint) (*dto.ExpedienteResponse, error) {
	var exp *model.Expediente
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		exp, err = loadExpediente(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toExpedienteResponse(exp)
	return &resp, nil
}

func (s *expedienteService) GetStatus(ctx context.Context, projectID uint) (model.ExpedienteStatus, error) {
	resp, err := s.Get(ctx, projectID)
	if err != nil {
		return "", err
	}
	return model.ExpedienteStatus(resp.Status), nil
}

// ────────────────────── 状态变更 ──────────────────────

func (s *expedienteService) SetStatus(ctx context.Context, projectID uint, status model.ExpedienteStatus, actor string) (*dto.ExpedienteResponse, error) {
	if !status.Valid() {
		return nil, invalid("status", "无效的卷宗状态: "+status.String())
	}
	return s.transition(ctx, projectID, actor, "设置卷宗状态为 "+status.Label(), s.setStatus(projectID, status))
}

func (s *expedienteService) setStatus(projectID uint, status model.ExpedienteStatus) mutation {
	return func(_ *repository.Repository, e *model.Expediente) (bool, error) {
		if status.Rank() < e.Status.Rank() {
			s.logger.Warn("卷宗状态回退",
				zap.Uint("project_id", projectID),
				zap.String("from", e.Status.String()),
				zap.String("to", status.String()),
			)
		}
		applyStatus(e, status)
		return true, nil
	}
}

func (s *expedienteService) MarkSent(ctx context.Context, projectID uint, actor string) (*dto.ExpedienteResponse, error) {
	return s.transition(ctx, projectID, actor, "卷宗已发送至登记处", func(_ *repository.Repository, e *model.Expediente) (bool, error) {
		now := s.now()
		applyStatus(e, model.StatusEnviado)
		e.SentAt = &now
		return true, nil
	})
}

func (s *expedienteService) RecordApproval(ctx context.Context, projectID uint, actor string) (*dto.ExpedienteResponse, error) {
	return s.transition(ctx, projectID, actor, "登记处已批准", func(_ *repository.Repository, e *model.Expediente) (bool, error) {
		now := s.now()
		applyStatus(e, model.StatusAprobado)
		e.ApprovedAt = &now
		return true, nil
	})
}

func (s *expedienteService) RecordGraduation(ctx context.Context, projectID uint, term, actor string) (*dto.ExpedienteResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, invalid("term", "毕业学期不能为空")
	}
	return s.transition(ctx, projectID, actor, "登记毕业 "+term, func(_ *repository.Repository, e *model.Expediente) (bool, error) {
		applyStatus(e, model.StatusTitulado)
		e.Graduated = true
		e.GraduationTerm = term
		return true, nil
	})
}

func (s *expedienteService) Update(ctx context.Context, projectID uint, req *dto.UpdateExpedienteRequest, actor string) (*dto.ExpedienteResponse, error) {
	return s.transition(ctx, projectID, actor, "更新卷宗", func(_ *repository.Repository, e *model.Expediente) (bool, error) {
		if req.Notes != nil {
			e.Notes = strings.TrimSpace(*req.Notes)
		}
		if req.Graduated != nil {
			if *req.Graduated && e.Status != model.StatusTitulado {
				return false, ErrGraduatedStatus
			}
			e.Graduated = *req.Graduated
		}
		return true, nil
	})
}

// applyStatus 设置状态；离开 titulado 时清除毕业标记
func applyStatus(e *model.Expediente, status model.ExpedienteStatus) {
	e.Status = status
	if status != model.StatusTitulado {
		e.Graduated = false
	}
}

// transition 在一个工作单元内加载并修改卷宗，提交后写操作日志
func (s *expedienteService) transition(ctx context.Context, projectID uint, actor, desc string, mutate mutation) (*dto.ExpedienteResponse, error) {
	var (
		exp     *model.Expediente
		before  model.Expediente
		changed bool
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		exp, err = loadExpediente(ctx, tx, projectID)
		if err != nil {
			return err
		}
		before = *exp

		changed, err = mutate(tx, exp)
		if err != nil || !changed {
			return err
		}
		return tx.Expediente.Update(ctx, exp)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		action := model.AuditUpdate
		if before.Status != exp.Status {
			action = model.AuditStatus
		}
		s.audit.Record(ctx, AuditEntry{
			Table:       "expedientes",
			RecordID:    strconv.FormatUint(uint64(exp.ID), 10),
			Action:      action,
			User:        actor,
			Description: fmt.Sprintf("项目 %d：%s", projectID, desc),
			Before:      before,
			After:       exp,
		})
		s.logger.Info("卷宗已更新",
			zap.Uint("project_id", projectID),
			zap.String("from", before.Status.String()),
			zap.String("to", exp.Status.String()),
		)
	}

	resp := toExpedienteResponse(exp)
	return &resp, nil
}

// loadExpediente 先确认项目存在，再加载其卷宗
func loadExpediente(ctx context.Context, tx *repository.Repository, projectID uint) (*model.Expediente, error) {
	if _, err := tx.Project.GetByID(ctx, projectID); err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	exp, err := tx.Expediente.GetByProject(ctx, projectID)
	if err != nil {
		return nil, notFound(err, ErrExpedienteNotFound)
	}
	return exp, nil
}

// ────────────────────── Bulk ──────────────────────

func (s *expedienteService) BulkSetStatus(ctx context.Context, projectIDs []uint, status model.ExpedienteStatus, actor string) (*dto.BulkStatusResult, error) {
	if !status.Valid() {
		return nil, invalid("status", "无效的卷宗状态: "+status.String())
	}

	result := &dto.BulkStatusResult{
		Updated: make([]uint, 0, len(projectIDs)),
		Skipped: make([]dto.BulkSkip, 0),
	}
	seen := make(map[uint]bool, len(projectIDs))
	desc := "批量设置卷宗状态为 " + status.Label()

	for _, id := range projectIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, err := s.transition(ctx, id, actor, desc, s.setStatus(id, status)); err != nil {
			s.logger.Warn("批量设置状态：跳过项目", zap.Uint("project_id", id), zap.Error(err))
			result.Skipped = append(result.Skipped, dto.BulkSkip{ProjectID: id, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, id)
	}
	result.UpdatedCount = len(result.Updated)

	s.logger.Info("批量设置卷宗状态完成",
		zap.String("status", status.String()),
		zap.Int("updated", len(result.Updated)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// ────────────────────── SyncWithChecklist ──────────────────────

func (s *expedienteService) SyncWithChecklist(ctx context.Context, projectID uint, actor string) (*dto.ExpedienteResponse, error) {
	return s.transition(ctx, projectID, actor, "根据材料清单同步状态", func(tx *repository.Repository, e *model.Expediente) (bool, error) {
		if !e.Status.PreSubmission() {
			return false, nil
		}

		project, err := tx.Project.GetByID(ctx, projectID)
		if err != nil {
			return false, notFound(err, ErrProjectNotFound)
		}

		allReady, anyDocument := true, false
		for _, author := range project.AuthorRUNs() {
			docs, err := tx.Document.ListByStudent(ctx, author)
			if err != nil {
				return false, err
			}
			cl := ComputeChecklist(author, docs)
			allReady = allReady && cl.Summary.ReadyForSubmission
			for _, item := range cl.Items {
				if item.Required && item.HasDocument {
					anyDocument = true
				}
			}
		}

		target := model.StatusPendiente
		switch {
		case allReady:
			target = model.StatusListoEnvio
		case anyDocument:
			target = model.StatusEnProceso
		}
		if target == e.Status {
			return false, nil
		}
		applyStatus(e, target)
		return true, nil
	})
}

// ────────────────────── Stats / List ──────────────────────

func (s *expedienteService) Stats(ctx context.Context) (*dto.ExpedienteStats, error) {
	var (
		counts    map[model.ExpedienteStatus]int64
		graduated int64
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if counts, err = tx.Expediente.CountByStatus(ctx); err != nil {
			return err
		}
		graduated, err = tx.Expediente.CountGraduated(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("统计卷宗失败", zap.Error(err))
		return nil, err
	}

	stats := &dto.ExpedienteStats{
		ByStatus:  make(map[string]int64, len(counts)),
		Graduated: graduated,
	}
	for _, st := range model.ExpedienteStatuses() {
		stats.ByStatus[st.String()] = counts[st]
		stats.Total += counts[st]
	}
	return stats, nil
}

func (s *expedienteService) List(ctx context.Context, req *dto.ListExpedientesRequest) ([]dto.ExpedienteResponse, error) {
	var filter repository.ExpedienteFilter
	if req.Status != "" {
		st, err := model.ParseExpedienteStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if req.RUN != "" {
		if err := run.Validate(req.RUN); err != nil {
			return nil, err
		}
		filter.StudentRUN = run.Format(req.RUN)
	}
	filter.Term = strings.TrimSpace(req.Term)

	var exps []model.Expediente
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		exps, err = tx.Expediente.List(ctx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("列出卷宗失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ExpedienteResponse, 0, len(exps))
	for i := range exps {
		result = append(result, toExpedienteResponse(&exps[i]))
	}
	return result, nil
}

func toExpedienteResponse(e *model.Expediente) dto.ExpedienteResponse {
	return dto.ExpedienteResponse{
		ID:             e.ID,
		ProjectID:      e.ProjectID,
		Status:         e.Status.String(),
		StatusLabel:    e.Status.Label(),
		Notes:          e.Notes,
		SentAt:         formatTimePtr(e.SentAt),
		ApprovedAt:     formatTimePtr(e.ApprovedAt),
		Graduated:      e.Graduated,
		GraduationTerm: e.GraduationTerm,
		Version:        e.Version,
		UpdatedAt:      formatTime(e.UpdatedAt),
	}
}
