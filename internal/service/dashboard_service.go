package service

import (
	"context"

	"go.uber.org/zap"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/model"
	"sgte/backend/internal/repository"
)

// defaultLatestStudents 看板默认展示的最近登记人数
const defaultLatestStudents = 10

// DashboardService 首页看板
type DashboardService interface {
	// Metrics 学生与项目总数、卷宗状态分布、专业分布及最近登记的学生。
	// latest <= 0 时取默认人数
	Metrics(ctx context.Context, latest int) (*dto.DashboardMetrics, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Metrics(ctx context.Context, latest int) (*dto.DashboardMetrics, error) {
	if latest <= 0 {
		latest = defaultLatestStudents
	}

	var (
		metrics  dto.DashboardMetrics
		counts   map[model.ExpedienteStatus]int64
		programs []repository.ProgramCount
		recent   []model.Student
	)
	// 同一工作单元内读取，各项数字互相一致
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		if metrics.TotalStudents, err = tx.Student.Count(ctx); err != nil {
			return err
		}
		if metrics.TotalProjects, err = tx.Project.Count(ctx); err != nil {
			return err
		}
		if counts, err = tx.Expediente.CountByStatus(ctx); err != nil {
			return err
		}
		if metrics.Graduated, err = tx.Expediente.CountGraduated(ctx); err != nil {
			return err
		}
		if programs, err = tx.Student.CountByProgram(ctx); err != nil {
			return err
		}
		recent, err = tx.Student.ListRecent(ctx, latest)
		return err
	})
	if err != nil {
		s.logger.Error("统计看板数据失败", zap.Error(err))
		return nil, err
	}

	metrics.ByStatus = make(map[string]int64, len(counts))
	for _, st := range model.ExpedienteStatuses() {
		metrics.ByStatus[st.String()] = counts[st]
	}

	metrics.ByProgram = make([]dto.ProgramCount, 0, len(programs))
	for _, p := range programs {
		metrics.ByProgram = append(metrics.ByProgram, dto.ProgramCount{Program: p.Program, Total: p.Total})
	}

	metrics.Latest = make([]dto.RecentStudent, 0, len(recent))
	for i := range recent {
		st := &recent[i]
		metrics.Latest = append(metrics.Latest, dto.RecentStudent{
			RUN:          st.RUN,
			FullName:     st.FullName(),
			Program:      st.Program,
			RegisteredAt: formatTime(st.CreatedAt),
		})
	}
	return &metrics, nil
}
