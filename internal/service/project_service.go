package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/model"
	"sgte/backend/internal/repository"
)

// ProjectService 毕业项目、委员会与里程碑业务接口
type ProjectService interface {
	// Create 在同一工作单元内创建项目、委员会与 pendiente 卷宗
	Create(ctx context.Context, req *dto.CreateProjectRequest, actor string) (*dto.ProjectResponse, error)
	Get(ctx context.Context, id uint) (*dto.ProjectResponse, error)
	ListByStudent(ctx context.Context, studentRUN string) ([]dto.ProjectResponse, error)
	UpdateCommittee(ctx context.Context, id uint, req *dto.CommitteeRequest, actor string) (*dto.CommitteeResponse, error)
	Delete(ctx context.Context, id uint, actor string) error
	AddMilestone(ctx context.Context, projectID uint, req *dto.CreateMilestoneRequest, actor string) (*dto.MilestoneResponse, error)
	UpdateMilestone(ctx context.Context, milestoneID uint, req *dto.UpdateMilestoneRequest, actor string) (*dto.MilestoneResponse, error)
}

type projectService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
func NewProjectService(repo *repository.Repository, audit AuditService, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest, actor string) (*dto.ProjectResponse, error) {
	run1, err := canonicalRUN(req.StudentRUN1)
	if err != nil {
		return nil, err
	}
	var run2 *string
	if req.StudentRUN2 != nil && strings.TrimSpace(*req.StudentRUN2) != "" {
		r, err := canonicalRUN(*req.StudentRUN2)
		if err != nil {
			return nil, err
		}
		if r == run1 {
			return nil, ErrCoAuthorSame
		}
		run2 = &r
	}
	modality, err := model.ParseProjectModality(req.Modality)
	if err != nil {
		return nil, err
	}
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return nil, invalid("semestre", "学期不能为空")
	}

	project := &model.Project{
		StudentRUN1:  run1,
		StudentRUN2:  run2,
		Term:         term,
		Modality:     modality,
		Title:        strings.TrimSpace(req.Title),
		DocumentLink: strings.TrimSpace(req.DocumentLink),
	}

	var detail *model.Project
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, r := range project.AuthorRUNs() {
			exists, err := tx.Student.Exists(ctx, r)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("作者 %s: %w", r, ErrStudentNotFound)
			}
		}

		if err := tx.Project.Create(ctx, project); err != nil {
			return err
		}

		committee := &model.Committee{ProjectID: project.ID}
		if req.Committee != nil {
			committee.Advisor = strings.TrimSpace(req.Committee.Advisor)
			committee.Reviewer1 = strings.TrimSpace(req.Committee.Reviewer1)
			committee.Reviewer2 = strings.TrimSpace(req.Committee.Reviewer2)
		}
		if err := tx.Committee.Save(ctx, committee); err != nil {
			return err
		}

		if err := tx.Expediente.Create(ctx, &model.Expediente{
			ProjectID: project.ID,
			Status:    model.StatusPendiente,
		}); err != nil {
			return err
		}

		var err error
		detail, err = tx.Project.GetDetail(ctx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "proyectos",
		RecordID:    strconv.FormatUint(uint64(project.ID), 10),
		Action:      model.AuditCreate,
		User:        actor,
		Description: fmt.Sprintf("新增毕业项目（%s）：%s", modality.Label(), run1),
		After:       project,
	})

	resp := toProjectResponse(detail)
	return &resp, nil
}

// ────────────────────── Get / List ──────────────────────

func (s *projectService) Get(ctx context.Context, id uint) (*dto.ProjectResponse, error) {
	var project *model.Project
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		project, err = tx.Project.GetDetail(ctx, id)
		return notFound(err, ErrProjectNotFound)
	})
	if err != nil {
		return nil, err
	}
	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) ListByStudent(ctx context.Context, studentRUN string) ([]dto.ProjectResponse, error) {
	key, err := canonicalRUN(studentRUN)
	if err != nil {
		return nil, err
	}

	var projects []model.Project
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Student.Exists(ctx, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrStudentNotFound
		}
		projects, err = tx.Project.ListByStudent(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, toProjectResponse(&projects[i]))
	}
	return result, nil
}

// ────────────────────── Committee ──────────────────────

func (s *projectService) UpdateCommittee(ctx context.Context, id uint, req *dto.CommitteeRequest, actor string) (*dto.CommitteeResponse, error) {
	var (
		committee *model.Committee
		before    *model.Committee
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Project.GetByID(ctx, id); err != nil {
			return notFound(err, ErrProjectNotFound)
		}

		existing, err := tx.Committee.GetByProject(ctx, id)
		switch {
		case err == nil:
			snapshot := *existing
			before = &snapshot
			committee = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			committee = &model.Committee{ProjectID: id}
		default:
			return err
		}

		committee.Advisor = strings.TrimSpace(req.Advisor)
		committee.Reviewer1 = strings.TrimSpace(req.Reviewer1)
		committee.Reviewer2 = strings.TrimSpace(req.Reviewer2)
		return tx.Committee.Save(ctx, committee)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "comisiones",
		RecordID:    strconv.FormatUint(uint64(committee.ID), 10),
		Action:      model.AuditUpdate,
		User:        actor,
		Description: fmt.Sprintf("更新项目 %d 的评审委员会", id),
		Before:      before,
		After:       committee,
	})

	return toCommitteeResponse(committee), nil
}

// ────────────────────── Delete ──────────────────────

func (s *projectService) Delete(ctx context.Context, id uint, actor string) error {
	var project *model.Project
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		project, err = tx.Project.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrProjectNotFound)
		}
		return tx.Project.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "proyectos",
		RecordID:    strconv.FormatUint(uint64(id), 10),
		Action:      model.AuditDelete,
		User:        actor,
		Description: "删除毕业项目：" + project.StudentRUN1,
		Before:      project,
	})
	return nil
}

// ────────────────────── Milestones ──────────────────────

func (s *projectService) AddMilestone(ctx context.Context, projectID uint, req *dto.CreateMilestoneRequest, actor string) (*dto.MilestoneResponse, error) {
	typ, err := model.ParseMilestoneType(req.Type)
	if err != nil {
		return nil, err
	}
	date, err := parseDate("fecha", req.Date)
	if err != nil {
		return nil, err
	}

	milestone := &model.Milestone{
		ProjectID: projectID,
		Type:      typ,
		Date:      date,
		Completed: req.Completed,
		Notes:     strings.TrimSpace(req.Notes),
	}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Project.GetByID(ctx, projectID); err != nil {
			return notFound(err, ErrProjectNotFound)
		}
		return tx.Milestone.Create(ctx, milestone)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "hitos",
		RecordID:    strconv.FormatUint(uint64(milestone.ID), 10),
		Action:      model.AuditCreate,
		User:        actor,
		Description: fmt.Sprintf("项目 %d 新增里程碑：%s", projectID, typ.Label()),
		After:       milestone,
	})

	resp := toMilestoneResponse(milestone)
	return &resp, nil
}

func (s *projectService) UpdateMilestone(ctx context.Context, milestoneID uint, req *dto.UpdateMilestoneRequest, actor string) (*dto.MilestoneResponse, error) {
	var (
		milestone *model.Milestone
		before    model.Milestone
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		milestone, err = tx.Milestone.GetByID(ctx, milestoneID)
		if err != nil {
			return notFound(err, ErrMilestoneNotFound)
		}
		before = *milestone

		if req.Date != nil {
			if milestone.Date, err = parseDate("fecha", req.Date); err != nil {
				return err
			}
		}
		if req.Completed != nil {
			milestone.Completed = *req.Completed
		}
		if req.Notes != nil {
			milestone.Notes = strings.TrimSpace(*req.Notes)
		}
		return tx.Milestone.Update(ctx, milestone)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "hitos",
		RecordID:    strconv.FormatUint(uint64(milestoneID), 10),
		Action:      model.AuditUpdate,
		User:        actor,
		Description: "更新里程碑：" + milestone.Type.Label(),
		Before:      before,
		After:       milestone,
	})

	resp := toMilestoneResponse(milestone)
	return &resp, nil
}

// ── 转换 ──

func toProjectResponse(p *model.Project) dto.ProjectResponse {
	resp := dto.ProjectResponse{
		ID:            p.ID,
		StudentRUN1:   p.StudentRUN1,
		Term:          p.Term,
		Modality:      p.Modality.String(),
		ModalityLabel: p.Modality.Label(),
		Title:         p.Title,
		DocumentLink:  p.DocumentLink,
		CreatedAt:     formatTime(p.CreatedAt),
	}
	if p.StudentRUN2 != nil {
		resp.StudentRUN2 = *p.StudentRUN2
	}
	if p.Committee != nil {
		resp.Committee = toCommitteeResponse(p.Committee)
	}
	if p.Expediente != nil {
		exp := toExpedienteResponse(p.Expediente)
		resp.Expediente = &exp
	}
	for i := range p.Milestones {
		resp.Milestones = append(resp.Milestones, toMilestoneResponse(&p.Milestones[i]))
	}
	return resp
}

func toCommitteeResponse(c *model.Committee) *dto.CommitteeResponse {
	return &dto.CommitteeResponse{
		Advisor:   c.Advisor,
		Reviewer1: c.Reviewer1,
		Reviewer2: c.Reviewer2,
	}
}

func toMilestoneResponse(m *model.Milestone) dto.MilestoneResponse {
	resp := dto.MilestoneResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Type:      m.Type.String(),
		TypeLabel: m.Type.Label(),
		Completed: m.Completed,
		Notes:     m.Notes,
	}
	if m.Date != nil {
		resp.Date = m.Date.Format(dateLayout)
	}
	return resp
}
