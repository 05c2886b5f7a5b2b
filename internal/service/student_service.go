package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/model"
	"sgte/backend/internal/repository"
)

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, actor string) (*dto.StudentResponse, error)
	Get(ctx context.Context, studentRUN string) (*dto.StudentResponse, error)
	// Search 按关键字、专业、就读模式搜索；Ready 非空时只保留材料齐全（或不齐全）的学生
	Search(ctx context.Context, req *dto.SearchStudentRequest) ([]dto.StudentResponse, error)
	Update(ctx context.Context, studentRUN string, req *dto.UpdateStudentRequest, actor string) (*dto.StudentResponse, error)
	// Delete 删除学生，其项目、卷宗与材料一并级联删除
	Delete(ctx context.Context, studentRUN string, actor string) error
}

type studentService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, audit AuditService, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, audit: audit, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, actor string) (*dto.StudentResponse, error) {
	key, err := canonicalRUN(req.RUN)
	if err != nil {
		return nil, err
	}
	modality, err := model.ParseEnrollmentModality(req.Modality)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		RUN:         key,
		GivenNames:  titleCase(req.GivenNames),
		FamilyNames: titleCase(req.FamilyNames),
		Program:     strings.TrimSpace(req.Program),
		Modality:    modality,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if student.GivenNames == "" || student.FamilyNames == "" {
		return nil, invalid("nombres", "姓名不能为空")
	}
	if student.Program == "" {
		return nil, invalid("carrera", "专业不能为空")
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Student.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return ErrStudentExists
		}
		return tx.Student.Create(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "estudiantes",
		RecordID:    key,
		Action:      model.AuditCreate,
		User:        actor,
		Description: "新增学生 " + student.FullName(),
		After:       student,
	})

	resp := toStudentResponse(student)
	return &resp, nil
}

// ────────────────────── Get / Search ──────────────────────

func (s *studentService) Get(ctx context.Context, studentRUN string) (*dto.StudentResponse, error) {
	key, err := canonicalRUN(studentRUN)
	if err != nil {
		return nil, err
	}

	var student *model.Student
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		student, err = tx.Student.GetByRUN(ctx, key)
		return notFound(err, ErrStudentNotFound)
	})
	if err != nil {
		return nil, err
	}

	resp := toStudentResponse(student)
	return &resp, nil
}

func (s *studentService) Search(ctx context.Context, req *dto.SearchStudentRequest) ([]dto.StudentResponse, error) {
	filter := repository.StudentFilter{
		Term:    strings.TrimSpace(req.Q),
		Program: strings.TrimSpace(req.Program),
		Limit:   req.Limit,
	}
	if strings.TrimSpace(req.Modality) != "" {
		modality, err := model.ParseEnrollmentModality(req.Modality)
		if err != nil {
			return nil, err
		}
		filter.Modality = modality
	}

	var (
		students []model.Student
		ready    map[string]bool
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		students, err = tx.Student.Search(ctx, filter)
		if err != nil || req.Ready == nil || len(students) == 0 {
			return err
		}

		runs := make([]string, len(students))
		for i := range students {
			runs[i] = students[i].RUN
		}
		docs, err := tx.Document.ListByStudents(ctx, runs)
		if err != nil {
			return err
		}
		ready = readinessByStudent(runs, docs)
		return nil
	})
	if err != nil {
		s.logger.Error("搜索学生失败", zap.String("q", filter.Term), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		if req.Ready != nil && ready[students[i].RUN] != *req.Ready {
			continue
		}
		result = append(result, toStudentResponse(&students[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, studentRUN string, req *dto.UpdateStudentRequest, actor string) (*dto.StudentResponse, error) {
	key, err := canonicalRUN(studentRUN)
	if err != nil {
		return nil, err
	}

	var modality model.EnrollmentModality
	if req.Modality != nil {
		if modality, err = model.ParseEnrollmentModality(*req.Modality); err != nil {
			return nil, err
		}
	}

	var (
		student *model.Student
		before  model.Student
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		student, err = tx.Student.GetByRUN(ctx, key)
		if err != nil {
			return notFound(err, ErrStudentNotFound)
		}
		before = *student

		if req.GivenNames != nil {
			if student.GivenNames = titleCase(*req.GivenNames); student.GivenNames == "" {
				return invalid("nombres", "名不能为空")
			}
		}
		if req.FamilyNames != nil {
			if student.FamilyNames = titleCase(*req.FamilyNames); student.FamilyNames == "" {
				return invalid("apellidos", "姓不能为空")
			}
		}
		if req.Program != nil {
			if student.Program = strings.TrimSpace(*req.Program); student.Program == "" {
				return invalid("carrera", "专业不能为空")
			}
		}
		if req.Modality != nil {
			student.Modality = modality
		}
		if req.Email != nil {
			student.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		return tx.Student.Update(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "estudiantes",
		RecordID:    key,
		Action:      model.AuditUpdate,
		User:        actor,
		Description: "更新学生 " + student.FullName(),
		Before:      before,
		After:       student,
	})

	resp := toStudentResponse(student)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, studentRUN string, actor string) error {
	key, err := canonicalRUN(studentRUN)
	if err != nil {
		return err
	}

	var student *model.Student
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		student, err = tx.Student.GetByRUN(ctx, key)
		if err != nil {
			return notFound(err, ErrStudentNotFound)
		}
		return tx.Student.Delete(ctx, key)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "estudiantes",
		RecordID:    key,
		Action:      model.AuditDelete,
		User:        actor,
		Description: "删除学生 " + student.FullName(),
		Before:      student,
	})
	s.logger.Info("学生已删除", zap.String("run", key), zap.String("actor", actor))
	return nil
}

func toStudentResponse(st *model.Student) dto.StudentResponse {
	return dto.StudentResponse{
		RUN:           st.RUN,
		GivenNames:    st.GivenNames,
		FamilyNames:   st.FamilyNames,
		FullName:      st.FullName(),
		Program:       st.Program,
		Modality:      st.Modality.String(),
		ModalityLabel: st.Modality.Label(),
		Email:         st.Email,
		CreatedAt:     formatTime(st.CreatedAt),
		UpdatedAt:     formatTime(st.UpdatedAt),
	}
}
