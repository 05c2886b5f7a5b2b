package service

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"sgte/backend/internal/model"
	"sgte/backend/internal/repository"
	pkgerrors "sgte/backend/pkg/errors"
)

// mockRepos 内存版 Repository 集合；Transaction 直接执行回调（runner 为 nil）
type mockRepos struct {
	student    *mockStudentRepo
	project    *mockProjectRepo
	committee  *mockCommitteeRepo
	expediente *mockExpedienteRepo
	milestone  *mockMilestoneRepo
	document   *mockDocumentRepo
	audit      *mockAuditLogRepo
}

func newMockRepos() *mockRepos {
	m := &mockRepos{
		student:    newMockStudentRepo(),
		committee:  newMockCommitteeRepo(),
		expediente: newMockExpedienteRepo(),
		milestone:  newMockMilestoneRepo(),
		document:   newMockDocumentRepo(),
		audit:      newMockAuditLogRepo(),
	}
	m.project = newMockProjectRepo(m)
	return m
}

func (m *mockRepos) repository() *repository.Repository {
	return &repository.Repository{
		Student:    m.student,
		Project:    m.project,
		Committee:  m.committee,
		Expediente: m.expediente,
		Milestone:  m.milestone,
		Document:   m.document,
		AuditLog:   m.audit,
	}
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	c := *student
	m.students[student.RUN] = &c
	return nil
}

func (m *mockStudentRepo) GetByRUN(_ context.Context, run string) (*model.Student, error) {
	if s, ok := m.students[run]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Exists(_ context.Context, run string) (bool, error) {
	_, ok := m.students[run]
	return ok, nil
}

func (m *mockStudentRepo) Search(_ context.Context, filter repository.StudentFilter) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if filter.Program != "" && s.Program != filter.Program {
			continue
		}
		if filter.Modality != "" && s.Modality != filter.Modality {
			continue
		}
		if filter.Term != "" &&
			!strings.Contains(s.RUN, filter.Term) &&
			!strings.Contains(s.GivenNames, filter.Term) &&
			!strings.Contains(s.FamilyNames, filter.Term) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FamilyNames < result[j].FamilyNames })
	return result, nil
}

func (m *mockStudentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.students)), nil
}

func (m *mockStudentRepo) CountByProgram(_ context.Context) ([]repository.ProgramCount, error) {
	counts := make(map[string]int64)
	for _, s := range m.students {
		counts[s.Program]++
	}
	result := make([]repository.ProgramCount, 0, len(counts))
	for p, n := range counts {
		result = append(result, repository.ProgramCount{Program: p, Total: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Program < result[j].Program
	})
	return result, nil
}

func (m *mockStudentRepo) ListRecent(_ context.Context, limit int) ([]model.Student, error) {
	result := make([]model.Student, 0, len(m.students))
	for _, s := range m.students {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].RUN < result[j].RUN
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	c := *student
	m.students[student.RUN] = &c
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, run string) error {
	delete(m.students, run)
	return nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	repos    *mockRepos
	projects map[uint]*model.Project
	nextID   uint
}

func newMockProjectRepo(repos *mockRepos) *mockProjectRepo {
	return &mockProjectRepo{repos: repos, projects: make(map[uint]*model.Project), nextID: 1}
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	if project.ID == 0 {
		project.ID = m.nextID
		m.nextID++
	}
	c := *project
	m.projects[project.ID] = &c
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id uint) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) GetDetail(ctx context.Context, id uint) (*model.Project, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.fill(ctx, p)
	return p, nil
}

// fill 模拟 Preload
func (m *mockProjectRepo) fill(ctx context.Context, p *model.Project) {
	p.Author1, _ = m.repos.student.GetByRUN(ctx, p.StudentRUN1)
	if p.StudentRUN2 != nil {
		p.Author2, _ = m.repos.student.GetByRUN(ctx, *p.StudentRUN2)
	}
	p.Committee, _ = m.repos.committee.GetByProject(ctx, p.ID)
	p.Expediente, _ = m.repos.expediente.GetByProject(ctx, p.ID)
	p.Milestones, _ = m.repos.milestone.ListByProject(ctx, p.ID)
}

func (m *mockProjectRepo) ListByStudent(_ context.Context, run string) ([]model.Project, error) {
	var result []model.Project
	for _, id := range m.sortedIDs() {
		p := m.projects[id]
		if p.StudentRUN1 == run || (p.StudentRUN2 != nil && *p.StudentRUN2 == run) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProjectRepo) ListDetailed(ctx context.Context) ([]model.Project, error) {
	var result []model.Project
	for _, id := range m.sortedIDs() {
		p := *m.projects[id]
		m.fill(ctx, &p)
		result = append(result, p)
	}
	return result, nil
}

func (m *mockProjectRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.projects)), nil
}

func (m *mockProjectRepo) sortedIDs() []uint {
	ids := make([]uint, 0, len(m.projects))
	for id := range m.projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	c := *project
	m.projects[project.ID] = &c
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id uint) error {
	delete(m.projects, id)
	return nil
}

// ── Mock CommitteeRepository ──

type mockCommitteeRepo struct {
	committees map[uint]*model.Committee // key: project id
	nextID     uint
}

func newMockCommitteeRepo() *mockCommitteeRepo {
	return &mockCommitteeRepo{committees: make(map[uint]*model.Committee), nextID: 1}
}

func (m *mockCommitteeRepo) GetByProject(_ context.Context, projectID uint) (*model.Committee, error) {
	if c, ok := m.committees[projectID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCommitteeRepo) Save(_ context.Context, committee *model.Committee) error {
	if committee.ID == 0 {
		committee.ID = m.nextID
		m.nextID++
	}
	c := *committee
	m.committees[committee.ProjectID] = &c
	return nil
}

// ── Mock ExpedienteRepository ──

type mockExpedienteRepo struct {
	expedientes map[uint]*model.Expediente // key: project id
	nextID      uint
	updates     int
}

func newMockExpedienteRepo() *mockExpedienteRepo {
	return &mockExpedienteRepo{expedientes: make(map[uint]*model.Expediente), nextID: 1}
}

func (m *mockExpedienteRepo) Create(_ context.Context, expediente *model.Expediente) error {
	if expediente.ID == 0 {
		expediente.ID = m.nextID
		m.nextID++
	}
	if expediente.Version == 0 {
		expediente.Version = 1
	}
	if expediente.Status == "" {
		expediente.Status = model.StatusPendiente
	}
	c := *expediente
	m.expedientes[expediente.ProjectID] = &c
	return nil
}

func (m *mockExpedienteRepo) GetByProject(_ context.Context, projectID uint) (*model.Expediente, error) {
	if e, ok := m.expedientes[projectID]; ok {
		c := *e
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExpedienteRepo) Update(_ context.Context, expediente *model.Expediente) error {
	stored, ok := m.expedientes[expediente.ProjectID]
	if !ok || stored.Version != expediente.Version {
		return pkgerrors.ErrOptimisticLock
	}
	expediente.Version++
	c := *expediente
	m.expedientes[expediente.ProjectID] = &c
	m.updates++
	return nil
}

func (m *mockExpedienteRepo) List(_ context.Context, filter repository.ExpedienteFilter) ([]model.Expediente, error) {
	var result []model.Expediente
	for _, e := range m.expedientes {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockExpedienteRepo) CountByStatus(_ context.Context) (map[model.ExpedienteStatus]int64, error) {
	counts := make(map[model.ExpedienteStatus]int64)
	for _, e := range m.expedientes {
		counts[e.Status]++
	}
	return counts, nil
}

func (m *mockExpedienteRepo) CountGraduated(_ context.Context) (int64, error) {
	var n int64
	for _, e := range m.expedientes {
		if e.Graduated {
			n++
		}
	}
	return n, nil
}

// ── Mock MilestoneRepository ──

type mockMilestoneRepo struct {
	milestones map[uint]*model.Milestone
	nextID     uint
}

func newMockMilestoneRepo() *mockMilestoneRepo {
	return &mockMilestoneRepo{milestones: make(map[uint]*model.Milestone), nextID: 1}
}

func (m *mockMilestoneRepo) Create(_ context.Context, milestone *model.Milestone) error {
	if milestone.ID == 0 {
		milestone.ID = m.nextID
		m.nextID++
	}
	c := *milestone
	m.milestones[milestone.ID] = &c
	return nil
}

func (m *mockMilestoneRepo) GetByID(_ context.Context, id uint) (*model.Milestone, error) {
	if ms, ok := m.milestones[id]; ok {
		c := *ms
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMilestoneRepo) ListByProject(_ context.Context, projectID uint) ([]model.Milestone, error) {
	var result []model.Milestone
	for _, ms := range m.milestones {
		if ms.ProjectID == projectID {
			result = append(result, *ms)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockMilestoneRepo) Update(_ context.Context, milestone *model.Milestone) error {
	c := *milestone
	m.milestones[milestone.ID] = &c
	return nil
}

// ── Mock DocumentRepository ──

type mockDocumentRepo struct {
	docs   map[uint]*model.Document
	nextID uint
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: make(map[uint]*model.Document), nextID: 1}
}

func (m *mockDocumentRepo) Create(_ context.Context, doc *model.Document) error {
	if doc.ID == 0 {
		doc.ID = m.nextID
		m.nextID++
	}
	c := *doc
	m.docs[doc.ID] = &c
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id uint) (*model.Document, error) {
	if d, ok := m.docs[id]; ok {
		c := *d
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) GetByStudentAndCategory(_ context.Context, run string, category model.DocumentCategory) (*model.Document, error) {
	var latest *model.Document
	for _, d := range m.docs {
		if d.StudentRUN == run && d.Category == category && (latest == nil || d.ID > latest.ID) {
			latest = d
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	c := *latest
	return &c, nil
}

func (m *mockDocumentRepo) ListByStudent(_ context.Context, run string) ([]model.Document, error) {
	var result []model.Document
	for _, d := range m.docs {
		if d.StudentRUN == run {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockDocumentRepo) ListByStudents(_ context.Context, runs []string) ([]model.Document, error) {
	want := make(map[string]bool, len(runs))
	for _, r := range runs {
		want[r] = true
	}
	var result []model.Document
	for _, d := range m.docs {
		if want[d.StudentRUN] {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockDocumentRepo) Update(_ context.Context, doc *model.Document) error {
	c := *doc
	m.docs[doc.ID] = &c
	return nil
}

func (m *mockDocumentRepo) Delete(_ context.Context, id uint) error {
	delete(m.docs, id)
	return nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	entries []model.AuditLog
	failErr error
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(_ context.Context, entry *model.AuditLog) error {
	if m.failErr != nil {
		return m.failErr
	}
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, filter repository.AuditLogFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	var matched []model.AuditLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if filter.Table != "" && e.Table != filter.Table {
			continue
		}
		if filter.RecordID != "" && e.RecordID != filter.RecordID {
			continue
		}
		if filter.User != "" && e.User != filter.User {
			continue
		}
		matched = append(matched, e)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// lastAction 最后一条操作日志的动作，无日志时为空
func (m *mockAuditLogRepo) lastAction() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[len(m.entries)-1].Action
}
