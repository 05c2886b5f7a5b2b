package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"sgte/backend/internal/model"
)

// 合法 RUN（校验位已计算）
const (
	runAna    = "12.345.678-5"
	runBruno  = "11.111.111-1"
	runCamila = "22.222.222-2"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func seedStudent(t *testing.T, m *mockRepos, run string) {
	t.Helper()
	_ = m.student.Create(context.Background(), &model.Student{
		RUN:         run,
		GivenNames:  "Ana",
		FamilyNames: "Pérez",
		Program:     "Ingeniería Civil Informática",
		Modality:    model.EnrollmentDiurno,
	})
}

// seedProject 创建项目及其 pendiente 卷宗，返回项目 ID
func seedProject(t *testing.T, m *mockRepos, run1 string, run2 *string) uint {
	t.Helper()
	ctx := context.Background()
	p := &model.Project{
		StudentRUN1: run1,
		StudentRUN2: run2,
		Term:        "2026-1",
		Modality:    model.ModalityTesis,
		Title:       "Sistema de gestión de titulación",
	}
	_ = m.project.Create(ctx, p)
	_ = m.committee.Save(ctx, &model.Committee{ProjectID: p.ID, Advisor: "Dr. Soto"})
	_ = m.expediente.Create(ctx, &model.Expediente{ProjectID: p.ID})
	return p.ID
}

func seedDocument(t *testing.T, m *mockRepos, run string, cat model.DocumentCategory, validated bool) *model.Document {
	t.Helper()
	d := &model.Document{
		StudentRUN: run,
		Category:   cat,
		Path:       "/data/" + string(cat) + ".pdf",
		Validated:  validated,
		UploadedAt: fixedNow,
	}
	_ = m.document.Create(context.Background(), d)
	return d
}

// seedReady 上传并审核全部必需材料（财务结清使用学位变体）
func seedReady(t *testing.T, m *mockRepos, run string) {
	t.Helper()
	for _, c := range []model.DocumentCategory{
		model.DocBienestar, model.DocFinanzasTitulo, model.DocBiblioteca, model.DocSDT, model.DocMemorandum,
	} {
		seedDocument(t, m, run, c, true)
	}
}

func setStatus(t *testing.T, m *mockRepos, projectID uint, status model.ExpedienteStatus) {
	t.Helper()
	m.expediente.expedientes[projectID].Status = status
}

func newTestAudit(m *mockRepos) AuditService {
	return &auditService{repo: m.repository(), logger: zap.NewNop(), now: fixedClock}
}
