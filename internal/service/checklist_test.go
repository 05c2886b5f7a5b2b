package service

import (
	"testing"

	"sgte/backend/internal/model"
)

func doc(id uint, cat model.DocumentCategory, path string, validated bool) model.Document {
	return model.Document{ID: id, StudentRUN: runAna, Category: cat, Path: path, Validated: validated}
}

func TestComputeChecklist_AllMissing(t *testing.T) {
	cl := ComputeChecklist(runAna, nil)

	if cl.StudentRUN != runAna {
		t.Errorf("期望 RUN %s，实际 %s", runAna, cl.StudentRUN)
	}
	if len(cl.Items) != 5 {
		t.Fatalf("期望 5 个必需槽位，实际 %d", len(cl.Items))
	}
	if cl.Summary.TotalRequired != 5 || cl.Summary.ValidatedCount != 0 || cl.Summary.MissingCount != 5 {
		t.Errorf("汇总错误: %+v", cl.Summary)
	}
	if cl.Summary.ReadyForSubmission {
		t.Error("无材料时不应可提交")
	}

	want := []model.DocumentCategory{
		model.DocBienestar, model.DocFinanzasTitulo, model.DocBiblioteca, model.DocSDT, model.DocMemorandum,
	}
	for i, item := range cl.Items {
		if item.Category != want[i].String() {
			t.Errorf("第 %d 项期望 %s，实际 %s", i, want[i], item.Category)
		}
		if !item.Required || item.HasDocument || item.IsValidated || item.DocumentID != nil {
			t.Errorf("第 %d 项应为必需且缺失: %+v", i, item)
		}
	}
}

func TestComputeChecklist_LicenciaCountedOnce(t *testing.T) {
	docs := []model.Document{
		doc(1, model.DocBienestar, "/a.pdf", true),
		doc(2, model.DocFinanzasLicencia, "/b.pdf", true),
		doc(3, model.DocBiblioteca, "/c.pdf", true),
		doc(4, model.DocSDT, "/d.pdf", true),
		doc(5, model.DocMemorandum, "/e.pdf", true),
	}
	cl := ComputeChecklist(runAna, docs)

	if len(cl.Items) != 5 {
		t.Fatalf("学士财务结清只占一个槽位，期望 5 项，实际 %d", len(cl.Items))
	}
	if cl.Items[1].Category != model.DocFinanzasLicencia.String() || !cl.Items[1].IsValidated {
		t.Errorf("财务槽位应由学士变体满足: %+v", cl.Items[1])
	}
	if cl.Summary.ValidatedCount != 5 || cl.Summary.MissingCount != 0 || !cl.Summary.ReadyForSubmission {
		t.Errorf("期望全部满足，实际 %+v", cl.Summary)
	}
}

func TestComputeChecklist_BothFinancialVariantsValidated(t *testing.T) {
	docs := []model.Document{
		doc(1, model.DocFinanzasLicencia, "/l.pdf", true),
		doc(2, model.DocFinanzasTitulo, "/t.pdf", true),
	}
	cl := ComputeChecklist(runAna, docs)

	if cl.Items[1].Category != model.DocFinanzasTitulo.String() {
		t.Errorf("两个变体都通过时应优先学位变体，实际 %s", cl.Items[1].Category)
	}
	if cl.Summary.ValidatedCount != 1 {
		t.Errorf("财务槽位只计一次，期望 1，实际 %d", cl.Summary.ValidatedCount)
	}
	for _, item := range cl.Items {
		if item.Category == model.DocFinanzasLicencia.String() {
			t.Error("未被选中的财务变体不应单独出现")
		}
	}
}

func TestComputeChecklist_FinancialSlotPrefersValidatedVariant(t *testing.T) {
	docs := []model.Document{
		doc(1, model.DocFinanzasTitulo, "/t.pdf", false),
		doc(2, model.DocFinanzasLicencia, "/l.pdf", true),
	}
	cl := ComputeChecklist(runAna, docs)

	if cl.Items[1].Category != model.DocFinanzasLicencia.String() || !cl.Items[1].IsValidated {
		t.Errorf("应选择已审核的变体，实际 %+v", cl.Items[1])
	}
}

func TestComputeChecklist_UploadedButNotValidated(t *testing.T) {
	cl := ComputeChecklist(runAna, []model.Document{doc(7, model.DocBiblioteca, "/lib.pdf", false)})

	item := cl.Items[2]
	if !item.HasDocument || item.IsValidated {
		t.Errorf("期望已上传未审核，实际 %+v", item)
	}
	if item.DocumentID == nil || *item.DocumentID != 7 || item.Path != "/lib.pdf" {
		t.Errorf("应携带材料 ID 与路径，实际 %+v", item)
	}
	if cl.Summary.MissingCount != 5 {
		t.Errorf("未审核材料仍计为缺失，期望 5，实际 %d", cl.Summary.MissingCount)
	}
}

func TestComputeChecklist_ExtrasDoNotAffectReadiness(t *testing.T) {
	docs := []model.Document{
		doc(1, model.DocActa, "/acta.pdf", false),
		doc(2, model.DocOtro, "/otro.pdf", false),
	}
	cl := ComputeChecklist(runAna, docs)

	if len(cl.Items) != 7 {
		t.Fatalf("期望 5 个必需项 + 2 个附加项，实际 %d", len(cl.Items))
	}
	if cl.Items[5].Category != model.DocActa.String() || cl.Items[6].Category != model.DocOtro.String() {
		t.Errorf("附加项应按登记顺序排列: %s, %s", cl.Items[5].Category, cl.Items[6].Category)
	}
	if cl.Items[5].Required || cl.Items[6].Required {
		t.Error("附加项不应为必需")
	}
	if cl.Summary.TotalRequired != 5 || cl.Summary.MissingCount != 5 {
		t.Errorf("附加项不应计入汇总: %+v", cl.Summary)
	}

	ready := []model.Document{
		doc(1, model.DocBienestar, "/a.pdf", true),
		doc(2, model.DocFinanzasTitulo, "/b.pdf", true),
		doc(3, model.DocBiblioteca, "/c.pdf", true),
		doc(4, model.DocSDT, "/d.pdf", true),
		doc(5, model.DocMemorandum, "/e.pdf", true),
	}
	withExtra := append(append([]model.Document{}, ready...), doc(6, model.DocOtro, "/x.pdf", false))
	if ComputeChecklist(runAna, ready).Summary.ReadyForSubmission != ComputeChecklist(runAna, withExtra).Summary.ReadyForSubmission {
		t.Error("附加材料不应改变可提交状态")
	}
}

func TestComputeChecklist_LatestRecordWins(t *testing.T) {
	docs := []model.Document{
		doc(1, model.DocSDT, "/old.pdf", true),
		doc(9, model.DocSDT, "/new.pdf", false),
	}
	cl := ComputeChecklist(runAna, docs)

	item := cl.Items[3]
	if item.Path != "/new.pdf" || item.IsValidated {
		t.Errorf("同类别应取最新记录，实际 %+v", item)
	}
}

func TestComputeChecklist_ValidatedWithoutFile(t *testing.T) {
	docs := []model.Document{
		doc(1, model.DocBienestar, "", true),
		doc(2, model.DocFinanzasTitulo, "/b.pdf", true),
		doc(3, model.DocBiblioteca, "/c.pdf", true),
		doc(4, model.DocSDT, "/d.pdf", true),
		doc(5, model.DocMemorandum, "/e.pdf", true),
	}
	cl := ComputeChecklist(runAna, docs)

	item := cl.Items[0]
	if item.HasDocument {
		t.Error("路径为空时 HasDocument 应为 false")
	}
	if !item.IsValidated {
		t.Error("路径为空但已审核时 IsValidated 应为 true")
	}
	if item.DocumentID == nil || *item.DocumentID != 1 {
		t.Errorf("应关联材料记录 1，实际 %v", item.DocumentID)
	}
	if cl.Summary.ValidatedCount != 5 || !cl.Summary.ReadyForSubmission {
		t.Errorf("无文件的已审核材料应计入就绪，实际 %+v", cl.Summary)
	}
}
