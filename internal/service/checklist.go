package service

import (
	"sgte/backend/internal/dto"
	"sgte/backend/internal/model"
)

// requiredSlots 必需材料槽位（固定顺序）；财务结清槽位任一变体审核通过即满足
var requiredSlots = [][]model.DocumentCategory{
	{model.DocBienestar},
	{model.DocFinanzasTitulo, model.DocFinanzasLicencia},
	{model.DocBiblioteca},
	{model.DocSDT},
	{model.DocMemorandum},
}

// ComputeChecklist 根据学生现有材料计算清单，纯函数。
// 未审核的必需槽位计入 MissingCount；学生不存在（docs 为空）时得到全部缺失的清单
func ComputeChecklist(run string, docs []model.Document) *dto.Checklist {
	latest := latestByCategory(docs)
	required := make(map[model.DocumentCategory]bool)

	result := &dto.Checklist{
		StudentRUN: run,
		Items:      make([]dto.ChecklistItem, 0, len(requiredSlots)+2),
	}

	for _, slot := range requiredSlots {
		for _, c := range slot {
			required[c] = true
		}
		category, doc := pickSlotDocument(slot, latest)
		item := toChecklistItem(category, doc, true)
		result.Items = append(result.Items, item)

		result.Summary.TotalRequired++
		if item.IsValidated {
			result.Summary.ValidatedCount++
		}
	}

	// 非必需材料按登记顺序附加在末尾，不影响汇总
	for i := range docs {
		if !required[docs[i].Category] {
			result.Items = append(result.Items, toChecklistItem(docs[i].Category, &docs[i], false))
		}
	}

	result.Summary.MissingCount = result.Summary.TotalRequired - result.Summary.ValidatedCount
	result.Summary.ReadyForSubmission = result.Summary.ValidatedCount == result.Summary.TotalRequired
	return result
}

// readinessByStudent 按学生分组计算是否可提交；无材料的学生为 false
func readinessByStudent(runs []string, docs []model.Document) map[string]bool {
	grouped := make(map[string][]model.Document, len(runs))
	for _, d := range docs {
		grouped[d.StudentRUN] = append(grouped[d.StudentRUN], d)
	}
	ready := make(map[string]bool, len(runs))
	for _, r := range runs {
		ready[r] = ComputeChecklist(r, grouped[r]).Summary.ReadyForSubmission
	}
	return ready
}

// latestByCategory 每个类别取 ID 最大（最新）的一条
func latestByCategory(docs []model.Document) map[model.DocumentCategory]*model.Document {
	latest := make(map[model.DocumentCategory]*model.Document, len(docs))
	for i := range docs {
		d := &docs[i]
		if cur, ok := latest[d.Category]; !ok || d.ID > cur.ID {
			latest[d.Category] = d
		}
	}
	return latest
}

// pickSlotDocument 选择代表槽位的材料：已审核 > 已上传 > 首选类别（无材料）
// 变体按槽位顺序优先，即学位财务结清优先于学士
func pickSlotDocument(slot []model.DocumentCategory, latest map[model.DocumentCategory]*model.Document) (model.DocumentCategory, *model.Document) {
	for _, c := range slot {
		if d, ok := latest[c]; ok && d.Validated {
			return c, d
		}
	}
	for _, c := range slot {
		if d, ok := latest[c]; ok && d.HasFile() {
			return c, d
		}
	}
	for _, c := range slot {
		if d, ok := latest[c]; ok {
			return c, d
		}
	}
	return slot[0], nil
}

func toChecklistItem(category model.DocumentCategory, doc *model.Document, required bool) dto.ChecklistItem {
	item := dto.ChecklistItem{
		Category: category.String(),
		Label:    category.Label(),
		Required: required,
	}
	if doc == nil {
		return item
	}
	id := doc.ID
	item.DocumentID = &id
	item.Path = doc.Path
	// 审核与文件相互独立：无文件但已审核（如纸质材料）照样满足槽位
	item.HasDocument = doc.HasFile()
	item.IsValidated = doc.Validated
	return item
}
