package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/model"
	"sgte/backend/internal/repository"
	"sgte/backend/pkg/run"
)

// DocumentService 学生材料与材料清单业务接口
type DocumentService interface {
	// ComputeChecklist 计算材料清单；学生不存在时返回全部缺失的清单
	ComputeChecklist(ctx context.Context, studentRUN string) (*dto.Checklist, error)
	// GetChecklist 与 ComputeChecklist 相同，但学生不存在时返回 ErrStudentNotFound
	GetChecklist(ctx context.Context, studentRUN string) (*dto.Checklist, error)
	// ReadinessBatch 批量查询学生是否可提交，键为调用方传入的 RUN；
	// 格式无效或不存在的学生为 false
	ReadinessBatch(ctx context.Context, runs []string) (map[string]bool, error)
	// UpsertDocument 登记材料文件；已有同类别材料时覆盖路径并重置审核状态
	UpsertDocument(ctx context.Context, studentRUN, category, path, actor string) (*dto.UpsertDocumentResponse, error)
	// SaveUpload 将上传的 PDF 写入材料目录后登记
	SaveUpload(ctx context.Context, studentRUN, category string, src io.Reader, actor string) (*dto.UpsertDocumentResponse, error)
	SetValidation(ctx context.Context, documentID uint, validated bool, validator string) (*dto.DocumentResponse, error)
	ListByStudent(ctx context.Context, studentRUN string) ([]dto.DocumentResponse, error)
	Delete(ctx context.Context, documentID uint, actor string) error
}

type documentService struct {
	repo    *repository.Repository
	audit   AuditService
	rootDir string
	logger  *zap.Logger
	now     func() time.Time
}

// NewDocumentService 创建 DocumentService 实例；rootDir 为上传文件存储根目录
func NewDocumentService(repo *repository.Repository, audit AuditService, rootDir string, logger *zap.Logger) DocumentService {
	return &documentService{repo: repo, audit: audit, rootDir: rootDir, logger: logger, now: time.Now}
}

// ────────────────────── Checklist ──────────────────────

func (s *documentService) ComputeChecklist(ctx context.Context, studentRUN string) (*dto.Checklist, error) {
	key := run.Format(studentRUN)
	var docs []model.Document
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		docs, err = tx.Document.ListByStudent(ctx, key)
		return err
	})
	if err != nil {
		s.logger.Error("查询学生材料失败", zap.String("run", key), zap.Error(err))
		return nil, err
	}
	return ComputeChecklist(key, docs), nil
}

func (s *documentService) GetChecklist(ctx context.Context, studentRUN string) (*dto.Checklist, error) {
	key, err := canonicalRUN(studentRUN)
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Student.Exists(ctx, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrStudentNotFound
		}
		docs, err = tx.Document.ListByStudent(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ComputeChecklist(key, docs), nil
}

// maxReadinessBatch 单次批量查询的 RUN 上限
const maxReadinessBatch = 200

func (s *documentService) ReadinessBatch(ctx context.Context, runs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(runs))
	keyOf := make(map[string]string, len(runs))
	keys := make([]string, 0, len(runs))
	seen := make(map[string]bool, len(runs))

	for _, raw := range runs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		result[raw] = false
		key, err := canonicalRUN(raw)
		if err != nil {
			continue
		}
		keyOf[raw] = key
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	if len(result) > maxReadinessBatch {
		return nil, invalid("runs", fmt.Sprintf("单次最多查询 %d 名学生", maxReadinessBatch))
	}
	if len(keys) == 0 {
		return result, nil
	}

	var docs []model.Document
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		docs, err = tx.Document.ListByStudents(ctx, keys)
		return err
	})
	if err != nil {
		s.logger.Error("批量查询材料失败", zap.Int("runs", len(keys)), zap.Error(err))
		return nil, err
	}

	ready := readinessByStudent(keys, docs)
	for raw, key := range keyOf {
		result[raw] = ready[key]
	}
	return result, nil
}

// ────────────────────── Upsert ──────────────────────

func (s *documentService) UpsertDocument(ctx context.Context, studentRUN, category, path, actor string) (*dto.UpsertDocumentResponse, error) {
	key, err := canonicalRUN(studentRUN)
	if err != nil {
		return nil, err
	}
	cat, err := model.ParseDocumentCategory(category)
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, invalid("path", "文件路径不能为空")
	}

	var (
		doc     *model.Document
		before  *model.Document
		created bool
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Student.Exists(ctx, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrStudentNotFound
		}

		existing, err := tx.Document.GetByStudentAndCategory(ctx, key, cat)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := s.now()
		if existing == nil {
			doc = &model.Document{
				StudentRUN: key,
				Category:   cat,
				Path:       path,
				UploadedAt: now,
			}
			created = true
			return tx.Document.Create(ctx, doc)
		}

		// 重新上传：新文件必须重新审核
		snapshot := *existing
		before = &snapshot
		existing.Path = path
		existing.UploadedAt = now
		existing.Validated = false
		existing.ValidatedAt = nil
		existing.ValidatedBy = nil
		doc = existing
		created = false
		return tx.Document.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	action := model.AuditUpdate
	if created {
		action = model.AuditCreate
	}
	s.audit.Record(ctx, AuditEntry{
		Table:       "documentos",
		RecordID:    strconv.FormatUint(uint64(doc.ID), 10),
		Action:      action,
		User:        actor,
		Description: fmt.Sprintf("登记材料 %s：%s", cat.Label(), key),
		Before:      before,
		After:       doc,
	})

	s.logger.Info("材料已登记",
		zap.String("run", key),
		zap.String("category", cat.String()),
		zap.Bool("created", created),
	)
	return &dto.UpsertDocumentResponse{ID: doc.ID, Created: created}, nil
}

// SaveUpload 存储路径：<rootDir>/<RUN 纯数字与校验位>/<类别>_<YYYYmmdd_HHMMSS>.pdf
func (s *documentService) SaveUpload(ctx context.Context, studentRUN, category string, src io.Reader, actor string) (*dto.UpsertDocumentResponse, error) {
	key, err := canonicalRUN(studentRUN)
	if err != nil {
		return nil, err
	}
	cat, err := model.ParseDocumentCategory(category)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.rootDir, run.Clean(key))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("创建材料目录失败", zap.String("dir", dir), zap.Error(err))
		return nil, fmt.Errorf("创建材料目录失败: %w", err)
	}

	name := fmt.Sprintf("%s_%s.pdf", cat, s.now().Format("20060102_150405"))
	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		s.logger.Error("创建材料文件失败", zap.String("path", dst), zap.Error(err))
		return nil, fmt.Errorf("创建材料文件失败: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(dst)
		s.logger.Error("写入材料文件失败", zap.String("path", dst), zap.Error(err))
		return nil, fmt.Errorf("写入材料文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("写入材料文件失败: %w", err)
	}

	resp, err := s.UpsertDocument(ctx, key, cat.String(), dst, actor)
	if err != nil {
		// 登记失败时不保留孤立文件
		os.Remove(dst)
		return nil, err
	}
	return resp, nil
}

// ────────────────────── Validation ──────────────────────

func (s *documentService) SetValidation(ctx context.Context, documentID uint, validated bool, validator string) (*dto.DocumentResponse, error) {
	var (
		doc    *model.Document
		before model.Document
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		doc, err = tx.Document.GetByID(ctx, documentID)
		if err != nil {
			return notFound(err, ErrDocumentNotFound)
		}
		before = *doc

		doc.Validated = validated
		if validated {
			now := s.now()
			doc.ValidatedAt = &now
			doc.ValidatedBy = strPtr(validator)
		} else {
			doc.ValidatedAt = nil
			doc.ValidatedBy = nil
		}
		return tx.Document.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	desc := "撤销材料审核"
	if validated {
		desc = "材料审核通过"
	}
	s.audit.Record(ctx, AuditEntry{
		Table:       "documentos",
		RecordID:    strconv.FormatUint(uint64(doc.ID), 10),
		Action:      model.AuditValidate,
		User:        validator,
		Description: fmt.Sprintf("%s：%s %s", desc, doc.StudentRUN, doc.Category.Label()),
		Before:      before,
		After:       doc,
	})

	resp := toDocumentResponse(doc)
	return &resp, nil
}

// ────────────────────── List / Delete ──────────────────────

func (s *documentService) ListByStudent(ctx context.Context, studentRUN string) ([]dto.DocumentResponse, error) {
	key, err := canonicalRUN(studentRUN)
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Student.Exists(ctx, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrStudentNotFound
		}
		docs, err = tx.Document.ListByStudent(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, toDocumentResponse(&docs[i]))
	}
	return result, nil
}

func (s *documentService) Delete(ctx context.Context, documentID uint, actor string) error {
	var doc *model.Document
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		doc, err = tx.Document.GetByID(ctx, documentID)
		if err != nil {
			return notFound(err, ErrDocumentNotFound)
		}
		return tx.Document.Delete(ctx, documentID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Table:       "documentos",
		RecordID:    strconv.FormatUint(uint64(documentID), 10),
		Action:      model.AuditDelete,
		User:        actor,
		Description: fmt.Sprintf("删除材料 %s：%s", doc.Category.Label(), doc.StudentRUN),
		Before:      doc,
	})
	return nil
}

func toDocumentResponse(d *model.Document) dto.DocumentResponse {
	resp := dto.DocumentResponse{
		ID:            d.ID,
		StudentRUN:    d.StudentRUN,
		Category:      d.Category.String(),
		CategoryLabel: d.Category.Label(),
		Path:          d.Path,
		Validated:     d.Validated,
		UploadedAt:    formatTime(d.UploadedAt),
		ValidatedAt:   formatTimePtr(d.ValidatedAt),
	}
	if d.ValidatedBy != nil {
		resp.ValidatedBy = *d.ValidatedBy
	}
	return resp
}
