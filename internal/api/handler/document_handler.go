package handler

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"sgte/backend/internal/dto"
	"sgte/backend/internal/service"
	"sgte/backend/pkg/response"
)

// maxUploadSize 单个材料文件上限（20MB）
const maxUploadSize = 20 << 20

var pdfMagic = []byte("%PDF")

// DocumentHandler 材料模块 HTTP 处理器
type DocumentHandler struct {
	documentSvc service.DocumentService
}

// NewDocumentHandler 创建 DocumentHandler
func NewDocumentHandler(documentSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

// UpsertDocument 按文件路径登记材料
// POST /api/v1/documents
func (h *DocumentHandler) UpsertDocument(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	var req dto.UpsertDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.documentSvc.UpsertDocument(c.Request.Context(), req.RUN, req.Category, req.Path, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if result.Created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// UploadDocument 上传 PDF 材料并登记
// POST /api/v1/documents/upload  (multipart: run, category, file)
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	studentRUN := c.PostForm("run")
	category := c.PostForm("category")
	if studentRUN == "" || category == "" {
		response.BadRequest(c, codeValidation, "run 与 category 不能为空")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeValidation, "请上传文件")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		response.BadRequest(c, codeNotPDF, "仅支持 PDF 文件")
		return
	}
	if fh.Size > maxUploadSize {
		response.BadRequest(c, codeUploadTooLarge, "文件大小超过 20MB 限制")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, codeUploadRead, "读取上传文件失败")
		return
	}
	defer f.Close()

	// 检查文件头，拒绝改了扩展名的非 PDF 文件
	br := bufio.NewReader(f)
	head, _ := br.Peek(len(pdfMagic))
	if !bytes.Equal(head, pdfMagic) {
		response.BadRequest(c, codeNotPDF, "仅支持 PDF 文件")
		return
	}

	result, err := h.documentSvc.SaveUpload(c.Request.Context(), studentRUN, category, br, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// SetValidation 审核 / 撤销审核材料
// PUT /api/v1/documents/:id/validation
func (h *DocumentHandler) SetValidation(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeValidation, "参数校验失败")
		return
	}

	result, err := h.documentSvc.SetValidation(c.Request.Context(), id, *req.Validated, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteDocument 删除材料记录
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}
	id, ok := MustGetUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.documentSvc.Delete(c.Request.Context(), id, operatorID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}
