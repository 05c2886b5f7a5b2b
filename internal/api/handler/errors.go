package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sgte/backend/internal/service"
	pkgerrors "sgte/backend/pkg/errors"
	"sgte/backend/pkg/response"
)

// 业务错误码
const (
	codeValidation     = 10001
	codeUnauthorized   = 10002
	codeConflict       = 10006
	codeStorageBusy    = 10007
	codeNotFound       = 10008
	codeStudentExist   = 11001
	codeCoAuthorSame   = 12001
	codeNotPDF         = 13001
	codeUploadTooLarge = 13002
	codeUploadRead     = 13003
	codeNoExportData   = 15001
)

// retryAfterSeconds 可重试错误建议的等待秒数
const retryAfterSeconds = "1"

// handleServiceError 将 Service 层错误映射为 HTTP 响应
func handleServiceError(c *gin.Context, err error) {
	var ve *pkgerrors.ValidationError
	var nf *pkgerrors.NotFoundError

	switch {
	case errors.As(err, &ve):
		response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "参数校验失败", ve.Error())
	case errors.Is(err, pkgerrors.ErrValidation):
		response.BadRequest(c, codeValidation, err.Error())
	case errors.Is(err, service.ErrExportNoData), errors.Is(err, service.ErrExportNoMilestones),
		errors.Is(err, service.ErrExportNoAuditLogs):
		response.NotFound(c, codeNoExportData, err.Error())
	case errors.As(err, &nf):
		response.NotFound(c, codeNotFound, nf.Error())
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, codeNotFound, err.Error())
	case errors.Is(err, service.ErrStudentExists):
		response.Conflict(c, codeStudentExist, err.Error())
	case errors.Is(err, service.ErrCoAuthorSame):
		response.Conflict(c, codeCoAuthorSame, err.Error())
	case pkgerrors.IsRetryable(err):
		c.Header("Retry-After", retryAfterSeconds)
		if errors.Is(err, pkgerrors.ErrStorageBusy) {
			response.ServiceUnavailable(c, codeStorageBusy, err.Error())
			return
		}
		response.Conflict(c, codeConflict, err.Error())
	default:
		response.InternalError(c)
	}
}
