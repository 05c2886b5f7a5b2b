package errors

import (
	"errors"
	"fmt"
)

// ── 通用错误分类 ──

var (
	// ErrValidation 输入校验失败（RUN、文档类别、状态标签等）
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 按主键查找的记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
	// ErrStorageBusy 数据库锁竞争，重试次数耗尽
	ErrStorageBusy = errors.New("数据库繁忙，请稍后重试")
	// ErrStorageFault 其他持久层故障，当前工作单元已回滚
	ErrStorageFault = errors.New("数据库操作失败")
)

// ValidationError 带字段与原因的校验错误，errors.Is(err, ErrValidation) 为 true
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is 使所有 ValidationError 都能匹配 ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidation 创建校验错误
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError 指定实体不存在，errors.Is(err, ErrNotFound) 为 true
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + "不存在"
}

// Is 使所有 NotFoundError 都能匹配 ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound 创建实体不存在错误
func NewNotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// IsRetryable 调用方可提示"稍后重试"的错误
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageBusy) || errors.Is(err, ErrOptimisticLock)
}
