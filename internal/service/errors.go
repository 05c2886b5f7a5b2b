package service

import (
	"errors"

	pkgerrors "sgte/backend/pkg/errors"
)

// ── 业务错误 ──

var (
	ErrStudentNotFound    = pkgerrors.NewNotFound("学生")
	ErrProjectNotFound    = pkgerrors.NewNotFound("项目")
	ErrExpedienteNotFound = pkgerrors.NewNotFound("卷宗")
	ErrDocumentNotFound   = pkgerrors.NewNotFound("材料")
	ErrMilestoneNotFound  = pkgerrors.NewNotFound("里程碑")

	ErrStudentExists   = errors.New("该 RUN 的学生已存在")
	ErrCoAuthorSame    = errors.New("两名作者不能为同一学生")
	ErrGraduatedStatus = pkgerrors.NewValidation("graduated", "只有状态为 titulado 的卷宗才能标记为已毕业")
)
