package router

import (
	"testing"

	"sgte/backend/pkg/jwt"
)

func TestMarkSentRoles(t *testing.T) {
	allowed := make(map[string]bool)
	for _, r := range markSentRoles {
		allowed[r] = true
	}
	if allowed[jwt.RoleOperator] {
		t.Error("普通操作员不应能标记卷宗已寄送")
	}
	if !allowed[jwt.RoleAdmin] || !allowed[jwt.RoleMailer] {
		t.Errorf("期望管理员与发件程序可标记寄送，实际 %v", markSentRoles)
	}
}
