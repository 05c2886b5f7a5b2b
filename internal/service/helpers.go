package service

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	pkgerrors "sgte/backend/pkg/errors"
	"sgte/backend/pkg/run"
)

const (
	timeLayout = "2006-01-02T15:04:05Z07:00"
	dateLayout = "2006-01-02"
)

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

// parseDate 解析 "2006-01-02"，空字符串返回 nil
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*s), time.Local)
	if err != nil {
		return nil, invalid(field, "日期格式应为 YYYY-MM-DD")
	}
	return &t, nil
}

// canonicalRUN 校验并转为规范格式，作为学生主键
func canonicalRUN(raw string) (string, error) {
	if err := run.Validate(raw); err != nil {
		return "", err
	}
	return run.Format(raw), nil
}

// notFound 将 gorm.ErrRecordNotFound 映射为业务错误
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// titleCase 去除多余空白并首字母大写（María josé → María José）
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func invalid(field, reason string) error {
	return pkgerrors.NewValidation(field, reason)
}

func strPtr(s string) *string { return &s }
