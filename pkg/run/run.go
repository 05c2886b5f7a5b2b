// Package run 校验并格式化智利国民身份号码（RUN）。
//
// RUN 由数字主体与一位校验字符组成，校验字符通过加权模 11 算法计算：
// 从最低位开始依次乘以 2,3,4,5,6,7,2,3,...，求和后对 11 取余，
// 余数为 0 时校验字符为 "0"，余数为 1 时为 "K"，其余为 11-余数。
package run

import (
	"strconv"
	"strings"

	pkgerrors "sgte/backend/pkg/errors"
)

const (
	minLen = 8
	maxLen = 9
)

// 校验失败原因
const (
	ReasonLength    = "RUN 长度必须为 8 到 9 个字符"
	ReasonBody      = "RUN 主体必须为数字"
	ReasonCheckChar = "RUN 校验位错误"
)

// Clean 去除分组点、连字符与空白并转为大写
func Clean(raw string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(raw)))
}

// CheckDigit 计算数字主体对应的校验字符
func CheckDigit(body string) (string, error) {
	if body == "" || !isDigits(body) {
		return "", pkgerrors.NewValidation("run", ReasonBody)
	}

	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		if weight < 7 {
			weight++
		} else {
			weight = 2
		}
	}

	switch rem := sum % 11; rem {
	case 0:
		return "0", nil
	case 1:
		return "K", nil
	default:
		return strconv.Itoa(11 - rem), nil
	}
}

// Validate 校验 RUN，失败时返回 *errors.ValidationError
func Validate(raw string) error {
	cleaned := Clean(raw)
	if len(cleaned) < minLen || len(cleaned) > maxLen {
		return pkgerrors.NewValidation("run", ReasonLength)
	}

	body, supplied := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]
	if !isDigits(body) {
		return pkgerrors.NewValidation("run", ReasonBody)
	}

	expected, err := CheckDigit(body)
	if err != nil {
		return err
	}
	if expected != supplied {
		return pkgerrors.NewValidation("run", ReasonCheckChar+"，应为 "+expected)
	}
	return nil
}

// Check 校验并返回规范格式：(是否有效, 规范 RUN, 失败原因)
func Check(raw string) (bool, string, string) {
	if err := Validate(raw); err != nil {
		var reason string
		if ve, ok := err.(*pkgerrors.ValidationError); ok {
			reason = ve.Reason
		} else {
			reason = err.Error()
		}
		return false, "", reason
	}
	return true, Format(raw), ""
}

// Format 转为规范格式 XX.XXX.XXX-X，对已格式化的输入幂等
func Format(raw string) string {
	cleaned := Clean(raw)
	if len(cleaned) < 2 {
		return cleaned
	}

	body, dv := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]

	var b strings.Builder
	lead := len(body) % 3
	if lead > 0 {
		b.WriteString(body[:lead])
	}
	for i := lead; i < len(body); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(body[i : i+3])
	}
	b.WriteByte('-')
	b.WriteString(dv)
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
