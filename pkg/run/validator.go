package run

import "github.com/go-playground/validator/v10"

// Tag 请求 DTO 中使用的校验标签，例如 `binding:"required,run"`
const Tag = "run"

// RegisterValidator 向 validator 注册 RUN 校验规则
func RegisterValidator(v *validator.Validate) error {
	return v.RegisterValidation(Tag, func(fl validator.FieldLevel) bool {
		return Validate(fl.Field().String()) == nil
	})
}
