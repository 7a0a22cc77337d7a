package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// StringRule 基于字符串字段的自定义校验规则
type StringRule struct {
	Tag   string
	Check func(value string) bool
}

// CustomValidator wraps go-playground validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(400, describe(err))
	}
	return nil
}

// New creates a new custom validator instance
// 内置 battle_name 规则，调用方可追加领域规则（如 direction）
func New(rules ...StringRule) echo.Validator {
	v := validator.New()
	_ = v.RegisterValidation("battle_name", validateBattleName)

	for _, rule := range rules {
		check := rule.Check
		_ = v.RegisterValidation(rule.Tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		})
	}

	return &CustomValidator{validator: v}
}

// validateBattleName 名称不能全为空白，且不超过 64 个字符
func validateBattleName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" {
		return false
	}
	return utf8.RuneCountInString(name) <= 64
}

// describe 将校验错误压缩为 "field: tag" 形式，方便客户端定位
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
