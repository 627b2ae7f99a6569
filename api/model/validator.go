package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// ErrUnsupportedValidator gin的校验引擎不是validator/v10
var ErrUnsupportedValidator = errors.New("binding validator is not go-playground/validator")

// RegisterValidators 向gin的校验引擎注册自定义规则
// 只注册一次，之后的调用返回第一次的结果
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = ErrUnsupportedValidator
			return
		}
		if err := v.RegisterValidation("notblank", notBlank); err != nil {
			registerErr = fmt.Errorf("register notblank: %w", err)
		}
	})
	return registerErr
}

// notBlank 字符串去除空白后不能为空
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
