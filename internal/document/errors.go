package document

import (
	"errors"
	"fmt"
)

// FallbackNotice 解析失败时展示给用户的提示
const FallbackNotice = "Failed to parse travel plan. Showing raw response."

// ParseError 解析过程中出现意外错误
// Raw 保存未经修改的原始文本，调用方应原样展示
type ParseError struct {
	Raw   string
	Cause error
}

// Error 实现error接口
func (e *ParseError) Error() string {
	if e.Cause == nil {
		return "failed to parse travel plan"
	}
	return fmt.Sprintf("failed to parse travel plan: %v", e.Cause)
}

// Unwrap 返回底层错误
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsParseError 判断错误链中是否包含ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// RawText 从错误链中取出原始文本
func RawText(err error) (string, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Raw, true
	}
	return "", false
}
