package models

import "errors"

var (
	// ErrPlanNotFound 计划不存在错误
	ErrPlanNotFound = errors.New("plan not found")

	// ErrInvalidPlanStatus 无效的计划状态错误
	ErrInvalidPlanStatus = errors.New("invalid plan status")
)
