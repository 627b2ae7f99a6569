package services

import "errors"

var (
	// ErrInvalidAnswers 问卷答案不合法
	ErrInvalidAnswers = errors.New("invalid questionnaire answers")

	// ErrGenerationFailed 模型调用失败或没有返回文本
	ErrGenerationFailed = errors.New("failed to generate plan")

	// ErrGeneratorUnavailable 未配置模型客户端
	ErrGeneratorUnavailable = errors.New("plan generator not configured")

	// ErrQueueDisabled 未启用异步任务队列
	ErrQueueDisabled = errors.New("async generation not enabled")

	// ErrNoRawText 计划还没有可解析的原文
	ErrNoRawText = errors.New("plan has no generated text")
)
