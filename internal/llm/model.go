package llm

import "time"

// Response 统一的响应结构
type Response struct {
	Text         string    // 生成的文本
	TokenCount   int       // 使用的token数
	ModelName    string    // 使用的模型名称
	FinishReason string    // 结束原因
	FinishTime   time.Time // 完成时间
}

// Model 常用模型名称
const (
	ModelGeminiFlashLite = "gemini-2.5-flash-lite"
	ModelGeminiFlash     = "gemini-2.5-flash"
	ModelGeminiPro       = "gemini-2.5-pro"
)
