package llm

import (
	"context"
	"time"
)

// Client 大模型客户端接口
// 负责根据提示词生成旅行计划原文
type Client interface {
	// Generate 根据提示词生成文本
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error)

	// Name 返回模型名称
	Name() string
}

// Sampling 采样参数，零值表示使用模型默认值
type Sampling struct {
	MaxTokens   int     // 最大生成Token数
	Temperature float32 // 采样温度(0.0-2.0)
	TopP        float32 // 核采样概率阈值(0.0-1.0)
	TopK        int
}

// Config 大模型客户端配置
type Config struct {
	APIKey     string        // API密钥
	BaseURL    string        // API端点（为空时使用SDK默认值）
	Model      string        // 模型名称
	Timeout    time.Duration // 请求超时时间
	MaxRetries int           // 最大重试次数
	Sampling   Sampling      // 默认采样参数
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Model:      ModelGeminiFlashLite,
		Timeout:    60 * time.Second,
		MaxRetries: 3,
		Sampling: Sampling{
			MaxTokens:   2048,
			Temperature: 0.7,
			TopP:        0.9,
		},
	}
}

// Option 客户端配置选项函数类型
type Option func(*Config)

// WithAPIKey 设置API密钥
func WithAPIKey(apiKey string) Option {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

// WithBaseURL 设置API端点
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel 设置模型名称
func WithModel(model string) Option {
	return func(c *Config) {
		if model != "" {
			c.Model = model
		}
	}
}

// WithTimeout 设置请求超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

// WithMaxTokens 设置最大生成Token数
func WithMaxTokens(tokens int) Option {
	return func(c *Config) {
		c.Sampling.MaxTokens = tokens
	}
}

// WithTemperature 设置采样温度
func WithTemperature(temp float32) Option {
	return func(c *Config) {
		c.Sampling.Temperature = temp
	}
}

// WithTopP 设置核采样概率阈值
func WithTopP(topP float32) Option {
	return func(c *Config) {
		c.Sampling.TopP = topP
	}
}

// NewConfig 创建一个新的配置并应用选项
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// GenerateOption 覆盖单次生成请求的采样参数
type GenerateOption func(*Sampling)

// WithGenerateMaxTokens 设置本次请求的最大Token数
func WithGenerateMaxTokens(tokens int) GenerateOption {
	return func(s *Sampling) { s.MaxTokens = tokens }
}

// WithGenerateTemperature 设置本次请求的采样温度
func WithGenerateTemperature(temp float32) GenerateOption {
	return func(s *Sampling) { s.Temperature = temp }
}

func WithGenerateTopP(topP float32) GenerateOption {
	return func(s *Sampling) { s.TopP = topP }
}

func WithGenerateTopK(topK int) GenerateOption {
	return func(s *Sampling) { s.TopK = topK }
}

// With 返回应用了请求级覆盖后的采样参数副本
func (s Sampling) With(options ...GenerateOption) Sampling {
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// Factory 大模型客户端工厂函数类型
type Factory func(opts ...Option) (Client, error)

var clientFactories = make(map[string]Factory)

// RegisterClient 注册大模型客户端工厂函数
func RegisterClient(name string, factory Factory) {
	clientFactories[name] = factory
}

// NewClient 根据名称创建大模型客户端
func NewClient(name string, opts ...Option) (Client, error) {
	if factory, ok := clientFactories[name]; ok {
		return factory(opts...)
	}
	return nil, NewLLMError(ErrCodeInvalidRequest, "llm client type not registered: "+name)
}
