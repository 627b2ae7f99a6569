package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiClient 基于Google Gemini的大模型客户端
type GeminiClient struct {
	client     *genai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	sampling   Sampling
}

// NewGeminiClient 创建Gemini客户端
func NewGeminiClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.APIKey == "" {
		return nil, NewLLMError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(context.Background(), clientOpts...)
	if err != nil {
		return nil, WrapError(err, ErrCodeNetworkError)
	}

	return &GeminiClient{
		client:     client,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		sampling:   cfg.Sampling,
	}, nil
}

// Name 返回模型名称
func (c *GeminiClient) Name() string {
	return c.model
}

// Close 关闭底层连接
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Generate 根据提示词生成文本，对可重试的错误做指数退避
func (c *GeminiClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.generativeModel(c.sampling.With(options...))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, NewLLMError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = classifyError(err)
			if IsRetryable(lastErr) {
				continue
			}
			return nil, lastErr
		}

		return c.buildResponse(resp)
	}

	return nil, lastErr
}

// generativeModel 创建带采样参数的模型句柄
func (c *GeminiClient) generativeModel(s Sampling) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.model)
	if s.Temperature > 0 {
		model.SetTemperature(s.Temperature)
	}
	if s.TopP > 0 {
		model.SetTopP(s.TopP)
	}
	if s.TopK > 0 {
		model.SetTopK(int32(s.TopK))
	}
	if s.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(s.MaxTokens))
	}
	return model
}

func (c *GeminiClient) buildResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	text, finishReason, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	result := &Response{
		Text:         text,
		ModelName:    c.model,
		FinishReason: finishReason,
		FinishTime:   time.Now(),
	}
	if resp.UsageMetadata != nil {
		result.TokenCount = int(resp.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}

// extractText 拼接第一个候选结果中的所有文本片段
func extractText(resp *genai.GenerateContentResponse) (string, string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", "", NewLLMError(ErrCodeEmptyResponse, ErrMsgEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", candidate.FinishReason.String(), NewLLMError(ErrCodeEmptyResponse, ErrMsgEmptyResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", candidate.FinishReason.String(), NewLLMError(ErrCodeEmptyResponse, ErrMsgEmptyResponse)
	}
	return text, candidate.FinishReason.String(), nil
}

// classifyError 将SDK返回的错误映射为LLM错误码
func classifyError(err error) error {
	var llmErr LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return NewLLMError(ErrCodeContentFilter, fmt.Sprintf("%s: %v", ErrMsgContentFilter, blocked))
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewLLMError(ErrCodeTimeout, ErrMsgTimeout)
	}

	st, ok := status.FromError(err)
	if !ok {
		return NewLLMError(ErrCodeNetworkError, err.Error())
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return NewLLMError(ErrCodeInvalidAPIKey, err.Error())
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
		return NewLLMError(ErrCodeInvalidRequest, err.Error())
	case codes.ResourceExhausted:
		return NewLLMError(ErrCodeRateLimited, err.Error())
	case codes.DeadlineExceeded:
		return NewLLMError(ErrCodeTimeout, err.Error())
	case codes.Unavailable:
		return NewLLMError(ErrCodeModelOverload, err.Error())
	default:
		return NewLLMError(ErrCodeServerError, err.Error())
	}
}

// 在包初始化时注册Gemini客户端
func init() {
	RegisterClient("gemini", NewGeminiClient)
}
