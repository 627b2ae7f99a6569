package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildPlanPrompt 测试提示词构造
func TestBuildPlanPrompt(t *testing.T) {
	prompt := BuildPlanPrompt([]string{"Tokyo, Kyoto", " $2000-3000 ", "", "Cultural", "Vegetarian", "Relaxed"})

	assert.True(t, strings.HasSuffix(prompt, "Based on these details: Tokyo, Kyoto, $2000-3000, Cultural, Vegetarian, Relaxed"))

	for _, header := range []string{
		"## Destination Overview",
		"## Daily Itinerary",
		"## Essential Packing List",
		"## Budget Recommendations",
		"## Cultural Notes",
		"## Transportation Guide",
	} {
		assert.Contains(t, prompt, "\n"+header+"\n")
	}
	assert.Contains(t, prompt, "Day 1: [Title]")

	assert.True(t, strings.HasSuffix(BuildPlanPrompt(nil), "Based on these details: "))
}

// TestErrorHelpers 测试错误辅助函数
func TestErrorHelpers(t *testing.T) {
	err := NewLLMError(ErrCodeRateLimited, ErrMsgRateLimited)
	assert.Contains(t, err.Error(), "code=1004")
	assert.True(t, IsRetryable(err))

	wrapped := WrapError(err, ErrCodeServerError)
	assert.Equal(t, ErrCodeRateLimited, wrapped.Code, "已是LLMError时保持原错误码")

	assert.Equal(t, 0, ErrorCode(nil))
	assert.Equal(t, "unknown error", WrapError(nil, ErrCodeServerError).Message)
}
