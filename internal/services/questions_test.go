package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestions(t *testing.T) {
	require.Len(t, Questions, 5)
	for i, q := range Questions {
		assert.Equal(t, i+1, q.ID)
		assert.NotEmpty(t, q.Text)
	}
}

// TestValidateAnswers 测试问卷答案校验
func TestValidateAnswers(t *testing.T) {
	cleaned, err := ValidateAnswers([]string{"  Kyoto ", "$2000"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kyoto", "$2000"}, cleaned)

	cases := map[string][]string{
		"empty":    nil,
		"blank":    {"Kyoto", "   "},
		"too many": {"a", "b", "c", "d", "e", "f"},
		"too long": {strings.Repeat("x", MaxAnswerLength+1)},
	}
	for name, answers := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateAnswers(answers)
			assert.ErrorIs(t, err, ErrInvalidAnswers)
		})
	}

	// 按字符而不是字节计数
	_, err = ValidateAnswers([]string{strings.Repeat("京", MaxAnswerLength)})
	assert.NoError(t, err)
}
