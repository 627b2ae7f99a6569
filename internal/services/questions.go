package services

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxAnswerLength 单个答案允许的最大字符数
const MaxAnswerLength = 500

// Question 问卷中的一个问题
type Question struct {
	ID          int    `json:"id"`
	Text        string `json:"text"`
	Placeholder string `json:"placeholder"`
}

// Questions 生成旅行计划前向用户提出的问题，答案按顺序拼入提示词
var Questions = []Question{
	{ID: 1, Text: "Which destinations would you like to visit?", Placeholder: "e.g. Tokyo and Kyoto"},
	{ID: 2, Text: "What is your budget range?", Placeholder: "e.g. $2000-$3000"},
	{ID: 3, Text: "What type of experience are you looking for?", Placeholder: "e.g. food, culture, hiking"},
	{ID: 4, Text: "Do you have any dietary restrictions?", Placeholder: "e.g. vegetarian"},
	{ID: 5, Text: "What travel pace do you prefer?", Placeholder: "e.g. relaxed"},
}

// ValidateAnswers 校验问卷答案，返回去除首尾空白后的答案
func ValidateAnswers(answers []string) ([]string, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: at least one answer is required", ErrInvalidAnswers)
	}
	if len(answers) > len(Questions) {
		return nil, fmt.Errorf("%w: expected at most %d answers, got %d", ErrInvalidAnswers, len(Questions), len(answers))
	}

	cleaned := make([]string, len(answers))
	for i, a := range answers {
		a = strings.TrimSpace(a)
		if a == "" {
			return nil, fmt.Errorf("%w: answer %d is blank", ErrInvalidAnswers, i+1)
		}
		if utf8.RuneCountInString(a) > MaxAnswerLength {
			return nil, fmt.Errorf("%w: answer %d exceeds %d characters", ErrInvalidAnswers, i+1, MaxAnswerLength)
		}
		cleaned[i] = a
	}
	return cleaned, nil
}
