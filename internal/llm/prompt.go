package llm

import (
	"strings"
)

// planPromptTemplate 要求模型严格按段落格式输出旅行计划
const planPromptTemplate = `Create a detailed travel plan following this EXACT format:

## Destination Overview
Provide a 2-3 sentence overview of the destination.

## Daily Itinerary
Day 1: [Title]
- [Morning activity]
- [Afternoon activity]
- [Evening activity]

Day 2: [Title]
- [Morning activity]
- [Afternoon activity]
- [Evening activity]

Day 3: [Title]
- [Morning activity]
- [Afternoon activity]
- [Evening activity]

## Essential Packing List
- Item 1
- Item 2
- Item 3
- Item 4
- Item 5
- Item 6

## Budget Recommendations
- Accommodation: [cost range]
- Daily food budget: [cost range]
- Activities: [cost range]
- Transportation: [cost range]
- Total estimated budget: [amount]

## Cultural Notes
- Note 1
- Note 2
- Note 3
- Note 4

## Transportation Guide
- Getting there: [details]
- Local transportation: [details]
- Best ways to move around: [details]

Important formatting rules:
1. Use exactly these section headers with ## prefix
2. For Daily Itinerary, start each day with "Day X: " followed by a title
3. Use simple bullet points with single dash (-)
4. Keep all text plain without any markdown formatting or special characters
5. Ensure each section has content in the specified format

Based on these details: `

// BuildPlanPrompt 根据问卷答案构造生成旅行计划的提示词
// 答案去除首尾空白后以", "连接，空答案被忽略
func BuildPlanPrompt(answers []string) string {
	kept := make([]string, 0, len(answers))
	for _, a := range answers {
		if a = strings.TrimSpace(a); a != "" {
			kept = append(kept, a)
		}
	}
	return planPromptTemplate + strings.Join(kept, ", ")
}
