package document

import (
	"strings"
)

// classificationRule 关键词规则，标题包含任一关键词即命中
type classificationRule struct {
	category Category
	keywords []string
}

// 规则按优先级排列，先命中者生效
var classificationRules = []classificationRule{
	{category: Itinerary, keywords: []string{"itinerary", "schedule", "day-by-day"}},
	{category: Checklist, keywords: []string{"packing", "what to bring", "essentials"}},
	{category: Tips, keywords: []string{"budget", "cost", "pricing"}},
}

// Classify 根据段落标题确定段落类别，大小写不敏感
func Classify(title string) Category {
	lower := strings.ToLower(title)
	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return General
}
