package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassify 测试段落分类
func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Daily Itinerary", Itinerary},
		{"Travel Schedule", Itinerary},
		{"Day-by-Day Plan", Itinerary},
		{"Essential Packing List", Checklist},
		{"What to Bring", Checklist},
		{"Travel Essentials", Checklist},
		{"Budget Recommendations", Tips},
		{"Cost Breakdown", Tips},
		{"PRICING", Tips},
		{"Cultural Notes", General},
		{"Transportation Guide", General},
		{"", General},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.title))
		})
	}

	t.Run("precedence", func(t *testing.T) {
		// 同时命中多个类别时按优先级取第一个
		assert.Equal(t, Checklist, Classify("Budget Packing List"))
		assert.Equal(t, Itinerary, Classify("Budget Itinerary"))
		assert.Equal(t, Itinerary, Classify("Packing Schedule"))
	})
}
