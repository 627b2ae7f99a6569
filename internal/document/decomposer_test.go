package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecomposeItinerary 测试行程拆分
func TestDecomposeItinerary(t *testing.T) {
	t.Run("two days", func(t *testing.T) {
		body := "Day 1: Arrive\n- Check in\n- Dinner\nDay 2: Tour\n- Museum"
		items := Decompose(Itinerary, body)
		require.Len(t, items, 2)

		assert.Equal(t, "Day 1: Arrive", items[0].Title)
		assert.Equal(t, []string{"Check in", "Dinner"}, items[0].SubItems)
		assert.Equal(t, "Check in\nDinner", items[0].Content)

		assert.Equal(t, "Day 2: Tour", items[1].Title)
		assert.Equal(t, []string{"Museum"}, items[1].SubItems)
		assert.Equal(t, "Museum", items[1].Content)
	})

	t.Run("no day markers", func(t *testing.T) {
		items := Decompose(Itinerary, "Flexible week\n- Relax\n- Explore")
		require.Len(t, items, 1)
		assert.Equal(t, "Flexible week", items[0].Title)
		assert.Equal(t, []string{"Relax", "Explore"}, items[0].SubItems)
	})

	t.Run("intro before first day", func(t *testing.T) {
		items := Decompose(Itinerary, "Overview of the week\nDay 1: Arrive\n- Hotel")
		require.Len(t, items, 2)
		assert.Equal(t, "Overview of the week", items[0].Title)
		assert.Nil(t, items[0].SubItems)
		assert.Equal(t, "Day 1: Arrive", items[1].Title)
	})

	t.Run("case insensitive marker", func(t *testing.T) {
		items := Decompose(Itinerary, "DAY 1: a\nday 2: b")
		require.Len(t, items, 2)
		assert.Equal(t, "day 2: b", items[1].Title)
	})

	t.Run("blank lines discarded", func(t *testing.T) {
		items := Decompose(Itinerary, "Day 1: Arrive\n\n- Hotel\n   \n-\n- Dinner")
		require.Len(t, items, 1)
		assert.Equal(t, []string{"Hotel", "Dinner"}, items[0].SubItems)
	})

	t.Run("empty body", func(t *testing.T) {
		assert.Empty(t, Decompose(Itinerary, ""))
		assert.Empty(t, Decompose(Itinerary, "  \n "))
	})
}

// TestDecomposeList 测试清单和建议的拆分
func TestDecomposeList(t *testing.T) {
	body := "- A\n* B\n\n• C"

	for _, category := range []Category{Checklist, Tips} {
		t.Run(string(category), func(t *testing.T) {
			items := Decompose(category, body)
			require.Len(t, items, 1)
			assert.Empty(t, items[0].Title)
			assert.Equal(t, body, items[0].Content)
			assert.Equal(t, []string{"A", "B", "C"}, items[0].SubItems)
		})
	}

	t.Run("empty body still yields one item", func(t *testing.T) {
		items := Decompose(Checklist, "")
		require.Len(t, items, 1)
		assert.Nil(t, items[0].SubItems)
	})
}

// TestDecomposeGeneral 测试普通文本
func TestDecomposeGeneral(t *testing.T) {
	body := "Paris is lovely.\n\n- Bring an umbrella"
	items := Decompose(General, body)
	require.Len(t, items, 1)
	assert.Equal(t, body, items[0].Content)
	assert.Nil(t, items[0].SubItems)

	// 未知类别按普通文本处理
	items = Decompose(Category("unknown"), body)
	require.Len(t, items, 1)
	assert.Equal(t, body, items[0].Content)
}
