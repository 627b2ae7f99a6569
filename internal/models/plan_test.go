package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/travel-plan/internal/document"
)

func TestPlanAnswers(t *testing.T) {
	p := &Plan{}

	answers, err := p.GetAnswers()
	require.NoError(t, err)
	assert.Empty(t, answers)

	require.NoError(t, p.SetAnswers([]string{"Lisbon", "Budget"}))
	answers, err = p.GetAnswers()
	require.NoError(t, err)
	assert.Equal(t, []string{"Lisbon", "Budget"}, answers)

	p.Answers = []byte("{broken")
	_, err = p.GetAnswers()
	assert.Error(t, err)
}

func TestPlanDocument(t *testing.T) {
	p := &Plan{}

	_, found, err := p.GetDocument()
	require.NoError(t, err)
	assert.False(t, found)

	doc := document.Parse("## Daily Itinerary\nDay 1: Arrive\n- Hotel\nDay 2: Leave\n- Airport\n## Notes\nHave fun")
	require.NoError(t, p.SetDocument(doc))
	assert.Equal(t, 2, p.SectionCount)
	assert.Equal(t, 2, p.DayCount)
	assert.NotNil(t, p.ParsedAt)

	got, found, err := p.GetDocument()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, doc, got)
}

func TestPlanStatus(t *testing.T) {
	assert.True(t, PlanStatusParsed.Valid())
	assert.False(t, PlanStatus("done").Valid())

	assert.True(t, PlanStatusFallback.Finished())
	assert.True(t, PlanStatusFailed.Finished())
	assert.False(t, PlanStatusGenerating.Finished())
}
