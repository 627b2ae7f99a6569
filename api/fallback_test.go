package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/travel-plan/api/model"
	"github.com/fyerfyer/travel-plan/internal/document"
	"github.com/fyerfyer/travel-plan/internal/models"
	"github.com/fyerfyer/travel-plan/internal/services"
)

// TestFallbackBody 兜底响应的JSON结构
func TestFallbackBody(t *testing.T) {
	outcome := &services.ParseOutcome{
		Document: document.Empty(),
		Fallback: true,
		Raw:      "## Daily Itinerary\nDay 1: ???",
		Notice:   document.FallbackNotice,
	}

	data, err := json.Marshal(model.NewSuccessResponse(model.ParseResult(outcome)))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"code": 0,
		"message": "success",
		"data": {
			"fallback": true,
			"raw": "## Daily Itinerary\nDay 1: ???",
			"notice": "Failed to parse travel plan. Showing raw response."
		}
	}`, string(data))

	plan := &models.Plan{ID: "plan-1", Status: models.PlanStatusFallback}
	resp := model.NewPlanResponse(plan, outcome)
	assert.Nil(t, resp.Document)
	require.NotNil(t, resp.Fallback)
	assert.Equal(t, outcome.Raw, resp.Fallback.Raw)
	assert.Equal(t, "fallback", resp.Plan.Status)
	assert.Equal(t, []string{}, resp.Plan.Answers)
}
