package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/travel-plan/internal/document"
	"github.com/fyerfyer/travel-plan/internal/models"
)

// TestPlanStatusManager_BasicFlow 测试状态管理基本流程
func TestPlanStatusManager_BasicFlow(t *testing.T) {
	env := setupTestEnv(t)
	manager := NewPlanStatusManager(env.repo, env.logger)
	ctx := context.Background()

	plan := &models.Plan{ID: "plan-status"}
	require.NoError(t, env.repo.Create(ctx, plan))
	assert.Equal(t, models.PlanStatusPending, plan.Status)

	require.NoError(t, manager.MarkAsGenerating(ctx, plan))
	stored, err := env.repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusGenerating, stored.Status)

	doc := document.Parse(samplePlan)
	require.NoError(t, manager.MarkAsParsed(ctx, plan, &ParseOutcome{Document: doc}))

	stored, err = env.repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusParsed, stored.Status)
	assert.Equal(t, 4, stored.SectionCount)
	assert.Equal(t, 2, stored.DayCount)
	assert.NotNil(t, stored.ParsedAt)

	// 重新解析失败时保留上一次成功的结果
	require.NoError(t, manager.MarkAsParsed(ctx, plan, fallbackOutcome(samplePlan)))
	stored, err = env.repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusFallback, stored.Status)
	kept, found, err := stored.GetDocument()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, kept.Sections, 4)

	err = manager.MarkAsGenerating(ctx, plan)
	assert.ErrorIs(t, err, models.ErrInvalidPlanStatus)
}

func TestPlanStatusManager_Failed(t *testing.T) {
	env := setupTestEnv(t)
	manager := NewPlanStatusManager(env.repo, nil)
	ctx := context.Background()

	plan := &models.Plan{ID: "plan-failed"}
	require.NoError(t, env.repo.Create(ctx, plan))
	require.NoError(t, manager.MarkAsGenerating(ctx, plan))
	require.NoError(t, manager.MarkAsFailed(ctx, plan, "rate limited"))

	stored, err := env.repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusFailed, stored.Status)
	assert.Equal(t, "rate limited", stored.Error)

	// 失败的计划可以重试
	require.NoError(t, manager.MarkAsGenerating(ctx, plan))
	assert.Empty(t, plan.Error)
}

// TestValidateStateTransition 测试状态转换规则
func TestValidateStateTransition(t *testing.T) {
	tests := []struct {
		from, to models.PlanStatus
		ok       bool
	}{
		{models.PlanStatusPending, models.PlanStatusGenerating, true},
		{models.PlanStatusPending, models.PlanStatusParsed, false},
		{models.PlanStatusGenerating, models.PlanStatusFallback, true},
		{models.PlanStatusParsed, models.PlanStatusParsed, true},
		{models.PlanStatusParsed, models.PlanStatusFailed, false},
		{models.PlanStatusFailed, models.PlanStatusGenerating, true},
		{models.PlanStatusFailed, models.PlanStatusParsed, false},
	}
	for _, tt := range tests {
		err := ValidateStateTransition(tt.from, tt.to)
		if tt.ok {
			assert.NoError(t, err, "%s -> %s", tt.from, tt.to)
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidPlanStatus, "%s -> %s", tt.from, tt.to)
		}
	}
}
