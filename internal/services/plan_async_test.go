package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/travel-plan/internal/llm"
	"github.com/fyerfyer/travel-plan/internal/models"
	"github.com/fyerfyer/travel-plan/pkg/storage"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

func setupQueue(t *testing.T) taskqueue.Queue {
	t.Helper()
	mr := miniredis.RunT(t)

	queue, err := taskqueue.NewQueue("redis", &taskqueue.Config{
		RedisAddr:  mr.Addr(),
		RetryLimit: 1,
		RetryDelay: time.Second,
		TaskExpiry: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })
	return queue
}

// TestPlanService_EnqueueGeneration 测试异步生成
func TestPlanService_EnqueueGeneration(t *testing.T) {
	env := setupTestEnv(t)
	queue := setupQueue(t)
	client := llm.NewMockClient(t)
	client.On("Generate", mock.Anything, promptFor("Lisbon", "relaxed")).
		Return(&llm.Response{Text: samplePlan}, nil).Once()

	svc := env.service(client, WithTaskQueue(queue))
	require.True(t, svc.AsyncEnabled())
	ctx := context.Background()

	plan, taskID, err := svc.EnqueueGeneration(ctx, []string{"Lisbon", "relaxed"})
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)
	assert.Equal(t, models.PlanStatusPending, plan.Status)

	stored, err := env.repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, taskID, stored.TaskID)

	task, err := svc.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.TaskPlanGenerate, task.Type)
	assert.Equal(t, plan.ID, task.PlanID)

	// 不启动asynq服务端，直接交给处理器
	handler := NewPlanTaskHandler(svc)
	result, err := handler.ProcessTask(ctx, task)
	require.NoError(t, err)

	res, ok := result.(*taskqueue.PlanResult)
	require.True(t, ok)
	assert.Equal(t, string(models.PlanStatusParsed), res.Status)
	assert.Equal(t, 4, res.SectionCount)
	assert.Equal(t, 2, res.DayCount)

	// 重复投递不会再次调用模型
	_, err = handler.ProcessTask(ctx, task)
	require.NoError(t, err)

	_, outcome, err := svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, outcome.Document.Sections, 4)

	// 删除计划时一并删除任务
	require.NoError(t, svc.DeletePlan(ctx, plan.ID))
	_, err = queue.GetTask(ctx, taskID)
	assert.ErrorIs(t, err, taskqueue.ErrTaskNotFound)
}

func TestPlanService_EnqueueWithoutQueue(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.service(llm.NewMockClient(t))

	_, _, err := svc.EnqueueGeneration(context.Background(), []string{"Lisbon"})
	assert.ErrorIs(t, err, ErrQueueDisabled)

	_, err = svc.GetTask(context.Background(), "any")
	assert.ErrorIs(t, err, ErrQueueDisabled)

	_, _, err = svc.EnqueueReparse(context.Background(), "any")
	assert.ErrorIs(t, err, ErrQueueDisabled)

	_, err = svc.WaitTask(context.Background(), "any", time.Second)
	assert.ErrorIs(t, err, ErrQueueDisabled)

	_, err = svc.ListPlanTasks(context.Background(), "any")
	assert.ErrorIs(t, err, ErrQueueDisabled)
}

// TestPlanTaskHandler_Failures 测试任务处理失败的情况
func TestPlanTaskHandler_Failures(t *testing.T) {
	env := setupTestEnv(t)
	client := llm.NewMockClient(t)
	client.On("Generate", mock.Anything, mock.Anything).
		Return(nil, llm.NewLLMError(llm.ErrCodeServerError, llm.ErrMsgServerError)).Once()

	svc := env.service(client)
	handler := NewPlanTaskHandler(svc)
	ctx := context.Background()

	require.NoError(t, env.repo.Create(ctx, &models.Plan{ID: "async-plan"}))

	payload, err := taskqueue.MarshalPayload(&taskqueue.PlanGeneratePayload{Answers: []string{"Lisbon"}})
	require.NoError(t, err)

	result, err := handler.ProcessTask(ctx, &taskqueue.Task{
		ID: "t1", Type: taskqueue.TaskPlanGenerate, PlanID: "async-plan", Payload: payload,
	})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	res := result.(*taskqueue.PlanResult)
	assert.Equal(t, string(models.PlanStatusFailed), res.Status)

	_, err = handler.ProcessTask(ctx, &taskqueue.Task{Type: taskqueue.TaskPlanGenerate, PlanID: "async-plan"})
	assert.ErrorIs(t, err, taskqueue.ErrInvalidPayload)

	_, err = handler.ProcessTask(ctx, &taskqueue.Task{Type: taskqueue.TaskType("unknown")})
	assert.Error(t, err)
}

// TestPlanService_EnqueueReparse 测试异步重新解析以及任务查询
func TestPlanService_EnqueueReparse(t *testing.T) {
	env := setupTestEnv(t)
	queue := setupQueue(t)
	client := llm.NewMockClient(t)
	client.On("Generate", mock.Anything, promptFor("Lisbon")).
		Return(&llm.Response{Text: samplePlan}, nil).Once()

	svc := env.service(client, WithTaskQueue(queue))
	ctx := context.Background()

	plan, _, err := svc.GeneratePlan(ctx, []string{"Lisbon"})
	require.NoError(t, err)

	_, firstID, err := svc.EnqueueReparse(ctx, plan.ID)
	require.NoError(t, err)

	task, err := svc.GetTask(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, taskqueue.TaskPlanReparse, task.Type)
	assert.Equal(t, plan.ID, task.PlanID)

	result, err := NewPlanTaskHandler(svc).ProcessTask(ctx, task)
	require.NoError(t, err)
	res := result.(*taskqueue.PlanResult)
	assert.Equal(t, string(models.PlanStatusParsed), res.Status)
	assert.Equal(t, 4, res.SectionCount)

	t.Run("wait returns current state on timeout", func(t *testing.T) {
		got, err := svc.WaitTask(ctx, firstID, 100*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, taskqueue.StatusPending, got.Status)

		require.NoError(t, queue.UpdateTaskStatus(ctx, firstID, taskqueue.StatusCompleted, res, ""))
		got, err = svc.WaitTask(ctx, firstID, time.Second)
		require.NoError(t, err)
		assert.Equal(t, taskqueue.StatusCompleted, got.Status)
	})

	_, secondID, err := svc.EnqueueReparse(ctx, plan.ID)
	require.NoError(t, err)

	t.Run("list plan tasks", func(t *testing.T) {
		tasks, err := svc.ListPlanTasks(ctx, plan.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, firstID, tasks[0].ID)
		assert.Equal(t, secondID, tasks[1].ID)

		_, err = svc.ListPlanTasks(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrPlanNotFound)
	})

	t.Run("rejected plans", func(t *testing.T) {
		require.NoError(t, env.repo.Create(ctx, &models.Plan{ID: "pending-plan", Status: models.PlanStatusPending}))
		_, _, err := svc.EnqueueReparse(ctx, "pending-plan")
		assert.ErrorIs(t, err, models.ErrInvalidPlanStatus)

		require.NoError(t, env.repo.Create(ctx, &models.Plan{
			ID:      "lost-text",
			Status:  models.PlanStatusParsed,
			RawPath: "plans/2026/01/01/lost-text.md",
		}))
		_, _, err = svc.EnqueueReparse(ctx, "lost-text")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	// 删除计划时删除所有任务，而不仅是最近一次的任务
	require.NoError(t, svc.DeletePlan(ctx, plan.ID))
	for _, id := range []string{firstID, secondID} {
		_, err = queue.GetTask(ctx, id)
		assert.ErrorIs(t, err, taskqueue.ErrTaskNotFound, id)
	}
}
