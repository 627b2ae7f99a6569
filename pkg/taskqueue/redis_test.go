package taskqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisQueue 基于miniredis创建队列
func setupRedisQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)

	queue, err := NewRedisQueue(&Config{
		RedisAddr:   mr.Addr(),
		Concurrency: 2,
		RetryLimit:  2,
		RetryDelay:  time.Second,
		TaskExpiry:  time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })
	return queue
}

func TestNewRedisQueue(t *testing.T) {
	queue := setupRedisQueue(t)
	assert.NotNil(t, queue)

	_, err := NewRedisQueue(&Config{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

// TestRedisQueue_Enqueue 测试入队
func TestRedisQueue_Enqueue(t *testing.T) {
	queue := setupRedisQueue(t)
	ctx := context.Background()

	payload := &PlanGeneratePayload{Answers: []string{"Kyoto", "5 days"}}
	taskID, err := queue.Enqueue(ctx, TaskPlanGenerate, "plan-123", payload)
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	task, err := queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, TaskPlanGenerate, task.Type)
	assert.Equal(t, "plan-123", task.PlanID)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, 2, task.MaxRetries)

	var decoded PlanGeneratePayload
	require.NoError(t, UnmarshalPayload(task.Payload, &decoded))
	assert.Equal(t, payload.Answers, decoded.Answers)
}

func TestRedisQueue_GetTaskNotFound(t *testing.T) {
	queue := setupRedisQueue(t)

	_, err := queue.GetTask(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

// TestRedisQueue_GetTasksByPlan 测试按计划查询任务
func TestRedisQueue_GetTasksByPlan(t *testing.T) {
	queue := setupRedisQueue(t)
	ctx := context.Background()
	planID := "plan-456"

	_, err := queue.Enqueue(ctx, TaskPlanGenerate, planID, &PlanGeneratePayload{Answers: []string{"Lisbon"}})
	require.NoError(t, err)
	_, err = queue.Enqueue(ctx, TaskPlanReparse, planID, nil)
	require.NoError(t, err)
	_, err = queue.Enqueue(ctx, TaskPlanReparse, "other-plan", nil)
	require.NoError(t, err)

	tasks, err := queue.GetTasksByPlan(ctx, planID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, planID, task.PlanID)
	}

	empty, err := queue.GetTasksByPlan(ctx, "non-existent")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// TestRedisQueue_UpdateTaskStatus 测试状态流转
func TestRedisQueue_UpdateTaskStatus(t *testing.T) {
	queue := setupRedisQueue(t)
	ctx := context.Background()

	taskID, err := queue.Enqueue(ctx, TaskPlanGenerate, "plan-789", &PlanGeneratePayload{Answers: []string{"Oslo"}})
	require.NoError(t, err)

	require.NoError(t, queue.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, ""))
	task, err := queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, task.Status)
	assert.NotNil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, 1, task.Attempts)

	result := &PlanResult{PlanID: "plan-789", Status: "parsed", SectionCount: 4, DayCount: 3}
	require.NoError(t, queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, result, ""))

	task, err = queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)

	var stored PlanResult
	require.NoError(t, UnmarshalPayload(task.Result, &stored))
	assert.Equal(t, *result, stored)

	err = queue.UpdateTaskStatus(ctx, "missing", StatusFailed, nil, "boom")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

// TestRedisQueue_DeleteTask 测试删除任务
func TestRedisQueue_DeleteTask(t *testing.T) {
	queue := setupRedisQueue(t)
	ctx := context.Background()
	planID := "plan-delete"

	taskID, err := queue.Enqueue(ctx, TaskPlanReparse, planID, nil)
	require.NoError(t, err)

	require.NoError(t, queue.DeleteTask(ctx, taskID))

	_, err = queue.GetTask(ctx, taskID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	tasks, err := queue.GetTasksByPlan(ctx, planID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.ErrorIs(t, queue.DeleteTask(ctx, taskID), ErrTaskNotFound)
}

// TestRedisQueue_WaitForTask 测试等待任务结束
func TestRedisQueue_WaitForTask(t *testing.T) {
	queue := setupRedisQueue(t)
	ctx := context.Background()

	taskID, err := queue.Enqueue(ctx, TaskPlanGenerate, "plan-wait", nil)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = queue.UpdateTaskStatus(context.Background(), taskID, StatusCompleted, nil, "")
	}()

	task, err := queue.WaitForTask(ctx, taskID, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)

	t.Run("timeout", func(t *testing.T) {
		pendingID, err := queue.Enqueue(ctx, TaskPlanGenerate, "plan-wait", nil)
		require.NoError(t, err)

		_, err = queue.WaitForTask(ctx, pendingID, 200*time.Millisecond)
		assert.ErrorIs(t, err, ErrTaskTimeout)
	})
}

// TestRedisWorker_Process 不启动asynq服务端，直接验证任务处理流程
func TestRedisWorker_Process(t *testing.T) {
	queue := setupRedisQueue(t)
	ctx := context.Background()
	worker := &RedisWorker{queue: queue, handlers: map[TaskType]Handler{}, logger: queue.logger}

	t.Run("success", func(t *testing.T) {
		taskID, err := queue.Enqueue(ctx, TaskPlanGenerate, "plan-ok", &PlanGeneratePayload{Answers: []string{"Rome"}})
		require.NoError(t, err)

		var seen *Task
		err = worker.process(ctx, taskID, HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
			seen = task
			return &PlanResult{PlanID: task.PlanID, Status: "parsed", SectionCount: 2}, nil
		}))
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, "plan-ok", seen.PlanID)

		task, err := queue.GetTask(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, task.Status)
		assert.Equal(t, 1, task.Attempts)
		assert.Contains(t, string(task.Result), `"section_count":2`)
	})

	t.Run("failure", func(t *testing.T) {
		taskID, err := queue.Enqueue(ctx, TaskPlanGenerate, "plan-fail", nil)
		require.NoError(t, err)

		handlerErr := errors.New("upstream unavailable")
		err = worker.process(ctx, taskID, HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
			return nil, handlerErr
		}))
		assert.ErrorIs(t, err, handlerErr)

		task, err := queue.GetTask(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, task.Status)
		assert.Equal(t, "upstream unavailable", task.Error)
	})

	t.Run("missing task", func(t *testing.T) {
		err := worker.process(ctx, "gone", HandlerFunc(func(ctx context.Context, task *Task) (interface{}, error) {
			t.Fatal("handler must not run")
			return nil, nil
		}))
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestQueueFactory(t *testing.T) {
	mr := miniredis.RunT(t)

	q, err := NewQueue("redis", &Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisQueue{}, q)
	require.NoError(t, q.Close())

	_, err = NewQueue("kafka", DefaultConfig())
	assert.Error(t, err)
}

func TestUnmarshalPayload(t *testing.T) {
	var p PlanGeneratePayload
	assert.ErrorIs(t, UnmarshalPayload(nil, &p), ErrInvalidPayload)
	assert.ErrorIs(t, UnmarshalPayload([]byte("{bad"), &p), ErrInvalidPayload)
	require.NoError(t, UnmarshalPayload([]byte(`{"answers":["a"]}`), &p))
	assert.Equal(t, []string{"a"}, p.Answers)
}
