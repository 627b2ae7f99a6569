package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/travel-plan/internal/models"
	"github.com/fyerfyer/travel-plan/pkg/storage"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

// EnqueueGeneration 创建计划并把生成工作交给任务队列
func (s *PlanService) EnqueueGeneration(ctx context.Context, answers []string) (*models.Plan, string, error) {
	if s.taskQueue == nil {
		return nil, "", ErrQueueDisabled
	}

	plan, cleaned, err := s.createPlan(ctx, answers)
	if err != nil {
		return nil, "", err
	}

	taskID, err := s.taskQueue.Enqueue(ctx, taskqueue.TaskPlanGenerate, plan.ID, &taskqueue.PlanGeneratePayload{
		Answers: cleaned,
	})
	if err != nil {
		s.logger.WithError(err).WithField("plan_id", plan.ID).Error("Failed to enqueue plan generation")
		if markErr := s.statusManager.MarkAsFailed(ctx, plan, err.Error()); markErr != nil {
			s.logger.WithError(markErr).Error("Failed to mark plan as failed")
		}
		return nil, "", fmt.Errorf("failed to enqueue plan generation: %w", err)
	}

	plan.TaskID = taskID
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, "", fmt.Errorf("failed to save task id: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"plan_id": plan.ID,
		"task_id": taskID,
	}).Info("Plan generation enqueued")
	return plan, taskID, nil
}

// EnqueueReparse 把重新解析交给任务队列
// 入队前确认原文仍在存储中，避免任务注定失败
func (s *PlanService) EnqueueReparse(ctx context.Context, id string) (*models.Plan, string, error) {
	if s.taskQueue == nil {
		return nil, "", ErrQueueDisabled
	}

	plan, err := s.reparsablePlan(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if plan.RawPath == "" {
		return nil, "", ErrNoRawText
	}
	ok, err := s.storage.Exists(ctx, plan.RawPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check plan text: %w", err)
	}
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", storage.ErrNotFound, plan.RawPath)
	}

	taskID, err := s.taskQueue.Enqueue(ctx, taskqueue.TaskPlanReparse, plan.ID, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to enqueue plan reparse: %w", err)
	}

	plan.TaskID = taskID
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, "", fmt.Errorf("failed to save task id: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"plan_id": plan.ID,
		"task_id": taskID,
	}).Info("Plan reparse enqueued")
	return plan, taskID, nil
}

// GetTask 查询异步任务
func (s *PlanService) GetTask(ctx context.Context, taskID string) (*taskqueue.Task, error) {
	if s.taskQueue == nil {
		return nil, ErrQueueDisabled
	}
	return s.taskQueue.GetTask(ctx, taskID)
}

// WaitTask 等待任务结束，超时后返回任务的当前状态
func (s *PlanService) WaitTask(ctx context.Context, taskID string, timeout time.Duration) (*taskqueue.Task, error) {
	if s.taskQueue == nil {
		return nil, ErrQueueDisabled
	}

	task, err := s.taskQueue.WaitForTask(ctx, taskID, timeout)
	if errors.Is(err, taskqueue.ErrTaskTimeout) && ctx.Err() == nil {
		return s.taskQueue.GetTask(ctx, taskID)
	}
	return task, err
}

// ListPlanTasks 列出计划的所有任务，按创建时间排序
func (s *PlanService) ListPlanTasks(ctx context.Context, planID string) ([]*taskqueue.Task, error) {
	if s.taskQueue == nil {
		return nil, ErrQueueDisabled
	}
	if _, err := s.repo.GetByID(ctx, planID); err != nil {
		return nil, err
	}

	tasks, err := s.taskQueue.GetTasksByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// PlanTaskHandler 处理计划相关的队列任务
type PlanTaskHandler struct {
	service *PlanService
}

// NewPlanTaskHandler 创建任务处理器
func NewPlanTaskHandler(service *PlanService) *PlanTaskHandler {
	return &PlanTaskHandler{service: service}
}

// Register 把处理器注册到工作者
func (h *PlanTaskHandler) Register(worker taskqueue.Worker) {
	worker.RegisterHandler(taskqueue.TaskPlanGenerate, h)
	worker.RegisterHandler(taskqueue.TaskPlanReparse, h)
}

// ProcessTask 实现taskqueue.Handler接口
func (h *PlanTaskHandler) ProcessTask(ctx context.Context, task *taskqueue.Task) (interface{}, error) {
	switch task.Type {
	case taskqueue.TaskPlanGenerate:
		return h.generate(ctx, task)
	case taskqueue.TaskPlanReparse:
		plan, _, err := h.service.ReparsePlan(ctx, task.PlanID)
		if err != nil {
			return nil, err
		}
		return planResult(plan), nil
	default:
		return nil, fmt.Errorf("unsupported task type: %s", task.Type)
	}
}

func (h *PlanTaskHandler) generate(ctx context.Context, task *taskqueue.Task) (interface{}, error) {
	var payload taskqueue.PlanGeneratePayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return nil, err
	}

	plan, err := h.service.repo.GetByID(ctx, task.PlanID)
	if err != nil {
		return nil, err
	}

	// 重复投递的任务直接返回已有结果
	if plan.Status == models.PlanStatusParsed || plan.Status == models.PlanStatusFallback {
		return planResult(plan), nil
	}

	if _, err := h.service.generate(ctx, plan, payload.Answers); err != nil {
		return planResult(plan), err
	}
	return planResult(plan), nil
}

func planResult(plan *models.Plan) *taskqueue.PlanResult {
	return &taskqueue.PlanResult{
		PlanID:       plan.ID,
		Status:       string(plan.Status),
		SectionCount: plan.SectionCount,
		DayCount:     plan.DayCount,
	}
}
