package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/travel-plan/internal/models"
	"github.com/fyerfyer/travel-plan/internal/repository"
)

// 合法的状态转换
var validTransitions = map[models.PlanStatus][]models.PlanStatus{
	models.PlanStatusPending: {
		models.PlanStatusGenerating,
		models.PlanStatusFailed,
	},
	models.PlanStatusGenerating: {
		models.PlanStatusGenerating, // 工作者中断后重新投递
		models.PlanStatusParsed,
		models.PlanStatusFallback,
		models.PlanStatusFailed,
	},
	// 重新解析
	models.PlanStatusParsed: {
		models.PlanStatusParsed,
		models.PlanStatusFallback,
	},
	models.PlanStatusFallback: {
		models.PlanStatusParsed,
		models.PlanStatusFallback,
	},
	// 任务重试
	models.PlanStatusFailed: {
		models.PlanStatusGenerating,
	},
}

// PlanStatusManager 计划状态管理器
// 负责计划生成的生命周期状态
type PlanStatusManager struct {
	repo   repository.PlanRepository // 计划仓储接口
	logger *logrus.Logger            // 日志记录器
	mu     sync.Mutex                // 保证状态转换的原子性
}

// NewPlanStatusManager 创建计划状态管理器
func NewPlanStatusManager(repo repository.PlanRepository, logger *logrus.Logger) *PlanStatusManager {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
	}

	return &PlanStatusManager{
		repo:   repo,
		logger: logger,
	}
}

// MarkAsGenerating 将计划标记为生成中
func (m *PlanStatusManager) MarkAsGenerating(ctx context.Context, plan *models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ValidateStateTransition(plan.Status, models.PlanStatusGenerating); err != nil {
		return err
	}

	m.logger.WithField("plan_id", plan.ID).Info("Marking plan as generating")

	if err := m.repo.UpdateStatus(ctx, plan.ID, models.PlanStatusGenerating, ""); err != nil {
		return err
	}
	plan.Status = models.PlanStatusGenerating
	plan.Error = ""
	return nil
}

// MarkAsFailed 将计划标记为生成失败
func (m *PlanStatusManager) MarkAsFailed(ctx context.Context, plan *models.Plan, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ValidateStateTransition(plan.Status, models.PlanStatusFailed); err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"plan_id": plan.ID,
		"error":   errorMsg,
	}).Error("Marking plan as failed")

	if err := m.repo.UpdateStatus(ctx, plan.ID, models.PlanStatusFailed, errorMsg); err != nil {
		return err
	}
	plan.Status = models.PlanStatusFailed
	plan.Error = errorMsg
	return nil
}

// MarkAsParsed 记录解析结果并保存整条计划
// outcome为兜底结果时计划进入fallback状态，已保存的解析结果保持不变
func (m *PlanStatusManager) MarkAsParsed(ctx context.Context, plan *models.Plan, outcome *ParseOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := models.PlanStatusParsed
	if outcome.Fallback {
		next = models.PlanStatusFallback
	}
	if err := ValidateStateTransition(plan.Status, next); err != nil {
		return err
	}

	if !outcome.Fallback {
		if err := plan.SetDocument(outcome.Document); err != nil {
			return err
		}
	}
	plan.Status = next
	plan.Error = ""

	m.logger.WithFields(logrus.Fields{
		"plan_id":  plan.ID,
		"status":   next,
		"sections": plan.SectionCount,
		"days":     plan.DayCount,
	}).Info("Plan parsed")

	return m.repo.Update(ctx, plan)
}

// ValidateStateTransition 验证状态转换的有效性
func ValidateStateTransition(from, to models.PlanStatus) error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move plan from %q to %q", models.ErrInvalidPlanStatus, from, to)
}
