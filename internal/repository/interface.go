package repository

import (
	"context"

	"github.com/fyerfyer/travel-plan/internal/models"
)

// PlanFilter 计划列表筛选条件，零值表示不筛选
type PlanFilter struct {
	Status models.PlanStatus
	TaskID string
}

// PlanRepository 计划仓储接口
// 负责计划元数据和解析结果的存储和检索
type PlanRepository interface {
	// Create 创建计划记录
	Create(ctx context.Context, plan *models.Plan) error

	// Update 更新计划记录
	Update(ctx context.Context, plan *models.Plan) error

	// GetByID 根据ID获取计划
	GetByID(ctx context.Context, id string) (*models.Plan, error)

	// List 列出计划，按创建时间倒序，返回总数
	List(ctx context.Context, offset, limit int, filter PlanFilter) ([]*models.Plan, int64, error)

	// Delete 删除计划
	Delete(ctx context.Context, id string) error

	// UpdateStatus 更新计划状态和错误信息
	UpdateStatus(ctx context.Context, id string, status models.PlanStatus, errorMsg string) error
}
