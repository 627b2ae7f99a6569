package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fyerfyer/travel-plan/internal/database"
	"github.com/fyerfyer/travel-plan/internal/models"
)

// planRepository 计划仓储实现
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository 使用全局数据库连接创建计划仓储
func NewPlanRepository() PlanRepository {
	return &planRepository{db: database.MustDB()}
}

// NewPlanRepositoryWithDB 使用指定的数据库连接创建计划仓储
func NewPlanRepositoryWithDB(db *gorm.DB) PlanRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &planRepository{db: db}
}

// Create 创建计划记录
func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		return errors.New("plan ID cannot be empty")
	}
	return r.db.WithContext(ctx).Create(plan).Error
}

// Update 更新计划记录
func (r *planRepository) Update(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		return errors.New("plan ID cannot be empty")
	}
	return r.db.WithContext(ctx).Save(plan).Error
}

// GetByID 根据ID获取计划
func (r *planRepository) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrPlanNotFound, id)
		}
		return nil, err
	}
	return &plan, nil
}

// List 列出计划，按创建时间倒序
func (r *planRepository) List(ctx context.Context, offset, limit int, filter PlanFilter) ([]*models.Plan, int64, error) {
	var plans []*models.Plan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Plan{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.TaskID != "" {
		query = query.Where("task_id = ?", filter.TaskID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&plans).Error
	if err != nil {
		return nil, 0, err
	}

	return plans, total, nil
}

// Delete 删除计划记录
func (r *planRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Plan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrPlanNotFound, id)
	}
	return nil
}

// UpdateStatus 更新计划状态
func (r *planRepository) UpdateStatus(ctx context.Context, id string, status models.PlanStatus, errorMsg string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", models.ErrInvalidPlanStatus, status)
	}

	updates := map[string]interface{}{
		"status":     status,
		"error":      errorMsg,
		"updated_at": time.Now(),
	}

	result := r.db.WithContext(ctx).Model(&models.Plan{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrPlanNotFound, id)
	}
	return nil
}
