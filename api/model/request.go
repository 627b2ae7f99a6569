package model

import "time"

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`                   // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1,max=100"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// ParseRequest 解析原文请求，空文本得到空文档
type ParseRequest struct {
	Text string `json:"text" binding:"max=200000"`
}

// CreatePlanRequest 生成计划请求
type CreatePlanRequest struct {
	Answers []string `json:"answers" binding:"required,min=1,max=5,dive,notblank,max=500"` // 问卷答案，按问题顺序
	Async   bool     `json:"async"`                                                         // 是否通过任务队列异步生成
}

// PlanListRequest 计划列表请求
type PlanListRequest struct {
	PaginationRequest
	Status string `form:"status" json:"status" binding:"omitempty,oneof=pending generating parsed fallback failed"` // 状态过滤
}

// PlanIDRequest 路径中的计划ID
type PlanIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ReparseRequest 重新解析的查询参数
type ReparseRequest struct {
	Async bool `form:"async"` // 是否交给任务队列执行
}

// TaskWaitRequest 等待任务的查询参数，超时上限见MaxTaskWait
type TaskWaitRequest struct {
	Timeout time.Duration `form:"timeout"`
}

// MaxTaskWait 单次等待任务的最长时间
const MaxTaskWait = 2 * time.Minute

// GetTimeout 获取等待时间，默认30秒
func (r *TaskWaitRequest) GetTimeout() time.Duration {
	if r.Timeout <= 0 {
		return 30 * time.Second
	}
	if r.Timeout > MaxTaskWait {
		return MaxTaskWait
	}
	return r.Timeout
}
