package model

import (
	"time"

	"github.com/fyerfyer/travel-plan/internal/document"
	"github.com/fyerfyer/travel-plan/internal/models"
	"github.com/fyerfyer/travel-plan/internal/services"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// FallbackResponse 解析失败时的兜底内容，前端原样展示原文
type FallbackResponse struct {
	Fallback bool   `json:"fallback"`
	Raw      string `json:"raw"`
	Notice   string `json:"notice"`
}

// ParseResult 将解析结果转换为响应数据
// 成功时返回文档本身，失败时返回兜底内容
func ParseResult(outcome *services.ParseOutcome) interface{} {
	if outcome == nil {
		return nil
	}
	if outcome.Fallback {
		return &FallbackResponse{
			Fallback: true,
			Raw:      outcome.Raw,
			Notice:   outcome.Notice,
		}
	}
	return outcome.Document
}

// PlanInfo 计划信息
type PlanInfo struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Model        string     `json:"model"`
	Answers      []string   `json:"answers"`
	SectionCount int        `json:"section_count"`
	DayCount     int        `json:"day_count"`
	Error        string     `json:"error,omitempty"`
	TaskID       string     `json:"task_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ParsedAt     *time.Time `json:"parsed_at,omitempty"`
}

// NewPlanInfo 从计划模型创建响应信息
func NewPlanInfo(plan *models.Plan) PlanInfo {
	answers, err := plan.GetAnswers()
	if err != nil {
		answers = []string{}
	}
	return PlanInfo{
		ID:           plan.ID,
		Status:       string(plan.Status),
		Model:        plan.Model,
		Answers:      answers,
		SectionCount: plan.SectionCount,
		DayCount:     plan.DayCount,
		Error:        plan.Error,
		TaskID:       plan.TaskID,
		CreatedAt:    plan.CreatedAt,
		UpdatedAt:    plan.UpdatedAt,
		ParsedAt:     plan.ParsedAt,
	}
}

// PlanResponse 计划详情响应
// Document和Fallback至多有一个非空，计划未生成完成时两者都为空
type PlanResponse struct {
	Plan     PlanInfo           `json:"plan"`
	Document *document.Document `json:"document,omitempty"`
	Fallback *FallbackResponse  `json:"fallback,omitempty"`
}

// NewPlanResponse 组装计划详情响应
func NewPlanResponse(plan *models.Plan, outcome *services.ParseOutcome) *PlanResponse {
	resp := &PlanResponse{Plan: NewPlanInfo(plan)}
	if outcome == nil {
		return resp
	}
	switch data := ParseResult(outcome).(type) {
	case *FallbackResponse:
		resp.Fallback = data
	case document.Document:
		resp.Document = &data
	}
	return resp
}

// AsyncPlanResponse 异步生成的受理响应
type AsyncPlanResponse struct {
	PlanID string `json:"plan_id"`
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// PlanTasksResponse 计划的任务列表
type PlanTasksResponse struct {
	PlanID string               `json:"plan_id"`
	Tasks  []taskqueue.TaskInfo `json:"tasks"`
}

// PlanListResponse 计划列表响应
type PlanListResponse struct {
	PaginationResponse
	Plans []PlanInfo `json:"plans"`
}

// PlanDeleteResponse 计划删除响应
type PlanDeleteResponse struct {
	Success bool   `json:"success"`
	PlanID  string `json:"plan_id"`
}

// PaginationResponse 分页响应信息
type PaginationResponse struct {
	Total    int64 `json:"total"`     // 总记录数
	Page     int   `json:"page"`      // 当前页码
	PageSize int   `json:"page_size"` // 每页大小
}
