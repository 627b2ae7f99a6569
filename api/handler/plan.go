package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/travel-plan/api/middleware"
	"github.com/fyerfyer/travel-plan/api/model"
	"github.com/fyerfyer/travel-plan/internal/models"
	"github.com/fyerfyer/travel-plan/internal/services"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

// PlanHandler 旅行计划API处理器
type PlanHandler struct {
	service *services.PlanService // 计划服务
	logger  *logrus.Logger        // 日志记录器
}

// NewPlanHandler 创建计划处理器
func NewPlanHandler(service *services.PlanService) *PlanHandler {
	return &PlanHandler{
		service: service,
		logger:  middleware.GetLogger(),
	}
}

// ListQuestions 返回问卷问题
// GET /api/questions
func (h *PlanHandler) ListQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, model.NewSuccessResponse(services.Questions))
}

// ParsePlan 解析一段计划原文
// POST /api/plans/parse
// 解析失败同样返回200，data中带原文和提示
func (h *PlanHandler) ParsePlan(c *gin.Context) {
	var req model.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid parse request", err.Error()))
		return
	}

	outcome := h.service.ParseText(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ParseResult(outcome)))
}

// CreatePlan 根据问卷答案生成计划
// POST /api/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req model.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid answers", err.Error()))
		return
	}

	ctx := c.Request.Context()
	if req.Async {
		plan, taskID, err := h.service.EnqueueGeneration(ctx, req.Answers)
		if err != nil {
			middleware.HandleError(c, toAppError(err))
			return
		}
		c.JSON(http.StatusAccepted, model.NewSuccessResponse(&model.AsyncPlanResponse{
			PlanID: plan.ID,
			TaskID: taskID,
			Status: string(plan.Status),
		}))
		return
	}

	plan, outcome, err := h.service.GeneratePlan(ctx, req.Answers)
	if err != nil {
		if plan != nil {
			h.logger.WithField("plan_id", plan.ID).WithError(err).Warn("Plan generation failed")
		}
		middleware.HandleError(c, toAppError(err))
		return
	}

	c.JSON(http.StatusCreated, model.NewSuccessResponse(model.NewPlanResponse(plan, outcome)))
}

// ListPlans 分页列出计划
// GET /api/plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var req model.PlanListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid query parameters", err.Error()))
		return
	}

	page, size := req.GetPage(), req.GetPageSize()
	plans, total, err := h.service.ListPlans(c.Request.Context(), page, size, models.PlanStatus(req.Status))
	if err != nil {
		middleware.HandleError(c, toAppError(err))
		return
	}

	infos := lo.Map(plans, func(p *models.Plan, _ int) model.PlanInfo {
		return model.NewPlanInfo(p)
	})

	c.JSON(http.StatusOK, model.NewSuccessResponse(&model.PlanListResponse{
		PaginationResponse: model.PaginationResponse{
			Total:    total,
			Page:     page,
			PageSize: size,
		},
		Plans: infos,
	}))
}

// GetPlan 获取计划详情
// GET /api/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	var req model.PlanIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid plan ID", err.Error()))
		return
	}

	plan, outcome, err := h.service.GetPlan(c.Request.Context(), req.ID)
	if err != nil {
		middleware.HandleError(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewPlanResponse(plan, outcome)))
}

// ReparsePlan 重新解析计划原文
// POST /api/plans/:id/reparse?async=true
func (h *PlanHandler) ReparsePlan(c *gin.Context) {
	var req model.PlanIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid plan ID", err.Error()))
		return
	}
	var query model.ReparseRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid query parameters", err.Error()))
		return
	}

	if query.Async {
		plan, taskID, err := h.service.EnqueueReparse(c.Request.Context(), req.ID)
		if err != nil {
			middleware.HandleError(c, toAppError(err))
			return
		}
		c.JSON(http.StatusAccepted, model.NewSuccessResponse(&model.AsyncPlanResponse{
			PlanID: plan.ID,
			TaskID: taskID,
			Status: string(taskqueue.StatusPending),
		}))
		return
	}

	plan, outcome, err := h.service.ReparsePlan(c.Request.Context(), req.ID)
	if err != nil {
		middleware.HandleError(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewPlanResponse(plan, outcome)))
}

// ListPlanTasks 列出计划的异步任务
// GET /api/plans/:id/tasks
func (h *PlanHandler) ListPlanTasks(c *gin.Context) {
	var req model.PlanIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid plan ID", err.Error()))
		return
	}

	tasks, err := h.service.ListPlanTasks(c.Request.Context(), req.ID)
	if err != nil {
		middleware.HandleError(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(&model.PlanTasksResponse{
		PlanID: req.ID,
		Tasks: lo.Map(tasks, func(t *taskqueue.Task, _ int) taskqueue.TaskInfo {
			return *taskqueue.NewTaskInfo(t)
		}),
	}))
}

// DeletePlan 删除计划
// DELETE /api/plans/:id
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	var req model.PlanIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid plan ID", err.Error()))
		return
	}

	if err := h.service.DeletePlan(c.Request.Context(), req.ID); err != nil {
		middleware.HandleError(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(&model.PlanDeleteResponse{
		Success: true,
		PlanID:  req.ID,
	}))
}
