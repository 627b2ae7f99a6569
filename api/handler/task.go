package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/travel-plan/api/middleware"
	"github.com/fyerfyer/travel-plan/api/model"
	"github.com/fyerfyer/travel-plan/internal/services"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

// TaskHandler 处理任务相关的API请求
type TaskHandler struct {
	service *services.PlanService // 计划服务，持有任务队列
	logger  *logrus.Logger        // 日志记录器
}

// NewTaskHandler 创建新的任务处理器
func NewTaskHandler(service *services.PlanService) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  middleware.GetLogger(),
	}
}

// GetTaskStatus 获取任务状态
// GET /api/tasks/:id
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		middleware.HandleError(c, middleware.NewValidationError("Task ID is required"))
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), taskID)
	if err != nil {
		h.logger.WithError(err).WithField("task_id", taskID).Debug("Failed to get task")
		middleware.HandleError(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(taskqueue.NewTaskInfo(task)))
}

// WaitTask 等待任务结束
// GET /api/tasks/:id/wait?timeout=30s
// 超时后返回任务当前状态，客户端可以再次等待
func (h *TaskHandler) WaitTask(c *gin.Context) {
	taskID := c.Param("id")
	var req model.TaskWaitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("Invalid timeout", err.Error()))
		return
	}

	task, err := h.service.WaitTask(c.Request.Context(), taskID, req.GetTimeout())
	if err != nil {
		middleware.HandleError(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(taskqueue.NewTaskInfo(task)))
}
