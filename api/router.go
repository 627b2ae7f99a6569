package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/travel-plan/api/handler"
	"github.com/fyerfyer/travel-plan/api/middleware"
	"github.com/fyerfyer/travel-plan/api/model"
)

// RouterConfig 路由配置
type RouterConfig struct {
	AllowOrigins []string // 允许跨域的来源，包含"*"时允许所有来源
}

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	cfg RouterConfig,
	planHandler *handler.PlanHandler,
	taskHandler *handler.TaskHandler,
) *gin.Engine {
	// 请求模型依赖这些规则，注册失败时无法正确校验，直接终止启动
	if err := model.RegisterValidators(); err != nil {
		logrus.WithError(err).Fatal("Failed to register request validators")
	}

	router := gin.New()

	// 应用全局中间件
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(Cors(cfg.AllowOrigins))

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	api := router.Group("/api")
	{
		// 健康检查 - GET /api/health
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		// 问卷问题 - GET /api/questions
		api.GET("/questions", planHandler.ListQuestions)

		planGroup := api.Group("/plans")
		{
			// 解析原文 - POST /api/plans/parse
			planGroup.POST("/parse", planHandler.ParsePlan)

			// 生成计划 - POST /api/plans
			planGroup.POST("", planHandler.CreatePlan)

			// 计划列表 - GET /api/plans
			planGroup.GET("", planHandler.ListPlans)

			// 计划详情 - GET /api/plans/:id
			planGroup.GET("/:id", planHandler.GetPlan)

			// 重新解析 - POST /api/plans/:id/reparse
			planGroup.POST("/:id/reparse", planHandler.ReparsePlan)

			// 计划任务 - GET /api/plans/:id/tasks
			planGroup.GET("/:id/tasks", planHandler.ListPlanTasks)

			// 删除计划 - DELETE /api/plans/:id
			planGroup.DELETE("/:id", planHandler.DeletePlan)
		}

		// 任务状态 - GET /api/tasks/:id
		api.GET("/tasks/:id", taskHandler.GetTaskStatus)

		// 等待任务结束 - GET /api/tasks/:id/wait
		api.GET("/tasks/:id/wait", taskHandler.WaitTask)
	}

	return router
}

// Cors 跨域资源共享中间件
func Cors(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Trace-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Trace-ID"},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}
