package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/travel-plan/internal/cache"
	"github.com/fyerfyer/travel-plan/internal/document"
	"github.com/fyerfyer/travel-plan/internal/llm"
	"github.com/fyerfyer/travel-plan/internal/models"
	"github.com/fyerfyer/travel-plan/internal/repository"
	"github.com/fyerfyer/travel-plan/pkg/storage"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

// ParseOutcome 一次解析的结果
// Fallback为true时Document为空，调用方应原样展示Raw并附带Notice
type ParseOutcome struct {
	Document document.Document `json:"document"`
	Fallback bool              `json:"fallback"`
	Raw      string            `json:"raw,omitempty"`
	Notice   string            `json:"notice,omitempty"`
	Cached   bool              `json:"-"`
}

// fallbackOutcome 构造兜底结果
func fallbackOutcome(raw string) *ParseOutcome {
	return &ParseOutcome{
		Document: document.Empty(),
		Fallback: true,
		Raw:      raw,
		Notice:   document.FallbackNotice,
	}
}

// Parser 计划解析器接口，*document.Parser 实现了该接口
type Parser interface {
	SafeParse(raw string) (document.Document, error)
}

// PlanService 旅行计划服务
// 负责协调提示词构建、模型生成、原文归档、解析和持久化
type PlanService struct {
	repo          repository.PlanRepository // 计划元数据存储
	storage       storage.Storage           // 原文存储
	generator     llm.Client                // 大模型客户端
	parser        Parser                    // 计划解析器
	docCache      *cache.DocumentCache      // 解析结果缓存
	statusManager *PlanStatusManager        // 计划状态管理器
	taskQueue     taskqueue.Queue           // 任务队列
	timeout       time.Duration             // 单次生成超时时间
	logger        *logrus.Logger            // 日志记录器
}

// PlanOption 计划服务配置选项
type PlanOption func(*PlanService)

// NewPlanService 创建计划服务
func NewPlanService(
	repo repository.PlanRepository,
	store storage.Storage,
	generator llm.Client,
	opts ...PlanOption,
) *PlanService {
	srv := &PlanService{
		repo:      repo,
		storage:   store,
		generator: generator,
		timeout:   2 * time.Minute,
		logger:    logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	if srv.parser == nil {
		srv.parser = document.NewParser(document.WithLogger(srv.logger))
	}
	if srv.statusManager == nil {
		srv.statusManager = NewPlanStatusManager(repo, srv.logger)
	}
	return srv
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) PlanOption {
	return func(s *PlanService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithParser 设置解析器
func WithParser(parser Parser) PlanOption {
	return func(s *PlanService) {
		s.parser = parser
	}
}

// WithDocumentCache 设置解析结果缓存
func WithDocumentCache(c *cache.DocumentCache) PlanOption {
	return func(s *PlanService) {
		s.docCache = c
	}
}

// WithTaskQueue 设置任务队列，启用异步生成
func WithTaskQueue(queue taskqueue.Queue) PlanOption {
	return func(s *PlanService) {
		s.taskQueue = queue
	}
}

// WithGenerateTimeout 设置单次生成超时时间
func WithGenerateTimeout(timeout time.Duration) PlanOption {
	return func(s *PlanService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// AsyncEnabled 是否启用了异步生成
func (s *PlanService) AsyncEnabled() bool {
	return s.taskQueue != nil
}

// ParseText 解析一段计划原文
// 解析失败不会返回错误，而是返回带原文的兜底结果
func (s *PlanService) ParseText(ctx context.Context, raw string) *ParseOutcome {
	if s.docCache != nil {
		doc, found, err := s.docCache.GetParsed(ctx, raw)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to read parse cache")
		} else if found {
			return &ParseOutcome{Document: doc, Cached: true}
		}
	}
	return s.parseFresh(ctx, raw)
}

// parseFresh 跳过缓存查找直接解析，成功的结果写入缓存
func (s *PlanService) parseFresh(ctx context.Context, raw string) *ParseOutcome {
	doc, err := s.parser.SafeParse(raw)
	if err != nil {
		original, ok := document.RawText(err)
		if !ok {
			original = raw
		}
		s.logger.WithError(err).WithField("raw_length", len(raw)).Warn("Falling back to raw plan text")
		return fallbackOutcome(original)
	}

	if s.docCache != nil {
		if err := s.docCache.SetParsed(ctx, raw, doc); err != nil {
			s.logger.WithError(err).Warn("Failed to write parse cache")
		}
	}
	return &ParseOutcome{Document: doc}
}

// GeneratePlan 根据问卷答案同步生成并解析计划
// 模型调用失败时计划被标记为failed，同时返回ErrGenerationFailed
func (s *PlanService) GeneratePlan(ctx context.Context, answers []string) (*models.Plan, *ParseOutcome, error) {
	plan, cleaned, err := s.createPlan(ctx, answers)
	if err != nil {
		return nil, nil, err
	}

	outcome, err := s.generate(ctx, plan, cleaned)
	if err != nil {
		return plan, nil, err
	}
	return plan, outcome, nil
}

// createPlan 校验答案并创建pending状态的计划记录
func (s *PlanService) createPlan(ctx context.Context, answers []string) (*models.Plan, []string, error) {
	cleaned, err := ValidateAnswers(answers)
	if err != nil {
		return nil, nil, err
	}
	if s.generator == nil {
		return nil, nil, ErrGeneratorUnavailable
	}

	plan := &models.Plan{
		ID:     uuid.New().String(),
		Model:  s.generator.Name(),
		Status: models.PlanStatusPending,
	}
	if err := plan.SetAnswers(cleaned); err != nil {
		return nil, nil, err
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		s.logger.WithError(err).Error("Failed to create plan record")
		return nil, nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.logger.WithField("plan_id", plan.ID).Info("Plan created")
	return plan, cleaned, nil
}

// generate 调用模型生成原文，归档后解析并保存结果
func (s *PlanService) generate(ctx context.Context, plan *models.Plan, answers []string) (*ParseOutcome, error) {
	if err := s.statusManager.MarkAsGenerating(ctx, plan); err != nil {
		return nil, err
	}

	log := s.logger.WithField("plan_id", plan.ID)
	prompt := llm.BuildPlanPrompt(answers)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	resp, err := s.generator.Generate(genCtx, prompt)
	cancel()

	if err == nil && (resp == nil || strings.TrimSpace(resp.Text) == "") {
		err = llm.NewLLMError(llm.ErrCodeEmptyResponse, llm.ErrMsgEmptyResponse)
	}
	if err != nil {
		log.WithError(err).Error("Plan generation failed")
		if markErr := s.statusManager.MarkAsFailed(ctx, plan, err.Error()); markErr != nil {
			log.WithError(markErr).Error("Failed to mark plan as failed")
		}
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if resp.ModelName != "" {
		plan.Model = resp.ModelName
	}

	key := storage.PlanKey(plan.ID, plan.CreatedAt)
	info, err := storage.PutText(ctx, s.storage, key, resp.Text)
	if err != nil {
		log.WithError(err).Error("Failed to archive plan text")
		if markErr := s.statusManager.MarkAsFailed(ctx, plan, err.Error()); markErr != nil {
			log.WithError(markErr).Error("Failed to mark plan as failed")
		}
		return nil, fmt.Errorf("failed to archive plan text: %w", err)
	}
	plan.RawPath = info.Key
	plan.RawSize = info.Size

	outcome := s.ParseText(ctx, resp.Text)
	if err := s.applyOutcome(ctx, plan, outcome); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"tokens":   resp.TokenCount,
		"fallback": outcome.Fallback,
	}).Info("Plan generated")
	return outcome, nil
}

// applyOutcome 持久化解析结果并刷新最近一次成功解析的缓存
func (s *PlanService) applyOutcome(ctx context.Context, plan *models.Plan, outcome *ParseOutcome) error {
	if err := s.statusManager.MarkAsParsed(ctx, plan, outcome); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	if outcome.Fallback || s.docCache == nil {
		return nil
	}
	if err := s.docCache.SetLastGood(ctx, plan.ID, outcome.Document); err != nil {
		s.logger.WithError(err).WithField("plan_id", plan.ID).Warn("Failed to cache parsed plan")
	}
	return nil
}

// GetPlan 获取计划及其解析结果
// 尚未生成完成的计划返回的outcome为nil
func (s *PlanService) GetPlan(ctx context.Context, id string) (*models.Plan, *ParseOutcome, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	switch plan.Status {
	case models.PlanStatusParsed:
		outcome, err := s.lastGood(ctx, plan)
		if err != nil {
			return nil, nil, err
		}
		return plan, outcome, nil
	case models.PlanStatusFallback:
		raw, err := s.rawText(ctx, plan)
		if err != nil {
			return nil, nil, err
		}
		return plan, fallbackOutcome(raw), nil
	default:
		return plan, nil, nil
	}
}

// lastGood 依次从缓存、数据库和归档原文中取得最近一次成功的解析结果
func (s *PlanService) lastGood(ctx context.Context, plan *models.Plan) (*ParseOutcome, error) {
	log := s.logger.WithField("plan_id", plan.ID)

	if s.docCache != nil {
		doc, found, err := s.docCache.GetLastGood(ctx, plan.ID)
		if err != nil {
			log.WithError(err).Warn("Failed to read plan cache")
		} else if found {
			return &ParseOutcome{Document: doc, Cached: true}, nil
		}
	}

	doc, found, err := plan.GetDocument()
	if err != nil {
		log.WithError(err).Warn("Stored document is unreadable, parsing archived text")
	} else if found {
		if s.docCache != nil {
			if err := s.docCache.SetLastGood(ctx, plan.ID, doc); err != nil {
				log.WithError(err).Warn("Failed to cache parsed plan")
			}
		}
		return &ParseOutcome{Document: doc}, nil
	}

	raw, err := s.rawText(ctx, plan)
	if err != nil {
		return nil, err
	}
	return s.ParseText(ctx, raw), nil
}

func (s *PlanService) rawText(ctx context.Context, plan *models.Plan) (string, error) {
	if plan.RawPath == "" {
		return "", ErrNoRawText
	}
	raw, err := storage.GetText(ctx, s.storage, plan.RawPath)
	if err != nil {
		return "", fmt.Errorf("failed to load plan text: %w", err)
	}
	return raw, nil
}

// ListPlans 分页列出计划，status为空时不过滤
func (s *PlanService) ListPlans(ctx context.Context, page, size int, status models.PlanStatus) ([]*models.Plan, int64, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: %s", models.ErrInvalidPlanStatus, status)
	}

	plans, total, err := s.repo.List(ctx, (page-1)*size, size, repository.PlanFilter{Status: status})
	if err != nil {
		s.logger.WithError(err).Error("Failed to list plans")
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, total, nil
}

// ReparsePlan 用当前解析器重新解析已归档的原文
func (s *PlanService) ReparsePlan(ctx context.Context, id string) (*models.Plan, *ParseOutcome, error) {
	plan, err := s.reparsablePlan(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	raw, err := s.rawText(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	outcome := s.parseFresh(ctx, raw)
	if err := s.applyOutcome(ctx, plan, outcome); err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"plan_id":  plan.ID,
		"fallback": outcome.Fallback,
	}).Info("Plan reparsed")
	return plan, outcome, nil
}

// reparsablePlan 取出可以重新解析的计划，只有已生成过原文的计划才能重新解析
func (s *PlanService) reparsablePlan(ctx context.Context, id string) (*models.Plan, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status != models.PlanStatusParsed && plan.Status != models.PlanStatusFallback {
		return nil, fmt.Errorf("%w: plan %s is %s", models.ErrInvalidPlanStatus, id, plan.Status)
	}
	return plan, nil
}

// DeletePlan 删除计划记录、归档原文和相关缓存
func (s *PlanService) DeletePlan(ctx context.Context, id string) error {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.WithError(err).WithField("plan_id", id).Error("Failed to delete plan")
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	log := s.logger.WithField("plan_id", id)
	if plan.RawPath != "" {
		if err := s.storage.Delete(ctx, plan.RawPath); err != nil {
			log.WithError(err).Warn("Failed to delete archived plan text")
		}
	}
	if s.docCache != nil {
		if err := s.docCache.Forget(ctx, id); err != nil {
			log.WithError(err).Warn("Failed to evict plan cache")
		}
	}
	if s.taskQueue != nil {
		s.deletePlanTasks(ctx, plan, log)
	}

	log.Info("Plan deleted")
	return nil
}

// deletePlanTasks 删除计划的所有任务记录，包括生成任务和重新解析任务
func (s *PlanService) deletePlanTasks(ctx context.Context, plan *models.Plan, log *logrus.Entry) {
	taskIDs := make(map[string]struct{})
	if plan.TaskID != "" {
		taskIDs[plan.TaskID] = struct{}{}
	}
	tasks, err := s.taskQueue.GetTasksByPlan(ctx, plan.ID)
	if err != nil {
		log.WithError(err).Warn("Failed to list plan tasks")
	}
	for _, t := range tasks {
		taskIDs[t.ID] = struct{}{}
	}

	for id := range taskIDs {
		if err := s.taskQueue.DeleteTask(ctx, id); err != nil && !errors.Is(err, taskqueue.ErrTaskNotFound) {
			log.WithError(err).WithField("task_id", id).Warn("Failed to delete plan task")
		}
	}
}
