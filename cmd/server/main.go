package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fyerfyer/travel-plan/api"
	"github.com/fyerfyer/travel-plan/api/handler"
	"github.com/fyerfyer/travel-plan/api/middleware"
	"github.com/fyerfyer/travel-plan/config"
	"github.com/fyerfyer/travel-plan/internal/cache"
	"github.com/fyerfyer/travel-plan/internal/database"
	"github.com/fyerfyer/travel-plan/internal/document"
	"github.com/fyerfyer/travel-plan/internal/llm"
	"github.com/fyerfyer/travel-plan/internal/repository"
	"github.com/fyerfyer/travel-plan/internal/services"
	"github.com/fyerfyer/travel-plan/pkg/storage"
	"github.com/fyerfyer/travel-plan/pkg/taskqueue"
)

// flags 命令行参数，非零值覆盖配置文件
type flags struct {
	ConfigFile string
	Port       int
	Mode       string
	LogLevel   string
}

func main() {
	// .env 文件可选
	_ = godotenv.Load()

	f := parseFlags()

	cfg, err := config.Load(f.ConfigFile)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, f)

	gin.SetMode(cfg.Server.Mode)

	logger := setupLogger(cfg.Log)
	logger.Info("Starting travel plan service...")

	if err := setupDatabase(cfg.Database, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	planStorage, err := setupStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// 没有API密钥时服务仍可启动，只提供解析接口
	generator, err := setupLLM(cfg.LLM)
	if err != nil {
		logger.WithError(err).Warn("LLM client unavailable, plan generation disabled")
	}

	opts := []services.PlanOption{
		services.WithLogger(logger),
		services.WithParser(setupParser(cfg.Parser, logger)),
		services.WithGenerateTimeout(cfg.LLM.Timeout),
	}

	if cfg.Cache.Enable {
		docCache, err := setupCache(cfg.Cache)
		if err != nil {
			logger.Fatalf("Failed to initialize cache: %v", err)
		}
		if closer, ok := docCache.(io.Closer); ok {
			defer closer.Close()
		}
		opts = append(opts, services.WithDocumentCache(cache.NewDocumentCache(docCache, cfg.Cache.TTL)))
	}

	var worker *taskqueue.RedisWorker
	if cfg.Queue.Enable {
		queue, err := setupTaskQueue(cfg.Queue, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()
		opts = append(opts, services.WithTaskQueue(queue))

		if rq, ok := queue.(*taskqueue.RedisQueue); ok {
			rq.SetLogger(logger)
			worker = taskqueue.NewRedisWorker(rq, queueConfig(cfg.Queue))
		}
	}

	planService := services.NewPlanService(repository.NewPlanRepository(), planStorage, generator, opts...)

	if worker != nil {
		services.NewPlanTaskHandler(planService).Register(worker)
		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
		defer worker.Stop()
		logger.Info("Task worker started")
	}

	r := api.SetupRouter(
		api.RouterConfig{AllowOrigins: cfg.Server.AllowOrigins},
		handler.NewPlanHandler(planService),
		handler.NewTaskHandler(planService),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.IntVar(&f.Port, "port", 0, "Server port (overrides config)")
	flag.StringVar(&f.Mode, "mode", "", "Run mode (debug/release)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	flag.Parse()
	return f
}

// applyFlags 用显式指定的命令行参数覆盖配置
func applyFlags(cfg *config.Config, f flags) {
	if f.Port > 0 {
		cfg.Server.Port = f.Port
	}
	if f.Mode != "" {
		cfg.Server.Mode = f.Mode
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
}

// setupLogger 设置日志系统，配置了日志文件时同时按大小滚动写入文件
func setupLogger(cfg config.LogConfig) *logrus.Logger {
	logger := middleware.GetLogger()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.File != "" {
		logger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}))
	}

	return logger
}

// setupDatabase 设置数据库
func setupDatabase(cfg config.DatabaseConfig, logger *logrus.Logger) error {
	dbConfig := database.DefaultConfig()
	dbConfig.Type = cfg.Type
	if cfg.DSN != "" {
		dbConfig.DSN = cfg.DSN
	}
	return database.Setup(dbConfig, logger)
}

// setupStorage 设置原始文本存储
func setupStorage(cfg config.StorageConfig) (storage.Storage, error) {
	return storage.New(storage.Config{
		Type:  cfg.Type,
		Local: storage.LocalConfig{Path: cfg.Path},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		},
	})
}

// setupLLM 设置大语言模型客户端
func setupLLM(cfg config.LLMConfig) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM API key is required")
	}

	opts := []llm.Option{
		llm.WithAPIKey(cfg.APIKey),
		llm.WithModel(cfg.Model),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTemperature(cfg.Temperature),
		llm.WithTopP(cfg.TopP),
		llm.WithTimeout(cfg.Timeout),
		llm.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, llm.WithBaseURL(cfg.Endpoint))
	}
	return llm.NewClient(cfg.Provider, opts...)
}

func setupParser(cfg config.ParserConfig, logger *logrus.Logger) *document.Parser {
	opts := []document.Option{document.WithLogger(logger)}
	if cfg.PlainText {
		opts = append(opts, document.WithPlainText())
	}
	return document.NewParser(opts...)
}

// setupCache 设置缓存服务
func setupCache(cfg config.CacheConfig) (cache.Cache, error) {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Type = cfg.Type
	cacheConfig.RedisAddr = cfg.Address
	cacheConfig.RedisPassword = cfg.Password
	cacheConfig.RedisDB = cfg.DB
	if cfg.Prefix != "" {
		cacheConfig.KeyPrefix = cfg.Prefix
	}
	if cfg.TTL > 0 {
		cacheConfig.DefaultTTL = cfg.TTL
	}
	return cache.NewCache(cacheConfig)
}

func queueConfig(cfg config.QueueConfig) *taskqueue.Config {
	return &taskqueue.Config{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		Concurrency:   cfg.Concurrency,
		RetryLimit:    cfg.RetryLimit,
		RetryDelay:    cfg.RetryDelay,
		TaskExpiry:    cfg.TaskExpiry,
	}
}

// setupTaskQueue 设置任务队列
func setupTaskQueue(cfg config.QueueConfig, logger *logrus.Logger) (taskqueue.Queue, error) {
	logger.WithFields(logrus.Fields{
		"type":        cfg.Type,
		"redis_addr":  cfg.RedisAddr,
		"concurrency": cfg.Concurrency,
		"retry_limit": cfg.RetryLimit,
	}).Info("Setting up task queue")

	return taskqueue.NewQueue(cfg.Type, queueConfig(cfg))
}
