package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/travel-plan/internal/cache"
	"github.com/fyerfyer/travel-plan/internal/database"
	"github.com/fyerfyer/travel-plan/internal/document"
	"github.com/fyerfyer/travel-plan/internal/llm"
	"github.com/fyerfyer/travel-plan/internal/repository"
	"github.com/fyerfyer/travel-plan/pkg/storage"
)

// samplePlan 模拟模型返回的计划原文
const samplePlan = `## Destination Overview
Lisbon sits on seven hills.

## Daily Itinerary
Day 1: Alfama
- Castelo de São Jorge
- Fado dinner
Day 2: Belém
- Jerónimos Monastery

## Essential Packing List
- Walking shoes
- Light jacket

## Budget Recommendations
- Get a Viva Viagem card`

// testEnv 服务测试依赖
type testEnv struct {
	repo    repository.PlanRepository
	storage storage.Storage
	cache   *cache.DocumentCache
	logger  *logrus.Logger
}

// setupTestEnv 使用内存数据库、临时目录存储和内存缓存
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	mem, err := cache.NewMemoryCache(cache.DefaultConfig())
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	return &testEnv{
		repo:    repository.NewPlanRepositoryWithDB(db),
		storage: store,
		cache:   cache.NewDocumentCache(mem, time.Minute),
		logger:  logger,
	}
}

func (e *testEnv) service(client llm.Client, opts ...PlanOption) *PlanService {
	base := []PlanOption{WithLogger(e.logger), WithDocumentCache(e.cache)}
	return NewPlanService(e.repo, e.storage, client, append(base, opts...)...)
}

// failingParser 总是返回解析错误
type failingParser struct{}

func (failingParser) SafeParse(raw string) (document.Document, error) {
	return document.Empty(), &document.ParseError{Raw: raw, Cause: errors.New("unexpected token")}
}
