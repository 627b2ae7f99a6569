package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyerfyer/travel-plan/internal/document"
)

const (
	// 按原文内容缓存的解析结果
	parsedPrefix = "parsed"
	// 每个计划最近一次成功的解析结果
	lastGoodPrefix = "plan_last_good"
)

// DocumentCache 解析结果缓存
// 在通用Cache之上按JSON存取 document.Document
type DocumentCache struct {
	cache Cache
	ttl   time.Duration
}

// NewDocumentCache 创建解析结果缓存，ttl为0时使用底层缓存的默认值
func NewDocumentCache(c Cache, ttl time.Duration) *DocumentCache {
	return &DocumentCache{cache: c, ttl: ttl}
}

// GetParsed 按原文查找解析结果
func (d *DocumentCache) GetParsed(ctx context.Context, raw string) (document.Document, bool, error) {
	return d.load(ctx, GenerateCacheKey(parsedPrefix, ContentHash(raw)))
}

// SetParsed 按原文保存解析结果
func (d *DocumentCache) SetParsed(ctx context.Context, raw string, doc document.Document) error {
	return d.store(ctx, GenerateCacheKey(parsedPrefix, ContentHash(raw)), doc)
}

// GetLastGood 获取计划最近一次成功的解析结果
func (d *DocumentCache) GetLastGood(ctx context.Context, planID string) (document.Document, bool, error) {
	return d.load(ctx, GenerateCacheKey(lastGoodPrefix, planID))
}

// SetLastGood 记录计划最近一次成功的解析结果
func (d *DocumentCache) SetLastGood(ctx context.Context, planID string, doc document.Document) error {
	return d.store(ctx, GenerateCacheKey(lastGoodPrefix, planID), doc)
}

// Forget 删除计划相关的缓存
func (d *DocumentCache) Forget(ctx context.Context, planID string) error {
	return d.cache.Delete(ctx, GenerateCacheKey(lastGoodPrefix, planID))
}

func (d *DocumentCache) load(ctx context.Context, key string) (document.Document, bool, error) {
	value, found, err := d.cache.Get(ctx, key)
	if err != nil || !found {
		return document.Document{}, false, err
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		// 损坏的缓存项直接丢弃
		_ = d.cache.Delete(ctx, key)
		return document.Document{}, false, nil
	}
	if doc.Sections == nil {
		doc.Sections = []document.Section{}
	}
	return doc, true, nil
}

func (d *DocumentCache) store(ctx context.Context, key string, doc document.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return d.cache.Set(ctx, key, string(data), d.ttl)
}
