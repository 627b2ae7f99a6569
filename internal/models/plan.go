package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fyerfyer/travel-plan/internal/document"
)

// PlanStatus 计划处理状态类型
type PlanStatus string

const (
	// PlanStatusPending 已创建，等待生成
	PlanStatusPending PlanStatus = "pending"
	// PlanStatusGenerating 正在调用模型生成
	PlanStatusGenerating PlanStatus = "generating"
	// PlanStatusParsed 生成并解析成功
	PlanStatusParsed PlanStatus = "parsed"
	// PlanStatusFallback 生成成功但解析失败，只能展示原文
	PlanStatusFallback PlanStatus = "fallback"
	// PlanStatusFailed 生成失败
	PlanStatusFailed PlanStatus = "failed"
)

// Valid 判断状态是否合法
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanStatusPending, PlanStatusGenerating, PlanStatusParsed, PlanStatusFallback, PlanStatusFailed:
		return true
	default:
		return false
	}
}

// Finished 是否已经结束处理
func (s PlanStatus) Finished() bool {
	return s == PlanStatusParsed || s == PlanStatusFallback || s == PlanStatusFailed
}

// Plan 旅行计划数据模型
// 原文保存在文件存储中，这里只记录元数据和最近一次成功的解析结果
type Plan struct {
	ID           string         `gorm:"primaryKey"`         // 计划ID，主键
	Answers      datatypes.JSON `gorm:"type:json"`          // 问卷答案
	Model        string         `gorm:"size:64"`            // 生成所用模型
	RawPath      string         `gorm:"size:255"`           // 原文在存储中的路径
	RawSize      int64          `gorm:"not null;default:0"` // 原文字节数
	Status       PlanStatus     `gorm:"not null;index"`     // 处理状态
	Error        string         `gorm:"type:text"`          // 错误信息
	SectionCount int            `gorm:"not null;default:0"` // 段落数量
	DayCount     int            `gorm:"not null;default:0"` // 行程天数
	Document     datatypes.JSON `gorm:"type:json"`          // 最近一次成功的解析结果
	TaskID       string         `gorm:"size:50;index"`      // 异步生成任务ID
	CreatedAt    time.Time      `gorm:"not null;index"`     // 创建时间
	UpdatedAt    time.Time      `gorm:"not null"`           // 更新时间
	ParsedAt     *time.Time     // 解析完成时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (p *Plan) BeforeCreate(tx *gorm.DB) (err error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	if p.Status == "" {
		p.Status = PlanStatusPending
	}
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (p *Plan) BeforeUpdate(tx *gorm.DB) (err error) {
	p.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (Plan) TableName() string {
	return "plans"
}

// SetAnswers 保存问卷答案
func (p *Plan) SetAnswers(answers []string) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	p.Answers = datatypes.JSON(data)
	return nil
}

// GetAnswers 读取问卷答案
func (p *Plan) GetAnswers() ([]string, error) {
	if len(p.Answers) == 0 {
		return []string{}, nil
	}
	var answers []string
	if err := json.Unmarshal(p.Answers, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	return answers, nil
}

// SetDocument 记录一次成功的解析结果，同时更新统计字段
func (p *Plan) SetDocument(doc document.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	sum := doc.Summarize()
	now := time.Now()

	p.Document = datatypes.JSON(data)
	p.SectionCount = sum.Sections
	p.DayCount = sum.Days
	p.ParsedAt = &now
	return nil
}

// GetDocument 读取保存的解析结果，没有时返回false
func (p *Plan) GetDocument() (document.Document, bool, error) {
	if len(p.Document) == 0 {
		return document.Document{}, false, nil
	}
	var doc document.Document
	if err := json.Unmarshal(p.Document, &doc); err != nil {
		return document.Document{}, false, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.Sections == nil {
		doc.Sections = []document.Section{}
	}
	return doc, true, nil
}
