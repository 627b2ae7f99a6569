package document

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Parser 旅行计划解析器
// 将模型生成的半结构化文本转换为 Document，本身不持有可变状态，可并发使用
type Parser struct {
	plainText bool
	logger    *logrus.Logger

	classify  func(title string) Category
	decompose func(category Category, body string) []Item
}

// Option 解析器配置选项
type Option func(*Parser)

// WithPlainText 去除条目文本中的行内Markdown标记
func WithPlainText() Option {
	return func(p *Parser) {
		p.plainText = true
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClassifier 替换段落分类规则，nil 保留默认的关键词分类
func WithClassifier(classify func(title string) Category) Option {
	return func(p *Parser) {
		if classify != nil {
			p.classify = classify
		}
	}
}

// NewParser 创建解析器
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:    logrus.New(),
		classify:  Classify,
		decompose: Decompose,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse 解析原始文本
// 空文本返回空文档；结构不规范的文本会退化为更简单的条目而不是报错
func (p *Parser) Parse(raw string) Document {
	blocks := SplitSections(raw)
	doc := Document{Sections: make([]Section, 0, len(blocks))}

	for _, block := range blocks {
		title, body := splitBlock(block)
		category := p.classify(title)
		items := p.decompose(category, body)
		if p.plainText {
			items = plainItems(items)
		}
		doc.Sections = append(doc.Sections, Section{
			Title:    title,
			Category: category,
			Items:    items,
		})
	}

	return doc
}

// SafeParse 解析原始文本，并将解析过程中的panic转换为 *ParseError
// 出错时不会返回部分结果
func (p *Parser) SafeParse(raw string) (doc Document, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		cause, ok := r.(error)
		if !ok {
			cause = fmt.Errorf("%v", r)
		}
		p.logger.WithFields(logrus.Fields{
			"raw_length": len(raw),
			"panic":      r,
		}).Error("Failed to parse travel plan")
		doc = Document{}
		err = &ParseError{Raw: raw, Cause: cause}
	}()

	return p.Parse(raw), nil
}

var defaultParser = NewParser()

// Parse 使用默认解析器解析文本
func Parse(raw string) Document {
	return defaultParser.Parse(raw)
}

// SafeParse 使用默认解析器安全地解析文本
func SafeParse(raw string) (Document, error) {
	return defaultParser.SafeParse(raw)
}
