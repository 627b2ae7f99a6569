package document

import (
	"regexp"
	"strings"
)

var (
	// 二级标题，允许前导缩进
	headerRe = regexp.MustCompile(`^[ \t]*## `)
	// 标题前缀，用于提取标题文本
	headerPrefixRe = regexp.MustCompile(`^[ \t]*##\s+`)
	// 标题中的序号，例如 "1. "
	ordinalRe = regexp.MustCompile(`^\d+\.\s*`)
	// 行程中的日期标记，例如 "Day 1:"，允许加粗
	dayMarkerRe = regexp.MustCompile(`(?i)^(\*\*|__)?day\s+\d+\s*:`)
	// 列表符号
	bulletRe = regexp.MustCompile(`^[-*•]\s*`)
)

// IsHeaderLine 判断一行是否为段落标题行（"## "开头）
func IsHeaderLine(line string) bool {
	return headerRe.MatchString(line)
}

// IsDayMarker 判断一行是否以日期标记开头
func IsDayMarker(line string) bool {
	return dayMarkerRe.MatchString(strings.TrimSpace(line))
}

// IsBulletLine 判断一行是否以列表符号开头
// "**" 开头的行视为加粗文本而不是列表
func IsBulletLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "**") {
		return false
	}
	return bulletRe.MatchString(trimmed)
}

// StripBullet 去掉行首的列表符号及其后的空白，并去除首尾空白
func StripBullet(line string) string {
	trimmed := strings.TrimSpace(line)
	if !IsBulletLine(trimmed) {
		return trimmed
	}
	return strings.TrimSpace(bulletRe.ReplaceAllString(trimmed, ""))
}

// StripOrdinal 去掉标题开头的序号
func StripOrdinal(title string) string {
	return ordinalRe.ReplaceAllString(title, "")
}

// HeaderTitle 从标题行中提取标题文本
func HeaderTitle(line string) string {
	title := headerPrefixRe.ReplaceAllString(line, "")
	return strings.TrimSpace(StripOrdinal(strings.TrimSpace(title)))
}

// splitLines 统一换行符后按行切分
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
