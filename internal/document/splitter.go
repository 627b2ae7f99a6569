package document

import (
	"strings"
)

// SplitSections 在每个二级标题行之前切分原始文本
// 标题行属于其后的段落，只包含空白的块会被丢弃。
// 第一个标题之前的文字（或完全没有标题的文本）作为一个无标题块保留。
func SplitSections(raw string) []string {
	blocks := make([]string, 0)
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		block := strings.Join(current, "\n")
		if strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
		current = current[:0]
	}

	for _, line := range splitLines(raw) {
		if IsHeaderLine(line) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return blocks
}

// splitBlock 将一个块拆分为标题和正文
// 没有标题行的块标题为空，整个块作为正文
func splitBlock(block string) (title, body string) {
	lines := splitLines(block)
	if !IsHeaderLine(lines[0]) {
		return "", strings.TrimSpace(block)
	}
	return HeaderTitle(lines[0]), strings.TrimSpace(strings.Join(lines[1:], "\n"))
}
