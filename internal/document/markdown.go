package document

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// 出现这些字符时才需要走Markdown解析
const markdownChars = "*_`[]~"

// 块级前缀（列表、标题、引用）原样保留，只解析其后的行内部分
var blockPrefixRe = regexp.MustCompile(`^\s*(?:[-+*•]|\d+[.)]|#{1,6}|>)\s+`)

// plainItems 返回去除行内Markdown标记后的条目副本
func plainItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{
			Title:   stripInlineMarkdown(it.Title),
			Content: stripMultiline(it.Content),
		}
		if it.SubItems != nil {
			out[i].SubItems = make([]string, len(it.SubItems))
			for j, s := range it.SubItems {
				out[i].SubItems[j] = stripInlineMarkdown(s)
			}
		}
	}
	return out
}

// stripMultiline 逐行去除Markdown标记，保留换行
func stripMultiline(text string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = stripInlineMarkdown(line)
	}
	return strings.Join(lines, "\n")
}

// stripInlineMarkdown 解析单行Markdown并只保留其中的文字
func stripInlineMarkdown(line string) string {
	if !strings.ContainsAny(line, markdownChars) {
		return line
	}

	prefix := blockPrefixRe.FindString(line)
	rest := line[len(prefix):]

	mdParser := parser.NewWithExtensions(parser.Strikethrough | parser.NoIntraEmphasis)
	doc := mdParser.Parse([]byte(rest))

	var b strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Text:
			b.Write(n.Literal)
		case *ast.Code:
			b.Write(n.Literal)
		case *ast.Softbreak, *ast.Hardbreak:
			b.WriteByte(' ')
		}
		return ast.GoToNext
	})

	text := strings.TrimSpace(b.String())
	if text == "" {
		return strings.TrimSpace(line)
	}
	return strings.TrimLeft(prefix, " \t") + text
}
