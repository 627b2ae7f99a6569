package document

import (
	"strings"

	"github.com/samber/lo"
)

// Decompose 按段落类别将正文拆分为条目
func Decompose(category Category, body string) []Item {
	switch category {
	case Itinerary:
		return decomposeItinerary(body)
	case Checklist, Tips:
		return decomposeList(body)
	default:
		return decomposeGeneral(body)
	}
}

// decomposeItinerary 按日期标记切分行程，每个标记开始一个新条目
// 第一个标记之前的文字单独成为一个条目，标题取其第一行
func decomposeItinerary(body string) []Item {
	if strings.TrimSpace(body) == "" {
		return []Item{}
	}

	var chunks [][]string
	for _, line := range splitLines(body) {
		if len(chunks) == 0 || IsDayMarker(line) {
			chunks = append(chunks, []string{line})
			continue
		}
		last := len(chunks) - 1
		chunks[last] = append(chunks[last], line)
	}

	items := make([]Item, 0, len(chunks))
	for _, chunk := range chunks {
		activities := listLines(chunk[1:])
		items = append(items, Item{
			Title:    strings.TrimSpace(chunk[0]),
			Content:  strings.Join(activities, "\n"),
			SubItems: activities,
		})
	}
	return items
}

// decomposeList 清单与建议共用：整段作为一个条目，每个非空行是一个子条目
func decomposeList(body string) []Item {
	return []Item{{
		Content:  body,
		SubItems: listLines(splitLines(body)),
	}}
}

func decomposeGeneral(body string) []Item {
	return []Item{{Content: body}}
}

// listLines 去除列表符号和空白，丢弃空行
// 没有子条目时返回nil，与序列化后读回的文档保持一致
func listLines(lines []string) []string {
	out := lo.FilterMap(lines, func(line string, _ int) (string, bool) {
		s := StripBullet(line)
		return s, s != ""
	})
	if len(out) == 0 {
		return nil
	}
	return out
}
