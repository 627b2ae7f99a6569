package document

// Category 段落类别，决定段落的展示方式
type Category string

const (
	// Itinerary 按天排列的行程
	Itinerary Category = "itinerary"
	// Checklist 清单（例如行李清单）
	Checklist Category = "checklist"
	// Tips 建议列表（例如预算建议）
	Tips Category = "tips"
	// General 普通文本
	General Category = "general"
)

// Valid 判断类别是否合法
func (c Category) Valid() bool {
	switch c {
	case Itinerary, Checklist, Tips, General:
		return true
	default:
		return false
	}
}

// Item 段落中的一个条目
type Item struct {
	Title    string   `json:"title,omitempty"`     // 条目标题，仅行程中的某一天会有
	Content  string   `json:"content"`             // 条目正文
	SubItems []string `json:"sub_items,omitempty"` // 子条目，普通文本条目没有
}

// Section 计划中的一个段落
type Section struct {
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Items    []Item   `json:"items"`
}

// Document 解析后的旅行计划
// 段落按原文出现顺序排列，解析完成后不应再被修改
type Document struct {
	Sections []Section `json:"sections"`
}

// Empty 返回不含任何段落的文档
func Empty() Document {
	return Document{Sections: []Section{}}
}

// IsEmpty 文档是否没有任何段落
func (d Document) IsEmpty() bool {
	return len(d.Sections) == 0
}

// Clone 深拷贝文档，供缓存等共享场景使用
func (d Document) Clone() Document {
	out := Document{Sections: make([]Section, len(d.Sections))}
	for i, s := range d.Sections {
		items := make([]Item, len(s.Items))
		for j, it := range s.Items {
			items[j] = Item{Title: it.Title, Content: it.Content}
			if it.SubItems != nil {
				items[j].SubItems = append([]string{}, it.SubItems...)
			}
		}
		out.Sections[i] = Section{Title: s.Title, Category: s.Category, Items: items}
	}
	return out
}

// Summary 文档统计信息
type Summary struct {
	Sections   int              `json:"sections"`
	Days       int              `json:"days"`
	ByCategory map[Category]int `json:"by_category"`
}

// Summarize 统计段落数、行程天数以及各类别段落数
func (d Document) Summarize() Summary {
	sum := Summary{
		Sections:   len(d.Sections),
		ByCategory: make(map[Category]int),
	}
	for _, s := range d.Sections {
		sum.ByCategory[s.Category]++
		if s.Category != Itinerary {
			continue
		}
		for _, it := range s.Items {
			if IsDayMarker(it.Title) {
				sum.Days++
			}
		}
	}
	return sum
}
