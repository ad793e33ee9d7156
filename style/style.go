package style

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// 该文件定义样式表、选择器与层叠计算，供 dom 查询元素的计算样式（computed style）。

// Default 是未被任何规则覆盖时的初始值。
var Default = map[string]string{
	"font-size":   "16px",
	"font-family": "sans-serif",
	"font-weight": "normal",
	"font-style":  "normal",
	"opacity":     "1",
	"display":     "inline",
	"fill":        "#000000",
	"stroke":      "none",
	"visibility":  "visible",
}

// inherited 列出会从父元素继承的属性。
var inherited = map[string]bool{
	"font-size":   true,
	"font-family": true,
	"font-weight": true,
	"font-style":  true,
	"fill":        true,
	"stroke":      true,
	"text-anchor": true,
	"visibility":  true,
}

// lengthProps 中的展示属性在没有单位时按 px 归一化。
var lengthProps = map[string]bool{
	"width":        true,
	"height":       true,
	"font-size":    true,
	"stroke-width": true,
	"rx":           true,
	"ry":           true,
}

// presentationAttrs 是可以作为展示属性参与层叠的元素属性。
var presentationAttrs = []string{
	"width", "height", "font-size", "font-family", "font-weight",
	"font-style", "fill", "stroke", "stroke-width", "display", "opacity",
	"text-anchor", "alignment-baseline", "visibility",
}

// Element 是层叠计算需要的最小元素视图，由 dom.Node 实现。
type Element interface {
	Tag() string
	ID() string
	HasClass(name string) bool
	Attr(name string) (string, bool)
	InlineStyle() map[string]string
	ParentElement() Element
}

// Rule 是一条样式规则：选择器与声明。
type Rule struct {
	Selector     Selector
	Declarations map[string]string
	order        int
}

// Sheet 保存按来源顺序排列的规则。
type Sheet struct {
	rules []Rule
}

// NewSheet 创建空样式表。
func NewSheet() *Sheet { return &Sheet{} }

// Add 解析选择器并追加一条规则；属性名统一为 CSS 的连字符形式。
func (s *Sheet) Add(selector string, decls map[string]string) error {
	sel, err := ParseSelector(selector)
	if err != nil {
		return err
	}
	norm := make(map[string]string, len(decls))
	for k, v := range decls {
		norm[PropertyName(k)] = strings.TrimSpace(v)
	}
	s.rules = append(s.rules, Rule{Selector: sel, Declarations: norm, order: len(s.rules)})
	return nil
}

// Len 返回规则数。
func (s *Sheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Computed 是完全解析后的样式值（字符串形式，和浏览器的 getComputedStyle 一致）。
type Computed map[string]string

// Get 按 CSS 名或 camelCase 名读取属性。
func (c Computed) Get(prop string) (string, bool) {
	v, ok := c[PropertyName(prop)]
	return v, ok
}

// Font 描述测量文本所需的字体信息。
type Font struct {
	Family string  `json:"family"`
	SizePx float64 `json:"sizePx"`
	Weight string  `json:"weight"`
	Style  string  `json:"style,omitempty"`
}

// Font 从计算样式中提取字体描述；font-size 非 px 时退回默认 16px。
func (c Computed) Font() Font {
	f := Font{Family: c["font-family"], Weight: c["font-weight"], Style: c["font-style"], SizePx: 16}
	if v, ok := c["font-size"]; ok {
		if px, ok := trimPx(v); ok {
			f.SizePx = px
		}
	}
	return f
}

// Compute 计算元素的样式：默认值 → 继承 → 展示属性 → 样式表规则 → 内联样式。
func (s *Sheet) Compute(el Element) Computed {
	var parent Computed
	if p := el.ParentElement(); p != nil {
		parent = s.Compute(p)
	}

	out := Computed{}
	for k, v := range Default {
		out[k] = v
	}
	for k := range inherited {
		if v, ok := parent[k]; ok {
			out[k] = v
		}
	}
	for _, name := range presentationAttrs {
		if v, ok := el.Attr(name); ok && strings.TrimSpace(v) != "" {
			out[name] = normalizeValue(name, v)
		}
	}
	if s != nil {
		matched := make([]Rule, 0, len(s.rules))
		for _, r := range s.rules {
			if r.Selector.Matches(el) {
				matched = append(matched, r)
			}
		}
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].Selector.Specificity(), matched[j].Selector.Specificity()
			if a != b {
				return a.Less(b)
			}
			return matched[i].order < matched[j].order
		})
		for _, r := range matched {
			for k, v := range r.Declarations {
				out[k] = normalizeValue(k, v)
			}
		}
	}
	for k, v := range el.InlineStyle() {
		out[PropertyName(k)] = normalizeValue(PropertyName(k), v)
	}
	out["font-size"] = resolveFontSize(out["font-size"], parent)
	return out
}

// resolveFontSize 将相对字号（em、%）折算为 px，基准为父元素字号。
func resolveFontSize(v string, parent Computed) string {
	base := 16.0
	if parent != nil {
		if px, ok := trimPx(parent["font-size"]); ok {
			base = px
		}
	}
	var factor float64
	switch {
	case strings.HasSuffix(v, "em") && !strings.HasSuffix(v, "rem"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "em"), 64)
		if err != nil {
			return v
		}
		factor = f
	case strings.HasSuffix(v, "%"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return v
		}
		factor = f / 100
	default:
		return v
	}
	return strconv.FormatFloat(base*factor, 'f', -1, 64) + "px"
}

// PropertyName 将 camelCase（fontSize）转换为 CSS 名（font-size）。
func PropertyName(prop string) string {
	prop = strings.TrimSpace(prop)
	var b strings.Builder
	for i, r := range prop {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeValue(prop, v string) string {
	v = strings.TrimSpace(v)
	if !lengthProps[prop] {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64) + "px"
	}
	return v
}

func trimPx(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasSuffix(v, "px") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String 便于调试输出。
func (r Rule) String() string {
	return fmt.Sprintf("%s %v", r.Selector.Raw, r.Declarations)
}

// CSS 按来源顺序输出样式表，供独立 HTML 页面内嵌。
func (s *Sheet) CSS() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range s.rules {
		keys := make([]string, 0, len(r.Declarations))
		for k := range r.Declarations {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(r.Selector.Raw)
		b.WriteString(" {")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s: %s;", k, normalizeValue(k, r.Declarations[k]))
		}
		b.WriteString(" }\n")
	}
	return b.String()
}
