package style

import (
	"fmt"
	"strings"
)

// Selector 是一个（可能带后代组合符的）简单选择器链，最后一段匹配元素本身。
type Selector struct {
	Raw   string
	parts []compound
}

type compound struct {
	tag     string
	id      string
	classes []string
}

// Specificity 按 (id, class, tag) 计数。
type Specificity struct {
	IDs     int
	Classes int
	Tags    int
}

// Less 判断 s 的优先级是否低于 o。
func (s Specificity) Less(o Specificity) bool {
	if s.IDs != o.IDs {
		return s.IDs < o.IDs
	}
	if s.Classes != o.Classes {
		return s.Classes < o.Classes
	}
	return s.Tags < o.Tags
}

// ParseSelector 解析 "g.story-button text"、"#viz-story-button-1"、"*" 一类选择器。
func ParseSelector(raw string) (Selector, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Selector{}, fmt.Errorf("选择器为空")
	}
	sel := Selector{Raw: strings.Join(fields, " ")}
	for _, f := range fields {
		c, err := parseCompound(f)
		if err != nil {
			return Selector{}, fmt.Errorf("选择器 %q 无效: %w", raw, err)
		}
		sel.parts = append(sel.parts, c)
	}
	return sel, nil
}

func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	readName := func() string {
		start := i
		for i < len(s) && s[i] != '.' && s[i] != '#' {
			i++
		}
		return s[start:i]
	}
	if s[0] != '.' && s[0] != '#' {
		c.tag = readName()
		if c.tag == "*" {
			c.tag = ""
		}
	}
	for i < len(s) {
		kind := s[i]
		i++
		name := readName()
		if name == "" {
			return compound{}, fmt.Errorf("%q 中缺少名称", s)
		}
		switch kind {
		case '.':
			c.classes = append(c.classes, name)
		case '#':
			if c.id != "" {
				return compound{}, fmt.Errorf("%q 含多个 id", s)
			}
			c.id = name
		}
	}
	return c, nil
}

func (c compound) matches(el Element) bool {
	if c.tag != "" && c.tag != el.Tag() {
		return false
	}
	if c.id != "" && c.id != el.ID() {
		return false
	}
	for _, cls := range c.classes {
		if !el.HasClass(cls) {
			return false
		}
	}
	return true
}

// Matches 判断元素是否匹配选择器；祖先段按后代关系向上查找。
func (s Selector) Matches(el Element) bool {
	if len(s.parts) == 0 || el == nil {
		return false
	}
	last := len(s.parts) - 1
	if !s.parts[last].matches(el) {
		return false
	}
	anc := el.ParentElement()
	for i := last - 1; i >= 0; i-- {
		for anc != nil && !s.parts[i].matches(anc) {
			anc = anc.ParentElement()
		}
		if anc == nil {
			return false
		}
		anc = anc.ParentElement()
	}
	return true
}

// Specificity 汇总各段的优先级。
func (s Selector) Specificity() Specificity {
	var sp Specificity
	for _, c := range s.parts {
		if c.id != "" {
			sp.IDs++
		}
		sp.Classes += len(c.classes)
		if c.tag != "" {
			sp.Tags++
		}
	}
	return sp
}
