package story

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/datastory/binding"
	"github.com/ByLCY/datastory/dsl"
	"github.com/ByLCY/datastory/layout"
)

// ErrInvalidStory 表示故事文件语义错误（未知命令、缺少页面、非法数值等）。
var ErrInvalidStory = errors.New("story: invalid story")

// CompileOptions 配置编译阶段。
type CompileOptions struct {
	// Ribbon 是故事文件没有 ribbon 语句时使用的几何参数；零值表示 DefaultRibbon()。
	Ribbon Ribbon
	// Strict 为真时，任一 ${...} 占位符无法解析都会返回 binding.ErrUnresolved。
	Strict bool
}

// Compile 将 AST 编译为 Spec，并把 data 绑定到文本与页标题中的占位符。
func Compile(doc *dsl.Story, data any, opts CompileOptions) (*Spec, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidStory)
	}
	ribbon := opts.Ribbon
	if ribbon == (Ribbon{}) {
		ribbon = DefaultRibbon()
	}
	c := &compiler{data: data, strict: opts.Strict}
	spec := &Spec{Name: doc.Name, Ribbon: ribbon}

	for _, section := range doc.Sections {
		switch {
		case section.Meta != nil:
			meta, err := c.meta(section.Meta)
			if err != nil {
				return nil, err
			}
			spec.Meta = meta
		case section.Ribbon != nil:
			if err := applyRibbon(&spec.Ribbon, section.Ribbon); err != nil {
				return nil, err
			}
		case section.Style != nil:
			spec.Styles = append(spec.Styles, StyleRule{
				Selector:     string(section.Style.Selector),
				Declarations: section.Style.Declarations(),
			})
		case section.Page != nil:
			page, err := c.page(section.Page)
			if err != nil {
				return nil, err
			}
			spec.Pages = append(spec.Pages, page)
		}
	}
	if len(spec.Pages) == 0 {
		return nil, fmt.Errorf("%w: story %q has no page", ErrInvalidStory, doc.Name)
	}
	for i, p := range spec.Pages {
		for _, el := range p.Elements {
			if el.Kind == KindButton && el.Target >= len(spec.Pages) {
				return nil, fmt.Errorf("%w: page %d button %q targets page %d of %d", ErrInvalidStory, i, el.Text, el.Target, len(spec.Pages))
			}
		}
	}
	return spec, nil
}

type compiler struct {
	data   any
	strict bool
}

func (c *compiler) bind(text string) (string, error) {
	if c.strict {
		return binding.InterpolateStrict(text, c.data)
	}
	return binding.Interpolate(text, c.data), nil
}

func (c *compiler) meta(section *dsl.MetaSection) (Meta, error) {
	var meta Meta
	if section.Block == nil {
		return meta, nil
	}
	for _, stmt := range section.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := stmt.Assignment.Value
		text, err := c.bind(val.Text())
		if err != nil {
			return meta, err
		}
		switch strings.ToLower(stmt.Assignment.Key) {
		case "title":
			meta.Title = text
		case "author":
			meta.Author = text
		case "subject":
			meta.Subject = text
		case "keywords":
			meta.Keywords = valueToStringSlice(val)
		}
	}
	return meta, nil
}

func applyRibbon(r *Ribbon, section *dsl.RibbonSection) error {
	for key, raw := range section.Params() {
		v, err := parseNumber(raw)
		if err != nil {
			return fmt.Errorf("%s: ribbon %s: %w", section.Pos, key, err)
		}
		switch key {
		case "width":
			r.ButtonWidth = v
		case "height":
			r.ButtonHeight = v
		case "gap":
			r.Gap = v
		case "top":
			r.Top = v
		case "pages":
			r.PagesTop = v
		default:
			return fmt.Errorf("%w: %s: unknown ribbon parameter %q", ErrInvalidStory, section.Pos, key)
		}
	}
	if !(r.ButtonWidth > 0) || !(r.ButtonHeight > 0) {
		return fmt.Errorf("%w: %s: ribbon buttons must have a positive size", ErrInvalidStory, section.Pos)
	}
	return nil
}

func (c *compiler) page(section *dsl.PageSection) (PageSpec, error) {
	title, err := c.bind(string(section.Title))
	if err != nil {
		return PageSpec{}, fmt.Errorf("%s: %w", section.Pos, err)
	}
	page := PageSpec{Title: title}
	for key, raw := range section.Params() {
		v, err := parseNumber(raw)
		if err != nil {
			return PageSpec{}, fmt.Errorf("%s: page %s: %w", section.Pos, key, err)
		}
		switch key {
		case "x":
			page.X = v
		case "y":
			page.Y = v
		default:
			return PageSpec{}, fmt.Errorf("%w: %s: unknown page parameter %q", ErrInvalidStory, section.Pos, key)
		}
	}
	if section.Block == nil {
		return page, nil
	}
	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil {
			continue
		}
		el, err := c.element(stmt.Command)
		if err != nil {
			return PageSpec{}, err
		}
		page.Elements = append(page.Elements, el)
	}
	return page, nil
}

// numeric 列出各图元需要解析为数值的参数，其余参数原样作为 SVG 属性输出。
var numeric = map[ElementKind]map[string]bool{
	KindText:   {"x": true, "y": true, "wrap": true},
	KindButton: {"x": true, "y": true, "width": true, "height": true, "target": true},
}

func (c *compiler) element(cmd *dsl.Command) (Element, error) {
	kind := ElementKind(cmd.Name)
	switch kind {
	case KindRect, KindCircle, KindLine, KindText, KindButton:
	default:
		return Element{}, fmt.Errorf("%w: %s: unknown page command %q", ErrInvalidStory, cmd.Pos, cmd.Name)
	}
	el := Element{Kind: kind, Attrs: map[string]string{}, Target: -1}
	text, err := c.bind(cmd.Text())
	if err != nil {
		return Element{}, fmt.Errorf("%s: %w", cmd.Pos, err)
	}
	el.Text = text

	for key, raw := range cmd.Params() {
		if !numeric[kind][key] {
			el.Attrs[key] = raw
			continue
		}
		if key == "target" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return Element{}, fmt.Errorf("%w: %s: button target %q", ErrInvalidStory, cmd.Pos, raw)
			}
			el.Target = n
			continue
		}
		v, err := parseNumber(raw)
		if err != nil {
			return Element{}, fmt.Errorf("%s: %s %s: %w", cmd.Pos, cmd.Name, key, err)
		}
		switch key {
		case "x":
			el.X = v
		case "y":
			el.Y = v
		case "width":
			el.Width = v
		case "height":
			el.Height = v
		case "wrap":
			el.Wrap = v
		}
	}
	if kind == KindButton && (!(el.Width > 0) || !(el.Height > 0)) {
		return Element{}, fmt.Errorf("%w: %s: button needs width and height", ErrInvalidStory, cmd.Pos)
	}
	if _, ok := el.Attrs["transform"]; ok && (kind == KindButton || (kind == KindText && el.Wrap > 0)) {
		return Element{}, fmt.Errorf("%w: %s: %s is positioned by x and y, transform is not allowed", ErrInvalidStory, cmd.Pos, cmd.Name)
	}
	if kind == KindText && el.Wrap < 0 {
		return Element{}, fmt.Errorf("%w: %s: negative wrap width", ErrInvalidStory, cmd.Pos)
	}
	return el, nil
}

// parseNumber 接受 "150"、"150px"、"12pt" 等长度；em 按默认字号 16px 折算。
func parseNumber(raw string) (float64, error) {
	l, ok := layout.ParseLength(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidStory, raw)
	}
	return l.ToPx(16), nil
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := item.Text(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := val.Text(); s != "" {
		return []string{s}
	}
	return nil
}
