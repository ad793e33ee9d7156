package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/style"
)

// ItemKind 区分扁平化后的图元。
type ItemKind int

const (
	ItemRect ItemKind = iota
	ItemCircle
	ItemLine
	ItemText
)

// TextRun 是一行已定位的文本；X、Y 为锚点与基线的绝对坐标（px）。
type TextRun struct {
	Text string
	X    float64
	Y    float64
}

// Item 是绝对坐标下的一个可绘制图元，坐标与尺寸单位均为 px。
type Item struct {
	Kind        ItemKind
	X, Y        float64
	W, H        float64
	Rx, Ry      float64
	X2, Y2      float64
	R           float64
	Fill        *color.RGBA
	Stroke      *color.RGBA
	StrokeWidth float64
	Font        style.Font
	Anchor      string // start | middle | end
	Baseline    string // alphabetic | middle
	Runs        []TextRun
}

// Flatten 遍历文档中可见的节点，累加 translate 变换，输出按绘制顺序排列的图元。
func Flatten(doc *dom.Document) ([]Item, error) {
	var items []Item
	var walk func(n *dom.Node, ox, oy float64) error
	walk = func(n *dom.Node, ox, oy float64) error {
		cs, err := doc.ComputedStyle(n)
		if err != nil {
			return err
		}
		if cs["display"] == "none" {
			return nil
		}
		tx, ty, ok := n.Translate()
		if !ok {
			return fmt.Errorf("不支持的 transform: %q", attr(n, "transform"))
		}
		ox += tx
		oy += ty

		switch n.Tag() {
		case "rect":
			it := Item{Kind: ItemRect, X: ox + num(n, "x"), Y: oy + num(n, "y"), W: num(n, "width"), H: num(n, "height")}
			it.Rx, it.Ry = cornerRadii(n, it.W, it.H)
			paint(&it, cs)
			if cs["visibility"] != "hidden" {
				items = append(items, it)
			}
			return nil
		case "circle":
			it := Item{Kind: ItemCircle, X: ox + num(n, "cx"), Y: oy + num(n, "cy"), R: num(n, "r")}
			paint(&it, cs)
			items = append(items, it)
			return nil
		case "line":
			it := Item{Kind: ItemLine, X: ox + num(n, "x1"), Y: oy + num(n, "y1"), X2: ox + num(n, "x2"), Y2: oy + num(n, "y2")}
			paint(&it, cs)
			items = append(items, it)
			return nil
		case "text":
			it := textItem(n, cs, ox, oy)
			if len(it.Runs) > 0 && cs["visibility"] != "hidden" {
				items = append(items, it)
			}
			return nil
		case "title":
			return nil
		}
		for _, c := range n.Children() {
			if err := walk(c, ox, oy); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc.Root(), 0, 0); err != nil {
		return nil, err
	}
	return items, nil
}

func textItem(n *dom.Node, cs style.Computed, ox, oy float64) Item {
	font := cs.Font()
	it := Item{
		Kind:     ItemText,
		Font:     font,
		Anchor:   valueOr(cs["text-anchor"], "start"),
		Baseline: valueOr(cs["alignment-baseline"], "alphabetic"),
	}
	paint(&it, cs)
	x, y := num(n, "x"), num(n, "y")
	dy := emOffset(attr(n, "dy"), font.SizePx)
	if t := strings.TrimSpace(n.OwnText()); t != "" {
		it.Runs = append(it.Runs, TextRun{Text: t, X: ox + x, Y: oy + y + dy})
	}
	// tspan 的 dy 在 SVG 中是相对前一个字符位置的偏移；这里的 tspan 都显式给出 y，
	// 因此与 d3 折行的写法一致，dy 直接相对 y 计算。
	for _, ts := range n.Children() {
		if ts.Tag() != "tspan" {
			continue
		}
		t := strings.TrimSpace(ts.Text())
		if t == "" {
			continue
		}
		tx, ty := x, y
		if _, ok := ts.Attr("x"); ok {
			tx = num(ts, "x")
		}
		if _, ok := ts.Attr("y"); ok {
			ty = num(ts, "y")
		}
		it.Runs = append(it.Runs, TextRun{Text: t, X: ox + tx, Y: oy + ty + emOffset(attr(ts, "dy"), font.SizePx)})
	}
	return it
}

func paint(it *Item, cs style.Computed) {
	if c, ok := ParseColor(cs["fill"]); ok {
		it.Fill = &c
	}
	if c, ok := ParseColor(cs["stroke"]); ok {
		it.Stroke = &c
	}
	if v, ok := cs["stroke-width"]; ok {
		it.StrokeWidth, _ = dom.ParseFloatPrefix(v)
	}
	if it.Stroke != nil && it.StrokeWidth <= 0 {
		it.StrokeWidth = 1
	}
	if op, err := strconv.ParseFloat(cs["opacity"], 64); err == nil && op < 1 {
		for _, c := range []*color.RGBA{it.Fill, it.Stroke} {
			if c != nil {
				c.A = uint8(float64(c.A) * op)
			}
		}
	}
}

// cornerRadii 按 SVG 规则补齐并截断 rx/ry。
func cornerRadii(n *dom.Node, w, h float64) (float64, float64) {
	_, hasRx := n.Attr("rx")
	_, hasRy := n.Attr("ry")
	rx, ry := num(n, "rx"), num(n, "ry")
	switch {
	case hasRx && !hasRy:
		ry = rx
	case hasRy && !hasRx:
		rx = ry
	}
	if rx > w/2 {
		rx = w / 2
	}
	if ry > h/2 {
		ry = h / 2
	}
	return rx, ry
}

func emOffset(v string, emPx float64) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	f, err := dom.ParseFloatPrefix(v)
	if err != nil {
		return 0
	}
	if strings.HasSuffix(v, "em") {
		return f * emPx
	}
	// 无单位的 dy 按 d3 折行的约定视为 em。
	if !strings.HasSuffix(v, "px") {
		return f * emPx
	}
	return f
}

func num(n *dom.Node, name string) float64 {
	v, err := n.AttrFloat(name)
	if err != nil {
		return 0
	}
	return v
}

func attr(n *dom.Node, name string) string {
	v, _ := n.Attr(name)
	return v
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

var namedColors = map[string]color.RGBA{
	"black":     {0, 0, 0, 255},
	"white":     {255, 255, 255, 255},
	"gray":      {128, 128, 128, 255},
	"grey":      {128, 128, 128, 255},
	"lightgray": {211, 211, 211, 255},
	"red":       {255, 0, 0, 255},
	"green":     {0, 128, 0, 255},
	"blue":      {0, 0, 255, 255},
	"orange":    {255, 165, 0, 255},
	"steelblue": {70, 130, 180, 255},
}

// ParseColor 解析 "#rgb"、"#rrggbb" 与少量颜色名；"none" 与无法识别的值返回 false。
func ParseColor(v string) (color.RGBA, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if !strings.HasPrefix(v, "#") {
		return color.RGBA{}, false
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return color.RGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}
