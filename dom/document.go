package dom

import (
	"errors"
	"fmt"

	"github.com/ByLCY/datastory/style"
)

// ErrNoMeasurer 表示文档没有配置文本测量后端。
var ErrNoMeasurer = errors.New("dom: no text measurer configured")

// Measurer 负责测量一段文本在给定字体下的渲染宽度（px）。
type Measurer interface {
	TextWidth(text string, font style.Font) (float64, error)
}

// Document 是一块可渲染的画布：根 svg 节点、样式表与测量后端。
type Document struct {
	root     *Node
	sheet    *style.Sheet
	measurer Measurer
	width    float64
	height   float64
}

// Option 配置 Document。
type Option func(*Document)

// WithMeasurer 指定文本测量后端。
func WithMeasurer(m Measurer) Option {
	return func(d *Document) { d.measurer = m }
}

// WithStylesheet 指定样式表。
func WithStylesheet(s *style.Sheet) Option {
	return func(d *Document) { d.sheet = s }
}

// NewDocument 创建宽高为 width×height（用户单位）的文档。
func NewDocument(width, height float64, opts ...Option) *Document {
	d := &Document{width: width, height: height, sheet: style.NewSheet()}
	for _, opt := range opts {
		opt(d)
	}
	root := &Node{tag: "svg", attrs: map[string]string{}, inline: map[string]string{}, doc: d}
	root.SetAttrFloat("width", width)
	root.SetAttrFloat("height", height)
	d.root = root
	return d
}

// Root 返回根 svg 节点。
func (d *Document) Root() *Node { return d.root }

// Size 返回画布尺寸。
func (d *Document) Size() (float64, float64) { return d.width, d.height }

// Sheet 返回样式表。
func (d *Document) Sheet() *style.Sheet { return d.sheet }

// Measurer 返回测量后端。
func (d *Document) Measurer() Measurer { return d.measurer }

// ComputedStyle 返回已挂载节点的计算样式。
func (d *Document) ComputedStyle(n *Node) (style.Computed, error) {
	if err := d.checkAttached(n); err != nil {
		return nil, err
	}
	return d.sheet.Compute(n), nil
}

// ComputedTextLength 测量节点当前文本内容的渲染宽度，等价于 SVG 的 getComputedTextLength。
func (d *Document) ComputedTextLength(n *Node) (float64, error) {
	cs, err := d.ComputedStyle(n)
	if err != nil {
		return 0, err
	}
	if d.measurer == nil {
		return 0, ErrNoMeasurer
	}
	w, err := d.measurer.TextWidth(n.Text(), cs.Font())
	if err != nil {
		return 0, fmt.Errorf("dom: measure <%s>: %w", n.tag, err)
	}
	return w, nil
}

// Visible 判断节点及其祖先均未设置 display:none。
func (d *Document) Visible(n *Node) bool {
	for p := n; p != nil; p = p.parent {
		cs, err := d.ComputedStyle(p)
		if err != nil {
			return false
		}
		if cs["display"] == "none" {
			return false
		}
	}
	return true
}

// FindByID 在整棵树中查找 id 对应的节点。
func (d *Document) FindByID(id string) *Node {
	var found *Node
	d.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func (d *Document) checkAttached(n *Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrDetached)
	}
	if n.doc != d || !n.Attached() {
		return fmt.Errorf("%w: <%s id=%q>", ErrDetached, n.tag, n.id)
	}
	return nil
}
