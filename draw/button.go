// Package draw 提供由基础图元组合而成的可交互部件。
package draw

import (
	"fmt"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/layout"
)

// 按钮圆角的默认半径。
const (
	DefaultCornerRx = 20
	DefaultCornerRy = 30
)

// labelDY 是按钮文字的基线偏移（em）。
const labelDY = 0.8

// ErrElementCreation 与 dom.ErrElementCreation 相同，便于调用方只依赖 draw。
var ErrElementCreation = dom.ErrElementCreation

type buttonOptions struct {
	rx, ry float64
}

// ButtonOption 调整按钮外观。
type ButtonOption func(*buttonOptions)

// WithCorners 设置矩形圆角半径。
func WithCorners(rx, ry float64) ButtonOption {
	return func(o *buttonOptions) {
		o.rx = rx
		o.ry = ry
	}
}

// Button 是 DrawTextButton 创建的部件；调用方持有它并负责其生命周期。
type Button struct {
	Group     *dom.Node
	Rect      *dom.Node
	Label     *dom.Node
	Paragraph *layout.WrappedParagraph
}

// Remove 将按钮从渲染树上移除，点击回调随之注销。
func (b *Button) Remove() {
	if b != nil && b.Group != nil {
		b.Group.Remove()
	}
}

// DrawTextButton 在 parent 中 (x, y) 处绘制 w×h 的文字按钮：圆角矩形响应点击，文字在矩形内居中并自动折行。
// 任何一步失败都会把已创建的节点整体移除，parent 保持原样。
func DrawTextButton(parent *dom.Node, x, y, w, h float64, text, class, id string, onClick func(), opts ...ButtonOption) (*Button, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: nil parent", ErrElementCreation)
	}
	if !(w > 0) || !(h > 0) {
		return nil, fmt.Errorf("%w: button size %gx%g", layout.ErrInvalidArgument, w, h)
	}
	o := buttonOptions{rx: DefaultCornerRx, ry: DefaultCornerRy}
	for _, opt := range opts {
		opt(&o)
	}

	group, err := parent.Append("g")
	if err != nil {
		return nil, fmt.Errorf("draw button %q: %w", id, err)
	}
	// class 与 id 先于文字写入，样式表中针对按钮的字号规则才会参与测量。
	group.AddClass(class)
	group.SetID(id)
	group.SetTranslate(x, y)

	btn := &Button{Group: group}
	if err := btn.compose(w, h, text, o, onClick); err != nil {
		group.Remove()
		return nil, fmt.Errorf("draw button %q: %w", id, err)
	}
	return btn, nil
}

func (b *Button) compose(w, h float64, text string, o buttonOptions, onClick func()) error {
	rect, err := b.Group.Append("rect")
	if err != nil {
		return err
	}
	rect.SetAttrFloat("width", w)
	rect.SetAttrFloat("height", h)
	rect.SetAttrFloat("rx", o.rx)
	rect.SetAttrFloat("ry", o.ry)
	if onClick != nil {
		rect.On(dom.EventClick, func(*dom.Event) { onClick() })
	}

	label, err := b.Group.Append("text")
	if err != nil {
		return err
	}
	label.SetAttrFloat("x", w/2)
	label.SetAttrFloat("y", h/2)
	label.SetAttrFloat("dy", labelDY)
	label.SetStyle("alignment-baseline", "middle")
	label.SetStyle("text-anchor", "middle")
	label.SetText(text)
	para, err := layout.Wrap(label, w)
	if err != nil {
		return err
	}
	b.Rect, b.Label, b.Paragraph = rect, label, para
	return nil
}
