package story

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/draw"
	"github.com/ByLCY/datastory/layout"
)

// View 是可以挂到父节点下并切换显示状态的部件。
type View interface {
	// Create 在 parent 下构建部件；show 为初始显示状态。
	Create(parent *dom.Node, show bool) error
	// Show 切换显示状态。
	Show(show bool)
}

// PageView 绘制一页故事内容。
type PageView struct {
	spec   PageSpec
	index  int
	onNav  func(target int)
	group  *dom.Node
	button []*draw.Button
}

var _ View = (*PageView)(nil)

// NewPageView 创建第 index 页的视图；页内按钮点击时以目标页序号调用 onNav。
func NewPageView(spec PageSpec, index int, onNav func(target int)) *PageView {
	return &PageView{spec: spec, index: index, onNav: onNav}
}

// Group 返回页面的根 g 节点，Create 之前为 nil。
func (v *PageView) Group() *dom.Node { return v.group }

// Buttons 返回页内按钮。
func (v *PageView) Buttons() []*draw.Button { return v.button }

// Create 在 parent 下追加 class 为 story-page<N> 的 g，并按顺序绘制各图元；失败时不留下任何节点。
func (v *PageView) Create(parent *dom.Node, show bool) error {
	if parent == nil {
		return fmt.Errorf("%w: nil parent", dom.ErrElementCreation)
	}
	g, err := parent.Append("g")
	if err != nil {
		return err
	}
	g.AddClass(PageClass, PageClass+strconv.Itoa(v.index))
	g.SetAttr(IndexAttr, strconv.Itoa(v.index))
	if v.spec.X != 0 || v.spec.Y != 0 {
		g.SetTranslate(v.spec.X, v.spec.Y)
	}
	v.group = g
	for i, el := range v.spec.Elements {
		if err := v.draw(el, i); err != nil {
			g.Remove()
			v.group, v.button = nil, nil
			return fmt.Errorf("page %d element %d (%s): %w", v.index, i, el.Kind, err)
		}
	}
	v.Show(show)
	return nil
}

// Show 通过 display 属性切换页面可见性。
func (v *PageView) Show(show bool) {
	if v.group == nil {
		return
	}
	if show {
		v.group.SetAttr("display", "block")
	} else {
		v.group.SetAttr("display", "none")
	}
}

func (v *PageView) draw(el Element, i int) error {
	switch el.Kind {
	case KindButton:
		var onClick func()
		if el.Target >= 0 && v.onNav != nil {
			target := el.Target
			onClick = func() { v.onNav(target) }
		}
		if _, ok := el.Attrs["transform"]; ok {
			return fmt.Errorf("%w: button position is set by x and y, not transform", ErrInvalidArgument)
		}
		id := el.Attrs["id"]
		if id == "" {
			id = fmt.Sprintf("%s%d-button-%d", PageClass, v.index, i)
		}
		// 额外的 class 与 story-button 合并，并在测量标签之前写入。
		class := strings.TrimSpace(ButtonClass + " " + el.Attrs["class"])
		btn, err := draw.DrawTextButton(v.group, el.X, el.Y, el.Width, el.Height, el.Text, class, id, onClick)
		if err != nil {
			return err
		}
		if el.Target >= 0 {
			btn.Group.SetAttr(PageAttr, strconv.Itoa(el.Target))
		}
		for k, val := range el.Attrs {
			switch k {
			case "id", "class":
			default:
				btn.Group.SetAttr(k, val)
			}
		}
		v.button = append(v.button, btn)
		return nil
	case KindText:
		return v.drawText(el)
	default:
		n, err := v.group.Append(string(el.Kind))
		if err != nil {
			return err
		}
		for k, val := range el.Attrs {
			n.SetAttr(k, val)
		}
		if el.Text != "" {
			title, err := n.Append("title")
			if err != nil {
				return err
			}
			title.SetText(el.Text)
		}
		return nil
	}
}

// drawText 输出单行文本；给出 wrap 时文字在 (X, Y) 起、宽 wrap 的盒子内居中折行。
func (v *PageView) drawText(el Element) error {
	if _, ok := el.Attrs["transform"]; ok && el.Wrap > 0 {
		return fmt.Errorf("%w: wrapped text is positioned by x and y, not transform", ErrInvalidArgument)
	}
	parent := v.group
	x := el.X
	if el.Wrap > 0 {
		box, err := parent.Append("g")
		if err != nil {
			return err
		}
		box.SetTranslate(el.X, el.Y)
		parent, x = box, 0
	}
	text, err := parent.Append("text")
	if err != nil {
		return err
	}
	for k, val := range el.Attrs {
		text.SetAttr(k, val)
	}
	if el.Wrap > 0 {
		text.SetAttrFloat("x", el.Wrap/2)
		text.SetAttrFloat("y", 0)
		text.SetStyle("text-anchor", "middle")
		text.SetText(el.Text)
		_, err := layout.Wrap(text, el.Wrap)
		return err
	}
	text.SetAttrFloat("x", x)
	text.SetAttrFloat("y", el.Y)
	text.SetText(el.Text)
	return nil
}

// PageCtrl 持有页面视图并记录其显示状态。
type PageCtrl struct {
	View  View
	Shown bool
}

// CreateView 构建视图并记录初始显示状态。
func (c *PageCtrl) CreateView(parent *dom.Node, show bool) error {
	if err := c.View.Create(parent, show); err != nil {
		return err
	}
	c.Shown = show
	return nil
}

// Show 切换显示状态。
func (c *PageCtrl) Show(show bool) {
	c.Shown = show
	c.View.Show(show)
}
