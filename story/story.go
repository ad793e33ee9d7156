// Package story builds an interactive data story: a ribbon of buttons above a stack of
// overlapping pages, only one of which is shown at a time.
package story

import (
	"fmt"
	"strconv"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/draw"
	"github.com/ByLCY/datastory/layout"
)

// 渲染树上的 class、id 与 data 属性约定，HTML 导出的切换脚本依赖它们。
const (
	RibbonClass    = "story-button-ribbon"
	ButtonClass    = "story-button"
	PageClass      = "story-page"
	ClickedClass   = "clicked"
	ButtonIDPrefix = "viz-story-button-"
	// PageAttr 标记按钮点击后显示的页序号。
	PageAttr = "data-page"
	// IndexAttr 标记页面自身的序号。
	IndexAttr = "data-story-page"
)

// ErrInvalidArgument 与 layout.ErrInvalidArgument 相同。
var ErrInvalidArgument = layout.ErrInvalidArgument

// StoryCtrl 管理按钮条与各页，保证任一时刻只有一页可见、只有对应按钮处于 clicked 状态。
type StoryCtrl struct {
	spec    *Spec
	pages   []*PageCtrl
	buttons []*draw.Button
	group   *dom.Node
	ribbon  *dom.Node
	canvas  *dom.Node
	current int
	navErr  error
}

// New 为 spec 创建控制器；spec 至少需要一页。
func New(spec *Spec) (*StoryCtrl, error) {
	if spec == nil || len(spec.Pages) == 0 {
		return nil, fmt.Errorf("%w: story has no page", ErrInvalidArgument)
	}
	s := &StoryCtrl{spec: spec, current: -1}
	for i, p := range spec.Pages {
		s.pages = append(s.pages, &PageCtrl{View: NewPageView(p, i, s.navigate)})
	}
	return s, nil
}

// navigate 是按钮的点击回调。点击没有返回值，失败记录在 NavErr 中。
func (s *StoryCtrl) navigate(target int) {
	s.navErr = s.SelectPage(target)
}

// NavErr 返回最近一次点击切换页面的错误；成功切换后为 nil。
func (s *StoryCtrl) NavErr() error { return s.navErr }

// Create 在 parent 下构建按钮条与页面，并显示第一页。
// 按钮条按 parent 的计算宽度水平居中；任何一步失败都会移除已创建的节点。
func (s *StoryCtrl) Create(parent *dom.Node) error {
	if s.group != nil {
		return fmt.Errorf("%w: story already created", ErrInvalidArgument)
	}
	width, err := layout.PxValue(parent, "width")
	if err != nil {
		return fmt.Errorf("story: canvas width: %w", err)
	}
	g, err := parent.Append("g")
	if err != nil {
		return err
	}
	s.group = g
	if err := s.create(width); err != nil {
		g.Remove()
		s.group, s.ribbon, s.canvas, s.buttons = nil, nil, nil, nil
		return err
	}
	return s.SelectPage(0)
}

func (s *StoryCtrl) create(width float64) error {
	if err := s.createButtonRibbon(width); err != nil {
		return err
	}
	return s.createPages()
}

func (s *StoryCtrl) createButtonRibbon(width float64) error {
	r := s.spec.Ribbon
	offset := (width - r.Length(len(s.pages))) / 2

	ribbon, err := s.group.Append("g")
	if err != nil {
		return err
	}
	ribbon.AddClass(RibbonClass)
	ribbon.SetTranslate(offset, r.Top)
	s.ribbon = ribbon

	for i, p := range s.spec.Pages {
		btn, err := draw.DrawTextButton(ribbon, r.ButtonX(i), 0, r.ButtonWidth, r.ButtonHeight,
			p.Title, ButtonClass, ButtonIDPrefix+strconv.Itoa(i+1),
			func() { s.navigate(i) })
		if err != nil {
			return fmt.Errorf("ribbon button %d: %w", i+1, err)
		}
		btn.Group.SetAttr(PageAttr, strconv.Itoa(i))
		s.buttons = append(s.buttons, btn)
	}
	return nil
}

func (s *StoryCtrl) createPages() error {
	canvas, err := s.group.Append("g")
	if err != nil {
		return err
	}
	canvas.SetTranslate(0, s.spec.Ribbon.PagesTop)
	s.canvas = canvas
	for _, p := range s.pages {
		if err := p.CreateView(canvas, false); err != nil {
			return err
		}
	}
	return nil
}

// SelectPage 隐藏所有页面后显示第 i 页，并把第 i 个按钮设为 clicked。
func (s *StoryCtrl) SelectPage(i int) error {
	if i < 0 || i >= len(s.pages) {
		return fmt.Errorf("%w: page %d out of range [0, %d)", ErrInvalidArgument, i, len(s.pages))
	}
	for _, p := range s.pages {
		p.Show(false)
	}
	s.pages[i].Show(true)
	s.SetButtonState(i, true)
	s.current = i
	return nil
}

// SetButtonState 清除所有按钮的 clicked 状态，然后按 on 设置第 i 个按钮。
func (s *StoryCtrl) SetButtonState(i int, on bool) {
	for _, b := range s.buttons {
		b.Group.Classed(ClickedClass, false)
	}
	if i >= 0 && i < len(s.buttons) {
		s.buttons[i].Group.Classed(ClickedClass, on)
	}
}

// Current 返回当前显示的页序号；Create 之前为 -1。
func (s *StoryCtrl) Current() int { return s.current }

// Len 返回页数。
func (s *StoryCtrl) Len() int { return len(s.pages) }

// Page 返回第 i 页的控制器。
func (s *StoryCtrl) Page(i int) *PageCtrl {
	if i < 0 || i >= len(s.pages) {
		return nil
	}
	return s.pages[i]
}

// Buttons 返回按钮条上的按钮。
func (s *StoryCtrl) Buttons() []*draw.Button { return s.buttons }

// Group 返回故事的根 g 节点。
func (s *StoryCtrl) Group() *dom.Node { return s.group }

// Ribbon 返回按钮条节点。
func (s *StoryCtrl) Ribbon() *dom.Node { return s.ribbon }

// Spec 返回编译后的故事。
func (s *StoryCtrl) Spec() *Spec { return s.spec }
