package draw

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/layout"
	"github.com/ByLCY/datastory/style"
)

type runeMeasurer struct{ err error }

func (m runeMeasurer) TextWidth(text string, _ style.Font) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return float64(utf8.RuneCountInString(text)) * 10, nil
}

func newDoc(m dom.Measurer) *dom.Document {
	return dom.NewDocument(1200, 800, dom.WithMeasurer(m))
}

func TestDrawTextButtonStructure(t *testing.T) {
	doc := newDoc(runeMeasurer{})
	btn, err := DrawTextButton(doc.Root(), 400, 10, 150, 100, "Which state takes highest loans", "story-button", "viz-story-button-2", nil)
	if err != nil {
		t.Fatalf("DrawTextButton: %v", err)
	}
	g := btn.Group
	if g.ID() != "viz-story-button-2" || !g.HasClass("story-button") {
		t.Fatalf("按钮组 id/class 不正确: %s %v", g.ID(), g.Classes())
	}
	if x, y, _ := g.Translate(); x != 400 || y != 10 {
		t.Fatalf("按钮组平移期望 (400,10)，实际 (%g,%g)", x, y)
	}
	kids := g.Children()
	if len(kids) != 2 || kids[0].Tag() != "rect" || kids[1].Tag() != "text" {
		t.Fatalf("按钮组应恰好包含 rect 与 text")
	}
	want := map[string]float64{"width": 150, "height": 100, "rx": DefaultCornerRx, "ry": DefaultCornerRy}
	for name, v := range want {
		if got, _ := btn.Rect.AttrFloat(name); got != v {
			t.Fatalf("rect %s 期望 %g，实际 %g", name, v, got)
		}
	}
	if x, _ := btn.Label.AttrFloat("x"); x != 75 {
		t.Fatalf("文字 x 期望 75，实际 %g", x)
	}
	if y, _ := btn.Label.AttrFloat("y"); y != 50 {
		t.Fatalf("文字 y 期望 50，实际 %g", y)
	}
	if v, _ := btn.Label.StyleValue("text-anchor"); v != "middle" {
		t.Fatalf("text-anchor 期望 middle，实际 %q", v)
	}
	if len(btn.Paragraph.Lines) != 3 || len(btn.Label.Children()) != 3 {
		t.Fatalf("标签应折为 3 行")
	}
	if tr := btn.Paragraph.Translate; tr > -23.999 || tr < -24.001 {
		t.Fatalf("标签平移期望 -24，实际 %g", btn.Paragraph.Translate)
	}
}

func TestDrawTextButtonCorners(t *testing.T) {
	doc := newDoc(runeMeasurer{})
	btn, err := DrawTextButton(doc.Root(), 0, 0, 80, 40, "ok", "b", "b1", nil, WithCorners(5, 5))
	if err != nil {
		t.Fatalf("DrawTextButton: %v", err)
	}
	if rx, _ := btn.Rect.AttrFloat("rx"); rx != 5 {
		t.Fatalf("rx 期望 5，实际 %g", rx)
	}
}

func TestDrawTextButtonClick(t *testing.T) {
	doc := newDoc(runeMeasurer{})
	clicks := 0
	btn, err := DrawTextButton(doc.Root(), 0, 0, 150, 100, "Next", "b", "next", func() { clicks++ })
	if err != nil {
		t.Fatalf("DrawTextButton: %v", err)
	}
	if err := doc.Click("next"); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if clicks != 1 {
		t.Fatalf("点击回调期望执行 1 次，实际 %d", clicks)
	}
	// 点击文字不会触发：回调只挂在矩形上。
	if handled, _ := doc.Dispatch(btn.Label, dom.EventClick); handled {
		t.Fatalf("文字不应响应点击")
	}

	btn.Remove()
	if len(doc.Root().Children()) != 0 {
		t.Fatalf("Remove 后按钮组应被移除")
	}
	if err := doc.Click("next"); !errors.Is(err, dom.ErrNotFound) {
		t.Fatalf("移除后点击期望 ErrNotFound，实际 %v", err)
	}
	if clicks != 1 {
		t.Fatalf("移除后回调不应再执行")
	}
}

func TestDrawTextButtonFailureLeavesNoGroup(t *testing.T) {
	doc := newDoc(runeMeasurer{err: errors.New("no font")})
	if _, err := DrawTextButton(doc.Root(), 0, 0, 150, 100, "Next", "b", "x", nil); err == nil {
		t.Fatalf("测量失败时应返回错误")
	}
	if len(doc.Root().Children()) != 0 {
		t.Fatalf("失败后不应残留按钮组")
	}
	if doc.FindByID("x") != nil {
		t.Fatalf("失败后不应能找到按钮")
	}
}

// TestDrawTextButtonFontSizeMismatch 标签字号不是 px 值时返回 ErrFormatMismatch，parent 保持原样。
func TestDrawTextButtonFontSizeMismatch(t *testing.T) {
	sheet := style.NewSheet()
	if err := sheet.Add(".story-button text", map[string]string{"font-size": "larger"}); err != nil {
		t.Fatalf("sheet.Add: %v", err)
	}
	doc := dom.NewDocument(1200, 800, dom.WithMeasurer(runeMeasurer{}), dom.WithStylesheet(sheet))
	before, err := doc.SVGString()
	if err != nil {
		t.Fatalf("SVGString: %v", err)
	}
	if _, err := DrawTextButton(doc.Root(), 0, 0, 150, 100, "Next page", "story-button", "next", nil); !errors.Is(err, layout.ErrFormatMismatch) {
		t.Fatalf("期望 ErrFormatMismatch，实际 %v", err)
	}
	after, err := doc.SVGString()
	if err != nil {
		t.Fatalf("SVGString: %v", err)
	}
	if after != before {
		t.Fatalf("失败后 parent 应保持原样:\n%s\n%s", before, after)
	}
}

func TestDrawTextButtonRemovedParent(t *testing.T) {
	doc := newDoc(runeMeasurer{})
	g, _ := doc.Root().Append("g")
	g.Remove()
	if _, err := DrawTextButton(g, 0, 0, 150, 100, "Next", "b", "x", nil); !errors.Is(err, ErrElementCreation) {
		t.Fatalf("已移除的父节点期望 ErrElementCreation，实际 %v", err)
	}
	if _, err := DrawTextButton(nil, 0, 0, 150, 100, "Next", "b", "x", nil); !errors.Is(err, ErrElementCreation) {
		t.Fatalf("nil 父节点期望 ErrElementCreation，实际 %v", err)
	}
}

func TestDrawTextButtonInvalidSize(t *testing.T) {
	doc := newDoc(runeMeasurer{})
	if _, err := DrawTextButton(doc.Root(), 0, 0, 0, 100, "Next", "b", "x", nil); !errors.Is(err, layout.ErrInvalidArgument) {
		t.Fatalf("宽度为 0 期望 ErrInvalidArgument，实际 %v", err)
	}
	if len(doc.Root().Children()) != 0 {
		t.Fatalf("参数错误时不应创建节点")
	}
}
