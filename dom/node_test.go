package dom

import (
	"errors"
	"strings"
	"testing"
)

func TestAppendRespectsContentModel(t *testing.T) {
	doc := NewDocument(100, 100)
	g, err := doc.Root().Append("g")
	if err != nil {
		t.Fatalf("append g: %v", err)
	}
	text, err := g.Append("text")
	if err != nil {
		t.Fatalf("append text: %v", err)
	}
	if _, err := text.Append("rect"); !errors.Is(err, ErrElementCreation) {
		t.Fatalf("text 下创建 rect 期望 ErrElementCreation，实际 %v", err)
	}
	if _, err := g.Append("tspan"); !errors.Is(err, ErrElementCreation) {
		t.Fatalf("g 下创建 tspan 期望 ErrElementCreation，实际 %v", err)
	}
	if _, err := NewElement("div"); !errors.Is(err, ErrElementCreation) {
		t.Fatalf("未知标签期望 ErrElementCreation，实际 %v", err)
	}
	if !text.Attached() || text.Document() != doc {
		t.Fatalf("text 应挂载到文档")
	}
}

func TestAppendChildRejectsCycle(t *testing.T) {
	doc := NewDocument(100, 100)
	a, _ := doc.Root().Append("g")
	b, _ := a.Append("g")
	if err := b.AppendChild(a); !errors.Is(err, ErrElementCreation) {
		t.Fatalf("成环期望 ErrElementCreation，实际 %v", err)
	}
}

func TestRemoveDetachesSubtree(t *testing.T) {
	doc := NewDocument(100, 100)
	g, _ := doc.Root().Append("g")
	rect, _ := g.Append("rect")
	rect.On(EventClick, func(*Event) {})
	g.Remove()
	if g.Attached() || rect.Attached() {
		t.Fatalf("移除后子树不应处于挂载状态")
	}
	if rect.HasHandler(EventClick) {
		t.Fatalf("移除后回调应被注销")
	}
	if _, err := g.Append("rect"); !errors.Is(err, ErrElementCreation) {
		t.Fatalf("向已移除节点追加期望 ErrElementCreation，实际 %v", err)
	}
	if len(doc.Root().Children()) != 0 {
		t.Fatalf("根节点不应再包含 g")
	}
}

func TestAttrsAndClasses(t *testing.T) {
	n, _ := NewElement("g")
	n.SetAttr("class", "a b").AddClass("b", "c").RemoveClass("a")
	if got := strings.Join(n.Classes(), " "); got != "b c" {
		t.Fatalf("class 期望 \"b c\"，实际 %q", got)
	}
	n.Classed("clicked", true)
	if !n.HasClass("clicked") {
		t.Fatalf("Classed(true) 未添加 class")
	}
	n.Classed("clicked", false)
	if n.HasClass("clicked") {
		t.Fatalf("Classed(false) 未移除 class")
	}
	n.SetAttr("id", " page ")
	if n.ID() != "page" {
		t.Fatalf("id 期望 page，实际 %q", n.ID())
	}
	n.SetAttr("dy", "0.8em")
	if v, err := n.AttrFloat("dy"); err != nil || v != 0.8 {
		t.Fatalf("AttrFloat(dy) 期望 0.8，实际 %g %v", v, err)
	}
	if _, err := n.AttrFloat("missing"); err == nil {
		t.Fatalf("缺失属性应返回错误")
	}
	n.SetStyle("textAnchor", "middle")
	if v, ok := n.StyleValue("text-anchor"); !ok || v != "middle" {
		t.Fatalf("camelCase 内联样式未归一化: %q", v)
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	n, _ := NewElement("g")
	if x, y, ok := n.Translate(); !ok || x != 0 || y != 0 {
		t.Fatalf("无 transform 时期望 (0,0,true)")
	}
	n.SetTranslate(225, -24.5)
	if x, y, ok := n.Translate(); !ok || x != 225 || y != -24.5 {
		t.Fatalf("translate 解析错误: %g %g %v", x, y, ok)
	}
	n.SetAttr("transform", "rotate(45)")
	if _, _, ok := n.Translate(); ok {
		t.Fatalf("rotate 不应被当作 translate")
	}
}

func TestSetTextReplacesChildren(t *testing.T) {
	doc := NewDocument(100, 100)
	text, _ := doc.Root().Append("text")
	a, _ := text.Append("tspan")
	a.SetText("one ")
	b, _ := text.Append("tspan")
	b.SetText("two")
	if text.Text() != "one two" {
		t.Fatalf("textContent 期望 \"one two\"，实际 %q", text.Text())
	}
	text.SetText("fresh")
	if len(text.Children()) != 0 || text.Text() != "fresh" || a.Attached() {
		t.Fatalf("SetText 应移除全部子节点")
	}
}

func TestSnapshotRestore(t *testing.T) {
	doc := NewDocument(100, 100)
	text, _ := doc.Root().Append("text")
	text.SetText("hello world")
	snap := text.Snapshot()

	text.SetText("")
	ts, _ := text.Append("tspan")
	ts.SetText("hello")
	text.SetTranslate(0, -8)

	snap.Restore()
	if text.Text() != "hello world" || len(text.Children()) != 0 {
		t.Fatalf("Restore 未恢复文本: %q", text.Text())
	}
	if _, ok := text.Attr("transform"); ok {
		t.Fatalf("Restore 未恢复属性")
	}
	if ts.Attached() {
		t.Fatalf("快照后新增的 tspan 应被销毁")
	}
}

func TestParseFloatPrefix(t *testing.T) {
	cases := map[string]float64{"0.8em": 0.8, " 12px": 12, "-3": -3, ".5": 0.5, "1e2x": 100}
	for in, want := range cases {
		got, err := ParseFloatPrefix(in)
		if err != nil || got != want {
			t.Fatalf("ParseFloatPrefix(%q) = %g, %v；期望 %g", in, got, err, want)
		}
	}
	if _, err := ParseFloatPrefix("em"); err == nil {
		t.Fatalf("非数字应返回错误")
	}
}

func TestWriteSVG(t *testing.T) {
	doc := NewDocument(300, 120)
	g, _ := doc.Root().Append("g")
	g.AddClass("story-page1").SetID("p1")
	text, _ := g.Append("text")
	text.SetAttr("x", "10")
	text.SetStyle("text-anchor", "middle")
	text.SetText("a < b")

	out, err := doc.SVGString()
	if err != nil {
		t.Fatalf("SVGString: %v", err)
	}
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" height="120" width="300">`,
		`<g id="p1" class="story-page1">`,
		`<text x="10" style="text-anchor: middle">a &lt; b</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("SVG 输出缺少 %s\n%s", want, out)
		}
	}
}
