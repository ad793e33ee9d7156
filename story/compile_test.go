package story

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ByLCY/datastory/binding"
	"github.com/ByLCY/datastory/dsl"
)

const navStory = `story Nav v1 {
  meta { title: "Loans ${year}" }
  ribbon width 120 height 80 gap 40
  style ".story-page rect" { fill: #ffffff }
  page "Total ${loans.total}" {
    rect x 0 y 0 width 600 height 300 rx 5 { "background" }
    text x 20 y 40 wrap 200 { "Borrowers in ${loans.top} take the highest loans" }
    button x 20 y 200 width 120 height 60 target 1 { "Next" }
  }
  page "Details" {
    text x 10 y 30 class note { "Page1" }
    button x 20 y 200 width 120 height 60 target 0 id back { "Back" }
  }
}`

func compileNav(t *testing.T, data any, strict bool) (*Spec, error) {
	t.Helper()
	ast, err := dsl.ParseString(navStory)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Compile(ast, data, CompileOptions{Strict: strict})
}

func navData(t *testing.T) any {
	t.Helper()
	var data any
	if err := json.Unmarshal([]byte(`{"year":2014,"loans":{"total":113937,"top":"CA"}}`), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return data
}

func TestCompileBindsData(t *testing.T) {
	spec, err := compileNav(t, navData(t), true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if spec.Meta.Title != "Loans 2014" {
		t.Fatalf("标题期望 Loans 2014，实际 %q", spec.Meta.Title)
	}
	if spec.Pages[0].Title != "Total 113937" {
		t.Fatalf("页标题期望 Total 113937，实际 %q", spec.Pages[0].Title)
	}
	if r := spec.Ribbon; r.ButtonWidth != 120 || r.ButtonHeight != 80 || r.Gap != 40 || r.Top != 10 || r.PagesTop != 150 {
		t.Fatalf("按钮条参数不正确: %+v", r)
	}
	if len(spec.Styles) != 1 || spec.Styles[0].Declarations["fill"] != "#ffffff" {
		t.Fatalf("样式规则不正确: %+v", spec.Styles)
	}
	els := spec.Pages[0].Elements
	if len(els) != 3 {
		t.Fatalf("第 0 页期望 3 个图元，实际 %d", len(els))
	}
	if els[0].Kind != KindRect || els[0].Attrs["width"] != "600" || els[0].Text != "background" {
		t.Fatalf("rect 不正确: %+v", els[0])
	}
	if els[1].Wrap != 200 || !strings.Contains(els[1].Text, "CA") {
		t.Fatalf("text 不正确: %+v", els[1])
	}
	if els[2].Kind != KindButton || els[2].Target != 1 || els[2].Width != 120 {
		t.Fatalf("button 不正确: %+v", els[2])
	}
}

func TestCompileStrictReportsUnresolved(t *testing.T) {
	if _, err := compileNav(t, nil, true); !errors.Is(err, binding.ErrUnresolved) {
		t.Fatalf("strict 模式期望 ErrUnresolved，实际 %v", err)
	}
	spec, err := compileNav(t, nil, false)
	if err != nil {
		t.Fatalf("非 strict 模式不应失败: %v", err)
	}
	if spec.Pages[0].Title != "Total ${loans.total}" {
		t.Fatalf("未解析的占位符应保留，实际 %q", spec.Pages[0].Title)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := map[string]string{
		"no page":           `story S { meta { title: "x" } }`,
		"unknown cmd":       `story S { page "p" { polygon points 1 } }`,
		"bad target":        `story S { page "p" { button width 10 height 10 target 4 { "x" } } }`,
		"no size":           `story S { page "p" { button target 0 { "x" } } }`,
		"bad number":        `story S { page "p" { text x abc { "x" } } }`,
		"ribbon key":        "story S {\n ribbon depth 3\n page \"p\" { }\n}",
		"page parameter":    `story S { page "p" z 3 { } }`,
		"button transform":  `story S { page "p" { button width 10 height 10 transform "translate(1, 2)" { "x" } } }`,
		"wrapped transform": `story S { page "p" { text wrap 100 transform "rotate(90)" { "x" } } }`,
	}
	for name, src := range cases {
		ast, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: parse: %v", name, err)
		}
		if _, err := Compile(ast, nil, CompileOptions{}); !errors.Is(err, ErrInvalidStory) {
			t.Fatalf("%s: 期望 ErrInvalidStory，实际 %v", name, err)
		}
	}
}

func TestPageButtonsNavigate(t *testing.T) {
	spec, err := compileNav(t, navData(t), false)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	doc, ctrl, err := Build(spec, Canvas{Width: 800, Height: 600, Measurer: runeMeasurer{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// (800 - (2*120 + 40)) / 2
	if x, _, _ := ctrl.Ribbon().Translate(); x != 260 {
		t.Fatalf("按钮条平移期望 260，实际 %g", x)
	}
	if err := doc.Click("story-page0-button-2"); err != nil {
		t.Fatalf("Click: %v", err)
	}
	assertSelected(t, ctrl, 1)
	if err := doc.Click("back"); err != nil {
		t.Fatalf("Click: %v", err)
	}
	assertSelected(t, ctrl, 0)

	page0 := ctrl.Page(0).View.(*PageView)
	if len(page0.Buttons()) != 1 || page0.Buttons()[0].Group.HasClass(ClickedClass) {
		t.Fatalf("页内按钮不应参与 clicked 状态")
	}
	// rect 的文字输出为 title 子节点。
	rect := page0.Group().Children()[0]
	if rect.Tag() != "rect" || len(rect.Children()) != 1 || rect.Children()[0].Tag() != "title" {
		t.Fatalf("rect 结构不正确")
	}
	// wrap 文本放在平移到 (20,40) 的盒子里，各行 x 为盒宽的一半。
	box := page0.Group().Children()[1]
	if x, y, _ := box.Translate(); x != 20 || y != 40 {
		t.Fatalf("折行盒子平移期望 (20,40)，实际 (%g,%g)", x, y)
	}
	text := box.Children()[0]
	if len(text.Children()) < 2 {
		t.Fatalf("长文本应折成多行")
	}
	for _, ts := range text.Children() {
		if x, _ := ts.AttrFloat("x"); x != 100 {
			t.Fatalf("tspan x 期望 100，实际 %g", x)
		}
	}
	note := ctrl.Page(1).View.(*PageView).Group().Children()[0]
	if !note.HasClass("note") || note.Text() != "Page1" {
		t.Fatalf("text 的 class 或内容不正确")
	}
	if doc.FindByID("back") == nil {
		t.Fatalf("找不到 id 为 back 的按钮")
	}
	if fill, _ := doc.Sheet().Compute(rect).Get("fill"); fill != "#ffffff" {
		t.Fatalf("故事中的样式规则未生效，fill=%s", fill)
	}
}

// TestPageButtonMergesClass 校验页内按钮的 class 参数与 story-button 合并，
// 且标签按合并后的 class 测量。
func TestPageButtonMergesClass(t *testing.T) {
	ast, err := dsl.ParseString(`story S {
  style ".story-button.big text" { font-size: 20px }
  page "p" {
    button x 5 y 6 width 200 height 60 class "big" fill "#eeeeee" { "Next page" }
  }
}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	spec, err := Compile(ast, nil, CompileOptions{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, ctrl, err := Build(spec, Canvas{Width: 800, Height: 600, Measurer: runeMeasurer{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	btn := ctrl.Page(0).View.(*PageView).Buttons()[0]
	g := btn.Group
	if !g.HasClass(ButtonClass) || !g.HasClass("big") {
		t.Fatalf("按钮 class 应同时包含 %s 与 big，实际 %v", ButtonClass, g.Classes())
	}
	if x, y, _ := g.Translate(); x != 5 || y != 6 {
		t.Fatalf("按钮平移期望 (5,6)，实际 (%g,%g)", x, y)
	}
	if fill, _ := g.Attr("fill"); fill != "#eeeeee" {
		t.Fatalf("其余参数应作为属性写入，fill=%q", fill)
	}
	if btn.Paragraph.EmPx != 20 {
		t.Fatalf("标签应按 .story-button.big text 的字号测量，EmPx=%g", btn.Paragraph.EmPx)
	}
}

func TestPageButtonRejectsTransform(t *testing.T) {
	spec := &Spec{
		Ribbon: DefaultRibbon(),
		Pages: []PageSpec{{
			Title: "p",
			Elements: []Element{{
				Kind: KindButton, Width: 100, Height: 40, Target: -1, Text: "x",
				Attrs: map[string]string{"transform": "translate(1, 2)"},
			}},
		}},
	}
	if _, _, err := Build(spec, Canvas{Width: 1200, Height: 820, Measurer: runeMeasurer{}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("期望 ErrInvalidArgument，实际 %v", err)
	}
}
