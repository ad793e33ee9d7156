package canvasrenderer

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/draw"
	"github.com/ByLCY/datastory/layout"
	"github.com/ByLCY/datastory/style"
)

func TestTextWidthGrowsWithContent(t *testing.T) {
	r := NewRenderer()
	font := style.Font{Family: "sans-serif", SizePx: 16}

	short, err := r.TextWidth("hello", font)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	long, err := r.TextWidth("hello world", font)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short <= 0 {
		t.Fatalf("expected positive width, got %g", short)
	}
	if long <= short {
		t.Fatalf("expected %q to be wider than %q: %g <= %g", "hello world", "hello", long, short)
	}
}

// TestTextWidthScalesWithFontSize 验证宽度与字号成正比。
func TestTextWidthScalesWithFontSize(t *testing.T) {
	r := NewRenderer()
	w16, err := r.TextWidth("Which state takes highest loans", style.Font{SizePx: 16})
	if err != nil {
		t.Fatalf("TextWidth error: %v", err)
	}
	w32, err := r.TextWidth("Which state takes highest loans", style.Font{SizePx: 32})
	if err != nil {
		t.Fatalf("TextWidth error: %v", err)
	}
	if diff := math.Abs(w32 - 2*w16); diff > 1e-6*w32 {
		t.Fatalf("width should scale linearly: w16=%g w32=%g", w16, w32)
	}
}

func TestMonospaceFamilyUsesEqualAdvance(t *testing.T) {
	r := NewRenderer()
	font := style.Font{Family: "monospace", SizePx: 16}
	a, _ := r.TextWidth("iiii", font)
	b, _ := r.TextWidth("WWWW", font)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("monospace widths differ: %g vs %g", a, b)
	}
}

// TestWrapWithRealFontRespectsWidth 用真实字体折行，校验每行宽度与单词顺序。
func TestWrapWithRealFontRespectsWidth(t *testing.T) {
	r := NewRenderer()
	doc := dom.NewDocument(1200, 800, dom.WithMeasurer(r))
	text, err := doc.Root().Append("text")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	text.SetAttrFloat("x", 75).SetAttrFloat("y", 50).SetAttrFloat("dy", 0.8)
	text.SetStyle("text-anchor", "middle")
	const content = "Which profession takes highest loans"
	text.SetText(content)

	para, err := layout.Wrap(text, 150)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if len(para.Lines) < 2 {
		t.Fatalf("expected multiple lines, got %d", len(para.Lines))
	}
	for _, ln := range para.Lines {
		if len(ln.Words) > 1 && ln.Width > 150 {
			t.Fatalf("line %d exceeds limit: %g", ln.Number, ln.Width)
		}
	}
	if got := strings.Join(para.Words(), " "); got != content {
		t.Fatalf("words changed: %q", got)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer()
	doc := dom.NewDocument(600, 300, dom.WithMeasurer(r))
	if _, err := draw.DrawTextButton(doc.Root(), 10, 10, 150, 100, "Which state takes highest loans", "story-button", "b1", nil); err != nil {
		t.Fatalf("DrawTextButton: %v", err)
	}
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 8)])
	}
}

func TestRenderSequenceCallsBeforeForEachPage(t *testing.T) {
	r := NewRenderer()
	doc := dom.NewDocument(200, 100, dom.WithMeasurer(r))
	var seen []int
	_, err := r.RenderSequence(doc, 3, func(i int) error {
		seen = append(seen, i)
		return nil
	})
	if err != nil {
		t.Fatalf("RenderSequence error: %v", err)
	}
	if len(seen) != 3 || seen[0] != 0 || seen[2] != 2 {
		t.Fatalf("unexpected page callbacks: %v", seen)
	}
}
