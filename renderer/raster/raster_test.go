package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/draw"
	"github.com/ByLCY/datastory/style"
)

func TestTextWidth(t *testing.T) {
	r := New(1)
	tests := []struct {
		name   string
		short  string
		long   string
		family string
	}{
		{name: "sans", short: "Which", long: "Which state", family: "sans-serif"},
		{name: "mono", short: "loans", long: "loans default", family: "monospace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			font := style.Font{Family: tt.family, SizePx: 16}
			a, err := r.TextWidth(tt.short, font)
			if err != nil {
				t.Fatalf("TextWidth(%q): %v", tt.short, err)
			}
			b, err := r.TextWidth(tt.long, font)
			if err != nil {
				t.Fatalf("TextWidth(%q): %v", tt.long, err)
			}
			if a <= 0 || b <= a {
				t.Errorf("widths not increasing: %q=%g %q=%g", tt.short, a, tt.long, b)
			}
		})
	}
}

func TestRenderPNGSize(t *testing.T) {
	r := New(2)
	doc := dom.NewDocument(300, 120, dom.WithMeasurer(r))
	if _, err := draw.DrawTextButton(doc.Root(), 10, 10, 150, 100, "Which people default on their loans", "story-button", "b3", nil); err != nil {
		t.Fatalf("DrawTextButton: %v", err)
	}
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 240 {
		t.Fatalf("unexpected image size %dx%d", b.Dx(), b.Dy())
	}
}
