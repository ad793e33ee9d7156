// Package raster measures text with freetype and draws PNG snapshots with fogleman/gg.
package raster

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/fonts"
	"github.com/ByLCY/datastory/renderer"
	"github.com/ByLCY/datastory/style"
)

// Renderer rasterizes documents at Scale device pixels per user unit.
type Renderer struct {
	Scale      float64
	Background color.Color

	mu     sync.Mutex
	parsed map[string]*truetype.Font
	faces  map[faceKey]font.Face
}

type faceKey struct {
	name string
	size float64
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Measurer = (*Renderer)(nil)
)

// New creates a raster renderer; scale <= 0 means 1.
func New(scale float64) *Renderer {
	if scale <= 0 {
		scale = 1
	}
	return &Renderer{
		Scale:      scale,
		Background: color.White,
		parsed:     map[string]*truetype.Font{},
		faces:      map[faceKey]font.Face{},
	}
}

// TextWidth implements dom.Measurer using unhinted truetype advances (px).
func (r *Renderer) TextWidth(text string, f style.Font) (float64, error) {
	face, err := r.face(f, 1)
	if err != nil {
		return 0, err
	}
	adv := font.MeasureString(face, text)
	return float64(adv) / 64, nil
}

// FontData returns the font file TextWidth measures font with.
func (r *Renderer) FontData(f style.Font) ([]byte, error) {
	return fonts.Load(fonts.Resolve(f.Family, f.Weight, f.Style))
}

// Render draws the visible part of doc and encodes it as PNG.
func (r *Renderer) Render(doc *dom.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	items, err := renderer.Flatten(doc)
	if err != nil {
		return nil, err
	}
	w, h := doc.Size()
	dc := gg.NewContext(int(math.Ceil(w*r.Scale)), int(math.Ceil(h*r.Scale)))
	if r.Background != nil {
		dc.SetColor(r.Background)
		dc.Clear()
	}
	dc.Scale(r.Scale, r.Scale)

	for _, it := range items {
		switch it.Kind {
		case renderer.ItemRect:
			if rad := math.Min(it.Rx, it.Ry); rad > 0 {
				dc.DrawRoundedRectangle(it.X, it.Y, it.W, it.H, rad)
			} else {
				dc.DrawRectangle(it.X, it.Y, it.W, it.H)
			}
			fillStroke(dc, it)
		case renderer.ItemCircle:
			dc.DrawCircle(it.X, it.Y, it.R)
			fillStroke(dc, it)
		case renderer.ItemLine:
			dc.DrawLine(it.X, it.Y, it.X2, it.Y2)
			if it.Stroke != nil {
				dc.SetColor(*it.Stroke)
				dc.SetLineWidth(it.StrokeWidth)
				dc.Stroke()
			}
			dc.ClearPath()
		case renderer.ItemText:
			if err := r.drawText(dc, it); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawText(dc *gg.Context, it renderer.Item) error {
	face, err := r.face(it.Font, r.Scale)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	if it.Fill != nil {
		dc.SetColor(*it.Fill)
	} else {
		dc.SetColor(color.Black)
	}
	ax := 0.0
	switch it.Anchor {
	case "middle":
		ax = 0.5
	case "end":
		ax = 1
	}
	ay := 0.0
	if it.Baseline == "middle" || it.Baseline == "central" {
		ay = 0.5
	}
	// 字形按设备像素栅格化：先撤销缩放再定位。
	dc.Push()
	dc.Identity()
	for _, run := range it.Runs {
		dc.DrawStringAnchored(run.Text, run.X*r.Scale, run.Y*r.Scale, ax, ay)
	}
	dc.Pop()
	return nil
}

func fillStroke(dc *gg.Context, it renderer.Item) {
	if it.Fill != nil {
		dc.SetColor(*it.Fill)
		if it.Stroke != nil {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if it.Stroke != nil {
		dc.SetColor(*it.Stroke)
		dc.SetLineWidth(it.StrokeWidth)
		dc.Stroke()
	}
	dc.ClearPath()
}

func (r *Renderer) face(f style.Font, scale float64) (font.Face, error) {
	size := f.SizePx
	if size <= 0 {
		size = 16
	}
	name := fonts.Resolve(f.Family, f.Weight, f.Style)
	key := faceKey{name: name, size: size * scale}

	r.mu.Lock()
	defer r.mu.Unlock()
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	ttf, ok := r.parsed[name]
	if !ok {
		data, err := fonts.Load(name)
		if err != nil {
			return nil, err
		}
		if ttf, err = truetype.Parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
		}
		r.parsed[name] = ttf
	}
	// DPI 72 时 Size 即为像素字号。
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	r.faces[key] = face
	return face, nil
}
