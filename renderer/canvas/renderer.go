package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/fonts"
	"github.com/ByLCY/datastory/layout"
	"github.com/ByLCY/datastory/renderer"
	"github.com/ByLCY/datastory/style"
)

const defaultStrokeWidth = 1.0 // px

// Renderer measures text and draws documents via github.com/tdewolff/canvas.
type Renderer struct {
	// injected fonts, by CSS family name
	fontBlobs map[string][]byte

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Measurer = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Fonts map[string]Resource // extra font families addressable from CSS font-family
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer using the built-in Go fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected font families.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // a missing file falls back to the built-in fonts
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// TextWidth 实现 dom.Measurer：返回文本在给定字体下的宽度（px）。
func (r *Renderer) TextWidth(text string, font style.Font) (float64, error) {
	face, err := r.fontFace(font, color.Black)
	if err != nil {
		return 0, err
	}
	return toPx(face.TextWidth(text)), nil
}

// Render 将文档当前可见的内容绘制为单页 PDF。
func (r *Renderer) Render(doc *dom.Document) ([]byte, error) {
	return r.RenderSequence(doc, 1, nil)
}

// RenderSequence 输出 n 页 PDF；绘制第 i 页之前调用 before(i)，用于切换故事页。
func (r *Renderer) RenderSequence(doc *dom.Document, n int, before func(i int) error) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染文档为空")
	}
	if n <= 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	w, h := doc.Size()
	wmm, hmm := toMm(w), toMm(h)

	var buf bytes.Buffer
	writer := pdf.New(&buf, wmm, hmm, nil)
	for i := 0; i < n; i++ {
		if before != nil {
			if err := before(i); err != nil {
				return nil, err
			}
		}
		if i > 0 {
			writer.NewPage(wmm, hmm)
		}
		items, err := renderer.Flatten(doc)
		if err != nil {
			return nil, err
		}
		c := canvas.New(wmm, hmm)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与 SVG 保持左上角为原点
		if err := r.drawItems(ctx, items); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawItems(ctx *canvas.Context, items []renderer.Item) error {
	for _, it := range items {
		switch it.Kind {
		case renderer.ItemRect:
			setPaint(ctx, it)
			var path *canvas.Path
			// canvas 只支持等半径圆角，取 rx、ry 中较小者。
			if rad := min(it.Rx, it.Ry); rad > 0 {
				path = canvas.RoundedRectangle(toMm(it.W), toMm(it.H), toMm(rad))
			} else {
				path = canvas.Rectangle(toMm(it.W), toMm(it.H))
			}
			ctx.DrawPath(toMm(it.X), toMm(it.Y), path)
		case renderer.ItemCircle:
			setPaint(ctx, it)
			ctx.DrawPath(toMm(it.X), toMm(it.Y), canvas.Circle(toMm(it.R)))
		case renderer.ItemLine:
			setPaint(ctx, it)
			ctx.SetFillColor(color.RGBA{})
			p := &canvas.Path{}
			p.MoveTo(0, 0)
			p.LineTo(toMm(it.X2-it.X), toMm(it.Y2-it.Y))
			ctx.DrawPath(toMm(it.X), toMm(it.Y), p)
		case renderer.ItemText:
			if err := r.drawText(ctx, it); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) drawText(ctx *canvas.Context, it renderer.Item) error {
	var col color.Color = color.Black
	if it.Fill != nil {
		col = *it.Fill
	}
	face, err := r.fontFace(it.Font, col)
	if err != nil {
		return err
	}
	var align canvas.TextAlign
	switch it.Anchor {
	case "middle":
		align = canvas.Center
	case "end":
		align = canvas.Right
	default:
		align = canvas.Left
	}
	metrics := face.Metrics()
	for _, run := range it.Runs {
		baseline := toMm(run.Y)
		if it.Baseline == "middle" || it.Baseline == "central" {
			baseline += (metrics.Ascent - metrics.Descent) / 2
		}
		ctx.DrawText(toMm(run.X), baseline, canvas.NewTextLine(face, run.Text, align))
	}
	return nil
}

func setPaint(ctx *canvas.Context, it renderer.Item) {
	if it.Fill != nil {
		ctx.SetFillColor(*it.Fill)
	} else {
		ctx.SetFillColor(color.RGBA{})
	}
	if it.Stroke != nil {
		ctx.SetStrokeColor(*it.Stroke)
		w := it.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetStrokeWidth(toMm(w))
	} else {
		ctx.SetStrokeColor(color.RGBA{})
		ctx.SetStrokeWidth(0)
	}
}

func (r *Renderer) fontFace(font style.Font, col color.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	size := font.SizePx
	if size <= 0 {
		size = 16
	}
	return family.Face(size*layout.PxToPt, col, canvas.FontRegular, canvas.FontNormal), nil
}

// ensureFontFamily 优先使用注入的字体族，否则按 font-family/font-weight 选择内置 Go 字体。
func (r *Renderer) ensureFontFamily(font style.Font) (*canvas.FontFamily, error) {
	key, data := r.lookupFont(font)

	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}
	if data == nil {
		var err error
		if data, err = fonts.Load(key); err != nil {
			return nil, err
		}
	}
	family := canvas.NewFontFamily(key)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", key, err)
	}
	r.fontFamilies[key] = family
	return family, nil
}

// FontData 返回测量 font 时使用的字体文件，HTML 导出据此嵌入同一字体。
func (r *Renderer) FontData(font style.Font) ([]byte, error) {
	key, data := r.lookupFont(font)
	if data != nil {
		return data, nil
	}
	return fonts.Load(key)
}

func (r *Renderer) lookupFont(font style.Font) (string, []byte) {
	for _, f := range strings.Split(font.Family, ",") {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(f), `"'`))
		if blob, ok := r.fontBlobs[name]; ok {
			return "user:" + name, blob
		}
	}
	return fonts.Resolve(font.Family, font.Weight, font.Style), nil
}

// toMm 将 px 转换为 canvas 使用的毫米。
func toMm(px float64) float64 { return px * layout.PxToMm }

// toPx 将毫米转换为 px。
func toPx(mm float64) float64 { return mm * layout.MmToPx }
