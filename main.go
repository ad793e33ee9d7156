package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/datastory/config"
	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/dsl"
	"github.com/ByLCY/datastory/layout"
	"github.com/ByLCY/datastory/renderer"
	canvasrenderer "github.com/ByLCY/datastory/renderer/canvas"
	"github.com/ByLCY/datastory/renderer/page"
	"github.com/ByLCY/datastory/renderer/raster"
	"github.com/ByLCY/datastory/story"
)

type options struct {
	input    string
	config   string
	html     string
	pdf      string
	png      string
	debug    string
	measurer string
	strict   bool
	data     any
}

func main() {
	input := flag.String("in", "", "故事文件路径，留空使用内置示例")
	configPath := flag.String("config", "story.toml", "TOML 配置文件路径")
	output := flag.String("out", "", "HTML 输出路径（覆盖配置）")
	pdfPath := flag.String("pdf", "", "PDF 输出路径（覆盖配置），每个故事页一页")
	pngPath := flag.String("png", "", "PNG 快照输出路径（覆盖配置）")
	debug := flag.String("debug", "", "折行调试 JSON 输出路径")
	measurer := flag.String("measurer", "", "文本测量后端：canvas 或 raster（覆盖配置）")
	dataJSON := flag.String("data", "", "绑定到故事的 JSON 数据；以 @ 开头时读取文件")
	strict := flag.Bool("strict", false, "存在无法解析的 ${...} 占位符时报错")
	writeConfig := flag.String("write-config", "", "将默认配置写入该路径后退出")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.Save(config.Default(), *writeConfig); err != nil {
			log.Fatalf("写入配置失败: %v", err)
		}
		fmt.Printf("已写入默认配置：%s\n", *writeConfig)
		return
	}

	data, err := loadData(*dataJSON)
	if err != nil {
		log.Fatalf("解析 data JSON 失败: %v", err)
	}
	opts := options{
		input:    *input,
		config:   *configPath,
		html:     *output,
		pdf:      *pdfPath,
		png:      *pngPath,
		debug:    *debug,
		measurer: *measurer,
		strict:   *strict,
		data:     data,
	}
	written, err := run(opts)
	if err != nil {
		log.Fatalf("生成故事失败: %v", err)
	}
	for _, path := range written {
		fmt.Printf("已生成：%s\n", path)
	}
}

func loadData(arg string) (any, error) {
	if arg == "" {
		return nil, nil
	}
	raw := []byte(arg)
	if strings.HasPrefix(arg, "@") {
		var err error
		if raw, err = os.ReadFile(strings.TrimPrefix(arg, "@")); err != nil {
			return nil, err
		}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// run 串联配置、解析、编译、构建与各输出后端，返回写出的文件列表。
func run(opts options) ([]string, error) {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return nil, err
	}
	applyOverrides(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ast, err := parseStory(opts.input)
	if err != nil {
		return nil, fmt.Errorf("解析故事失败: %w", err)
	}
	spec, err := story.Compile(ast, opts.data, story.CompileOptions{
		Ribbon: story.Ribbon{
			ButtonWidth:  cfg.Ribbon.ButtonWidth,
			ButtonHeight: cfg.Ribbon.ButtonHeight,
			Gap:          cfg.Ribbon.Gap,
			Top:          cfg.Ribbon.Top,
			PagesTop:     cfg.Ribbon.PagesTop,
		},
		Strict: opts.strict,
	})
	if err != nil {
		return nil, fmt.Errorf("编译故事失败: %w", err)
	}

	sheet, err := cfg.Sheet()
	if err != nil {
		return nil, fmt.Errorf("样式配置无效: %w", err)
	}
	pdfRenderer := canvasrenderer.NewRendererWithOptions(canvasOptions(cfg))
	pngRenderer := raster.New(cfg.Output.PNGScale)
	var m dom.Measurer = pdfRenderer
	var fontSrc page.FontSource = pdfRenderer
	if cfg.Measurer == "raster" {
		m, fontSrc = pngRenderer, pngRenderer
	}

	doc, ctrl, err := story.Build(spec, story.Canvas{
		Width:    cfg.Canvas.Width,
		Height:   cfg.Canvas.Height,
		Sheet:    sheet,
		Measurer: m,
	})
	if err != nil {
		return nil, fmt.Errorf("构建故事失败: %w", err)
	}

	if opts.debug != "" {
		if err := writeDebug(spec, ctrl, opts.debug); err != nil {
			return nil, err
		}
	}

	title := spec.Meta.Title
	if title == "" {
		title = spec.Name
	}
	var outputs []output
	if cfg.Output.HTML != "" {
		data, err := render(&page.Renderer{Title: title, Minify: cfg.Output.Minify, Fonts: fontSrc}, doc, cfg.Output.HTML)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output{path: cfg.Output.HTML, data: data})
	}
	if cfg.Output.PNG != "" {
		data, err := render(pngRenderer, doc, cfg.Output.PNG)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output{path: cfg.Output.PNG, data: data})
	}
	if cfg.Output.PDF != "" {
		// 每个故事页一页；结束后恢复到第一页。
		data, err := pdfRenderer.RenderSequence(doc, ctrl.Len(), ctrl.SelectPage)
		if err != nil {
			return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
		}
		if err := ctrl.SelectPage(0); err != nil {
			return nil, err
		}
		outputs = append(outputs, output{path: cfg.Output.PDF, data: data})
	}
	return writeAll(outputs)
}

type output struct {
	path string
	data []byte
}

// writeAll 并发写出所有文件，返回顺序与 outputs 一致。
func writeAll(outputs []output) ([]string, error) {
	var g errgroup.Group
	for _, o := range outputs {
		g.Go(func() error { return writeFile(o.path, o.data) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		written = append(written, o.path)
	}
	return written, nil
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.html != "" {
		cfg.Output.HTML = opts.html
	}
	if opts.pdf != "" {
		cfg.Output.PDF = opts.pdf
	}
	if opts.png != "" {
		cfg.Output.PNG = opts.png
	}
	if opts.measurer != "" {
		cfg.Measurer = opts.measurer
	}
}

func parseStory(path string) (*dsl.Story, error) {
	if path == "" {
		return story.Default()
	}
	return dsl.ParseFile(path)
}

func canvasOptions(cfg config.Config) canvasrenderer.Options {
	opts := canvasrenderer.Options{Fonts: map[string]canvasrenderer.Resource{}}
	for family, path := range cfg.Font.Files {
		opts.Fonts[family] = canvasrenderer.Resource{Path: path}
	}
	return opts
}

func render(r renderer.Renderer, doc *dom.Document, path string) ([]byte, error) {
	data, err := r.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("渲染 %s 失败: %w", path, err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

// debugReport 是 -debug 输出的内容：编译后的故事与每个按钮标签的折行结果。
type debugReport struct {
	Story   *story.Spec                `json:"story"`
	Buttons []*layout.WrappedParagraph `json:"buttons"`
}

func writeDebug(spec *story.Spec, ctrl *story.StoryCtrl, debugPath string) error {
	report := debugReport{Story: spec}
	for _, b := range ctrl.Buttons() {
		report.Buttons = append(report.Buttons, b.Paragraph)
	}
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(report, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
