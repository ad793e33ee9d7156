// Package config loads story rendering settings from TOML.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/ByLCY/datastory/style"
)

// Config 是 story.toml 的内容。
type Config struct {
	// Measurer 选择文本测量后端："canvas"（默认）或 "raster"。
	Measurer string                       `toml:"measurer"`
	Canvas   CanvasConfig                 `toml:"canvas"`
	Font     FontConfig                   `toml:"font"`
	Ribbon   RibbonConfig                 `toml:"ribbon"`
	Output   OutputConfig                 `toml:"output"`
	Styles   map[string]map[string]string `toml:"styles"`
}

// CanvasConfig is the size of the root svg in user units.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// FontConfig 是根节点上的默认字体。
type FontConfig struct {
	Family string `toml:"family"`
	Size   string `toml:"size"`
	// Files 把 CSS 字体族名映射到 TTF/OTF 文件，仅 canvas 后端使用。
	Files map[string]string `toml:"files"`
}

// RibbonConfig 是按钮条的几何参数；故事文件中的 ribbon 语句会覆盖它。
type RibbonConfig struct {
	ButtonWidth  float64 `toml:"button_width"`
	ButtonHeight float64 `toml:"button_height"`
	Gap          float64 `toml:"gap"`
	Top          float64 `toml:"top"`
	PagesTop     float64 `toml:"pages_top"`
}

// OutputConfig lists the files to produce; empty paths are skipped.
type OutputConfig struct {
	HTML     string  `toml:"html"`
	PDF      string  `toml:"pdf"`
	PNG      string  `toml:"png"`
	PNGScale float64 `toml:"png_scale"`
	Minify   bool    `toml:"minify"`
}

// defaultRules 在用户规则之前加入样式表。
var defaultRules = []struct {
	selector string
	decls    map[string]string
}{
	{".story-button rect", map[string]string{"fill": "#d9e6f2", "stroke": "steelblue", "stroke-width": "2"}},
	{".story-button text", map[string]string{"font-size": "16px", "fill": "#333333"}},
	{".story-button.clicked rect", map[string]string{"fill": "orange"}},
	{".story-page rect", map[string]string{"fill": "#f5f5f5", "stroke": "lightgray"}},
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Measurer: "canvas",
		Canvas:   CanvasConfig{Width: 1200, Height: 820},
		Font:     FontConfig{Family: "Go", Size: "16px"},
		Ribbon:   RibbonConfig{ButtonWidth: 150, ButtonHeight: 100, Gap: 250, Top: 10, PagesTop: 150},
		Output:   OutputConfig{HTML: "output/story.html", PNGScale: 1, Minify: true},
	}
}

// Load reads path; a missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML.
func Save(cfg Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would make the story unrenderable.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height)
	}
	switch c.Measurer {
	case "", "canvas", "raster":
	default:
		return fmt.Errorf("unknown measurer %q", c.Measurer)
	}
	if c.Ribbon.ButtonWidth <= 0 || c.Ribbon.ButtonHeight <= 0 {
		return fmt.Errorf("ribbon buttons must have a positive size")
	}
	return nil
}

// Sheet 构造样式表：根字体、内置规则，最后是按选择器排序的用户规则。
func (c Config) Sheet() (*style.Sheet, error) {
	sheet := style.NewSheet()
	root := map[string]string{}
	if c.Font.Family != "" {
		root["font-family"] = c.Font.Family
	}
	if c.Font.Size != "" {
		root["font-size"] = c.Font.Size
	}
	if len(root) > 0 {
		if err := sheet.Add("svg", root); err != nil {
			return nil, err
		}
	}
	for _, r := range defaultRules {
		if err := sheet.Add(r.selector, r.decls); err != nil {
			return nil, err
		}
	}
	selectors := make([]string, 0, len(c.Styles))
	for sel := range c.Styles {
		selectors = append(selectors, sel)
	}
	sort.Strings(selectors)
	for _, sel := range selectors {
		if err := sheet.Add(sel, c.Styles[sel]); err != nil {
			return nil, fmt.Errorf("styles.%q: %w", sel, err)
		}
	}
	return sheet, nil
}
