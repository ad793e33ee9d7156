package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		config: filepath.Join(dir, "missing.toml"),
		html:   filepath.Join(dir, "out", "story.html"),
		pdf:    filepath.Join(dir, "out", "story.pdf"),
		png:    filepath.Join(dir, "out", "story.png"),
		debug:  filepath.Join(dir, "debug", "wrap.json"),
	}
	written, err := run(opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("期望写出 3 个文件，实际 %v", written)
	}

	html, err := os.ReadFile(opts.html)
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !bytes.Contains(html, []byte("viz-story-button-3")) {
		t.Fatalf("HTML 缺少按钮")
	}
	pdf, err := os.ReadFile(opts.pdf)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("PDF 输出无效: %v", err)
	}
	png, err := os.ReadFile(opts.png)
	if err != nil || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("PNG 输出无效: %v", err)
	}

	raw, err := os.ReadFile(opts.debug)
	if err != nil {
		t.Fatalf("read debug: %v", err)
	}
	var report struct {
		Buttons []struct {
			Lines []struct {
				Words []string `json:"words"`
				Width float64  `json:"width"`
			} `json:"lines"`
			MaxWidth float64 `json:"maxWidth"`
		} `json:"buttons"`
	}
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("unmarshal debug: %v", err)
	}
	if len(report.Buttons) != 3 {
		t.Fatalf("调试输出应包含 3 个按钮，实际 %d", len(report.Buttons))
	}
	for i, b := range report.Buttons {
		if len(b.Lines) < 2 {
			t.Fatalf("第 %d 个按钮标签应折行", i)
		}
		for _, l := range b.Lines {
			if len(l.Words) > 1 && l.Width > b.MaxWidth {
				t.Fatalf("第 %d 个按钮的行 %q 超宽", i, strings.Join(l.Words, " "))
			}
		}
	}
}

func TestRunStrictFailsOnMissingData(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "s.story")
	content := "story S {\n  page \"Total ${loans.total}\" {\n  }\n}\n"
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	opts := options{input: src, config: filepath.Join(dir, "none.toml"), html: filepath.Join(dir, "s.html"), strict: true}
	if _, err := run(opts); err == nil {
		t.Fatalf("strict 模式下缺少数据应失败")
	}
	data, err := loadData(`{"loans":{"total":5}}`)
	if err != nil {
		t.Fatalf("loadData: %v", err)
	}
	opts.data = data
	if _, err := run(opts); err != nil {
		t.Fatalf("提供数据后应成功: %v", err)
	}
	html, _ := os.ReadFile(opts.html)
	if !bytes.Contains(html, []byte("Total 5")) {
		t.Fatalf("HTML 中应包含绑定后的标题")
	}
}

func TestRunRasterMeasurer(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		config:   filepath.Join(dir, "none.toml"),
		html:     filepath.Join(dir, "s.html"),
		measurer: "raster",
	}
	if _, err := run(opts); err != nil {
		t.Fatalf("raster 测量后端应可用: %v", err)
	}
	opts.measurer = "gpu"
	if _, err := run(opts); err == nil {
		t.Fatalf("未知测量后端应报错")
	}
}
