package fonts

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名。
const (
	Regular    = "Go-Regular"
	Bold       = "Go-Bold"
	Italic     = "Go-Italic"
	BoldItalic = "Go-BoldItalic"
	Mono       = "Go-Mono"
	MonoBold   = "Go-MonoBold"
)

var builtin = map[string][]byte{
	Regular:    goregular.TTF,
	Bold:       gobold.TTF,
	Italic:     goitalic.TTF,
	BoldItalic: gobolditalic.TTF,
	Mono:       gomono.TTF,
	MonoBold:   gomonobold.TTF,
}

// Load 返回内置字体的 TTF 字节，name 可写为 "embed:Go-Bold" 或直接 "Go-Bold"。
func Load(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "embed:")
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
	}
	return data, nil
}

// Resolve 按 CSS font-family 列表、font-weight 与 font-style 选出内置字体名。
// 等宽族（monospace、Go Mono 等）映射到 Go Mono（没有斜体），其余一律使用 Go 比例字体。
func Resolve(family, weight, fontStyle string) string {
	bold := isBold(weight)
	italic := isItalic(fontStyle)
	for _, f := range strings.Split(family, ",") {
		f = strings.ToLower(strings.Trim(strings.TrimSpace(f), `"'`))
		if f == "monospace" || strings.Contains(f, "mono") || f == "courier" {
			if bold {
				return MonoBold
			}
			return Mono
		}
	}
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	}
	return Regular
}

func isItalic(fontStyle string) bool {
	switch strings.ToLower(strings.TrimSpace(fontStyle)) {
	case "italic", "oblique":
		return true
	}
	return false
}

func isBold(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "bold", "bolder":
		return true
	case "", "normal", "lighter":
		return false
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 600
}
