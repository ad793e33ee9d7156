package layout

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ByLCY/datastory/dom"
)

var pxPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d*)?|\.\d+)px\s*$`)

// PxValue 读取已挂载元素的计算样式 prop（如 "fontSize"、"width"），并解析其中的像素数值。
// 值不匹配 "<number>px" 时返回 ErrFormatMismatch。
func PxValue(n *dom.Node, prop string) (float64, error) {
	if n == nil {
		return 0, fmt.Errorf("%w: nil element", ErrInvalidArgument)
	}
	doc := n.Document()
	if doc == nil || !n.Attached() {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, dom.ErrDetached)
	}
	cs, err := doc.ComputedStyle(n)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	v, _ := cs.Get(prop)
	px, err := ParsePx(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", prop, err)
	}
	return px, nil
}

// ParsePx 解析 "16px"、"12.5px" 一类的像素字符串。
func ParsePx(v string) (float64, error) {
	m := pxPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrFormatMismatch, v)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrFormatMismatch, v)
	}
	return f, nil
}
