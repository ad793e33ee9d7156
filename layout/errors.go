package layout

import "errors"

var (
	// ErrFormatMismatch 表示计算样式的值不是 "<number>px" 形式。
	ErrFormatMismatch = errors.New("layout: computed value is not a px length")
	// ErrInvalidArgument 表示调用方传入了非法参数（空节点、非 text 节点、非正宽度、未挂载节点等）。
	ErrInvalidArgument = errors.New("layout: invalid argument")
)
