package story

import (
	_ "embed"

	"github.com/ByLCY/datastory/dsl"
)

//go:embed default.story
var defaultSource string

// DefaultSource 返回内置示例故事的源码。
func DefaultSource() string { return defaultSource }

// Default 解析内置示例故事。
func Default() (*dsl.Story, error) {
	return dsl.ParseString(defaultSource)
}
