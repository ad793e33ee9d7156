package renderer

import "github.com/ByLCY/datastory/dom"

// Renderer 将文档的可见部分输出为最终文件，例如 PDF、PNG 或 HTML。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(doc *dom.Document) ([]byte, error)
}

// Measurer 是渲染后端提供的文本测量能力，与 dom.Measurer 相同。
type Measurer = dom.Measurer
