package story

import (
	"fmt"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/style"
)

// Canvas 描述承载故事的文档。
type Canvas struct {
	Width    float64
	Height   float64
	Sheet    *style.Sheet
	Measurer dom.Measurer
}

// Build 创建文档，追加故事文件中的样式规则，并在根节点下构建故事（显示第一页）。
func Build(spec *Spec, c Canvas) (*dom.Document, *StoryCtrl, error) {
	if spec == nil {
		return nil, nil, fmt.Errorf("%w: nil spec", ErrInvalidStory)
	}
	sheet := c.Sheet
	if sheet == nil {
		sheet = style.NewSheet()
	}
	for _, r := range spec.Styles {
		if err := sheet.Add(r.Selector, r.Declarations); err != nil {
			return nil, nil, fmt.Errorf("%w: style %q: %v", ErrInvalidStory, r.Selector, err)
		}
	}
	doc := dom.NewDocument(c.Width, c.Height, dom.WithStylesheet(sheet), dom.WithMeasurer(c.Measurer))
	ctrl, err := New(spec)
	if err != nil {
		return nil, nil, err
	}
	if err := ctrl.Create(doc.Root()); err != nil {
		return nil, nil, err
	}
	return doc, ctrl, nil
}
