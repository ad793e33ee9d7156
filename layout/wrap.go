package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/datastory/dom"
)

// Wrap 将 text 元素的内容按 maxWidth 贪心折行：每行一个 tspan，随后整体平移使段落以原锚点垂直居中。
//
// Wrap 会原地修改 text：原有内容被替换为 tspan 子节点，并写入 transform。
// 调用方须保证 text 已挂载、以 text-anchor: middle 对齐，且其坐标原点是宽度为 maxWidth 的盒子左上角
// （各行的 x 固定为 maxWidth/2）。
// 出错时 text 会恢复到调用前的内容。
func Wrap(text *dom.Node, maxWidth float64) (*WrappedParagraph, error) {
	if text == nil {
		return nil, fmt.Errorf("%w: nil text element", ErrInvalidArgument)
	}
	if text.Tag() != "text" {
		return nil, fmt.Errorf("%w: <%s> is not a text element", ErrInvalidArgument, text.Tag())
	}
	if !(maxWidth > 0) || math.IsInf(maxWidth, 1) {
		return nil, fmt.Errorf("%w: maxWidth must be positive, got %g", ErrInvalidArgument, maxWidth)
	}
	if !text.Attached() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, dom.ErrDetached)
	}

	block, err := readBlock(text)
	if err != nil {
		return nil, err
	}
	words := strings.Fields(block.Text)
	if len(words) == 0 {
		text.SetText("")
		return &WrappedParagraph{Block: block, MaxWidth: maxWidth, LastLine: -1}, nil
	}

	// 字号只取决于 text 元素自身，先读取，避免写入一半后才失败。
	emPx, err := PxValue(text, "fontSize")
	if err != nil {
		return nil, err
	}

	snap := text.Snapshot()
	para, err := wrapWords(text, block, words, maxWidth)
	if err != nil {
		snap.Restore()
		return nil, err
	}
	para.EmPx = emPx
	para.Translate = recenter(para.LastLine, block.DY, emPx)
	text.SetTranslate(0, para.Translate)
	return para, nil
}

func wrapWords(text *dom.Node, block TextBlock, words []string, maxWidth float64) (*WrappedParagraph, error) {
	doc := text.Document()
	state := &WrapState{}

	text.SetText("")
	tspan, err := appendLine(text, block, maxWidth, 0)
	if err != nil {
		return nil, err
	}
	for _, word := range words {
		state.CurrentLine = append(state.CurrentLine, word)
		tspan.SetText(strings.Join(state.CurrentLine, " "))
		w, err := doc.ComputedTextLength(tspan)
		if err != nil {
			return nil, err
		}
		if w <= maxWidth || len(state.CurrentLine) == 1 {
			// 单个超宽单词不拆分，原样留在本行。
			state.width = w
			continue
		}

		state.CurrentLine = state.CurrentLine[:len(state.CurrentLine)-1]
		tspan.SetText(strings.Join(state.CurrentLine, " "))
		state.commit(block.DY)

		state.CurrentLine = []string{word}
		state.LineNumber++
		if tspan, err = appendLine(text, block, maxWidth, state.LineNumber); err != nil {
			return nil, err
		}
		tspan.SetText(word)
		if state.width, err = doc.ComputedTextLength(tspan); err != nil {
			return nil, err
		}
	}
	state.commit(block.DY)

	return &WrappedParagraph{
		Block:    block,
		MaxWidth: maxWidth,
		Lines:    state.Lines,
		LastLine: state.LineNumber,
	}, nil
}

func appendLine(text *dom.Node, block TextBlock, maxWidth float64, lineNumber int) (*dom.Node, error) {
	tspan, err := text.Append("tspan")
	if err != nil {
		return nil, err
	}
	tspan.SetAttrFloat("x", maxWidth/2)
	tspan.SetAttrFloat("y", block.Y)
	tspan.SetAttr("dy", formatEm(lineOffset(lineNumber, block.DY)))
	return tspan, nil
}

// readBlock 从 text 元素读取文本、y 与 dy；dy 按 parseFloat 语义解析（"0.8" 与 "0.8em" 等价）。
func readBlock(text *dom.Node) (TextBlock, error) {
	block := TextBlock{Text: text.Text()}
	for _, f := range []struct {
		name string
		dst  *float64
	}{{"x", &block.X}, {"y", &block.Y}, {"dy", &block.DY}} {
		if _, ok := text.Attr(f.name); !ok {
			continue
		}
		v, err := text.AttrFloat(f.name)
		if err != nil {
			return TextBlock{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		*f.dst = v
	}
	return block, nil
}

// formatEm 输出 "1.9em"；保留 6 位小数以消除浮点累加的尾差。
func formatEm(v float64) string {
	return Length{Value: math.Round(v*1e6) / 1e6, Unit: UnitEM}.String()
}
