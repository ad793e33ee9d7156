package layout

import "strings"

// 该文件定义折行过程与结果的数据结构，供折行、按钮绘制与调试 JSON 共用。

// LineHeightEm 是相邻两行基线之间的距离（em）。
const LineHeightEm = 1.1

// TextBlock 是折行的输入：原始文本、锚点与基线偏移（em）。
type TextBlock struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	DY   float64 `json:"dy"`
}

// Line 是已提交的一行。
type Line struct {
	Number int      `json:"number"`
	Words  []string `json:"words"`
	DY     float64  `json:"dy"`    // 相对锚点的纵向偏移（em）：Number*LineHeightEm + TextBlock.DY
	Width  float64  `json:"width"` // 提交时测得的渲染宽度（px）
}

// Text 返回以单个空格连接的行文本。
func (l Line) Text() string { return strings.Join(l.Words, " ") }

// WrappedParagraph 是一次折行的结果。
type WrappedParagraph struct {
	Block    TextBlock `json:"block"`
	MaxWidth float64   `json:"maxWidth"`
	Lines    []Line    `json:"lines"`
	// LastLine 是最后一行的序号（即换行次数）；空段落为 -1。
	LastLine int `json:"lastLine"`
	// EmPx 是文本元素的字号（px）。
	EmPx float64 `json:"emPx"`
	// Translate 是施加在整个文本元素上的纵向平移（px），使多行段落以原单行锚点垂直居中。
	Translate float64 `json:"translate"`
}

// Words 按顺序返回全部单词。
func (p *WrappedParagraph) Words() []string {
	var out []string
	for _, l := range p.Lines {
		out = append(out, l.Words...)
	}
	return out
}

// Empty 判断段落是否没有任何行。
func (p *WrappedParagraph) Empty() bool { return len(p.Lines) == 0 }

// WrapState 是单次折行调用的累加状态，不在调用之间共享。
type WrapState struct {
	CurrentLine []string
	LineNumber  int
	Lines       []Line
	// width 是 CurrentLine 当前内容最近一次测得的宽度。
	width float64
}

// commit 将 CurrentLine 作为第 LineNumber 行提交。
func (s *WrapState) commit(dy float64) {
	words := make([]string, len(s.CurrentLine))
	copy(words, s.CurrentLine)
	s.Lines = append(s.Lines, Line{
		Number: s.LineNumber,
		Words:  words,
		DY:     lineOffset(s.LineNumber, dy),
		Width:  s.width,
	})
}

func lineOffset(lineNumber int, dy float64) float64 {
	return float64(lineNumber)*LineHeightEm + dy
}

// recenter 计算使段落垂直居中的平移量（px）。
func recenter(lastLine int, dy, emPx float64) float64 {
	return -(lineOffset(lastLine, dy) / 2) * emPx
}
