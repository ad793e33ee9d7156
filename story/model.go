package story

// Spec 是编译后的故事：元数据、按钮条几何、样式规则与各页内容。
type Spec struct {
	Name   string      `json:"name"`
	Meta   Meta        `json:"meta"`
	Ribbon Ribbon      `json:"ribbon"`
	Styles []StyleRule `json:"styles,omitempty"`
	Pages  []PageSpec  `json:"pages"`
}

// Meta 是故事的描述信息，HTML 标题取自 Title。
type Meta struct {
	Title    string   `json:"title,omitempty"`
	Author   string   `json:"author,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Ribbon 是按钮条与页面画布的几何参数（px）。
type Ribbon struct {
	ButtonWidth  float64 `json:"buttonWidth"`
	ButtonHeight float64 `json:"buttonHeight"`
	Gap          float64 `json:"gap"`
	Top          float64 `json:"top"`
	PagesTop     float64 `json:"pagesTop"`
}

// DefaultRibbon 返回三按钮故事页使用的几何参数。
func DefaultRibbon() Ribbon {
	return Ribbon{ButtonWidth: 150, ButtonHeight: 100, Gap: 250, Top: 10, PagesTop: 150}
}

// Length 返回 n 个按钮加上间隔的总长度。
func (r Ribbon) Length(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*r.ButtonWidth + float64(n-1)*r.Gap
}

// ButtonX 返回第 i 个按钮在按钮条内的横坐标。
func (r Ribbon) ButtonX(i int) float64 {
	return float64(i) * (r.ButtonWidth + r.Gap)
}

// StyleRule 是故事文件中声明的样式规则。
type StyleRule struct {
	Selector     string            `json:"selector"`
	Declarations map[string]string `json:"declarations"`
}

// ElementKind 是页面内容的图元类型。
type ElementKind string

const (
	KindRect   ElementKind = "rect"
	KindCircle ElementKind = "circle"
	KindLine   ElementKind = "line"
	KindText   ElementKind = "text"
	KindButton ElementKind = "button"
)

// PageSpec 是一页的内容；Title 同时作为按钮条上的按钮文字。
type PageSpec struct {
	Title    string    `json:"title"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Elements []Element `json:"elements"`
}

// Element 是页面上的一个图元。
// 对 KindButton，X/Y/Width/Height 给出按钮矩形，Target 是点击后要切换到的页（-1 表示不切换）。
// 对带 Wrap 的 KindText，文字在以 (X, Y) 为左上角、宽 Wrap 的盒子内居中折行。
type Element struct {
	Kind   ElementKind       `json:"kind"`
	Attrs  map[string]string `json:"attrs,omitempty"`
	Text   string            `json:"text,omitempty"`
	X      float64           `json:"x"`
	Y      float64           `json:"y"`
	Width  float64           `json:"width,omitempty"`
	Height float64           `json:"height,omitempty"`
	Wrap   float64           `json:"wrap,omitempty"`
	Target int               `json:"target"`
}
