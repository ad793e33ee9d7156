package dom

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/datastory/style"
)

var (
	// ErrElementCreation 表示渲染面拒绝创建或挂载节点。
	ErrElementCreation = errors.New("dom: element creation refused")
	// ErrDetached 表示节点未挂载到文档的渲染树上，无法计算样式或测量。
	ErrDetached = errors.New("dom: node is not attached")
	// ErrNotFound 表示按 id 查找节点失败。
	ErrNotFound = errors.New("dom: node not found")
)

// contentModel 描述各标签允许的子元素；未列出的标签无法创建。
var contentModel = map[string]map[string]bool{
	"svg":    {"g": true, "rect": true, "text": true, "circle": true, "line": true, "title": true},
	"g":      {"g": true, "rect": true, "text": true, "circle": true, "line": true, "title": true},
	"rect":   {"title": true},
	"circle": {"title": true},
	"line":   {},
	"text":   {"tspan": true},
	"tspan":  {},
	"title":  {},
}

var translatePattern = regexp.MustCompile(`^\s*translate\(\s*(-?[\d.]+(?:e-?\d+)?)\s*(?:,\s*|\s+)(-?[\d.]+(?:e-?\d+)?)\s*\)\s*$`)

// Node 是矢量图形树上的一个元素（svg/g/rect/text/tspan...）。
type Node struct {
	tag      string
	id       string
	classes  []string
	attrs    map[string]string
	inline   map[string]string
	text     string
	parent   *Node
	children []*Node
	doc      *Document
	handlers map[EventType][]Handler
	removed  bool
}

// NewElement 创建一个未挂载的节点。
func NewElement(tag string) (*Node, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if _, ok := contentModel[tag]; !ok {
		return nil, fmt.Errorf("%w: unknown tag %q", ErrElementCreation, tag)
	}
	return &Node{
		tag:    tag,
		attrs:  map[string]string{},
		inline: map[string]string{},
	}, nil
}

// Append 创建 tag 子节点并挂到 n 的末尾。
func (n *Node) Append(tag string) (*Node, error) {
	child, err := NewElement(tag)
	if err != nil {
		return nil, err
	}
	if err := n.AppendChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// AppendChild 将已创建的节点挂到 n 下；child 若已有父节点会先被移出。
func (n *Node) AppendChild(child *Node) error {
	if n == nil || child == nil {
		return fmt.Errorf("%w: nil node", ErrElementCreation)
	}
	if n.removed {
		return fmt.Errorf("%w: parent <%s> was removed", ErrElementCreation, n.tag)
	}
	if !contentModel[n.tag][child.tag] {
		return fmt.Errorf("%w: <%s> cannot contain <%s>", ErrElementCreation, n.tag, child.tag)
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return fmt.Errorf("%w: cycle", ErrElementCreation)
		}
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = n
	child.removed = false
	n.children = append(n.children, child)
	child.setDocument(n.doc)
	return nil
}

func (n *Node) setDocument(d *Document) {
	n.doc = d
	for _, c := range n.children {
		c.setDocument(d)
	}
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	child.parent = nil
}

// Remove 将节点从父节点移除，并注销整棵子树上的事件处理器。
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.detach(n)
	}
	n.destroy()
}

func (n *Node) destroy() {
	n.removed = true
	n.handlers = nil
	n.doc = nil
	for _, c := range n.children {
		c.destroy()
	}
}

// Tag 返回标签名。
func (n *Node) Tag() string { return n.tag }

// ID 返回元素 id。
func (n *Node) ID() string { return n.id }

// SetID 设置元素 id。
func (n *Node) SetID(id string) *Node {
	n.id = strings.TrimSpace(id)
	return n
}

// Parent 返回父节点。
func (n *Node) Parent() *Node { return n.parent }

// ParentElement 实现 style.Element。
func (n *Node) ParentElement() style.Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children 返回子节点的拷贝。
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Document 返回节点所属文档，未挂载时为 nil。
func (n *Node) Document() *Document { return n.doc }

// Attached 判断节点是否挂在文档根节点之下。
func (n *Node) Attached() bool {
	if n == nil || n.removed || n.doc == nil {
		return false
	}
	p := n
	for p.parent != nil {
		p = p.parent
	}
	return p == n.doc.root
}

// SetAttr 设置属性；"id"、"class" 会转发到对应字段。
func (n *Node) SetAttr(name, value string) *Node {
	switch name {
	case "id":
		return n.SetID(value)
	case "class":
		n.classes = strings.Fields(value)
		return n
	}
	n.attrs[name] = value
	return n
}

// SetAttrFloat 以最短十进制形式写入数值属性。
func (n *Node) SetAttrFloat(name string, v float64) *Node {
	return n.SetAttr(name, FormatFloat(v))
}

// Attr 读取属性。
func (n *Node) Attr(name string) (string, bool) {
	switch name {
	case "id":
		return n.id, n.id != ""
	case "class":
		return strings.Join(n.classes, " "), len(n.classes) > 0
	}
	v, ok := n.attrs[name]
	return v, ok
}

// AttrFloat 按 parseFloat 语义读取数值属性（忽略尾随单位）。
func (n *Node) AttrFloat(name string) (float64, error) {
	v, ok := n.attrs[name]
	if !ok {
		return 0, fmt.Errorf("dom: <%s> has no attribute %q", n.tag, name)
	}
	return ParseFloatPrefix(v)
}

// RemoveAttr 删除属性。
func (n *Node) RemoveAttr(name string) *Node {
	delete(n.attrs, name)
	return n
}

// AttrNames 返回排好序的属性名，便于稳定输出。
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetStyle 设置内联样式。
func (n *Node) SetStyle(prop, value string) *Node {
	n.inline[style.PropertyName(prop)] = value
	return n
}

// StyleValue 读取内联样式。
func (n *Node) StyleValue(prop string) (string, bool) {
	v, ok := n.inline[style.PropertyName(prop)]
	return v, ok
}

// InlineStyle 实现 style.Element。
func (n *Node) InlineStyle() map[string]string { return n.inline }

// Classes 返回 class 列表的拷贝。
func (n *Node) Classes() []string {
	out := make([]string, len(n.classes))
	copy(out, n.classes)
	return out
}

// HasClass 实现 style.Element。
func (n *Node) HasClass(name string) bool {
	for _, c := range n.classes {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass 追加 class（去重）。
func (n *Node) AddClass(names ...string) *Node {
	for _, name := range names {
		for _, f := range strings.Fields(name) {
			if !n.HasClass(f) {
				n.classes = append(n.classes, f)
			}
		}
	}
	return n
}

// RemoveClass 移除 class。
func (n *Node) RemoveClass(name string) *Node {
	out := n.classes[:0]
	for _, c := range n.classes {
		if c != name {
			out = append(out, c)
		}
	}
	n.classes = out
	return n
}

// Classed 与 d3 的 classed 一致：on 为真时添加，否则移除。
func (n *Node) Classed(name string, on bool) *Node {
	if on {
		return n.AddClass(name)
	}
	return n.RemoveClass(name)
}

// SetText 替换文本内容；与 DOM 的 textContent 一样会移除全部子节点。
func (n *Node) SetText(s string) *Node {
	for _, c := range n.children {
		c.parent = nil
		c.destroy()
	}
	n.children = nil
	n.text = s
	return n
}

// OwnText 返回节点自身的文本（不含子节点）。
func (n *Node) OwnText() string { return n.text }

// Text 返回节点及其后代文本的拼接，等价于 textContent。
func (n *Node) Text() string {
	if len(n.children) == 0 {
		return n.text
	}
	var b strings.Builder
	b.WriteString(n.text)
	for _, c := range n.children {
		b.WriteString(c.Text())
	}
	return b.String()
}

// SetTranslate 设置 transform="translate(x, y)"。
func (n *Node) SetTranslate(x, y float64) *Node {
	return n.SetAttr("transform", "translate("+FormatFloat(x)+", "+FormatFloat(y)+")")
}

// Translate 解析 translate 变换；没有变换时返回 (0, 0, true)。
func (n *Node) Translate() (float64, float64, bool) {
	v, ok := n.attrs["transform"]
	if !ok || strings.TrimSpace(v) == "" {
		return 0, 0, true
	}
	m := translatePattern.FindStringSubmatch(v)
	if m == nil {
		return 0, 0, false
	}
	x, errX := strconv.ParseFloat(m[1], 64)
	y, errY := strconv.ParseFloat(m[2], 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// Walk 先序遍历子树；fn 返回 false 时跳过该节点的子树。
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Snapshot 记录节点内容，用于失败时回滚。
type Snapshot struct {
	node     *Node
	text     string
	children []*Node
	attrs    map[string]string
}

// Snapshot 保存当前文本、子节点与属性。
func (n *Node) Snapshot() Snapshot {
	attrs := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		attrs[k] = v
	}
	return Snapshot{node: n, text: n.text, children: n.Children(), attrs: attrs}
}

// Restore 回滚到快照时的内容；快照之后新增的子节点会被销毁。
func (s Snapshot) Restore() {
	n := s.node
	if n == nil {
		return
	}
	kept := make(map[*Node]bool, len(s.children))
	for _, c := range s.children {
		kept[c] = true
	}
	for _, c := range n.children {
		if !kept[c] {
			c.parent = nil
			c.destroy()
		}
	}
	n.children = nil
	for _, c := range s.children {
		c.parent = n
		c.removed = false
		c.setDocument(n.doc)
		n.children = append(n.children, c)
	}
	n.text = s.text
	n.attrs = s.attrs
}

// FormatFloat 以最短形式输出浮点数。
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var floatPrefix = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// ParseFloatPrefix 解析字符串开头的数字，行为同 JavaScript 的 parseFloat（"0.8em" → 0.8）。
func ParseFloatPrefix(v string) (float64, error) {
	m := floatPrefix.FindString(v)
	if m == "" {
		return 0, fmt.Errorf("dom: %q is not a number", v)
	}
	return strconv.ParseFloat(strings.TrimSpace(m), 64)
}
