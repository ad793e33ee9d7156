package dom

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// WriteSVG 将文档序列化为独立的 SVG 文本；内联样式输出为 style 属性。
func (d *Document) WriteSVG(w io.Writer) error {
	enc := xml.NewEncoder(w)
	if err := writeNode(enc, d.root, true); err != nil {
		return err
	}
	return enc.Flush()
}

// SVGString 便于测试与嵌入。
func (d *Document) SVGString() (string, error) {
	var b strings.Builder
	if err := d.WriteSVG(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeNode(enc *xml.Encoder, n *Node, root bool) error {
	start := xml.StartElement{Name: xml.Name{Local: n.tag}}
	if root {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: "http://www.w3.org/2000/svg"})
	}
	for _, a := range NodeAttributes(n) {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a[0]}, Value: a[1]})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.text != "" {
		if err := enc.EncodeToken(xml.CharData(n.text)); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if err := writeNode(enc, c, false); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// NodeAttributes 返回稳定顺序的 (name, value) 列表：id、class、属性、style。
func NodeAttributes(n *Node) [][2]string {
	var out [][2]string
	if n.id != "" {
		out = append(out, [2]string{"id", n.id})
	}
	if len(n.classes) > 0 {
		out = append(out, [2]string{"class", strings.Join(n.classes, " ")})
	}
	for _, k := range n.AttrNames() {
		out = append(out, [2]string{k, n.attrs[k]})
	}
	if len(n.inline) > 0 {
		keys := make([]string, 0, len(n.inline))
		for k := range n.inline {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+n.inline[k])
		}
		out = append(out, [2]string{"style", strings.Join(parts, "; ")})
	}
	return out
}
