// Package page exports a document as a standalone interactive HTML page.
package page

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ByLCY/datastory/dom"
	"github.com/ByLCY/datastory/fonts"
	"github.com/ByLCY/datastory/renderer"
	"github.com/ByLCY/datastory/story"
	"github.com/ByLCY/datastory/style"
)

// switchScript 在浏览器中复现点击按钮切换故事页的行为：显示目标页、隐藏其余页，
// 并只在按钮条上标记 clicked。
const switchScript = `(function () {
  var pages = document.querySelectorAll('[` + story.IndexAttr + `]');
  var ribbon = document.querySelectorAll('.` + story.RibbonClass + ` [` + story.PageAttr + `]');
  function select(n) {
    pages.forEach(function (p) {
      p.setAttribute('display', p.getAttribute('` + story.IndexAttr + `') === n ? 'block' : 'none');
    });
    ribbon.forEach(function (b) {
      b.classList.toggle('` + story.ClickedClass + `', b.getAttribute('` + story.PageAttr + `') === n);
    });
  }
  document.querySelectorAll('[` + story.PageAttr + `]').forEach(function (b) {
    b.addEventListener('click', function () { select(b.getAttribute('` + story.PageAttr + `')); });
  });
})();`

// FontSource 返回测量某个字体时实际使用的字体文件。
type FontSource interface {
	FontData(f style.Font) ([]byte, error)
}

// Renderer builds the HTML page.
type Renderer struct {
	Title  string
	Minify bool
	// Fonts 提供嵌入页面的字体数据，应与折行时的测量后端一致；nil 表示内置 Go 字体。
	Fonts FontSource
}

var _ renderer.Renderer = (*Renderer)(nil)

// Render 输出 <!DOCTYPE html> 文档：内嵌样式表、内联 SVG 与切换脚本。
func (r *Renderer) Render(doc *dom.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("page: nil document")
	}
	root, err := Build(doc, r.Title, r.Fonts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("page: render html: %w", err)
	}
	if !r.Minify {
		return buf.Bytes(), nil
	}
	out, err := newMinifier().Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("page: minify: %w", err)
	}
	return out, nil
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", mhtml.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return m
}

// Build 构造完整的 HTML 节点树；src 为 nil 时嵌入内置 Go 字体。
func Build(doc *dom.Document, title string, src FontSource) (*html.Node, error) {
	faces, err := fontFaces(doc, src)
	if err != nil {
		return nil, err
	}
	document := &html.Node{Type: html.DocumentNode}
	document.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlEl := element(atom.Html, "html")
	head := element(atom.Head, "head")
	meta := element(atom.Meta, "meta", html.Attribute{Key: "charset", Val: "utf-8"})
	head.AppendChild(meta)
	if title != "" {
		t := element(atom.Title, "title")
		t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		head.AppendChild(t)
	}
	if css := faces + doc.Sheet().CSS(); css != "" {
		st := element(atom.Style, "style")
		st.AppendChild(&html.Node{Type: html.TextNode, Data: css})
		head.AppendChild(st)
	}

	body := element(atom.Body, "body")
	body.AppendChild(svgNode(doc.Root(), true))
	script := element(atom.Script, "script")
	script.AppendChild(&html.Node{Type: html.TextNode, Data: switchScript})
	body.AppendChild(script)

	htmlEl.AppendChild(head)
	htmlEl.AppendChild(body)
	document.AppendChild(htmlEl)
	return document, nil
}

// genericFamilies 不能用 @font-face 声明。
var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true, "inherit": true, "initial": true,
}

type builtinFonts struct{}

func (builtinFonts) FontData(f style.Font) ([]byte, error) {
	return fonts.Load(fonts.Resolve(f.Family, f.Weight, f.Style))
}

type face struct {
	family, weight, style string
}

// fontFaces 为文档中文字用到的每个字体族、字重与字形生成一条 @font-face，
// 浏览器因此使用与折行测量相同的字形宽度。
func fontFaces(doc *dom.Document, src FontSource) (string, error) {
	if src == nil {
		src = builtinFonts{}
	}
	seen := map[face]style.Font{}
	var walkErr error
	doc.Root().Walk(func(n *dom.Node) bool {
		if walkErr != nil {
			return false
		}
		if n.Tag() != "text" {
			return true
		}
		cs, err := doc.ComputedStyle(n)
		if err != nil {
			walkErr = err
			return false
		}
		f := cs.Font()
		name := firstFamily(f.Family)
		if name == "" || genericFamilies[strings.ToLower(name)] {
			return false
		}
		seen[face{family: name, weight: faceWeight(f.Weight), style: faceStyle(f.Style)}] = f
		return false
	})
	if walkErr != nil {
		return "", walkErr
	}

	keys := make([]face, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.family != b.family {
			return a.family < b.family
		}
		if a.weight != b.weight {
			return a.weight < b.weight
		}
		return a.style < b.style
	})
	var b strings.Builder
	for _, k := range keys {
		data, err := src.FontData(seen[k])
		if err != nil {
			return "", fmt.Errorf("page: embed font %q: %w", k.family, err)
		}
		fmt.Fprintf(&b, "@font-face { font-family: \"%s\"; font-weight: %s; font-style: %s; src: url(data:font/ttf;base64,%s) format(\"truetype\"); }\n",
			k.family, k.weight, k.style, base64.StdEncoding.EncodeToString(data))
	}
	return b.String(), nil
}

func firstFamily(family string) string {
	first, _, _ := strings.Cut(family, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

func faceWeight(w string) string {
	switch w = strings.ToLower(strings.TrimSpace(w)); w {
	case "", "lighter":
		return "normal"
	case "bolder":
		return "bold"
	}
	return w
}

func faceStyle(s string) string {
	if s = strings.ToLower(strings.TrimSpace(s)); s == "" {
		return "normal"
	}
	return s
}

func element(a atom.Atom, name string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: name, Attr: attrs}
}

func svgNode(n *dom.Node, root bool) *html.Node {
	out := &html.Node{
		Type:      html.ElementNode,
		Data:      n.Tag(),
		DataAtom:  atom.Lookup([]byte(n.Tag())),
		Namespace: "svg",
	}
	if root {
		out.Attr = append(out.Attr, html.Attribute{Key: "xmlns", Val: "http://www.w3.org/2000/svg"})
	}
	for _, a := range dom.NodeAttributes(n) {
		out.Attr = append(out.Attr, html.Attribute{Key: a[0], Val: a[1]})
	}
	if t := n.OwnText(); t != "" {
		out.AppendChild(&html.Node{Type: html.TextNode, Data: t})
	}
	for _, c := range n.Children() {
		out.AppendChild(svgNode(c, false))
	}
	return out
}
