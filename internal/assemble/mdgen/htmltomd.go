package mdgen

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToMarkdown converts a PageRecord's sanitized HTML content to Markdown
// following the authoritative conversion subset: headings, paragraphs,
// strong/em, links, images, lists (ordered lists renumbered), inline and
// fenced code, blockquotes, and horizontal rules. Deliberately
// hand-written rather than pulling in an HTML-to-Markdown library: the
// conversion table is small and fixed, and the distilled spec calls for
// no external dependency here specifically.
func ToMarkdown(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return strings.TrimSpace(htmlContent)
	}

	body := doc.Find("body")
	if body.Length() == 0 || body.Nodes[0] == nil {
		return strings.TrimSpace(doc.Text())
	}

	var b strings.Builder
	for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		renderNode(&b, c, 0)
	}
	return strings.TrimSpace(b.String())
}

func renderNode(b *strings.Builder, n *html.Node, listDepth int) {
	switch n.Type {
	case html.TextNode:
		text := collapseWhitespace(n.Data)
		if text != "" {
			b.WriteString(text)
		}
		return
	case html.ElementNode:
		renderElement(b, n, listDepth)
		return
	default:
		renderChildren(b, n, listDepth)
	}
}

func renderChildren(b *strings.Builder, n *html.Node, listDepth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c, listDepth)
	}
}

func renderElement(b *strings.Builder, n *html.Node, listDepth int) {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.DataAtom - atom.H1 + 1)
		b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		renderChildren(b, n, listDepth)
		b.WriteString("\n")
	case atom.P:
		b.WriteString("\n\n")
		renderChildren(b, n, listDepth)
		b.WriteString("\n")
	case atom.Strong, atom.B:
		b.WriteString("**")
		renderChildren(b, n, listDepth)
		b.WriteString("**")
	case atom.Em, atom.I:
		b.WriteString("*")
		renderChildren(b, n, listDepth)
		b.WriteString("*")
	case atom.A:
		href := attr(n, "href")
		b.WriteString("[")
		renderChildren(b, n, listDepth)
		b.WriteString(fmt.Sprintf("](%s)", href))
	case atom.Img:
		src := attr(n, "src")
		alt := attr(n, "alt")
		b.WriteString(fmt.Sprintf("![%s](%s)", alt, src))
	case atom.Ul:
		b.WriteString("\n")
		renderList(b, n, listDepth, false)
	case atom.Ol:
		b.WriteString("\n")
		renderList(b, n, listDepth, true)
	case atom.Code:
		if n.Parent != nil && n.Parent.DataAtom == atom.Pre {
			renderChildren(b, n, listDepth)
			return
		}
		b.WriteString("`")
		renderChildren(b, n, listDepth)
		b.WriteString("`")
	case atom.Pre:
		b.WriteString("\n\n```\n")
		renderChildren(b, n, listDepth)
		b.WriteString("\n```\n")
	case atom.Blockquote:
		b.WriteString("\n")
		var inner strings.Builder
		renderChildren(&inner, n, listDepth)
		for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
			b.WriteString("> " + line + "\n")
		}
	case atom.Hr:
		b.WriteString("\n\n---\n")
	case atom.Br:
		b.WriteString("\n")
	case atom.Script, atom.Style:
		return
	default:
		renderChildren(b, n, listDepth)
	}
}

func renderList(b *strings.Builder, n *html.Node, listDepth int, ordered bool) {
	index := 1
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		b.WriteString(strings.Repeat("  ", listDepth))
		if ordered {
			b.WriteString(fmt.Sprintf("%d. ", index))
			index++
		} else {
			b.WriteString("- ")
		}
		renderChildren(b, c, listDepth+1)
		b.WriteString("\n")
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}
