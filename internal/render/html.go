package render

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/affigen/internal/doctree"
)

// HTML writes a standalone HTML page. Marks nest as strong, em, u and a
// font-size span; alignment is an inline text-align style.
type HTML struct{}

func (HTML) ContentType() string { return "text/html; charset=utf-8" }
func (HTML) Extension() string   { return ".html" }

func (HTML) Render(w io.Writer, doc doctree.Document) error {
	page := element(atom.Html)
	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	page.AppendChild(head)

	body := element(atom.Body)
	for _, b := range doc {
		body.AppendChild(htmlBlock(b))
	}
	page.AppendChild(body)

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	return html.Render(w, page)
}

// Fragment renders the blocks without the surrounding page.
func Fragment(doc doctree.Document) (string, error) {
	var sb strings.Builder
	for _, b := range doc {
		if err := html.Render(&sb, htmlBlock(b)); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func htmlBlock(b *doctree.Block) *html.Node {
	var n *html.Node
	switch b.Kind {
	case doctree.KindHeading:
		level := min(max(b.Level, 1), 6)
		n = element(headingAtoms[level-1])
	case doctree.KindBulletedList, doctree.KindNumberedList:
		n = element(atom.Ul)
		if b.Kind == doctree.KindNumberedList {
			n = element(atom.Ol)
		}
		for _, it := range b.Items {
			li := element(atom.Li)
			setAlign(li, it.Align)
			appendRuns(li, it.Children)
			n.AppendChild(li)
		}
		setAlign(n, b.Align)
		return n
	default:
		n = element(atom.P)
	}
	setAlign(n, b.Align)
	appendRuns(n, b.Children)
	return n
}

func setAlign(n *html.Node, a doctree.Align) {
	if a != doctree.AlignNone {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: "text-align: " + string(a)})
	}
}

func appendRuns(parent *html.Node, runs []*doctree.Text) {
	for _, t := range runs {
		inner := parent
		wrap := func(n *html.Node) {
			inner.AppendChild(n)
			inner = n
		}
		if t.FontSize != "" {
			span := element(atom.Span)
			span.Attr = []html.Attribute{{Key: "style", Val: "font-size: " + t.FontSize}}
			wrap(span)
		}
		if t.Bold {
			wrap(element(atom.Strong))
		}
		if t.Italic {
			wrap(element(atom.Em))
		}
		if t.Underline {
			wrap(element(atom.U))
		}
		for i, line := range strings.Split(t.Text, "\n") {
			if i > 0 {
				inner.AppendChild(element(atom.Br))
			}
			if line != "" {
				inner.AppendChild(&html.Node{Type: html.TextNode, Data: line})
			}
		}
	}
}
