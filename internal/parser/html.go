package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/affigen/internal/doctree"
)

// HTMLParser handles HTML files. Block tags become blocks; b/strong,
// i/em, u and an inline font-size style become marks; text-align becomes
// the block alignment.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	var blocks []*doctree.Block
	htmlBlocks(root, &blocks)
	return finish(blocks), nil
}

// htmlBlocks walks block-level structure under n.
func htmlBlocks(n *html.Node, out *[]*doctree.Block) {
	var loose runs
	flush := func() {
		if !loose.empty() {
			*out = append(*out, leaf(doctree.KindParagraph, 0, doctree.AlignNone, &loose))
		}
		loose = runs{}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			loose.add(collapseSpace(c.Data), doctree.Marks{})
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}

		switch tag := c.Data; {
		case tag == "script" || tag == "style" || tag == "nav" || tag == "head" || tag == "template":
			continue
		case headingLevel(tag) > 0:
			flush()
			var r runs
			htmlInline(c, doctree.Marks{}, &r)
			*out = append(*out, leaf(doctree.KindHeading, headingLevel(tag), alignOf(c), &r))
		case tag == "ul" || tag == "ol":
			flush()
			if list := htmlList(c); list != nil {
				*out = append(*out, list)
			}
		case tag == "p" || tag == "blockquote" || tag == "pre" || tag == "td" || tag == "th" || tag == "li":
			flush()
			var r runs
			htmlInline(c, doctree.Marks{}, &r)
			*out = append(*out, leaf(doctree.KindParagraph, 0, alignOf(c), &r))
		case tag == "div" && !hasBlockChild(c):
			flush()
			var r runs
			htmlInline(c, doctree.Marks{}, &r)
			if !r.empty() {
				*out = append(*out, leaf(doctree.KindParagraph, 0, alignOf(c), &r))
			}
		case isBlockTag(tag):
			flush()
			htmlBlocks(c, out)
		default:
			inlineNode(c, doctree.Marks{}, &loose)
		}
	}
	flush()
}

func htmlList(n *html.Node) *doctree.Block {
	kind := doctree.KindBulletedList
	if n.Data == "ol" {
		kind = doctree.KindNumberedList
	}
	list := &doctree.Block{Kind: kind, Align: alignOf(n)}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		var r runs
		htmlInline(c, doctree.Marks{}, &r)
		list.Items = append(list.Items, leaf(doctree.KindListItem, 0, alignOf(c), &r))
	}
	if len(list.Items) == 0 {
		return nil
	}
	return list
}

// htmlInline appends the text under n to r with marks m inherited from
// above.
func htmlInline(n *html.Node, m doctree.Marks, r *runs) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		inlineNode(c, m, r)
	}
}

func inlineNode(c *html.Node, m doctree.Marks, r *runs) {
	switch c.Type {
	case html.TextNode:
		r.add(collapseSpace(c.Data), m)
	case html.ElementNode:
		switch c.Data {
		case "script", "style", "ul", "ol":
			return
		case "br":
			r.add("\n", m)
			return
		case "b", "strong":
			m.Bold = true
		case "i", "em":
			m.Italic = true
		case "u", "ins":
			m.Underline = true
		}
		if size := styleValue(c, "font-size"); size != "" {
			m.FontSize = size
		}
		htmlInline(c, m, r)
	}
}

var blockTags = map[string]bool{
	"div": true, "section": true, "article": true, "main": true, "header": true,
	"footer": true, "aside": true, "table": true, "thead": true, "tbody": true,
	"tr": true, "body": true, "form": true, "figure": true,
}

func isBlockTag(tag string) bool {
	return blockTags[tag] || headingLevel(tag) > 0 || tag == "p" || tag == "ul" || tag == "ol" ||
		tag == "li" || tag == "blockquote" || tag == "pre" || tag == "td" || tag == "th"
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlockTag(c.Data) {
			return true
		}
	}
	return false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// styleValue reads one property from an inline style attribute.
func styleValue(n *html.Node, prop string) string {
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func alignOf(n *html.Node) doctree.Align {
	v := styleValue(n, "text-align")
	if v == "" {
		v = attr(n, "align")
	}
	a := doctree.Align(strings.ToLower(v))
	if a == doctree.AlignNone || !a.Valid() {
		return doctree.AlignNone
	}
	return a
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return spaceRe.ReplaceAllString(s, " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
