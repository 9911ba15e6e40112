package parser

import (
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/dgallion1/affigen/internal/doctree"
)

// MarkdownParser handles Markdown files using goldmark. Emphasis becomes
// italic, strong emphasis bold.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var blocks []*doctree.Block
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = append(blocks, mdBlocks(n, src)...)
	}
	return finish(blocks), nil
}

func mdBlocks(n ast.Node, src []byte) []*doctree.Block {
	switch node := n.(type) {
	case *ast.Heading:
		var r runs
		mdInline(node, src, doctree.Marks{}, &r)
		return []*doctree.Block{leaf(doctree.KindHeading, node.Level, doctree.AlignNone, &r)}

	case *ast.List:
		kind := doctree.KindBulletedList
		if node.IsOrdered() {
			kind = doctree.KindNumberedList
		}
		list := &doctree.Block{Kind: kind}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			var r runs
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if _, nested := c.(*ast.List); nested {
					continue
				}
				if len(r.children) > 0 {
					r.add(" ", doctree.Marks{})
				}
				mdInline(c, src, doctree.Marks{}, &r)
			}
			list.Items = append(list.Items, leaf(doctree.KindListItem, 0, doctree.AlignNone, &r))
		}
		return []*doctree.Block{list}

	case *ast.Blockquote:
		var out []*doctree.Block
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			out = append(out, mdBlocks(c, src)...)
		}
		return out

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var r runs
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			r.add(string(seg.Value(src)), doctree.Marks{})
		}
		return []*doctree.Block{leaf(doctree.KindParagraph, 0, doctree.AlignNone, &r)}

	case *ast.ThematicBreak, *ast.HTMLBlock:
		return nil

	default:
		var r runs
		mdInline(n, src, doctree.Marks{}, &r)
		if r.empty() {
			return nil
		}
		return []*doctree.Block{leaf(doctree.KindParagraph, 0, doctree.AlignNone, &r)}
	}
}

// mdInline appends the inline content under n to r.
func mdInline(n ast.Node, src []byte, m doctree.Marks, r *runs) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			r.add(string(util.UnescapePunctuations(node.Segment.Value(src))), m)
			if node.HardLineBreak() {
				r.add("\n", m)
			} else if node.SoftLineBreak() {
				r.add(" ", m)
			}
		case *ast.String:
			r.add(string(node.Value), m)
		case *ast.Emphasis:
			inner := m
			if node.Level >= 2 {
				inner.Bold = true
			} else {
				inner.Italic = true
			}
			mdInline(node, src, inner, r)
		case *ast.AutoLink:
			r.add(string(node.URL(src)), m)
		case *ast.RawHTML:
			// Inline <u> is the only HTML markdown authors use for underline.
			raw := rawHTML(node, src)
			switch raw {
			case "<u>":
				m.Underline = true
			case "</u>":
				m.Underline = false
			}
		default:
			mdInline(c, src, m, r)
		}
	}
}

func rawHTML(n *ast.RawHTML, src []byte) string {
	var out []byte
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		out = append(out, seg.Value(src)...)
	}
	return string(out)
}
