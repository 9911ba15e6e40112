// Package assembly builds finished affidavits from boilerplate, case data
// and a body of narrative blocks.
package assembly

import (
	"strconv"

	"github.com/dgallion1/affigen/internal/doctree"
)

// Assemble concatenates the three parts into one document. The blocks are
// not copied.
func Assemble(header, body, footer []*doctree.Block) doctree.Document {
	out := make(doctree.Document, 0, len(header)+len(body)+len(footer))
	out = append(out, header...)
	out = append(out, body...)
	return append(out, footer...)
}

// NumberParagraphs returns a copy of body with "<n>. " prepended to the
// first run of every paragraph and heading, counting from 1. List
// containers are copied unnumbered and do not advance the count.
// Numbering an already numbered body numbers it again.
func NumberParagraphs(body []*doctree.Block) []*doctree.Block {
	out := make([]*doctree.Block, len(body))
	n := 0
	for i, b := range body {
		cp := b.Clone()
		out[i] = cp
		if cp.Kind.IsList() {
			continue
		}
		n++
		if len(cp.Children) == 0 {
			cp.Children = []*doctree.Text{{}}
		}
		cp.Children[0].Text = strconv.Itoa(n) + ". " + cp.Children[0].Text
	}
	return out
}
