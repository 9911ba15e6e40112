package editor

import (
	"slices"

	"github.com/dgallion1/affigen/internal/doctree"
)

// InsertText replaces the selection with s. The new run takes the pending
// marks, or those of the text before the cursor, and the cursor moves to
// its end.
func (e *Editor) InsertText(s string) error {
	if e.sel == nil {
		return nil
	}
	start, end := e.sel.ordered()
	marks := e.cursorMarks()
	if !e.sel.collapsed() && e.pending == nil {
		marks = marksAt(e.doc.Leaves()[start.leaf], start.off)
	}
	next := position{leaf: start.leaf, off: start.off + runeLen(s)}

	err := e.batch(func(doc doctree.Document) (doctree.Document, error) {
		if start != end {
			doc = deleteRange(doc, start, end)
		}
		b := doc.Leaves()[start.leaf]
		i := splitAt(b, start.off)
		t := &doctree.Text{Text: s}
		t.SetMarks(marks)
		b.Children = slices.Insert(b.Children, i, t)
		return doc, nil
	}, &selection{anchor: next, focus: next})
	e.pending = nil
	return err
}

// Delete removes the selected text. Leaves wholly inside the selection are
// dropped and the last leaf's remainder joins the first. A collapsed
// cursor deletes nothing.
func (e *Editor) Delete() error {
	if e.sel == nil || e.sel.collapsed() {
		return nil
	}
	start, end := e.sel.ordered()
	return e.batch(func(doc doctree.Document) (doctree.Document, error) {
		return deleteRange(doc, start, end), nil
	}, &selection{anchor: start, focus: start})
}

func deleteRange(doc doctree.Document, start, end position) doctree.Document {
	leaves := doc.Leaves()
	first := leaves[start.leaf]
	if start.leaf == end.leaf {
		i := splitAt(first, start.off)
		j := splitAt(first, end.off)
		first.Children = append(first.Children[:i], first.Children[j:]...)
		return doc
	}

	last := leaves[end.leaf]
	i := splitAt(first, start.off)
	j := splitAt(last, end.off)
	first.Children = append(first.Children[:i], last.Children[j:]...)

	gone := make(map[*doctree.Block]bool, end.leaf-start.leaf)
	for _, l := range leaves[start.leaf+1 : end.leaf+1] {
		gone[l] = true
	}
	out := doc[:0]
	for _, b := range doc {
		if b.Kind.IsList() {
			b.Items = slices.DeleteFunc(b.Items, func(it *doctree.Block) bool { return gone[it] })
			out = append(out, b)
			continue
		}
		if !gone[b] {
			out = append(out, b)
		}
	}
	return out
}
