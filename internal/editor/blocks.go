package editor

import (
	"slices"

	"github.com/dgallion1/affigen/internal/doctree"
)

// selectedRange returns the ordered selection with a hanging end removed:
// a focus at offset zero of a later leaf does not pull that leaf in.
func (e *Editor) selectedRange() (position, position) {
	start, end := e.sel.ordered()
	if start != end && end.leaf > start.leaf && end.off == 0 {
		prev := e.doc.Leaves()[end.leaf-1]
		end = position{leaf: end.leaf - 1, off: leafLen(prev)}
	}
	return start, end
}

// segment is a run of selected leaves that share a parent: one top-level
// leaf, or the covered items of one list container.
type segment struct {
	list   *doctree.Block
	leaves []*doctree.Block
}

// restructure replaces the top-level blocks touched by leaves [first, last]
// with whatever fn builds from them. A list that is only partly covered is
// split, and its uncovered items stay in copies of the original container.
// Leaf order is preserved so positions stay valid.
func restructure(doc doctree.Document, first, last int, fn func([]segment) []*doctree.Block) doctree.Document {
	refs := leafRefs(doc)
	topFirst, topLast := refs[first].top, refs[last].top

	out := slices.Clone(doc[:topFirst])
	var (
		segs  []segment
		after *doctree.Block
	)
	for top := topFirst; top <= topLast; top++ {
		b := doc[top]
		if !b.Kind.IsList() {
			segs = append(segs, segment{leaves: []*doctree.Block{b}})
			continue
		}
		lo, hi := 0, len(b.Items)
		if top == topFirst {
			lo = refs[first].item
		}
		if top == topLast {
			hi = refs[last].item + 1
		}
		if lo > 0 {
			out = append(out, &doctree.Block{Kind: b.Kind, Align: b.Align, Items: slices.Clone(b.Items[:lo])})
		}
		if hi < len(b.Items) {
			after = &doctree.Block{Kind: b.Kind, Align: b.Align, Items: slices.Clone(b.Items[hi:])}
		}
		segs = append(segs, segment{list: b, leaves: slices.Clone(b.Items[lo:hi])})
	}
	out = append(out, fn(segs)...)
	if after != nil {
		out = append(out, after)
	}
	return append(out, doc[topLast+1:]...)
}

func flatten(segs []segment) []*doctree.Block {
	var out []*doctree.Block
	for _, s := range segs {
		out = append(out, s.leaves...)
	}
	return out
}

func (e *Editor) anchorRef() leafRef {
	return leafRefs(e.doc)[e.sel.anchor.leaf]
}

// ToggleList moves the selected blocks into a list of kind target, or out
// of it when the anchor already sits in such a list. Items of a list of
// the other kind are unwrapped first and then rewrapped.
func (e *Editor) ToggleList(target doctree.Kind) error {
	if !target.IsList() {
		return ErrInvalidKind
	}
	if e.sel == nil {
		return nil
	}
	ref := e.anchorRef()
	active := ref.list != nil && ref.list.Kind == target
	start, end := e.selectedRange()

	return e.batch(func(doc doctree.Document) (doctree.Document, error) {
		return restructure(doc, start.leaf, end.leaf, func(segs []segment) []*doctree.Block {
			leaves := flatten(segs)
			for _, l := range leaves {
				l.LiftFromList()
			}
			if active {
				return leaves
			}
			for _, l := range leaves {
				l.WrapAsListItem()
			}
			return []*doctree.Block{{Kind: target, Items: leaves}}
		}), nil
	}, nil)
}

// IsBlockActive reports whether the anchor's block has the given kind. For
// list kinds it checks the enclosing container. A heading level of zero
// matches any level.
func (e *Editor) IsBlockActive(kind doctree.Kind, level int) bool {
	if e.sel == nil {
		return false
	}
	ref := e.anchorRef()
	if kind.IsList() {
		return ref.list != nil && ref.list.Kind == kind
	}
	if ref.block.Kind != kind {
		return false
	}
	return kind != doctree.KindHeading || level <= 0 || ref.block.Level == level
}

// ToggleBlock sets every selected block to kind/level, or back to a
// paragraph when the anchor block already has it. List kinds are handled
// by ToggleList. Selected list items leave their list.
func (e *Editor) ToggleBlock(kind doctree.Kind, level int) error {
	if kind.IsList() {
		return e.ToggleList(kind)
	}
	if kind != doctree.KindParagraph && kind != doctree.KindHeading {
		return ErrInvalidKind
	}
	if e.sel == nil {
		return nil
	}
	if e.IsBlockActive(kind, level) {
		kind, level = doctree.KindParagraph, 0
	}
	start, end := e.selectedRange()

	return e.batch(func(doc doctree.Document) (doctree.Document, error) {
		return restructure(doc, start.leaf, end.leaf, func(segs []segment) []*doctree.Block {
			leaves := flatten(segs)
			for _, l := range leaves {
				l.LiftFromList()
				l.SetKind(kind, level)
			}
			return leaves
		}), nil
	}, nil)
}

// SetAlignment aligns the selected blocks. Covered list items keep their
// container, which is split when only some of its items are selected.
// Left is stored as an absent attribute.
func (e *Editor) SetAlignment(a doctree.Align) error {
	if !a.Valid() {
		return ErrInvalidAlign
	}
	if a == doctree.AlignLeft {
		a = doctree.AlignNone
	}
	if e.sel == nil {
		return nil
	}
	start, end := e.selectedRange()

	return e.batch(func(doc doctree.Document) (doctree.Document, error) {
		return restructure(doc, start.leaf, end.leaf, func(segs []segment) []*doctree.Block {
			var out []*doctree.Block
			for _, s := range segs {
				for _, l := range s.leaves {
					l.Align = a
				}
				if s.list == nil {
					out = append(out, s.leaves...)
					continue
				}
				out = append(out, &doctree.Block{Kind: s.list.Kind, Align: a, Items: s.leaves})
			}
			return out
		}), nil
	}, nil)
}

// CurrentAlign returns the anchor block's alignment, falling back to its
// list container's hint and then to left.
func (e *Editor) CurrentAlign() doctree.Align {
	if e.sel == nil {
		return doctree.AlignLeft
	}
	ref := e.anchorRef()
	if ref.block.Align != doctree.AlignNone {
		return ref.block.Align
	}
	if ref.list != nil && ref.list.Align != doctree.AlignNone {
		return ref.list.Align
	}
	return doctree.AlignLeft
}
