// Package editor applies interactive editing commands to a document.
//
// An Editor owns one document, one optional selection and the pending
// marks for the next inserted text. Structural changes run against a copy
// of the document which is swapped in only when the whole change succeeds,
// so listeners never observe a half-applied edit. Commands issued while
// there is no selection do nothing.
package editor

import (
	"errors"
	"fmt"

	"github.com/dgallion1/affigen/internal/doctree"
)

var (
	ErrInvalidKind  = errors.New("invalid block kind")
	ErrInvalidMark  = errors.New("invalid mark")
	ErrInvalidAlign = errors.New("invalid alignment")
	ErrInvalidPath  = errors.New("invalid selection path")
)

// Point addresses a character offset inside a text run. Path is
// [block, run] for a top-level leaf or [list, item, run] inside a list.
type Point struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

// Range is a selection from Anchor to Focus. Focus may precede Anchor.
type Range struct {
	Anchor Point `json:"anchor"`
	Focus  Point `json:"focus"`
}

// Collapsed reports whether the range is a bare cursor.
func (r Range) Collapsed() bool {
	return r.Anchor.Offset == r.Focus.Offset && equalPath(r.Anchor.Path, r.Focus.Path)
}

func equalPath(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// position is a point expressed as (leaf index in reading order, rune
// offset within the leaf's text). Structural edits never reorder leaves,
// so positions survive wrapping, splitting and run merges.
type position struct {
	leaf int
	off  int
}

func (p position) less(q position) bool {
	if p.leaf != q.leaf {
		return p.leaf < q.leaf
	}
	return p.off < q.off
}

type selection struct {
	anchor position
	focus  position
}

func (s selection) collapsed() bool { return s.anchor == s.focus }

func (s selection) ordered() (position, position) {
	if s.focus.less(s.anchor) {
		return s.focus, s.anchor
	}
	return s.anchor, s.focus
}

// Editor is a handle on one document being edited.
type Editor struct {
	doc       doctree.Document
	sel       *selection
	pending   *doctree.Marks
	listeners []func(doctree.Document)
}

// New returns an editor over a normalized copy of doc with no selection.
func New(doc doctree.Document) *Editor {
	return &Editor{doc: doctree.Normalize(doc.Clone())}
}

// Document returns a copy of the current document.
func (e *Editor) Document() doctree.Document {
	return e.doc.Clone()
}

// OnChange registers fn to run after every committed document change.
// fn must not retain the document it is given.
func (e *Editor) OnChange(fn func(doctree.Document)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Editor) notify() {
	for _, fn := range e.listeners {
		fn(e.doc)
	}
}

// Replace discards the document and loads doc in its place, leaving a
// collapsed cursor at the start.
func (e *Editor) Replace(doc doctree.Document) {
	e.doc = doctree.Normalize(doc.Clone())
	e.sel = &selection{}
	e.pending = nil
	e.notify()
}

// Select sets the selection. Offsets past the end of a run are clamped.
func (e *Editor) Select(r Range) error {
	a, err := e.resolve(r.Anchor)
	if err != nil {
		return fmt.Errorf("anchor: %w", err)
	}
	f, err := e.resolve(r.Focus)
	if err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	e.sel = &selection{anchor: a, focus: f}
	e.pending = nil
	return nil
}

// SelectAll selects from the start of the first leaf to the end of the last.
func (e *Editor) SelectAll() {
	leaves := e.doc.Leaves()
	last := len(leaves) - 1
	e.sel = &selection{focus: position{leaf: last, off: leafLen(leaves[last])}}
	e.pending = nil
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	e.sel = nil
	e.pending = nil
}

// Selection returns the current selection, or nil.
func (e *Editor) Selection() *Range {
	if e.sel == nil {
		return nil
	}
	return &Range{Anchor: e.point(e.sel.anchor), Focus: e.point(e.sel.focus)}
}

// batch applies fn to a copy of the document, normalizes the result and
// commits it together with next (when non-nil) as the new selection.
// Listeners run once, after the commit.
func (e *Editor) batch(fn func(doc doctree.Document) (doctree.Document, error), next *selection) error {
	work, err := fn(e.doc.Clone())
	if err != nil {
		return err
	}
	e.doc = doctree.Normalize(work)
	if next != nil {
		e.sel = next
	}
	e.clampSelection()
	e.notify()
	return nil
}

func (e *Editor) clampSelection() {
	if e.sel == nil {
		return
	}
	leaves := e.doc.Leaves()
	clamp := func(p position) position {
		if p.leaf >= len(leaves) {
			p.leaf = len(leaves) - 1
			p.off = leafLen(leaves[p.leaf])
		}
		if n := leafLen(leaves[p.leaf]); p.off > n {
			p.off = n
		}
		return p
	}
	e.sel.anchor = clamp(e.sel.anchor)
	e.sel.focus = clamp(e.sel.focus)
}

type leafRef struct {
	block *doctree.Block
	list  *doctree.Block
	top   int
	item  int
}

func leafRefs(doc doctree.Document) []leafRef {
	var refs []leafRef
	for i, b := range doc {
		if b.Kind.IsList() {
			for j, it := range b.Items {
				refs = append(refs, leafRef{block: it, list: b, top: i, item: j})
			}
			continue
		}
		refs = append(refs, leafRef{block: b, top: i, item: -1})
	}
	return refs
}

func (r leafRef) path(run int) []int {
	if r.list != nil {
		return []int{r.top, r.item, run}
	}
	return []int{r.top, run}
}

func (e *Editor) resolve(p Point) (position, error) {
	var target *doctree.Block
	var run int
	switch len(p.Path) {
	case 2:
		top := p.Path[0]
		if top < 0 || top >= len(e.doc) || e.doc[top].Kind.IsList() {
			return position{}, ErrInvalidPath
		}
		target, run = e.doc[top], p.Path[1]
	case 3:
		top, item := p.Path[0], p.Path[1]
		if top < 0 || top >= len(e.doc) || !e.doc[top].Kind.IsList() {
			return position{}, ErrInvalidPath
		}
		if item < 0 || item >= len(e.doc[top].Items) {
			return position{}, ErrInvalidPath
		}
		target, run = e.doc[top].Items[item], p.Path[2]
	default:
		return position{}, ErrInvalidPath
	}
	if run < 0 || run >= len(target.Children) {
		return position{}, ErrInvalidPath
	}

	off := 0
	for _, t := range target.Children[:run] {
		off += runeLen(t.Text)
	}
	o := p.Offset
	if o < 0 {
		o = 0
	}
	if n := runeLen(target.Children[run].Text); o > n {
		o = n
	}

	for i, ref := range leafRefs(e.doc) {
		if ref.block == target {
			return position{leaf: i, off: off + o}, nil
		}
	}
	return position{}, ErrInvalidPath
}

func (e *Editor) point(pos position) Point {
	refs := leafRefs(e.doc)
	ref := refs[pos.leaf]
	acc := 0
	for i, t := range ref.block.Children {
		n := runeLen(t.Text)
		if pos.off <= acc+n {
			return Point{Path: ref.path(i), Offset: pos.off - acc}
		}
		acc += n
	}
	last := len(ref.block.Children) - 1
	return Point{Path: ref.path(last), Offset: runeLen(ref.block.Children[last].Text)}
}
