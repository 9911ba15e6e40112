package editor

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/affigen/internal/doctree"
)

// Mark names a character-level attribute.
type Mark string

const (
	MarkBold      Mark = "bold"
	MarkItalic    Mark = "italic"
	MarkUnderline Mark = "underline"
	MarkFontSize  Mark = "fontSize"
)

// Font sizes are in pixels.
const (
	DefaultFontSize = 16
	MinFontSize     = 1
	MaxFontSize     = 512
)

func (m Mark) toggleable() bool {
	return m == MarkBold || m == MarkItalic || m == MarkUnderline
}

func hasMark(ms doctree.Marks, m Mark) bool {
	switch m {
	case MarkBold:
		return ms.Bold
	case MarkItalic:
		return ms.Italic
	case MarkUnderline:
		return ms.Underline
	case MarkFontSize:
		return ms.FontSize != ""
	}
	return false
}

func setMark(ms *doctree.Marks, m Mark, on bool) {
	switch m {
	case MarkBold:
		ms.Bold = on
	case MarkItalic:
		ms.Italic = on
	case MarkUnderline:
		ms.Underline = on
	}
}

// cursorMarks follows the usual editor convention: pending marks win,
// otherwise the marks of the run at the cursor.
func (e *Editor) cursorMarks() doctree.Marks {
	if e.pending != nil {
		return *e.pending
	}
	refs := leafRefs(e.doc)
	return marksAt(refs[e.sel.anchor.leaf].block, e.sel.anchor.off)
}

// IsMarkActive reports whether m is on for the selection. A collapsed
// cursor reads its pending marks; an expanded selection is active when any
// intersecting run carries the mark, so a mixed selection toggles off.
func (e *Editor) IsMarkActive(m Mark) bool {
	if e.sel == nil {
		return false
	}
	if e.sel.collapsed() {
		return hasMark(e.cursorMarks(), m)
	}
	start, end := e.sel.ordered()
	for _, s := range spans(e.doc, start, end) {
		for _, t := range s.overlapping() {
			if hasMark(t.Marks(), m) {
				return true
			}
		}
	}
	return false
}

// ToggleMark removes m from every run in the selection when it is active
// and adds it otherwise, splitting runs at the selection edges. On a
// collapsed cursor only the pending marks change.
func (e *Editor) ToggleMark(m Mark) error {
	if !m.toggleable() {
		return ErrInvalidMark
	}
	if e.sel == nil {
		return nil
	}
	on := !e.IsMarkActive(m)
	if e.sel.collapsed() {
		ms := e.cursorMarks()
		setMark(&ms, m, on)
		e.pending = &ms
		return nil
	}
	start, end := e.sel.ordered()
	return e.batch(func(doc doctree.Document) (doctree.Document, error) {
		for _, s := range spans(doc, start, end) {
			for _, t := range s.cut() {
				ms := t.Marks()
				setMark(&ms, m, on)
				t.SetMarks(ms)
			}
		}
		return doc, nil
	}, nil)
}

// FontSize is a font size reading for the selection.
type FontSize struct {
	Px      float64 `json:"px"`
	Mixed   bool    `json:"mixed,omitempty"`
	Default bool    `json:"default,omitempty"`
}

// FontSize reports the selection's size: the cursor's size, the shared
// size of every selected run, Mixed when they differ, or the default when
// nothing is set.
func (e *Editor) FontSize() FontSize {
	def := FontSize{Px: DefaultFontSize, Default: true}
	if e.sel == nil {
		return def
	}
	if e.sel.collapsed() {
		if px, ok := parsePx(e.cursorMarks().FontSize); ok {
			return FontSize{Px: px}
		}
		return def
	}

	start, end := e.sel.ordered()
	var (
		seen     bool
		explicit bool
		value    float64
	)
	for _, s := range spans(e.doc, start, end) {
		for _, t := range s.overlapping() {
			px, ok := parsePx(t.FontSize)
			if !ok {
				px = DefaultFontSize
			} else {
				explicit = true
			}
			if seen && px != value {
				return FontSize{Mixed: true}
			}
			seen, value = true, px
		}
	}
	if !seen || !explicit {
		return def
	}
	return FontSize{Px: value}
}

// SetFontSize applies px to the selection, clamped to [MinFontSize,
// MaxFontSize]. A non-finite or non-positive px removes the attribute.
func (e *Editor) SetFontSize(px float64) error {
	if e.sel == nil {
		return nil
	}
	size := ""
	if !math.IsNaN(px) && !math.IsInf(px, 0) && px > 0 {
		size = formatPx(min(max(px, MinFontSize), MaxFontSize))
	}
	if e.sel.collapsed() {
		ms := e.cursorMarks()
		ms.FontSize = size
		e.pending = &ms
		return nil
	}
	start, end := e.sel.ordered()
	return e.batch(func(doc doctree.Document) (doctree.Document, error) {
		for _, s := range spans(doc, start, end) {
			for _, t := range s.cut() {
				t.FontSize = size
			}
		}
		return doc, nil
	}, nil)
}

// StepFontSize adds delta to the current size. Mixed or unset selections
// start from the default; the result never drops below MinFontSize.
func (e *Editor) StepFontSize(delta float64) error {
	if e.sel == nil {
		return nil
	}
	cur := e.FontSize()
	base := cur.Px
	if cur.Mixed || cur.Default {
		base = DefaultFontSize
	}
	return e.SetFontSize(max(base+delta, MinFontSize))
}

func formatPx(px float64) string {
	return strconv.FormatFloat(px, 'f', -1, 64) + "px"
}

func parsePx(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
