package editor

import (
	"slices"
	"unicode/utf8"

	"github.com/dgallion1/affigen/internal/doctree"
)

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func leafLen(b *doctree.Block) int {
	n := 0
	for _, t := range b.Children {
		n += runeLen(t.Text)
	}
	return n
}

// splitAt makes sure a run boundary falls at off and returns the index of
// the first run starting there (len(Children) when off is the end).
func splitAt(b *doctree.Block, off int) int {
	acc := 0
	for i, t := range b.Children {
		if off == acc {
			return i
		}
		n := runeLen(t.Text)
		if off < acc+n {
			r := []rune(t.Text)
			right := &doctree.Text{Text: string(r[off-acc:])}
			right.SetMarks(t.Marks())
			t.Text = string(r[:off-acc])
			b.Children = slices.Insert(b.Children, i+1, right)
			return i + 1
		}
		acc += n
	}
	return len(b.Children)
}

// span is the part of one leaf covered by a selection.
type span struct {
	block    *doctree.Block
	from, to int
}

func spans(doc doctree.Document, start, end position) []span {
	refs := leafRefs(doc)
	out := make([]span, 0, end.leaf-start.leaf+1)
	for i := start.leaf; i <= end.leaf && i < len(refs); i++ {
		b := refs[i].block
		s := span{block: b, from: 0, to: leafLen(b)}
		if i == start.leaf {
			s.from = start.off
		}
		if i == end.leaf {
			s.to = end.off
		}
		out = append(out, s)
	}
	return out
}

// overlapping returns the runs intersecting the span without changing the
// block. An empty leaf contributes its single empty run.
func (s span) overlapping() []*doctree.Text {
	if leafLen(s.block) == 0 {
		return s.block.Children
	}
	var out []*doctree.Text
	acc := 0
	for _, t := range s.block.Children {
		n := runeLen(t.Text)
		if n > 0 && acc < s.to && acc+n > s.from {
			out = append(out, t)
		}
		acc += n
	}
	return out
}

// cut splits runs at the span edges and returns exactly the covered runs.
func (s span) cut() []*doctree.Text {
	if leafLen(s.block) == 0 {
		return s.block.Children
	}
	if s.from >= s.to {
		return nil
	}
	i := splitAt(s.block, s.from)
	j := splitAt(s.block, s.to)
	return s.block.Children[i:j]
}

// marksAt returns the marks a character typed at off would inherit: the
// run ending at or containing off, or the first run at offset zero.
func marksAt(b *doctree.Block, off int) doctree.Marks {
	if off == 0 || len(b.Children) == 1 {
		return b.Children[0].Marks()
	}
	acc := 0
	for _, t := range b.Children {
		n := runeLen(t.Text)
		if off <= acc+n {
			return t.Marks()
		}
		acc += n
	}
	return b.Children[len(b.Children)-1].Marks()
}
