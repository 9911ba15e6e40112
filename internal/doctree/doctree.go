package doctree

import "strings"

// Kind is the block discriminant, serialized as "type".
type Kind string

const (
	KindParagraph    Kind = "paragraph"
	KindHeading      Kind = "heading"
	KindListItem     Kind = "list-item"
	KindBulletedList Kind = "bulleted-list"
	KindNumberedList Kind = "numbered-list"
)

// Valid reports whether k is one of the known block kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindParagraph, KindHeading, KindListItem, KindBulletedList, KindNumberedList:
		return true
	}
	return false
}

// IsList reports whether k is a list container.
func (k Kind) IsList() bool {
	return k == KindBulletedList || k == KindNumberedList
}

// IsLeaf reports whether blocks of kind k hold text runs.
func (k Kind) IsLeaf() bool {
	return k == KindParagraph || k == KindHeading || k == KindListItem
}

// Align is a block's horizontal alignment. The zero value means left.
type Align string

const (
	AlignNone    Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// Valid reports whether a is a known alignment or unset.
func (a Align) Valid() bool {
	switch a {
	case AlignNone, AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// Effective resolves an unset alignment to left.
func (a Align) Effective() Align {
	if a == AlignNone {
		return AlignLeft
	}
	return a
}

// Marks are the character-level attributes of a text run.
type Marks struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	FontSize  string `json:"fontSize,omitempty"`
}

// Text is a run of literal text carrying its own marks.
type Text struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	FontSize  string `json:"fontSize,omitempty"`
}

// Marks returns the run's attributes without its text.
func (t *Text) Marks() Marks {
	return Marks{Bold: t.Bold, Italic: t.Italic, Underline: t.Underline, FontSize: t.FontSize}
}

// SetMarks overwrites every attribute of the run.
func (t *Text) SetMarks(m Marks) {
	t.Bold = m.Bold
	t.Italic = m.Italic
	t.Underline = m.Underline
	t.FontSize = m.FontSize
}

// Block is a structural node. Leaf blocks (paragraph, heading, list-item)
// hold Children; list containers hold Items. Both serialize as "children".
type Block struct {
	Kind     Kind
	Level    int
	Align    Align
	Children []*Text
	Items    []*Block

	// Kind and level a list-item had before it was wrapped into a list,
	// restored when it is lifted back out. Not serialized.
	originKind  Kind
	originLevel int
}

// Document is the ordered sequence of top-level blocks.
type Document []*Block

// NewParagraph returns a paragraph with a single run.
func NewParagraph(text string) *Block {
	return &Block{Kind: KindParagraph, Children: []*Text{{Text: text}}}
}

// Empty returns the canonical empty document: one empty paragraph.
func Empty() Document {
	return Document{NewParagraph("")}
}

// Text concatenates the block's run texts. Containers join their items
// with newlines.
func (b *Block) Text() string {
	if b.Kind.IsList() {
		parts := make([]string, 0, len(b.Items))
		for _, it := range b.Items {
			parts = append(parts, it.Text())
		}
		return strings.Join(parts, "\n")
	}
	var sb strings.Builder
	for _, t := range b.Children {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	c := &Block{
		Kind:        b.Kind,
		Level:       b.Level,
		Align:       b.Align,
		originKind:  b.originKind,
		originLevel: b.originLevel,
	}
	if b.Children != nil {
		c.Children = make([]*Text, len(b.Children))
		for i, t := range b.Children {
			cp := *t
			c.Children[i] = &cp
		}
	}
	if b.Items != nil {
		c.Items = make([]*Block, len(b.Items))
		for i, it := range b.Items {
			c.Items[i] = it.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for i, b := range d {
		out[i] = b.Clone()
	}
	return out
}

// Walk visits every text run in reading order.
func (d Document) Walk(fn func(t *Text)) {
	for _, b := range d {
		walkBlock(b, fn)
	}
}

func walkBlock(b *Block, fn func(t *Text)) {
	for _, t := range b.Children {
		fn(t)
	}
	for _, it := range b.Items {
		walkBlock(it, fn)
	}
}

// Leaves returns the leaf blocks in reading order.
func (d Document) Leaves() []*Block {
	var out []*Block
	for _, b := range d {
		if b.Kind.IsList() {
			out = append(out, b.Items...)
			continue
		}
		out = append(out, b)
	}
	return out
}

// PlainText returns the document's text with one line per leaf block.
func (d Document) PlainText() string {
	leaves := d.Leaves()
	lines := make([]string, 0, len(leaves))
	for _, l := range leaves {
		lines = append(lines, l.Text())
	}
	return strings.Join(lines, "\n")
}

// WrapAsListItem turns a leaf into a list-item, remembering a heading's
// kind and level so LiftFromList can restore them.
func (b *Block) WrapAsListItem() {
	if b.Kind == KindListItem {
		return
	}
	if b.Kind == KindHeading {
		b.originKind = b.Kind
		b.originLevel = b.Level
	}
	b.Kind = KindListItem
	b.Level = 0
}

// LiftFromList turns a list-item back into the block it was before it was
// wrapped, or a paragraph.
func (b *Block) LiftFromList() {
	if b.Kind != KindListItem {
		return
	}
	if b.originKind != "" {
		b.Kind = b.originKind
		b.Level = b.originLevel
	} else {
		b.Kind = KindParagraph
		b.Level = 0
	}
	b.originKind = ""
	b.originLevel = 0
}

// SetKind replaces the kind/level pair, leaving children untouched.
func (b *Block) SetKind(k Kind, level int) {
	b.Kind = k
	b.Level = 0
	if k == KindHeading {
		if level <= 0 {
			level = 1
		}
		b.Level = level
	}
	b.originKind = ""
	b.originLevel = 0
}
