package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/affigen/internal/doctree"
)

func TestMarkdownParser_Blocks(t *testing.T) {
	input := `# Title

Intro *text* with **bold**.

## Section A

- one
- two

1. first
2. second
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(doc))
	}

	if doc[0].Kind != doctree.KindHeading || doc[0].Level != 1 || doc[0].Text() != "Title" {
		t.Errorf("unexpected heading %+v", doc[0])
	}

	intro := doc[1].Children
	if len(intro) != 5 {
		t.Fatalf("expected 5 runs, got %d", len(intro))
	}
	if intro[1].Text != "text" || !intro[1].Italic {
		t.Errorf("expected italic run, got %+v", intro[1])
	}
	if intro[3].Text != "bold" || !intro[3].Bold {
		t.Errorf("expected bold run, got %+v", intro[3])
	}

	if doc[2].Level != 2 {
		t.Errorf("expected h2, got level %d", doc[2].Level)
	}
	if doc[3].Kind != doctree.KindBulletedList || len(doc[3].Items) != 2 || doc[3].Items[1].Text() != "two" {
		t.Errorf("unexpected bulleted list %+v", doc[3])
	}
	if doc[4].Kind != doctree.KindNumberedList || doc[4].Items[0].Text() != "first" {
		t.Errorf("unexpected numbered list %+v", doc[4])
	}
}

func TestMarkdownParser_Underline(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader("a <u>b</u> c"), "u.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runs := doc[0].Children
	if len(runs) != 3 || runs[1].Text != "b" || !runs[1].Underline || runs[2].Underline {
		t.Errorf("expected only b underlined, got %+v", runs)
	}
}

func TestMarkdownParser_Escapes(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(`1\. Una \*hindi\* bold`), "e.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc[0].Kind != doctree.KindParagraph || doc[0].Text() != "1. Una *hindi* bold" {
		t.Errorf("unexpected block %q (%s)", doc[0].Text(), doc[0].Kind)
	}
}

func TestMarkdownParser_Empty(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doctree.Equal(doc, doctree.Empty()) {
		t.Errorf("expected the empty document, got %+v", doc)
	}
}
