package parser

import (
	"strings"
	"testing"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\n\n\nThird paragraph.  \n"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	if len(doc) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(doc))
	}
	for i, w := range want {
		if doc[i].Text() != w {
			t.Errorf("block[%d]: expected %q, got %q", i, w, doc[i].Text())
		}
	}
}

func TestTextParser_WhitespaceOnly(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("   \n\n\t\n"), "blank.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 1 || doc[0].Text() != "" {
		t.Errorf("expected one empty paragraph, got %d blocks", len(doc))
	}
}

func TestParagraphs(t *testing.T) {
	got := paragraphs("a\nb\n\n  \nc\r\n")
	if len(got) != 2 || got[0] != "a\nb" || got[1] != "c" {
		t.Errorf("unexpected paragraphs %q", got)
	}
}
