package render

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/affigen/internal/doctree"
)

// DOCX writes a Word document. Headings use the HeadingN styles. The
// generated file has no numbering definitions, so list items are written
// as paragraphs carrying a bullet or their number.
type DOCX struct{}

func (DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (DOCX) Extension() string { return ".docx" }

func (DOCX) Render(w io.Writer, doc doctree.Document) error {
	f := docx.New().WithDefaultTheme()
	for _, b := range doc {
		switch {
		case b.Kind.IsList():
			for n, it := range b.Items {
				p := f.AddParagraph()
				justify(p, it.Align)
				addText(p, listPrefix(b.Kind, n))
				docxRuns(p, it.Children)
			}
		case b.Kind == doctree.KindHeading:
			p := f.AddParagraph()
			p.Style("Heading" + strconv.Itoa(min(max(b.Level, 1), 6)))
			justify(p, b.Align)
			docxRuns(p, b.Children)
		default:
			p := f.AddParagraph()
			justify(p, b.Align)
			docxRuns(p, b.Children)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func justify(p *docx.Paragraph, a doctree.Align) {
	switch a {
	case doctree.AlignLeft:
		p.Justification("start")
	case doctree.AlignCenter:
		p.Justification("center")
	case doctree.AlignRight:
		p.Justification("end")
	case doctree.AlignJustify:
		p.Justification("both")
	}
}

func docxRuns(p *docx.Paragraph, runs []*doctree.Text) {
	for _, t := range runs {
		if t.Text == "" {
			continue
		}
		r := addText(p, t.Text)
		if t.Bold {
			r.Bold()
		}
		if t.Italic {
			r.Italic()
		}
		if t.Underline {
			r.Underline("single")
		}
		if px, ok := pxSize(t.FontSize); ok {
			// w:sz is in half-points.
			r.Size(strconv.Itoa(int(math.Round(px * 1.5))))
		}
	}
}

// addText appends a run whose text keeps its surrounding spaces.
func addText(p *docx.Paragraph, s string) *docx.Run {
	r := p.AddText(s)
	for _, c := range r.Children {
		if txt, ok := c.(*docx.Text); ok {
			txt.XMLSpace = "preserve"
		}
	}
	return r
}

// pxSize parses a "<n>px" font size.
func pxSize(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
