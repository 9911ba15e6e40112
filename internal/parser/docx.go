package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/affigen/internal/doctree"
)

// Bullet is the prefix list items carry in exported DOCX files, which have
// no numbering definitions.
const Bullet = "• "

// DOCXParser handles .docx files. Heading styles become headings, run
// properties become marks and paragraphs with numbering properties or a
// bullet prefix become bulleted list items.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	// go-docx needs a ReaderAt and size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []*doctree.Block
	var list *doctree.Block
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			list = nil
			continue
		}

		var rs runs
		docxRuns(para, &rs)
		align := docxAlign(para)

		if docxIsListItem(para, &rs) {
			if list == nil {
				list = &doctree.Block{Kind: doctree.KindBulletedList}
				blocks = append(blocks, list)
			}
			list.Items = append(list.Items, leaf(doctree.KindListItem, 0, align, &rs))
			continue
		}
		list = nil

		if level := docxHeadingLevel(para); level > 0 {
			blocks = append(blocks, leaf(doctree.KindHeading, level, align, &rs))
			continue
		}
		blocks = append(blocks, leaf(doctree.KindParagraph, 0, align, &rs))
	}
	return finish(blocks), nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func docxAlign(para *docx.Paragraph) doctree.Align {
	if para.Properties == nil || para.Properties.Justification == nil {
		return doctree.AlignNone
	}
	switch para.Properties.Justification.Val {
	case "center":
		return doctree.AlignCenter
	case "right", "end":
		return doctree.AlignRight
	case "both", "distribute":
		return doctree.AlignJustify
	case "left", "start":
		return doctree.AlignLeft
	}
	return doctree.AlignNone
}

// docxIsListItem reports list paragraphs, stripping a leading bullet.
func docxIsListItem(para *docx.Paragraph, rs *runs) bool {
	if len(rs.children) > 0 && strings.HasPrefix(rs.children[0].Text, Bullet) {
		rs.children[0].Text = strings.TrimPrefix(rs.children[0].Text, Bullet)
		return true
	}
	return para.Properties != nil && para.Properties.NumProperties != nil
}

func docxRuns(para *docx.Paragraph, rs *runs) {
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			docxRun(c, rs)
		case *docx.Hyperlink:
			docxRun(&c.Run, rs)
		}
	}
}

func docxRun(run *docx.Run, rs *runs) {
	m := docxMarks(run.RunProperties)
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			rs.add(t.Text, m)
		case *docx.Tab:
			rs.add("\t", m)
		case *docx.BarterRabbet:
			rs.add("\n", m)
		}
	}
}

func docxMarks(props *docx.RunProperties) doctree.Marks {
	var m doctree.Marks
	if props == nil {
		return m
	}
	m.Bold = props.Bold != nil
	m.Italic = props.Italic != nil
	m.Underline = props.Underline != nil && props.Underline.Val != "none"
	if props.Size != nil {
		// w:sz is in half-points; 1pt is 4/3 px.
		if halfPts, err := strconv.ParseFloat(props.Size.Val, 64); err == nil && halfPts > 0 {
			m.FontSize = strconv.FormatFloat(halfPts*2/3, 'f', -1, 64) + "px"
		}
	}
	return m
}
