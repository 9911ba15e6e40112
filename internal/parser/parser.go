// Package parser imports files of several formats as rich-text documents.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/affigen/internal/doctree"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (doctree.Document, error)
}

// SupportedExtensions lists file extensions that import as documents.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes parser construction.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// JSONParser reads a document template. The JSON is validated.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (doctree.Document, error) {
	doc, err := doctree.Read(r)
	if err != nil {
		return nil, err
	}
	return doctree.Normalize(doc), nil
}

// runs accumulates the text runs of one leaf block.
type runs struct {
	children []*doctree.Text
}

func (r *runs) add(text string, m doctree.Marks) {
	if text == "" {
		return
	}
	t := &doctree.Text{Text: text}
	t.SetMarks(m)
	r.children = append(r.children, t)
}

func (r *runs) empty() bool {
	for _, t := range r.children {
		if strings.TrimSpace(t.Text) != "" {
			return false
		}
	}
	return true
}

// trimmed drops leading and trailing whitespace from the run sequence.
func (r *runs) trimmed() []*doctree.Text {
	out := r.children
	for len(out) > 0 {
		out[0].Text = strings.TrimLeft(out[0].Text, " \t\r\n")
		if out[0].Text != "" {
			break
		}
		out = out[1:]
	}
	for len(out) > 0 {
		last := out[len(out)-1]
		last.Text = strings.TrimRight(last.Text, " \t\r\n")
		if last.Text != "" {
			break
		}
		out = out[:len(out)-1]
	}
	return out
}

func leaf(kind doctree.Kind, level int, align doctree.Align, r *runs) *doctree.Block {
	return &doctree.Block{Kind: kind, Level: level, Align: align, Children: r.trimmed()}
}

// finish normalizes the parsed blocks; nothing parsed yields the empty
// document.
func finish(blocks []*doctree.Block) doctree.Document {
	return doctree.Normalize(doctree.Document(blocks))
}
