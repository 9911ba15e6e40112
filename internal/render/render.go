// Package render exports rich-text documents to files.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/affigen/internal/doctree"
)

// Renderer writes a document in one file format.
type Renderer interface {
	Render(w io.Writer, doc doctree.Document) error
	ContentType() string
	Extension() string
}

// Formats lists the export formats ForFormat accepts.
var Formats = []string{"json", "html", "md", "txt", "docx"}

// ForFormat returns the renderer for a format name or file extension.
func ForFormat(format string) (Renderer, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "json":
		return JSON{}, nil
	case "html", "htm":
		return HTML{}, nil
	case "md", "markdown":
		return Markdown{}, nil
	case "txt", "text":
		return Text{}, nil
	case "docx":
		return DOCX{}, nil
	}
	return nil, fmt.Errorf("unsupported export format: %q", format)
}

// JSON writes the canonical indented document JSON.
type JSON struct{}

func (JSON) ContentType() string { return "application/json" }
func (JSON) Extension() string   { return ".json" }

func (JSON) Render(w io.Writer, doc doctree.Document) error {
	data, err := doctree.EncodeIndent(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Text writes plain text, one block per paragraph. List items carry a
// bullet or their number.
type Text struct{}

func (Text) ContentType() string { return "text/plain; charset=utf-8" }
func (Text) Extension() string   { return ".txt" }

func (Text) Render(w io.Writer, doc doctree.Document) error {
	var sb strings.Builder
	for i, b := range doc {
		if i > 0 {
			sb.WriteString("\n")
		}
		if !b.Kind.IsList() {
			sb.WriteString(b.Text())
			sb.WriteString("\n")
			continue
		}
		for n, it := range b.Items {
			sb.WriteString(listPrefix(b.Kind, n))
			sb.WriteString(it.Text())
			sb.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

const bullet = "• "

func listPrefix(kind doctree.Kind, n int) string {
	if kind == doctree.KindNumberedList {
		return fmt.Sprintf("%d. ", n+1)
	}
	return bullet
}
