package render

import (
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/affigen/internal/doctree"
)

// Markdown writes CommonMark. Underline has no Markdown syntax and is
// written as inline <u>. Alignment and font sizes are dropped.
type Markdown struct{}

func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }
func (Markdown) Extension() string   { return ".md" }

func (Markdown) Render(w io.Writer, doc doctree.Document) error {
	var sb strings.Builder
	for i, b := range doc {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch {
		case b.Kind.IsList():
			for n, it := range b.Items {
				prefix := "- "
				if b.Kind == doctree.KindNumberedList {
					prefix = listPrefix(b.Kind, n)
				}
				sb.WriteString(prefix + mdRuns(it.Children) + "\n")
			}
		case b.Kind == doctree.KindHeading:
			sb.WriteString(strings.Repeat("#", min(max(b.Level, 1), 6)) + " " + mdRuns(b.Children) + "\n")
		default:
			sb.WriteString(escapeLineStart(mdRuns(b.Children)) + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

var orderedMarker = regexp.MustCompile(`^(\d{1,9})([.)]) `)

// escapeLineStart keeps a paragraph that starts like a list item or quote
// from parsing as one.
func escapeLineStart(s string) string {
	if orderedMarker.MatchString(s) {
		return orderedMarker.ReplaceAllString(s, `$1\$2 `)
	}
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "+ ") || strings.HasPrefix(s, ">") {
		return `\` + s
	}
	return s
}

var mdEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`, `#`, `\#`, "`", "\\`", `<`, `\<`, `[`, `\[`)

func mdRuns(runs []*doctree.Text) string {
	var sb strings.Builder
	for _, t := range runs {
		text := mdEscaper.Replace(t.Text)
		text = strings.ReplaceAll(text, "\n", "\\\n")
		// Emphasis markers cannot enclose surrounding spaces.
		core := strings.TrimSpace(text)
		if core == "" {
			sb.WriteString(text)
			continue
		}
		lead := text[:strings.Index(text, core)]
		trail := text[len(lead)+len(core):]
		if t.Underline {
			core = "<u>" + core + "</u>"
		}
		if t.Italic {
			core = "*" + core + "*"
		}
		if t.Bold {
			core = "**" + core + "**"
		}
		sb.WriteString(lead + core + trail)
	}
	return sb.String()
}
