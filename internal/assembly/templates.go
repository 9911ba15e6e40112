package assembly

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/narrative"
	"github.com/dgallion1/affigen/internal/placeholder"
)

//go:embed templates/*.json
var builtin embed.FS

// ErrUnknownTemplate is returned for a name with no built-in template.
var ErrUnknownTemplate = errors.New("unknown template")

// Built-in template names.
const (
	TemplateComplainant      = "complainant"
	TemplateArrestingOfficer = "arresting-officer"
	TemplateWitness          = "witness"
	TemplatePoseurBuyer      = "poseur-buyer"
)

// TemplateNames lists the built-in templates in sorted order.
func TemplateNames() []string {
	entries, err := builtin.ReadDir("templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(names)
	return names
}

// Template returns a fresh copy of a built-in template.
func Template(name string) (doctree.Document, error) {
	data, err := builtin.ReadFile("templates/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	doc, err := doctree.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return doc, nil
}

// Lookup is the value source templates are filled from: the affidavit keys
// with the case narrative as Narration, then any dotted path into the case
// record.
func Lookup(c *casefile.CaseDetails, now time.Time) (placeholder.Lookup, error) {
	keys := placeholder.BuildLookup(c, now)
	keys[placeholder.KeyNarration] = narrative.CaseNarrative(c)
	paths, err := placeholder.PathLookup(c)
	if err != nil {
		return nil, err
	}
	return placeholder.Chain{keys, paths}, nil
}

// Fill substitutes every placeholder in tmpl from c. tmpl is not modified.
func Fill(tmpl doctree.Document, c *casefile.CaseDetails, now time.Time) (doctree.Document, error) {
	lookup, err := Lookup(c, now)
	if err != nil {
		return nil, err
	}
	return placeholder.Substitute(tmpl, lookup), nil
}

// FastAffidavit fills the named built-in template from c without calling a
// generation service.
func FastAffidavit(name string, c *casefile.CaseDetails, now time.Time) (doctree.Document, error) {
	tmpl, err := Template(name)
	if err != nil {
		return nil, err
	}
	return Fill(tmpl, c, now)
}

// ArrestingOfficerAffidavit fills the arresting officer template around a
// generated body. The block holding only {{Narration}} is replaced by the
// numbered body; every other block is filled from c.
func ArrestingOfficerAffidavit(c *casefile.CaseDetails, body []*doctree.Block, now time.Time) (doctree.Document, error) {
	tmpl, err := Template(TemplateArrestingOfficer)
	if err != nil {
		return nil, err
	}
	at := slices.IndexFunc(tmpl, func(b *doctree.Block) bool {
		return strings.TrimSpace(b.Text()) == "{{"+placeholder.KeyNarration+"}}"
	})
	if at < 0 {
		return nil, fmt.Errorf("template %s has no narration block", TemplateArrestingOfficer)
	}
	lookup, err := Lookup(c, now)
	if err != nil {
		return nil, err
	}
	header := placeholder.Substitute(tmpl[:at], lookup)
	footer := placeholder.Substitute(tmpl[at+1:], lookup)
	return Assemble(header, NumberParagraphs(body), footer), nil
}
