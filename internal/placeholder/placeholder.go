// Package placeholder fills {{KEY}} tokens in document templates.
package placeholder

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dgallion1/affigen/internal/doctree"
)

var tokenRe = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Lookup resolves a trimmed placeholder key.
type Lookup interface {
	Value(key string) (string, bool)
}

// Map is a flat key to value table.
type Map map[string]string

func (m Map) Value(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(key string) (string, bool)

func (f LookupFunc) Value(key string) (string, bool) { return f(key) }

// Chain tries each lookup in order.
type Chain []Lookup

func (c Chain) Value(key string) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if v, ok := l.Value(key); ok {
			return v, true
		}
	}
	return "", false
}

// ReplaceText replaces every token in s. Keys the lookup does not know
// resolve to the empty string.
func ReplaceText(s string, lookup Lookup) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return tokenRe.ReplaceAllStringFunc(s, func(m string) string {
		key := strings.TrimSpace(m[2 : len(m)-2])
		if lookup == nil {
			return ""
		}
		v, _ := lookup.Value(key)
		return v
	})
}

// Substitute returns a filled copy of tmpl. tmpl itself is never changed.
func Substitute(tmpl doctree.Document, lookup Lookup) doctree.Document {
	out := tmpl.Clone()
	out.Walk(func(t *doctree.Text) {
		t.Text = ReplaceText(t.Text, lookup)
	})
	return out
}

// Tokens lists the distinct trimmed keys used in doc, in first-seen order.
func Tokens(doc doctree.Document) []string {
	var keys []string
	doc.Walk(func(t *doctree.Text) {
		for _, m := range tokenRe.FindAllStringSubmatch(t.Text, -1) {
			if k := strings.TrimSpace(m[1]); !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	})
	return keys
}

// Missing lists the keys in doc that lookup cannot resolve.
func Missing(doc doctree.Document, lookup Lookup) []string {
	var out []string
	for _, k := range Tokens(doc) {
		if lookup == nil {
			out = append(out, k)
			continue
		}
		if _, ok := lookup.Value(k); !ok {
			out = append(out, k)
		}
	}
	return out
}
