package doctree

import (
	"fmt"
	"math"
)

// ShapeError reports externally supplied JSON that does not describe a
// document. Path locates the offending value, e.g. "[2].children[0]".
type ShapeError struct {
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return "invalid document: " + e.Reason
	}
	return fmt.Sprintf("invalid document at %s: %s", e.Path, e.Reason)
}

func shapeErr(path, format string, args ...any) error {
	return &ShapeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks a decoded JSON value (as produced by encoding/json into
// an any) and builds a Document from it. Nothing is coerced except that an
// empty root array becomes one empty paragraph and a leaf with an empty
// children array gets one empty run.
func Validate(candidate any) (Document, error) {
	arr, ok := candidate.([]any)
	if !ok {
		return nil, shapeErr("", "root must be an array")
	}
	if len(arr) == 0 {
		return Empty(), nil
	}
	doc := make(Document, 0, len(arr))
	for i, el := range arr {
		b, err := validateBlock(el, fmt.Sprintf("[%d]", i), false)
		if err != nil {
			return nil, err
		}
		doc = append(doc, b)
	}
	return doc, nil
}

func validateBlock(v any, path string, inList bool) (*Block, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, shapeErr(path, "element must be an object")
	}

	rawKind, ok := obj["type"]
	if !ok {
		rawKind, ok = obj["kind"]
	}
	if !ok {
		return nil, shapeErr(path, "element missing type")
	}
	s, ok := rawKind.(string)
	if !ok {
		return nil, shapeErr(path, "element type must be a string")
	}
	kind := Kind(s)
	if !kind.Valid() {
		return nil, shapeErr(path, "unknown element type %q", s)
	}
	if inList && kind != KindListItem {
		return nil, shapeErr(path, "list children must be list-item elements, got %q", s)
	}
	if !inList && kind == KindListItem {
		return nil, shapeErr(path, "list-item must be inside a list")
	}

	b := &Block{Kind: kind}

	if rawAlign, ok := obj["align"]; ok && rawAlign != nil {
		a, ok := rawAlign.(string)
		if !ok || !Align(a).Valid() {
			return nil, shapeErr(path, "invalid align %v", rawAlign)
		}
		b.Align = Align(a)
	}

	if kind == KindHeading {
		b.Level = 1
		if rawLevel, ok := obj["level"]; ok && rawLevel != nil {
			f, ok := rawLevel.(float64)
			if !ok || f < 1 || f != math.Trunc(f) {
				return nil, shapeErr(path, "heading level must be a positive integer")
			}
			b.Level = int(f)
		}
	}

	rawChildren, ok := obj["children"]
	if !ok {
		return nil, shapeErr(path, "element missing children array")
	}
	children, ok := rawChildren.([]any)
	if !ok {
		return nil, shapeErr(path, "element missing children array")
	}

	if kind.IsList() {
		b.Items = make([]*Block, 0, len(children))
		for i, c := range children {
			item, err := validateBlock(c, fmt.Sprintf("%s.children[%d]", path, i), true)
			if err != nil {
				return nil, err
			}
			b.Items = append(b.Items, item)
		}
		return b, nil
	}

	b.Children = make([]*Text, 0, len(children))
	for i, c := range children {
		t, err := validateText(c, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		b.Children = append(b.Children, t)
	}
	if len(b.Children) == 0 {
		b.Children = []*Text{{}}
	}
	return b, nil
}

func validateText(v any, path string) (*Text, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, shapeErr(path, "text run must be an object")
	}
	raw, ok := obj["text"]
	if !ok {
		if _, isBlock := obj["children"]; isBlock {
			return nil, shapeErr(path, "nested elements are not allowed in a leaf block")
		}
		return nil, shapeErr(path, "text run missing text")
	}
	s, ok := raw.(string)
	if !ok {
		return nil, shapeErr(path, "text must be a string")
	}
	t := &Text{Text: s}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"bold", &t.Bold},
		{"italic", &t.Italic},
		{"underline", &t.Underline},
	}
	for _, f := range flags {
		rv, ok := obj[f.name]
		if !ok || rv == nil {
			continue
		}
		bv, ok := rv.(bool)
		if !ok {
			return nil, shapeErr(path, "%s must be a boolean", f.name)
		}
		*f.dst = bv
	}

	if rv, ok := obj["fontSize"]; ok && rv != nil {
		fs, ok := rv.(string)
		if !ok {
			return nil, shapeErr(path, "fontSize must be a string")
		}
		t.FontSize = fs
	}
	return t, nil
}
