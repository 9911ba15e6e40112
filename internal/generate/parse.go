package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/affigen/internal/doctree"
)

// ErrEmptyBody is returned when a reply holds no text at all.
var ErrEmptyBody = errors.New("generated body is empty")

// ParseError reports a reply that is not JSON.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse generated body: %v (raw: %s)", e.Err, truncate(e.Raw, 200))
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseBody turns a model reply into validated body blocks. The reply may
// be wrapped in a ``` fence and may be a bare array or an object carrying
// the array under "content" or "elements". Blocks with no text are dropped.
func ParseBody(raw string) (doctree.Document, error) {
	text := stripCodeBlock(raw)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	v, err := unwrapBody(v, raw)
	if err != nil {
		return nil, err
	}

	doc, err := doctree.Validate(v)
	if err != nil {
		return nil, err
	}
	body := dropEmpty(doc)
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	return doctree.Normalize(body), nil
}

func unwrapBody(v any, raw string) (any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	for _, key := range []string{"content", "elements"} {
		inner, ok := obj[key]
		if !ok {
			continue
		}
		// Some models return the array serialized a second time.
		if s, ok := inner.(string); ok {
			var again any
			if err := json.Unmarshal([]byte(stripCodeBlock(s)), &again); err != nil {
				return nil, &ParseError{Raw: raw, Err: err}
			}
			return again, nil
		}
		return inner, nil
	}
	return v, nil
}

func dropEmpty(doc doctree.Document) doctree.Document {
	out := make(doctree.Document, 0, len(doc))
	for _, b := range doc {
		if strings.TrimSpace(b.Text()) == "" {
			continue
		}
		out = append(out, b)
	}
	return out
}
