package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type blockJSON struct {
	Type     Kind  `json:"type"`
	Level    int   `json:"level,omitempty"`
	Align    Align `json:"align,omitempty"`
	Children any   `json:"children"`
}

// MarshalJSON writes the block in the template file format.
func (b *Block) MarshalJSON() ([]byte, error) {
	out := blockJSON{Type: b.Kind, Align: b.Align}
	if b.Kind == KindHeading {
		out.Level = b.Level
	}
	if b.Kind.IsList() {
		items := b.Items
		if items == nil {
			items = []*Block{}
		}
		out.Children = items
	} else {
		runs := b.Children
		if runs == nil {
			runs = []*Text{}
		}
		out.Children = runs
	}
	return json.Marshal(out)
}

// UnmarshalJSON validates a single top-level block.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	inList := false
	if obj, ok := raw.(map[string]any); ok {
		inList = obj["type"] == string(KindListItem) || obj["kind"] == string(KindListItem)
	}
	parsed, err := validateBlock(raw, "", inList)
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}

// UnmarshalJSON validates the whole document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	doc, err := Validate(raw)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// Decode parses template-file bytes into a validated Document.
func Decode(data []byte) (Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return Validate(raw)
}

// Read decodes a document from r.
func Read(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Decode(data)
}

// Encode serializes the document as a compact JSON array.
func Encode(d Document) ([]byte, error) {
	if d == nil {
		d = Document{}
	}
	return json.Marshal([]*Block(d))
}

// EncodeIndent serializes the document for a .json template file.
func EncodeIndent(d Document) ([]byte, error) {
	if d == nil {
		d = Document{}
	}
	return json.MarshalIndent([]*Block(d), "", "  ")
}

// Equal reports whether two documents serialize identically.
func Equal(a, b Document) bool {
	ea, errA := Encode(a)
	eb, errB := Encode(b)
	return errA == nil && errB == nil && bytes.Equal(ea, eb)
}
