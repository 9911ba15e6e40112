package editor

import (
	"fmt"

	"github.com/dgallion1/affigen/internal/doctree"
)

// Op names an editing command.
type Op string

const (
	OpSelect       Op = "select"
	OpDeselect     Op = "deselect"
	OpSelectAll    Op = "selectAll"
	OpToggleMark   Op = "toggleMark"
	OpSetFontSize  Op = "setFontSize"
	OpStepFontSize Op = "stepFontSize"
	OpToggleList   Op = "toggleList"
	OpToggleBlock  Op = "toggleBlock"
	OpSetAlignment Op = "setAlignment"
	OpInsertText   Op = "insertText"
	OpDelete       Op = "delete"
)

// Command is the wire form of one editing operation. Only the fields the
// operation needs are read.
type Command struct {
	Op        Op            `json:"op"`
	Mark      Mark          `json:"mark,omitempty"`
	Kind      doctree.Kind  `json:"kind,omitempty"`
	Level     int           `json:"level,omitempty"`
	Align     doctree.Align `json:"align,omitempty"`
	Size      float64       `json:"size,omitempty"`
	Delta     float64       `json:"delta,omitempty"`
	Text      string        `json:"text,omitempty"`
	Selection *Range        `json:"selection,omitempty"`
}

// Apply runs cmd against the editor.
func (e *Editor) Apply(cmd Command) error {
	switch cmd.Op {
	case OpSelect:
		if cmd.Selection == nil {
			return fmt.Errorf("%s: missing selection", cmd.Op)
		}
		return e.Select(*cmd.Selection)
	case OpDeselect:
		e.Deselect()
		return nil
	case OpSelectAll:
		e.SelectAll()
		return nil
	case OpToggleMark:
		return e.ToggleMark(cmd.Mark)
	case OpSetFontSize:
		return e.SetFontSize(cmd.Size)
	case OpStepFontSize:
		return e.StepFontSize(cmd.Delta)
	case OpToggleList:
		return e.ToggleList(cmd.Kind)
	case OpToggleBlock:
		return e.ToggleBlock(cmd.Kind, cmd.Level)
	case OpSetAlignment:
		return e.SetAlignment(cmd.Align)
	case OpInsertText:
		return e.InsertText(cmd.Text)
	case OpDelete:
		return e.Delete()
	}
	return fmt.Errorf("unknown op %q", cmd.Op)
}
