package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/affigen/internal/doctree"
)

func para(runs ...*doctree.Text) *doctree.Block {
	return &doctree.Block{Kind: doctree.KindParagraph, Children: runs}
}

func item(text string) *doctree.Block {
	return &doctree.Block{Kind: doctree.KindListItem, Children: []*doctree.Text{{Text: text}}}
}

func at(path ...int) func(off int) Point {
	return func(off int) Point { return Point{Path: path, Offset: off} }
}

func mustSelect(t *testing.T, e *Editor, anchor, focus Point) {
	t.Helper()
	if err := e.Select(Range{Anchor: anchor, Focus: focus}); err != nil {
		t.Fatalf("select: %v", err)
	}
}

func TestToggleMark_SplitsAndRestores(t *testing.T) {
	orig := doctree.Document{para(&doctree.Text{Text: "hello world"})}
	e := New(orig)
	p := at(0, 0)
	mustSelect(t, e, p(0), p(5))

	if err := e.ToggleMark(MarkBold); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	runs := e.Document()[0].Children
	if len(runs) != 2 || runs[0].Text != "hello" || !runs[0].Bold || runs[1].Bold {
		t.Fatalf("expected bold 'hello' then plain ' world', got %+v %+v", runs[0], runs[len(runs)-1])
	}
	if !e.IsMarkActive(MarkBold) {
		t.Error("expected bold active after toggle")
	}

	if err := e.ToggleMark(MarkBold); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if !doctree.Equal(e.Document(), orig) {
		t.Error("expected second toggle to restore the document")
	}
}

func TestToggleMark_MixedSelectionRemoves(t *testing.T) {
	e := New(doctree.Document{para(&doctree.Text{Text: "ab", Bold: true}, &doctree.Text{Text: "cd"})})
	e.SelectAll()
	if !e.IsMarkActive(MarkBold) {
		t.Fatal("expected bold active when any run is bold")
	}
	if err := e.ToggleMark(MarkBold); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	runs := e.Document()[0].Children
	if len(runs) != 1 || runs[0].Bold || runs[0].Text != "abcd" {
		t.Errorf("expected one plain run, got %+v", runs)
	}
}

func TestToggleMark_CollapsedSetsPending(t *testing.T) {
	orig := doctree.Document{para(&doctree.Text{Text: "hello"})}
	e := New(orig)
	p := at(0, 0)
	mustSelect(t, e, p(2), p(2))

	if err := e.ToggleMark(MarkItalic); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !doctree.Equal(e.Document(), orig) {
		t.Fatal("collapsed toggle must not change the document")
	}
	if !e.IsMarkActive(MarkItalic) {
		t.Error("expected pending italic to read as active")
	}

	if err := e.InsertText("X"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	runs := e.Document()[0].Children
	if len(runs) != 3 || runs[1].Text != "X" || !runs[1].Italic || runs[0].Italic || runs[2].Italic {
		t.Fatalf("expected italic X between plain runs, got %d runs", len(runs))
	}
	sel := e.Selection()
	if sel == nil || !sel.Collapsed() {
		t.Fatalf("expected collapsed cursor, got %+v", sel)
	}
}

func TestToggleMark_RejectsFontSize(t *testing.T) {
	e := New(doctree.Empty())
	if err := e.ToggleMark(MarkFontSize); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("expected ErrInvalidMark, got %v", err)
	}
}

func TestNoSelectionIsNoop(t *testing.T) {
	orig := doctree.Document{para(&doctree.Text{Text: "x"})}
	e := New(orig)
	calls := 0
	e.OnChange(func(doctree.Document) { calls++ })

	for name, fn := range map[string]func() error{
		"toggleMark":   func() error { return e.ToggleMark(MarkBold) },
		"toggleList":   func() error { return e.ToggleList(doctree.KindBulletedList) },
		"toggleBlock":  func() error { return e.ToggleBlock(doctree.KindHeading, 1) },
		"setAlignment": func() error { return e.SetAlignment(doctree.AlignCenter) },
		"setFontSize":  func() error { return e.SetFontSize(20) },
		"stepFontSize": func() error { return e.StepFontSize(2) },
		"insertText":   func() error { return e.InsertText("y") },
		"delete":       e.Delete,
	} {
		if err := fn(); err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
	}
	if calls != 0 {
		t.Errorf("expected no change notifications, got %d", calls)
	}
	if !doctree.Equal(e.Document(), orig) {
		t.Error("document changed without a selection")
	}
	if e.IsMarkActive(MarkBold) || e.IsBlockActive(doctree.KindParagraph, 0) {
		t.Error("expected nothing active without a selection")
	}
	if got := e.CurrentAlign(); got != doctree.AlignLeft {
		t.Errorf("expected left, got %q", got)
	}
	if fs := e.FontSize(); !fs.Default || fs.Px != DefaultFontSize {
		t.Errorf("expected default font size, got %+v", fs)
	}
}

func TestToggleList_RoundTrip(t *testing.T) {
	orig := doctree.Document{
		para(&doctree.Text{Text: "a"}),
		{Kind: doctree.KindHeading, Level: 2, Children: []*doctree.Text{{Text: "b"}}},
		para(&doctree.Text{Text: "c"}),
	}
	e := New(orig)
	mustSelect(t, e, at(0, 0)(0), at(1, 0)(1))

	if err := e.ToggleList(doctree.KindBulletedList); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	doc := e.Document()
	if len(doc) != 2 || doc[0].Kind != doctree.KindBulletedList || len(doc[0].Items) != 2 {
		t.Fatalf("expected one bulleted list of 2 then a paragraph, got %d blocks", len(doc))
	}
	if doc[1].Text() != "c" {
		t.Errorf("expected trailing paragraph untouched, got %q", doc[1].Text())
	}
	if !e.IsBlockActive(doctree.KindBulletedList, 0) {
		t.Error("expected bulleted list active")
	}

	if err := e.ToggleList(doctree.KindBulletedList); err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if !doctree.Equal(e.Document(), orig) {
		t.Error("expected unwrap to restore the original blocks, heading included")
	}
}

func TestToggleList_OtherKindRewraps(t *testing.T) {
	e := New(doctree.Document{{Kind: doctree.KindNumberedList, Items: []*doctree.Block{item("a"), item("b")}}})
	e.SelectAll()
	if err := e.ToggleList(doctree.KindBulletedList); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	doc := e.Document()
	if len(doc) != 1 || doc[0].Kind != doctree.KindBulletedList || len(doc[0].Items) != 2 {
		t.Fatalf("expected a single bulleted list of 2 items, got %+v", doc)
	}
}

func TestToggleList_UnhangsTrailingBlock(t *testing.T) {
	e := New(doctree.Document{
		para(&doctree.Text{Text: "a"}),
		para(&doctree.Text{Text: "b"}),
		para(&doctree.Text{Text: "c"}),
	})
	mustSelect(t, e, at(0, 0)(0), at(2, 0)(0))
	if err := e.ToggleList(doctree.KindNumberedList); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	doc := e.Document()
	if len(doc) != 2 {
		t.Fatalf("expected list plus untouched paragraph, got %d blocks", len(doc))
	}
	if len(doc[0].Items) != 2 || doc[1].Kind != doctree.KindParagraph {
		t.Errorf("expected hanging paragraph excluded, got %+v", doc)
	}
}

func TestToggleList_MiddleItemRejoins(t *testing.T) {
	e := New(doctree.Document{{Kind: doctree.KindBulletedList, Items: []*doctree.Block{item("a"), item("b"), item("c")}}})
	p := at(0, 1, 0)
	mustSelect(t, e, p(0), p(1))

	if err := e.ToggleList(doctree.KindBulletedList); err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	doc := e.Document()
	if len(doc) != 3 || doc[1].Kind != doctree.KindParagraph {
		t.Fatalf("expected list split around paragraph b, got %d blocks", len(doc))
	}

	if err := e.ToggleList(doctree.KindBulletedList); err != nil {
		t.Fatalf("rewrap: %v", err)
	}
	doc = e.Document()
	if len(doc) != 1 || doc[0].Kind != doctree.KindBulletedList {
		t.Fatalf("expected a single bulleted list, got %d blocks", len(doc))
	}
	var got []string
	for _, it := range doc[0].Items {
		got = append(got, it.Text())
	}
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("expected items a,b,c, got %v", got)
	}
	if !e.IsBlockActive(doctree.KindBulletedList, 0) {
		t.Error("expected bulleted list active on b")
	}
}

func TestToggleList_InvalidKind(t *testing.T) {
	e := New(doctree.Empty())
	e.SelectAll()
	if err := e.ToggleList(doctree.KindParagraph); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestSetAlignment_SplitsList(t *testing.T) {
	e := New(doctree.Document{{Kind: doctree.KindBulletedList, Items: []*doctree.Block{item("x"), item("y"), item("z")}}})
	p := at(0, 1, 0)
	mustSelect(t, e, p(0), p(1))

	if err := e.SetAlignment(doctree.AlignCenter); err != nil {
		t.Fatalf("align: %v", err)
	}
	doc := e.Document()
	if len(doc) != 3 {
		t.Fatalf("expected list split in three, got %d blocks", len(doc))
	}
	for i, want := range []doctree.Align{doctree.AlignNone, doctree.AlignCenter, doctree.AlignNone} {
		if doc[i].Kind != doctree.KindBulletedList || len(doc[i].Items) != 1 {
			t.Fatalf("block %d: expected single-item bulleted list, got %+v", i, doc[i])
		}
		if got := doc[i].Items[0].Align; got != want {
			t.Errorf("block %d: expected align %q, got %q", i, want, got)
		}
	}
	if got := e.CurrentAlign(); got != doctree.AlignCenter {
		t.Errorf("expected center, got %q", got)
	}

	if err := e.SetAlignment(doctree.AlignLeft); err != nil {
		t.Fatalf("align left: %v", err)
	}
	doc = e.Document()
	if len(doc) != 1 || len(doc[0].Items) != 3 {
		t.Fatalf("expected the list pieces to rejoin once aligned alike, got %d blocks", len(doc))
	}
	if got := doc[0].Items[1].Align; got != doctree.AlignNone {
		t.Errorf("expected left stored as absent, got %q", got)
	}
	if err := e.SetAlignment("middle"); !errors.Is(err, ErrInvalidAlign) {
		t.Errorf("expected ErrInvalidAlign, got %v", err)
	}
}

func TestToggleBlock_Heading(t *testing.T) {
	e := New(doctree.Document{para(&doctree.Text{Text: "title", Bold: true})})
	mustSelect(t, e, at(0, 0)(0), at(0, 0)(0))

	if err := e.ToggleBlock(doctree.KindHeading, 2); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	b := e.Document()[0]
	if b.Kind != doctree.KindHeading || b.Level != 2 || !b.Children[0].Bold {
		t.Fatalf("expected bold heading level 2, got %+v", b)
	}
	if !e.IsBlockActive(doctree.KindHeading, 2) || e.IsBlockActive(doctree.KindHeading, 3) {
		t.Error("expected only level 2 active")
	}
	if err := e.ToggleBlock(doctree.KindHeading, 2); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if b := e.Document()[0]; b.Kind != doctree.KindParagraph || b.Level != 0 {
		t.Errorf("expected paragraph, got %s/%d", b.Kind, b.Level)
	}
	if err := e.ToggleBlock(doctree.KindListItem, 0); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestFontSize(t *testing.T) {
	e := New(doctree.Document{para(&doctree.Text{Text: "a", FontSize: "12px"}, &doctree.Text{Text: "b"})})
	e.SelectAll()

	if fs := e.FontSize(); !fs.Mixed {
		t.Fatalf("expected mixed, got %+v", fs)
	}
	if err := e.StepFontSize(2); err != nil {
		t.Fatalf("step: %v", err)
	}
	runs := e.Document()[0].Children
	if len(runs) != 1 || runs[0].FontSize != "18px" {
		t.Fatalf("expected one 18px run, got %+v", runs)
	}

	if err := e.SetFontSize(1000); err != nil {
		t.Fatalf("set: %v", err)
	}
	if fs := e.FontSize(); fs.Px != MaxFontSize {
		t.Errorf("expected clamp to %d, got %+v", MaxFontSize, fs)
	}
	if err := e.StepFontSize(-10000); err != nil {
		t.Fatalf("step down: %v", err)
	}
	if got := e.Document()[0].Children[0].FontSize; got != "1px" {
		t.Errorf("expected floor at 1px, got %q", got)
	}
	if err := e.SetFontSize(-3); err != nil {
		t.Fatalf("set negative: %v", err)
	}
	if got := e.Document()[0].Children[0].FontSize; got != "" {
		t.Errorf("expected size removed, got %q", got)
	}
	if fs := e.FontSize(); !fs.Default {
		t.Errorf("expected default after removal, got %+v", fs)
	}
}

func TestFontSize_CollapsedPending(t *testing.T) {
	orig := doctree.Document{para(&doctree.Text{Text: "abc"})}
	e := New(orig)
	mustSelect(t, e, at(0, 0)(1), at(0, 0)(1))
	if err := e.SetFontSize(20); err != nil {
		t.Fatalf("set: %v", err)
	}
	if fs := e.FontSize(); fs.Px != 20 || fs.Default {
		t.Errorf("expected pending 20px, got %+v", fs)
	}
	if !doctree.Equal(e.Document(), orig) {
		t.Error("collapsed font size must not change the document")
	}
}

func TestBatchNotifiesOnce(t *testing.T) {
	e := New(doctree.Document{para(&doctree.Text{Text: "a"}), para(&doctree.Text{Text: "b"})})
	calls := 0
	e.OnChange(func(doc doctree.Document) {
		calls++
		for _, b := range doc {
			if b.Kind == doctree.KindListItem {
				t.Error("listener saw a bare list-item")
			}
		}
	})
	e.SelectAll()
	if err := e.ToggleList(doctree.KindBulletedList); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 notification, got %d", calls)
	}
}

func TestDelete_AcrossBlocks(t *testing.T) {
	e := New(doctree.Document{para(&doctree.Text{Text: "hello"}), para(&doctree.Text{Text: "world"})})
	mustSelect(t, e, at(1, 0)(3), at(0, 0)(2))
	if err := e.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	doc := e.Document()
	if len(doc) != 1 || doc[0].Text() != "held" {
		t.Fatalf("expected single paragraph 'held', got %q", doc.PlainText())
	}
	sel := e.Selection()
	if sel == nil || !sel.Collapsed() || sel.Anchor.Offset != 2 {
		t.Errorf("expected cursor at offset 2, got %+v", sel)
	}
}

func TestSelect_InvalidPathAndClamp(t *testing.T) {
	e := New(doctree.Document{para(&doctree.Text{Text: "abc"})})
	if err := e.Select(Range{Anchor: Point{Path: []int{5, 0}}, Focus: Point{Path: []int{0, 0}}}); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
	mustSelect(t, e, at(0, 0)(0), at(0, 0)(99))
	if got := e.Selection().Focus.Offset; got != 3 {
		t.Errorf("expected focus clamped to 3, got %d", got)
	}
}

func TestApply(t *testing.T) {
	e := New(doctree.Document{para(&doctree.Text{Text: "abc"})})
	sel := Range{Anchor: at(0, 0)(0), Focus: at(0, 0)(3)}
	cmds := []Command{
		{Op: OpSelect, Selection: &sel},
		{Op: OpToggleMark, Mark: MarkUnderline},
		{Op: OpSetAlignment, Align: doctree.AlignJustify},
	}
	for _, c := range cmds {
		if err := e.Apply(c); err != nil {
			t.Fatalf("%s: %v", c.Op, err)
		}
	}
	b := e.Document()[0]
	if !b.Children[0].Underline || b.Align != doctree.AlignJustify {
		t.Errorf("expected underlined justified paragraph, got %+v", b)
	}
	if err := e.Apply(Command{Op: "explode"}); err == nil {
		t.Error("expected error for unknown op")
	}
	if err := e.Apply(Command{Op: OpSelect}); err == nil {
		t.Error("expected error for select without range")
	}
}
