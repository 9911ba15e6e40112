package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/editor"
)

func TestStore_CreateGetDelete(t *testing.T) {
	st := NewStore(time.Hour)
	s := st.Create(doctree.Document{doctree.NewParagraph("hello")})

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())

	st.Delete(s.ID)
	_, err = st.Get(s.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Expiry(t *testing.T) {
	st := NewStore(20 * time.Millisecond)
	s := st.Create(nil)
	time.Sleep(50 * time.Millisecond)
	_, err := st.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_DoTracksVersion(t *testing.T) {
	s := NewStore(time.Hour).Create(doctree.Document{doctree.NewParagraph("hello")})
	assert.Equal(t, 0, s.State().Version)

	state, err := s.Do(func(ed *editor.Editor) error {
		ed.SelectAll()
		return ed.ToggleMark(editor.MarkBold)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, state.Version)
	assert.True(t, state.Toolbar.Bold)
	assert.True(t, state.Document[0].Children[0].Bold)
	require.NotNil(t, state.Selection)

	// A failed operation commits nothing.
	state, err = s.Do(func(ed *editor.Editor) error {
		return ed.ToggleMark(editor.MarkFontSize)
	})
	assert.ErrorIs(t, err, editor.ErrInvalidMark)
	assert.Equal(t, 1, state.Version)
}

func TestSession_Toolbar(t *testing.T) {
	doc := doctree.Document{{Kind: doctree.KindHeading, Level: 2, Align: doctree.AlignCenter, Children: []*doctree.Text{{Text: "Title"}}}}
	s := NewStore(time.Hour).Create(doc)

	state := s.State()
	assert.Equal(t, doctree.KindParagraph, state.Toolbar.Block, "no selection reads as paragraph")
	assert.True(t, state.Toolbar.FontSize.Default)

	state, err := s.Do(func(ed *editor.Editor) error {
		ed.SelectAll()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, doctree.KindHeading, state.Toolbar.Block)
	assert.Equal(t, 2, state.Toolbar.Level)
	assert.Equal(t, doctree.AlignCenter, state.Toolbar.Align)
}

func TestSession_ConcurrentDo(t *testing.T) {
	s := NewStore(time.Hour).Create(doctree.Document{doctree.NewParagraph("")})
	_, err := s.Do(func(ed *editor.Editor) error {
		return ed.Select(editor.Range{Anchor: editor.Point{Path: []int{0, 0}}, Focus: editor.Point{Path: []int{0, 0}}})
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(func(ed *editor.Editor) error { return ed.InsertText("a") })
		}()
	}
	wg.Wait()

	state := s.State()
	assert.Equal(t, 20, state.Version)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaa", state.Document.PlainText())
}
