// Package session keeps server-side editor handles between requests.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/editor"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// Session is one document being edited. All access goes through Do, which
// holds the session's lock.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	ed      *editor.Editor
	version int
}

// Toolbar is the formatting state at the selection.
type Toolbar struct {
	Bold      bool            `json:"bold"`
	Italic    bool            `json:"italic"`
	Underline bool            `json:"underline"`
	FontSize  editor.FontSize `json:"fontSize"`
	Align     doctree.Align   `json:"align"`
	Block     doctree.Kind    `json:"block"`
	Level     int             `json:"level,omitempty"`
}

// State is a JSON-safe copy of a session.
type State struct {
	ID        string           `json:"id"`
	Version   int              `json:"version"`
	Document  doctree.Document `json:"document"`
	Selection *editor.Range    `json:"selection"`
	Toolbar   Toolbar          `json:"toolbar"`
	CreatedAt time.Time        `json:"created_at"`
}

func newSession(doc doctree.Document) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		ed:        editor.New(doc),
	}
	s.ed.OnChange(func(doctree.Document) { s.version++ })
	return s
}

// Do runs fn against the session's editor and returns the resulting
// state. The state is returned even when fn fails.
func (s *Session) Do(fn func(ed *editor.Editor) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if fn != nil {
		err = fn(s.ed)
	}
	return s.stateLocked(), err
}

// State returns the current state.
func (s *Session) State() State {
	st, _ := s.Do(nil)
	return st
}

func (s *Session) stateLocked() State {
	return State{
		ID:        s.ID,
		Version:   s.version,
		Document:  s.ed.Document(),
		Selection: s.ed.Selection(),
		Toolbar:   toolbar(s.ed),
		CreatedAt: s.CreatedAt,
	}
}

func toolbar(ed *editor.Editor) Toolbar {
	tb := Toolbar{
		Bold:      ed.IsMarkActive(editor.MarkBold),
		Italic:    ed.IsMarkActive(editor.MarkItalic),
		Underline: ed.IsMarkActive(editor.MarkUnderline),
		FontSize:  ed.FontSize(),
		Align:     ed.CurrentAlign(),
		Block:     doctree.KindParagraph,
	}
	for _, k := range []doctree.Kind{doctree.KindBulletedList, doctree.KindNumberedList, doctree.KindHeading} {
		if ed.IsBlockActive(k, 0) {
			tb.Block = k
			break
		}
	}
	if tb.Block == doctree.KindHeading {
		for level := 1; level <= 6; level++ {
			if ed.IsBlockActive(doctree.KindHeading, level) {
				tb.Level = level
				break
			}
		}
	}
	return tb
}

// Store holds sessions with sliding TTL expiry.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewStore creates a store whose sessions expire after ttl without use.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Create opens a session over a copy of doc.
func (st *Store) Create(doc doctree.Document) *Session {
	s := newSession(doc)
	st.cache.Set(s.ID, s, cache.DefaultExpiration)
	return s
}

// Get returns a session and extends its expiry.
func (st *Store) Get(id string) (*Session, error) {
	x, found := st.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	s := x.(*Session)
	st.cache.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (st *Store) Delete(id string) {
	st.cache.Delete(id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.cache.ItemCount()
}
