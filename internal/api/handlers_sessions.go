package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/editor"
	"github.com/dgallion1/affigen/internal/session"
)

type createSessionRequest struct {
	Document json.RawMessage `json:"document,omitempty"`
	Template string          `json:"template,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc := doctree.Empty()
	switch {
	case len(req.Document) > 0 && req.Template != "":
		jsonError(w, "give either document or template, not both", http.StatusBadRequest)
		return
	case len(req.Document) > 0:
		var raw any
		if err := json.Unmarshal(req.Document, &raw); err != nil {
			jsonError(w, "invalid document: "+err.Error(), http.StatusBadRequest)
			return
		}
		var ok bool
		if doc, ok = validated(w, raw); !ok {
			return
		}
	case req.Template != "":
		tmpl, err := s.template(r.Context(), req.Template)
		if err != nil {
			s.writeLookupError(w, err)
			return
		}
		doc = tmpl
	}

	sess := s.sessions.Create(doc)
	s.log.Info("session created", "session_id", sess.ID, "blocks", len(doc))
	writeJSON(w, http.StatusCreated, sess.State())
}

// session resolves the URL's session, writing 404 when it is gone.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	st, _ := sess.Do(func(ed *editor.Editor) error {
		ed.Replace(doc)
		return nil
	})
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var sel *editor.Range
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		jsonError(w, "invalid selection: "+err.Error(), http.StatusBadRequest)
		return
	}
	st, err := sess.Do(func(ed *editor.Editor) error {
		if sel == nil {
			ed.Deselect()
			return nil
		}
		return ed.Select(*sel)
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "state": st})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleCommands applies one command or an array of commands in order.
// Processing stops at the first failing command; earlier commands stay
// applied.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	cmds, err := decodeCommands(body)
	if err != nil {
		jsonError(w, "invalid commands: "+err.Error(), http.StatusBadRequest)
		return
	}

	failed := -1
	st, err := sess.Do(func(ed *editor.Editor) error {
		for i, cmd := range cmds {
			if err := ed.Apply(cmd); err != nil {
				failed = i
				return fmt.Errorf("command %d (%s): %w", i, cmd.Op, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Debug("command rejected", "session_id", sess.ID, "index", failed, "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  err.Error(),
			"failed": failed,
			"state":  st,
		})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func decodeCommands(body []byte) ([]editor.Command, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var cmds []editor.Command
		if err := json.Unmarshal(body, &cmds); err != nil {
			return nil, err
		}
		return cmds, nil
	}
	var cmd editor.Command
	if err := json.Unmarshal(body, &cmd); err != nil {
		return nil, err
	}
	return []editor.Command{cmd}, nil
}

func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.export(w, r, sess.State().Document)
}
