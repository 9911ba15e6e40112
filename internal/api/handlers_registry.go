package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/affigen/internal/assembly"
	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/parser"
	"github.com/dgallion1/affigen/internal/registry"
)

// requireRegistry writes 503 when no registry database is open.
func (s *Server) requireRegistry(w http.ResponseWriter) bool {
	if s.registry == nil {
		jsonError(w, "registry is not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (s *Server) handleListOfficers(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	officers, err := s.registry.ListOfficers(r.Context())
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"officers": officers})
}

func (s *Server) handleGetOfficer(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	o, err := s.registry.GetOfficer(r.Context(), chi.URLParam(r, "badge"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) decodeOfficer(w http.ResponseWriter, r *http.Request) (casefile.Officer, bool) {
	var o casefile.Officer
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&o); err != nil {
		jsonError(w, "invalid officer: "+err.Error(), http.StatusBadRequest)
		return o, false
	}
	return o, true
}

func (s *Server) handleCreateOfficer(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	o, ok := s.decodeOfficer(w, r)
	if !ok {
		return
	}
	if err := s.registry.PutOfficer(r.Context(), o); err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handlePutOfficer(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	o, ok := s.decodeOfficer(w, r)
	if !ok {
		return
	}
	o.BadgeNumber = chi.URLParam(r, "badge")
	if err := s.registry.PutOfficer(r.Context(), o); err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleDeleteOfficer(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	if err := s.registry.DeleteOfficer(r.Context(), chi.URLParam(r, "badge")); err != nil {
		s.writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportOfficers upserts a CSV roster, sent either as the request
// body or as the "file" field of a multipart form.
func (s *Server) handleImportOfficers(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	body := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()
		file, _, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body = file
	}

	officers, err := parser.ParseOfficerRoster(body)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	n, err := s.registry.ImportOfficers(r.Context(), officers)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	s.log.Info("imported officer roster", "count", n)
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (s *Server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.station(r.Context()))
}

func (s *Server) handlePutStation(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	var st casefile.PoliceStation
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&st); err != nil {
		jsonError(w, "invalid station: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.registry.PutStation(r.Context(), st); err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type templateEntry struct {
	registry.TemplateInfo
	Builtin bool `json:"builtin"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	var out []templateEntry
	for _, name := range assembly.TemplateNames() {
		out = append(out, templateEntry{TemplateInfo: registry.TemplateInfo{Name: name}, Builtin: true})
	}
	if s.registry != nil {
		saved, err := s.registry.ListTemplates(r.Context())
		if err != nil {
			s.writeLookupError(w, err)
			return
		}
		for _, info := range saved {
			out = append(out, templateEntry{TemplateInfo: info})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": out})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.template(r.Context(), name)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     name,
		"builtin":  slices.Contains(assembly.TemplateNames(), name),
		"document": doc,
	})
}

func (s *Server) handlePutTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	name := chi.URLParam(r, "name")
	if slices.Contains(assembly.TemplateNames(), name) {
		jsonError(w, "built-in templates are read-only", http.StatusConflict)
		return
	}
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	hash, err := s.registry.PutTemplate(r.Context(), name, doc)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "hash": hash})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if !s.requireRegistry(w) {
		return
	}
	name := chi.URLParam(r, "name")
	if slices.Contains(assembly.TemplateNames(), name) {
		jsonError(w, "built-in templates are read-only", http.StatusConflict)
		return
	}
	if err := s.registry.DeleteTemplate(r.Context(), name); err != nil {
		s.writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
