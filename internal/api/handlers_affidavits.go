package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/affigen/internal/assembly"
	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/pipeline"
	"github.com/dgallion1/affigen/internal/registry"
)

type fastRequest struct {
	Template    string                `json:"template"`
	CaseDetails *casefile.CaseDetails `json:"caseDetails"`
	OpenSession bool                  `json:"openSession,omitempty"`
}

// template returns a built-in template or, failing that, a saved one.
func (s *Server) template(ctx context.Context, name string) (doctree.Document, error) {
	doc, err := assembly.Template(name)
	if err == nil || !errors.Is(err, assembly.ErrUnknownTemplate) || s.registry == nil {
		return doc, err
	}
	stored, err := s.registry.GetTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	return stored.Document, nil
}

// station is the saved station, else the configured default.
func (s *Server) station(ctx context.Context) casefile.PoliceStation {
	if s.registry != nil {
		if st, err := s.registry.Station(ctx); err == nil {
			return st
		}
	}
	return s.cfg.Station
}

// writeLookupError maps registry and template errors to status codes.
func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, assembly.ErrUnknownTemplate):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, registry.ErrInvalid):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("registry error", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleFastAffidavit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req fastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.CaseDetails == nil {
		jsonError(w, "caseDetails is required", http.StatusBadRequest)
		return
	}
	if req.Template == "" {
		req.Template = assembly.TemplateArrestingOfficer
	}

	tmpl, err := s.template(r.Context(), req.Template)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	doc, err := assembly.Fill(tmpl, req.CaseDetails, s.now())
	if err != nil {
		jsonError(w, "fill template: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := map[string]any{"template": req.Template, "document": doc}
	if req.OpenSession {
		resp["session"] = s.sessions.Create(doc).State()
	}
	writeJSON(w, http.StatusOK, resp)
}

type generateRequest struct {
	Kind        string                `json:"kind"`
	CaseDetails *casefile.CaseDetails `json:"caseDetails"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "generation is not configured", http.StatusServiceUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.CaseDetails == nil {
		jsonError(w, "caseDetails is required", http.StatusBadRequest)
		return
	}
	switch req.Kind {
	case "", pipeline.KindPoseurBuyer, pipeline.KindArrestingOfficer:
	default:
		jsonError(w, fmt.Sprintf("unknown affidavit kind %q", req.Kind), http.StatusBadRequest)
		return
	}

	station := s.station(r.Context())
	job := pipeline.NewJob(req.Kind, req.CaseDetails, &station)
	if err := s.orchestrator.Submit(job); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":  err.Error(),
			"code":   pipeline.CodeQueueFull,
			"job_id": job.ID,
		})
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"kind":     snap.Kind,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/generate/%s", snap.ID),
	})
}

func (s *Server) handleGenerateStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "generation is not configured", http.StatusServiceUnavailable)
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
