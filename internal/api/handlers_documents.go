package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/parser"
	"github.com/dgallion1/affigen/internal/render"
)

// readDocument decodes and validates a JSON document from the request
// body. Errors are written to w; ok reports success.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (doctree.Document, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return validated(w, raw)
}

// validated runs the shape check on a decoded value.
func validated(w http.ResponseWriter, raw any) (doctree.Document, bool) {
	doc, err := doctree.Validate(raw)
	if err != nil {
		writeShapeError(w, err)
		return nil, false
	}
	return doctree.Normalize(doc), true
}

func writeShapeError(w http.ResponseWriter, err error) {
	var shape *doctree.ShapeError
	if errors.As(err, &shape) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": shape.Reason,
			"path":  shape.Path,
		})
		return
	}
	jsonError(w, err.Error(), http.StatusUnprocessableEntity)
}

func (s *Server) handleValidateDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc})
}

func (s *Server) handleImportDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		var shape *doctree.ShapeError
		if errors.As(err, &shape) {
			writeShapeError(w, err)
			return
		}
		s.log.Warn("import failed", "filename", filename, "error", err)
		jsonError(w, "could not read "+filename+": "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": filename,
		"document": doc,
	})
}

func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	s.export(w, r, doc)
}

// export renders doc in the format named by the format query parameter
// (default json) as a download.
func (s *Server) export(w http.ResponseWriter, r *http.Request, doc doctree.Document) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	rd, err := render.ForFormat(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := rd.Render(&buf, doc); err != nil {
		s.log.Error("export failed", "format", format, "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}

	name := sanitizeFilename(r.URL.Query().Get("filename"))
	if name == "unnamed" {
		name = "affidavit"
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + rd.Extension()

	w.Header().Set("Content-Type", rd.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
