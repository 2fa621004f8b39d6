package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/pdfner/internal/ner"
	"github.com/dgallion1/pdfner/internal/parser"
	"github.com/dgallion1/pdfner/internal/report"
)

type extractResponse struct {
	Filename string       `json:"filename"`
	Chunks   int          `json:"chunks"`
	Entities []ner.Entity `json:"entities"`
}

// handleExtract runs the recognition pipeline on one uploaded PDF and answers
// with its report, or with JSON when format=json.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

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
	if !parser.IsPDF(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// The PDF reader needs a seekable file on disk.
	tmp, err := os.CreateTemp("", "pdfner-upload-*.pdf")
	if err != nil {
		jsonError(w, "failed to buffer upload", http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, io.LimitReader(file, s.cfg.Server.MaxUploadBytes+1))
	tmp.Close()
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if n > s.cfg.Server.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.Server.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	log := s.log.With("request_id", middleware.GetReqID(r.Context()), "file", filename)

	doc, err := s.orchestrator.Analyze(r.Context(), tmpPath)
	if err != nil {
		log.Error("extraction failed", "error", err)
		status := http.StatusUnprocessableEntity
		if ner.IsRetryable(err) {
			status = http.StatusServiceUnavailable
		}
		jsonError(w, "extraction failed: "+err.Error(), status)
		return
	}
	log.Info("entities extracted", "chunks", len(doc.Chunks), "entities", len(doc.Entities))

	if r.URL.Query().Get("format") == "json" {
		entities := doc.Entities
		if entities == nil {
			entities = []ner.Entity{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(extractResponse{
			Filename: filename,
			Chunks:   len(doc.Chunks),
			Entities: entities,
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.OutputName(filename, s.cfg.OutputSuffix)))
	w.Write(report.Render(filename, doc.Entities))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." || name == ".." {
		name = "unnamed"
	}
	return name
}
