package pipeline

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/pdfner/internal/ner"
)

// ErrDocumentsFailed is returned by Run when fail-fast is off and at least
// one document could not be processed.
var ErrDocumentsFailed = errors.New("one or more documents failed")

// DocumentStatus is the outcome of processing one document.
type DocumentStatus string

const (
	StatusCompleted DocumentStatus = "completed"
	StatusFailed    DocumentStatus = "failed"
)

// DocumentResult summarizes one processed document.
type DocumentResult struct {
	File        string         `json:"file" yaml:"file"`
	Report      string         `json:"report,omitempty" yaml:"report,omitempty"`
	Status      DocumentStatus `json:"status" yaml:"status"`
	Pages       int            `json:"pages" yaml:"pages"`
	Characters  int            `json:"characters" yaml:"characters"`
	Chunks      int            `json:"chunks" yaml:"chunks"`
	Entities    int            `json:"entities" yaml:"entities"`
	ContentHash string         `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	DurationMs  int64          `json:"duration_ms" yaml:"duration_ms"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunSummary describes a whole batch run.
type RunSummary struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	InputDir   string            `json:"input_dir" yaml:"input_dir"`
	Backend    string            `json:"backend" yaml:"backend"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time         `json:"finished_at" yaml:"finished_at"`
	Completed  int               `json:"completed" yaml:"completed"`
	Failed     int               `json:"failed" yaml:"failed"`
	Documents  []DocumentResult  `json:"documents" yaml:"documents"`
	Inference  ner.StatsSnapshot `json:"inference" yaml:"inference"`
}

func (s *RunSummary) add(res DocumentResult) {
	s.Documents = append(s.Documents, res)
	switch res.Status {
	case StatusCompleted:
		s.Completed++
	case StatusFailed:
		s.Failed++
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
