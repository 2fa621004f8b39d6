package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink stores finished reports. Put must be all-or-nothing: a reader never
// observes a half-written report.
type Sink interface {
	Prepare(ctx context.Context) error
	Put(ctx context.Context, name string, body []byte) error
	Location(name string) string
}

// NewSink picks the sink for an output location. s3://bucket/prefix
// selects S3; anything else is a local directory.
func NewSink(ctx context.Context, location string) (Sink, error) {
	if strings.HasPrefix(location, "s3://") {
		bucket, prefix, err := ParseS3URL(location)
		if err != nil {
			return nil, err
		}
		return NewS3SinkFromEnv(ctx, bucket, prefix)
	}
	return &DirSink{Dir: location}, nil
}

// DirSink writes reports into a local directory.
type DirSink struct {
	Dir string
}

// Prepare creates the output directory if it does not exist.
func (s *DirSink) Prepare(ctx context.Context) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// Put writes body to a temp file beside the target and renames it into
// place, replacing any earlier report of the same name.
func (s *DirSink) Put(ctx context.Context, name string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, ".pdfner-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Location(name)); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

func (s *DirSink) Location(name string) string {
	return filepath.Join(s.Dir, name)
}
