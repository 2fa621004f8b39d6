package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/pdfner/internal/chunker"
	"github.com/dgallion1/pdfner/internal/config"
	"github.com/dgallion1/pdfner/internal/ner"
	"github.com/dgallion1/pdfner/internal/parser"
	"github.com/dgallion1/pdfner/internal/report"
)

// Options controls a batch run.
type Options struct {
	InputDir          string
	OutputSuffix      string
	ChunkSize         int
	MaxSequenceTokens int
	FailFast          bool
}

// OptionsFromConfig copies the pipeline settings out of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		InputDir:          cfg.InputDir,
		OutputSuffix:      cfg.OutputSuffix,
		ChunkSize:         cfg.ChunkSize,
		MaxSequenceTokens: cfg.MaxSequenceTokens,
		FailFast:          cfg.FailFast,
	}
}

// Orchestrator runs the extract, normalize, chunk, recognize and report
// stages over a folder of PDFs, one document at a time.
type Orchestrator struct {
	extractor  parser.Extractor
	recognizer ner.Recognizer
	sink       report.Sink
	log        *slog.Logger
	opts       Options
}

func NewOrchestrator(opts Options, extractor parser.Extractor, recognizer ner.Recognizer, sink report.Sink, log *slog.Logger) *Orchestrator {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = chunker.DefaultChunkSize
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = report.DefaultSuffix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		extractor:  extractor,
		recognizer: recognizer,
		sink:       sink,
		log:        log,
		opts:       opts,
	}
}

// Scan lists the PDFs in the input directory in name order.
func (o *Orchestrator) Scan() ([]string, error) {
	entries, err := os.ReadDir(o.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !parser.IsPDF(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(o.opts.InputDir, entry.Name()))
	}
	return paths, nil
}

// Run processes every PDF in the input directory. With FailFast the first
// failure stops the run and is returned; otherwise failures are recorded and
// Run returns ErrDocumentsFailed after the last document. The summary is
// returned in both cases.
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.New().String(),
		InputDir:  o.opts.InputDir,
		Backend:   o.recognizer.Name(),
		StartedAt: time.Now(),
	}
	defer func() {
		summary.FinishedAt = time.Now()
		summary.Inference = o.recognizer.Stats().Snapshot()
	}()

	log := o.log.With("run_id", summary.RunID)

	if err := o.sink.Prepare(ctx); err != nil {
		return summary, err
	}

	paths, err := o.Scan()
	if err != nil {
		return summary, err
	}
	log.Info("starting run", "input_dir", o.opts.InputDir, "documents", len(paths), "backend", summary.Backend)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := o.ProcessFile(ctx, path)
		summary.add(res)
		if err != nil {
			if o.opts.FailFast {
				return summary, fmt.Errorf("process %s: %w", filepath.Base(path), err)
			}
			log.Error("document failed", "file", res.File, "error", err)
		}
	}

	log.Info("run complete", "completed", summary.Completed, "failed", summary.Failed)
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, summary.Failed, len(paths))
	}
	return summary, nil
}

// ProcessFile runs one PDF through every stage and stores its report.
func (o *Orchestrator) ProcessFile(ctx context.Context, path string) (DocumentResult, error) {
	start := time.Now()
	name := filepath.Base(path)
	res := DocumentResult{File: name, Status: StatusFailed}
	log := o.log.With("file", name)

	if info, err := parser.Inspect(path); err != nil {
		log.Warn("pdf inspection failed", "error", err)
	} else {
		res.Pages = info.Pages
	}

	doc, err := o.Analyze(ctx, path)
	if doc != nil {
		res.Characters = doc.Characters
		res.Chunks = len(doc.Chunks)
		res.ContentHash = doc.ContentHash
	}
	if err != nil {
		res.Error = err.Error()
		res.DurationMs = time.Since(start).Milliseconds()
		return res, err
	}
	res.Entities = len(doc.Entities)

	outName := report.OutputName(name, o.opts.OutputSuffix)
	if err := o.sink.Put(ctx, outName, report.Render(name, doc.Entities)); err != nil {
		res.Error = err.Error()
		res.DurationMs = time.Since(start).Milliseconds()
		return res, fmt.Errorf("write report: %w", err)
	}

	res.Report = o.sink.Location(outName)
	res.Status = StatusCompleted
	res.DurationMs = time.Since(start).Milliseconds()
	log.Info("entities written", "output", res.Report, "entities", res.Entities, "chunks", res.Chunks)
	return res, nil
}
