package ner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// HugotRecognizer runs an ONNX token-classification export of the model
// in-process through hugot's pure Go backend.
type HugotRecognizer struct {
	mu        sync.Mutex
	session   *hugot.Session
	pipeline  *pipelines.TokenClassificationPipeline
	modelPath string
	stats     *InferenceStats
	log       *slog.Logger
}

// NewHugotRecognizer loads the model at modelPath. onnxFilename selects the
// ONNX file inside the model directory and defaults to model.onnx.
func NewHugotRecognizer(modelPath, onnxFilename string, log *slog.Logger) (*HugotRecognizer, error) {
	if modelPath == "" {
		return nil, errors.New("model path is required for the hugot backend")
	}
	if onnxFilename == "" {
		onnxFilename = "model.onnx"
	}
	if log == nil {
		log = slog.Default()
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("creating hugot session: %w", err)
	}

	pipelineConfig := hugot.TokenClassificationConfig{
		ModelPath:    modelPath,
		OnnxFilename: onnxFilename,
		Name:         fmt.Sprintf("%s:%s", modelPath, onnxFilename),
	}
	pipeline, err := hugot.NewPipeline(session, pipelineConfig)
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("creating token classification pipeline: %w", err)
	}
	// Group subword tokens into whole entities, like aggregation_strategy=simple.
	pipeline.AggregationStrategy = "SIMPLE"

	log.Info("loaded ner model", "backend", "hugot", "model_path", modelPath, "onnx", onnxFilename)

	return &HugotRecognizer{
		session:   session,
		pipeline:  pipeline,
		modelPath: modelPath,
		stats:     NewInferenceStats(time.Hour),
		log:       log,
	}, nil
}

// Recognize classifies one chunk. Calls are serialized on the pipeline.
func (h *HugotRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		h.stats.RecordFailure()
		return nil, fmt.Errorf("running token classification: %w", err)
	}
	h.stats.Record(time.Since(start).Milliseconds())

	if len(output.Entities) == 0 {
		return nil, nil
	}
	return fromHugot(output.Entities[0]), nil
}

func fromHugot(in []pipelines.Entity) []Entity {
	out := make([]Entity, 0, len(in))
	for _, e := range in {
		out = append(out, Entity{
			Word:        e.Word,
			Label:       e.Entity,
			Score:       float64(e.Score),
			LabelSource: LabelFromEntityGroup,
		})
	}
	return out
}

func (h *HugotRecognizer) Name() string {
	return "hugot:" + filepath.Base(h.modelPath)
}

func (h *HugotRecognizer) Stats() *InferenceStats {
	return h.stats
}

func (h *HugotRecognizer) Close() error {
	return h.session.Destroy()
}
