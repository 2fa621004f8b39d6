package ner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/pdfner/internal/config"
)

// Recognizer runs named entity recognition over one chunk of text and returns
// the entities in the order the model produced them.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
	Name() string
	Stats() *InferenceStats
	Close() error
}

// Open builds the recognizer selected by cfg.Backend.
func Open(cfg config.NERConfig, log *slog.Logger) (Recognizer, error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		return NewHTTPRecognizer(HTTPOptions{
			Endpoint:            cfg.Endpoint,
			Model:               cfg.Model,
			APIToken:            cfg.APIToken,
			AggregationStrategy: cfg.AggregationStrategy,
			Timeout:             cfg.Timeout,
			MaxRetries:          cfg.MaxRetries,
			RetryDelay:          cfg.RetryDelay,
		}, log), nil
	case config.BackendHugot:
		return NewHugotRecognizer(cfg.ModelPath, "", log)
	default:
		return nil, fmt.Errorf("unknown ner backend %q", cfg.Backend)
	}
}
