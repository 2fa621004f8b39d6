package pipeline

import (
	"context"
	"fmt"

	"github.com/dgallion1/pdfner/internal/chunker"
	"github.com/dgallion1/pdfner/internal/ner"
	"github.com/dgallion1/pdfner/internal/parser"
)

// Analysis is the in-memory result of recognizing one document.
type Analysis struct {
	Characters  int
	ContentHash string
	Chunks      []chunker.Chunk
	Entities    []ner.Entity
}

// Analyze extracts, normalizes and chunks the document at path, then runs the
// recognizer once per chunk. Entities are returned in chunk order, and within
// a chunk in the order the recognizer produced them. A partially filled
// Analysis is returned alongside any error.
func (o *Orchestrator) Analyze(ctx context.Context, path string) (*Analysis, error) {
	raw, err := parser.ExtractText(ctx, o.extractor, path)
	if err != nil {
		return nil, err
	}

	text := chunker.Normalize(raw)
	chunks := chunker.Split(text, o.opts.ChunkSize)
	doc := &Analysis{
		Characters:  len([]rune(text)),
		ContentHash: ContentHashHex([]byte(text)),
		Chunks:      chunks,
	}

	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return doc, err
		}
		if chunker.ExceedsSequence(c.Text, o.opts.MaxSequenceTokens) {
			o.log.Warn("chunk may exceed model sequence length",
				"chunk", c.Index,
				"estimated_tokens", chunker.EstimateTokens(c.Text),
				"max_tokens", o.opts.MaxSequenceTokens,
			)
		}

		entities, err := o.recognizer.Recognize(ctx, c.Text)
		if err != nil {
			return doc, fmt.Errorf("recognize chunk %d: %w", c.Index, err)
		}
		doc.Entities = append(doc.Entities, entities...)
	}

	return doc, nil
}
