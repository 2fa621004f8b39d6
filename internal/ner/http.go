package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// HTTPOptions configures an HTTPRecognizer.
type HTTPOptions struct {
	Endpoint            string
	Model               string
	APIToken            string
	AggregationStrategy string
	Timeout             time.Duration
	MaxRetries          int
	RetryDelay          time.Duration
}

// HTTPRecognizer calls a token-classification inference endpoint that speaks
// the Hugging Face pipeline wire format.
type HTTPRecognizer struct {
	opts       HTTPOptions
	httpClient *http.Client
	stats      *InferenceStats
	log        *slog.Logger
}

func NewHTTPRecognizer(opts HTTPOptions, log *slog.Logger) *HTTPRecognizer {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &HTTPRecognizer{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		stats: NewInferenceStats(time.Hour),
		log:   log,
	}
}

type inferenceParameters struct {
	AggregationStrategy string `json:"aggregation_strategy,omitempty"`
}

type inferenceRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters *inferenceParameters `json:"parameters,omitempty"`
}

// Recognize sends one chunk to the endpoint. 429 and 5xx answers are retried
// with exponential backoff; anything else fails immediately.
func (c *HTTPRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	return retry.DoWithData(
		func() ([]Entity, error) {
			return c.recognizeOnce(ctx, text)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.opts.MaxRetries+1)),
		retry.Delay(c.opts.RetryDelay),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("retryable inference error", "attempt", n, "error", err)
		}),
	)
}

func (c *HTTPRecognizer) recognizeOnce(ctx context.Context, text string) ([]Entity, error) {
	reqBody := inferenceRequest{Inputs: text}
	if c.opts.AggregationStrategy != "" {
		reqBody.Parameters = &inferenceParameters{AggregationStrategy: c.opts.AggregationStrategy}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.opts.APIToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.stats.RecordFailure()
		return nil, fmt.Errorf("inference api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	c.stats.Record(time.Since(start).Milliseconds())
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	entities, err := DecodeEntities(respBody)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// Name identifies the backend and model in logs and stats.
func (c *HTTPRecognizer) Name() string {
	if c.opts.Model != "" {
		return "http:" + c.opts.Model
	}
	return "http:" + c.opts.Endpoint
}

func (c *HTTPRecognizer) Stats() *InferenceStats {
	return c.stats
}

// Close releases resources.
func (c *HTTPRecognizer) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
