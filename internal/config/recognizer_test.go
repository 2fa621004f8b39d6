package config_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfner/internal/config"
	"github.com/dgallion1/pdfner/internal/ner"
)

func TestDefaults_CallEndpointOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer srv.Close()

	t.Chdir(t.TempDir())
	v := viper.New()
	require.NoError(t, config.Init(v, ""))
	v.Set("ner.endpoint", srv.URL)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	rec, err := ner.Open(cfg.NER, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer rec.Close()

	_, err = rec.Recognize(context.Background(), "BRCA1 mutations")
	assert.Error(t, err)
	assert.True(t, ner.IsRetryable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestMaxRetries_OptIn(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"entity_group":"Gene","word":"BRCA1","score":0.9}]`))
	}))
	defer srv.Close()

	t.Chdir(t.TempDir())
	t.Setenv("PDFNER_NER_MAX_RETRIES", "1")
	t.Setenv("PDFNER_NER_RETRY_DELAY", "1ms")
	v := viper.New()
	require.NoError(t, config.Init(v, ""))
	v.Set("ner.endpoint", srv.URL)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	rec, err := ner.Open(cfg.NER, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer rec.Close()

	entities, err := rec.Recognize(context.Background(), "BRCA1")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Gene", entities[0].Label)
	assert.Equal(t, int32(2), calls.Load())
}
