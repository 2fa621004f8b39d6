package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrom(t *testing.T, cfgFile string) Config {
	t.Helper()
	v := viper.New()
	require.NoError(t, Init(v, cfgFile))
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := loadFrom(t, "")

	assert.Equal(t, "./pdf", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "_entities.txt", cfg.OutputSuffix)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 512, cfg.MaxSequenceTokens)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, BackendHTTP, cfg.NER.Backend)
	assert.Equal(t, DefaultEndpoint, cfg.NER.Endpoint)
	assert.Equal(t, DefaultModel, cfg.NER.Model)
	assert.Equal(t, 60*time.Second, cfg.NER.Timeout)
	assert.Equal(t, 0, cfg.NER.MaxRetries)
	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, int64(52428800), cfg.Server.MaxUploadBytes)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PDFNER_INPUT_DIR", "/data/pdf")
	t.Setenv("PDFNER_CHUNK_SIZE", "250")
	t.Setenv("PDFNER_NER_BACKEND", "HUGOT")
	t.Setenv("PDFNER_NER_MODEL_PATH", "/models/biobert")
	t.Setenv("PDFNER_FAIL_FAST", "false")

	cfg := loadFrom(t, "")

	assert.Equal(t, "/data/pdf", cfg.InputDir)
	assert.Equal(t, 250, cfg.ChunkSize)
	assert.Equal(t, BackendHugot, cfg.NER.Backend)
	assert.Equal(t, "/models/biobert", cfg.NER.ModelPath)
	assert.False(t, cfg.FailFast)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdfner.yaml")
	body := `input_dir: /in
output_dir: s3://reports/ner
chunk_size: 300
ner:
  endpoint: http://localhost:9000/ner
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := loadFrom(t, path)

	assert.Equal(t, "/in", cfg.InputDir)
	assert.Equal(t, "s3://reports/ner", cfg.OutputDir)
	assert.Equal(t, 300, cfg.ChunkSize)
	assert.Equal(t, "http://localhost:9000/ner", cfg.NER.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.NER.Timeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	t.Chdir(t.TempDir())
	base := loadFrom(t, "")

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty input", func(c *Config) { c.InputDir = "" }},
		{"empty output", func(c *Config) { c.OutputDir = "" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -10 }},
		{"unknown backend", func(c *Config) { c.NER.Backend = "spacy" }},
		{"http without endpoint", func(c *Config) { c.NER.Endpoint = "" }},
		{"hugot without model path", func(c *Config) { c.NER.Backend = BackendHugot }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateServer_RequiresAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := loadFrom(t, "")
	assert.Error(t, cfg.ValidateServer())

	cfg.Server.APIKey = "secret"
	assert.NoError(t, cfg.ValidateServer())
}
