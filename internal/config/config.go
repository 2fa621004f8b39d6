package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendHTTP  = "http"
	BackendHugot = "hugot"

	DefaultModel    = "dmis-lab/biobert-base-cased-v1.1"
	DefaultEndpoint = "https://api-inference.huggingface.co/models/" + DefaultModel
)

type Config struct {
	// Input/output locations. OutputDir may be an s3://bucket/prefix URL.
	InputDir     string `mapstructure:"input_dir"`
	OutputDir    string `mapstructure:"output_dir"`
	OutputSuffix string `mapstructure:"output_suffix"`

	// Chunking
	ChunkSize         int `mapstructure:"chunk_size"`
	MaxSequenceTokens int `mapstructure:"max_sequence_tokens"`

	// Abort the run on the first failing document.
	FailFast bool `mapstructure:"fail_fast"`

	// PDF
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext"`

	NER    NERConfig    `mapstructure:"ner"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// NERConfig selects and tunes the entity recognizer backend.
type NERConfig struct {
	Backend             string        `mapstructure:"backend"`
	Endpoint            string        `mapstructure:"endpoint"`
	Model               string        `mapstructure:"model"`
	APIToken            string        `mapstructure:"api_token"`
	AggregationStrategy string        `mapstructure:"aggregation_strategy"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`

	// ModelPath points at a local ONNX export for the hugot backend.
	ModelPath string `mapstructure:"model_path"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	APIKey         string `mapstructure:"api_key"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./pdf")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("output_suffix", "_entities.txt")

	v.SetDefault("chunk_size", 500)
	v.SetDefault("max_sequence_tokens", 512)

	v.SetDefault("fail_fast", true)
	v.SetDefault("pdf_fallback_pdftotext", false)

	v.SetDefault("ner.backend", BackendHTTP)
	v.SetDefault("ner.endpoint", DefaultEndpoint)
	v.SetDefault("ner.model", DefaultModel)
	v.SetDefault("ner.api_token", "")
	v.SetDefault("ner.aggregation_strategy", "simple")
	v.SetDefault("ner.timeout", 60*time.Second)
	v.SetDefault("ner.max_retries", 0)
	v.SetDefault("ner.retry_delay", time.Second)
	v.SetDefault("ner.model_path", "")

	v.SetDefault("server.port", "8090")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.max_upload_bytes", int64(52428800)) // 50MB

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Init prepares v with defaults, PDFNER_ environment variables and an
// optional config file. A missing config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix("PDFNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdfner")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pdfner")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// Load decodes the current viper state into a Config and fills in
// fallbacks for non-positive numeric settings.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.OutputSuffix == "" {
		cfg.OutputSuffix = "_entities.txt"
	}
	if cfg.MaxSequenceTokens <= 0 {
		cfg.MaxSequenceTokens = 512
	}
	if cfg.NER.Timeout <= 0 {
		cfg.NER.Timeout = 60 * time.Second
	}
	if cfg.NER.MaxRetries < 0 {
		cfg.NER.MaxRetries = 0
	}
	if cfg.NER.RetryDelay <= 0 {
		cfg.NER.RetryDelay = time.Second
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 52428800
	}
	cfg.NER.Backend = strings.ToLower(strings.TrimSpace(cfg.NER.Backend))

	return cfg, nil
}

func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	switch c.NER.Backend {
	case BackendHTTP:
		if c.NER.Endpoint == "" {
			return fmt.Errorf("ner.endpoint is required for the http backend")
		}
	case BackendHugot:
		if c.NER.ModelPath == "" {
			return fmt.Errorf("ner.model_path is required for the hugot backend")
		}
	default:
		return fmt.Errorf("unknown ner.backend %q", c.NER.Backend)
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.APIKey == "" {
		return fmt.Errorf("server.api_key is required")
	}
	return nil
}
