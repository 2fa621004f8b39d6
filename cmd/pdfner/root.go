package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dgallion1/pdfner/internal/config"
)

var (
	cfgFile string

	// v holds flags, PDFNER_ environment variables and the config file.
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "pdfner",
	Short: "Biomedical named entity extraction for folders of PDFs",
	Long: `pdfner extracts the text of every PDF in a folder, runs it through a
pretrained biomedical NER model in fixed-size chunks, and writes one
plain-text entity report per document.

Recognition runs either against a remote token-classification endpoint
or in-process on a local ONNX export of the model.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Init(v, cfgFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./pdfner.yaml or ~/.pdfner/pdfner.yaml)",
	)
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"log-level":  "log.level",
		"log-format": "log.format",
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindFlags maps flag names onto config keys so that a flag set on the
// command line overrides the environment and the config file.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// loadConfig decodes and validates the merged configuration.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
