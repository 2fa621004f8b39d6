package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/pdfner/internal/ner"
	"github.com/dgallion1/pdfner/internal/parser"
	"github.com/dgallion1/pdfner/internal/pipeline"
	"github.com/dgallion1/pdfner/internal/report"
)

var summaryFormat string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract entities from every PDF in the input folder",
	Long: `Extract entities from every *.pdf file in the input folder and write
one <name>.pdf_entities.txt report per document to the output location.

The output location is a local directory, created if missing, or an
s3://bucket/prefix URL. A run summary is printed to stdout when done.

Examples:
  pdfner run --input ./pdf --output ./output
  pdfner run --backend hugot --model-path ./models/biobert-onnx
  pdfner run --output s3://reports/ner --fail-fast=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(os.Stderr, cfg.Log)

		recognizer, err := ner.Open(cfg.NER, log)
		if err != nil {
			return fmt.Errorf("open recognizer: %w", err)
		}
		defer recognizer.Close()

		sink, err := report.NewSink(ctx, cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}

		extractor := &parser.PDFExtractor{FallbackPdftotext: cfg.PDFFallbackPdftotext}
		orch := pipeline.NewOrchestrator(pipeline.OptionsFromConfig(cfg), extractor, recognizer, sink, log)

		summary, runErr := orch.Run(ctx)
		if summary != nil {
			if err := writeSummary(cmd.OutOrStdout(), summary, summaryFormat); err != nil {
				log.Warn("failed to print summary", "error", err)
			}
		}
		return runErr
	},
}

func init() {
	f := runCmd.Flags()
	f.String("input", "./pdf", "folder containing the PDFs to process")
	f.String("output", "./output", "output folder or s3://bucket/prefix for reports")
	f.Int("chunk-size", 500, "characters per recognition chunk")
	f.Bool("fail-fast", true, "stop the run at the first failing document")
	f.Bool("pdftotext", false, "fall back to pdftotext when the PDF library fails")
	f.String("backend", "http", "recognizer backend: http or hugot")
	f.String("endpoint", "", "token-classification inference endpoint (http backend)")
	f.String("model", "", "model name reported by the http backend")
	f.String("model-path", "", "local ONNX model directory (hugot backend)")
	f.StringVar(&summaryFormat, "format", "yaml", "summary format: yaml or json")

	bindFlags(f, map[string]string{
		"input":      "input_dir",
		"output":     "output_dir",
		"chunk-size": "chunk_size",
		"fail-fast":  "fail_fast",
		"pdftotext":  "pdf_fallback_pdftotext",
		"backend":    "ner.backend",
		"endpoint":   "ner.endpoint",
		"model":      "ner.model",
		"model-path": "ner.model_path",
	})
}

func writeSummary(w io.Writer, summary *pipeline.RunSummary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown summary format %q", format)
	}
}
