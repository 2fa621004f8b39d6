package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfner/internal/api"
	"github.com/dgallion1/pdfner/internal/ner"
	"github.com/dgallion1/pdfner/internal/parser"
	"github.com/dgallion1/pdfner/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve entity extraction over HTTP",
	Long: `Start the pdfner HTTP server.

The server provides:
  - GET  /health               - health check
  - POST /api/extract          - upload one PDF (multipart field "file"),
                                 get its entity report back
  - GET  /api/stats/inference  - recognizer latency statistics

All /api routes require "Authorization: Bearer <server.api_key>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateServer(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log := newLogger(os.Stdout, cfg.Log)

		recognizer, err := ner.Open(cfg.NER, log)
		if err != nil {
			return fmt.Errorf("open recognizer: %w", err)
		}
		defer recognizer.Close()

		extractor := &parser.PDFExtractor{FallbackPdftotext: cfg.PDFFallbackPdftotext}
		orch := pipeline.NewOrchestrator(pipeline.OptionsFromConfig(cfg), extractor, recognizer, nil, log)
		srv := api.NewServer(orch, recognizer, log, cfg)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting pdfner", "port", cfg.Server.Port, "backend", recognizer.Name())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "8090", "port to listen on")
	bindFlags(serveCmd.Flags(), map[string]string{
		"port": "server.port",
	})
}
