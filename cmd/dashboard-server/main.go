package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/assembly"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/config"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/export"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/extract"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/gcp"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/prompt"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/server"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/session"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/transcript"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/wizard"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Model provider. Vertex is also the PDF transcriber; with OpenAI the
	// extraction chain runs without an AI fallback.
	var (
		client      transcript.Client
		transcriber extract.AITranscriber
	)
	switch cfg.Provider {
	case "vertex":
		vc, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.ModelName, cfg.MaxTokens, cfg.Temperature)
		if err != nil {
			return fmt.Errorf("failed to create vertex client: %w", err)
		}
		defer vc.Close()
		client = vc
		transcriber = vc
	case "openai":
		oc, err := transcript.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return fmt.Errorf("failed to create openai client: %w", err)
		}
		client = oc
		logger.Warn("openai provider has no PDF vision path; scanned attachments degrade to placeholders")
	default:
		return fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	extractor := &extract.Extractor{
		Fallback:       transcriber,
		MinHangulRatio: cfg.MinHangulRatio,
		MinTextLength:  cfg.MinTextLength,
		Logger:         logger.With("component", "extract"),
	}

	var store session.Store
	switch cfg.SessionBackend {
	case "memory":
		store = session.NewMemoryStore()
	case "firestore":
		fc, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to create firestore client: %w", err)
		}
		defer fc.Close()
		store = session.NewFirestoreStore(fc, cfg.SessionCollection)
	default:
		return fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}

	var archiver *gcp.Archiver
	if cfg.ArchiveBucket != "" {
		archiver, err = gcp.NewArchiver(ctx, cfg.ArchiveBucket, logger.With("component", "archive"))
		if err != nil {
			return fmt.Errorf("failed to create archiver: %w", err)
		}
		defer archiver.Close()
	}

	measurer, err := assembly.NewFontMeasurer(cfg.FontPath)
	if err != nil {
		return fmt.Errorf("failed to load measurement font: %w", err)
	}
	renderer, err := assembly.NewPDFRenderer(cfg.FontPath, measurer)
	if err != nil {
		return fmt.Errorf("failed to create document renderer: %w", err)
	}

	srv := &server.Server{
		Wizard: &wizard.Wizard{
			Client: client,
			Prompts: &prompt.Builder{
				PromptDir: cfg.PromptDir,
				References: &prompt.ReferenceCache{
					Dir:       cfg.ReferenceDir,
					CachePath: cfg.RefCachePath,
					Extractor: extractor,
					Logger:    logger.With("component", "refcache"),
				},
			},
			Extractor: extractor,
			Store:     store,
			Options:   transcript.Options{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature},
			Logger:    logger.With("component", "wizard"),
		},
		Contracts: &assembly.ContractAssembler{
			TemplatePath: filepath.Join(cfg.TemplateDir, cfg.ContractTemplateName),
			Renderer:     renderer,
		},
		Consents: &assembly.ConsentAssembler{
			TemplatePath: filepath.Join(cfg.TemplateDir, cfg.ConsentTemplateName),
			Renderer:     renderer,
			Measurer:     measurer,
		},
		PDF:      &export.ChromePDF{},
		Archiver: archiver,
		Logger:   logger,
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard server listening", "addr", cfg.ListenAddr, "provider", cfg.Provider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
