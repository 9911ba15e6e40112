package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgallion1/affigen/internal/api"
	"github.com/dgallion1/affigen/internal/config"
	"github.com/dgallion1/affigen/internal/generate"
	"github.com/dgallion1/affigen/internal/pipeline"
	"github.com/dgallion1/affigen/internal/registry"
	"github.com/dgallion1/affigen/internal/session"
)

func newLogger(cfg config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(out, nil))
}

func newGenerator(cfg config.Config) generate.Generator {
	if cfg.LLMProvider == config.ProviderAnthropic {
		return generate.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.GenerateTimeout)
	}
	return generate.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.GenerateTimeout)
}

func main() {
	cfg, err := config.Load()
	log := newLogger(cfg)
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage.
	reg, err := registry.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("open registry", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	if err := reg.SeedStation(ctx, cfg.Station); err != nil {
		log.Warn("seed station", "error", err)
	}

	// Initialize generation pipeline.
	gen := newGenerator(cfg)
	stats := generate.NewLLMStats(time.Hour)
	orch := pipeline.NewOrchestrator(cfg, gen, stats, log)
	orch.Start(ctx)

	sessions := session.NewStore(cfg.SessionTTL)

	// Initialize HTTP server.
	srv := api.NewServer(orch, sessions, reg, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		gen.Close()
		reg.Close()
	}()

	log.Info("starting affigen",
		"port", cfg.Port,
		"provider", cfg.LLMProvider,
		"model", gen.Model(),
		"db", cfg.DBPath,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
