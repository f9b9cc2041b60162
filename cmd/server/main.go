package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbility/taxassist/internal/advisor"
	"github.com/kbility/taxassist/internal/api"
	"github.com/kbility/taxassist/internal/config"
	"github.com/kbility/taxassist/internal/docstore"
	"github.com/kbility/taxassist/internal/extract"
	"github.com/kbility/taxassist/internal/irssearch"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	llm := openai.NewClient(cfg.OpenAIAPIKey)
	stats := extract.NewCallStats(cfg.StatsWindow)
	store := docstore.New()

	ex := extract.NewExtractor(llm, cfg.ExtractionModel, stats, log, cfg.MaxConcurrentExtract)
	adv := advisor.New(llm, cfg.ChatModel, store, stats, log)
	search := irssearch.New(llm, cfg.SearchModel, cfg.ValidationModel, stats, log)

	srv := api.NewServer(ex, adv, search, store, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
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
	}()

	log.Info("starting taxassist", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
