package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/config"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/docs"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/gateway"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/instructions"
	llmclient "github.com/rsherod/DCI691Build2-InterventionSearcher/internal/llm/client"
	llm "github.com/rsherod/DCI691Build2-InterventionSearcher/internal/llm/middleware"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/search"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[searcher] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	gemini, err := llmclient.NewGeminiClient(ctx, cfg.GoogleAPIKey)
	if err != nil {
		logger.Fatalf("gemini client: %v", err)
	}
	transport := llm.Chain(gemini, llm.WithLogging(logger), llm.WithHooks())

	var searcher chat.Searcher
	if cfg.PerplexityAPIKey != "" {
		px, err := search.NewPerplexityClient(cfg.PerplexityAPIKey)
		if err != nil {
			logger.Fatalf("perplexity client: %v", err)
		}
		searcher = px
	} else {
		logger.Printf("P_API_KEY not set; search directives go to the model untouched")
	}

	instr, err := instructions.Load(cfg.InstructionsPath)
	if err != nil {
		logger.Printf("instructions unavailable (%s): %v", cfg.InstructionsPath, err)
	}

	snapshots := store.NewFromEnv(cfg.SnapshotPath)
	defer snapshots.Close()

	var archive docs.Archiver
	if cfg.Archive.Enabled {
		s3, err := docs.NewS3Archive(docs.S3Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			logger.Printf("document archive disabled: %v", err)
		} else {
			archive = s3
		}
	}

	ingest, err := docs.NewIngestor(gemini, archive, logger)
	if err != nil {
		logger.Fatalf("ingestor: %v", err)
	}

	session := chat.NewSession(chat.SessionOptions{
		Transport:    transport,
		Searcher:     searcher,
		Saver:        snapshots,
		Instructions: instr,
		Config:       chat.ModelConfig{Model: cfg.Model, Temperature: 0.5},
		AttachMode:   cfg.AttachMode,
	})

	gw := gateway.NewServer(session, ingest, logger)
	srv := &http.Server{Addr: cfg.Port, Handler: gw.Routes()}

	go func() {
		logger.Printf("listening on %s (model=%s session=%s)", cfg.Port, cfg.Model, session.ID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("forced shutdown: %v", err)
	}
}
