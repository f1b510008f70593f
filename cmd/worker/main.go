package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cigdeemtok/AILinter/internal/ai"
	"github.com/cigdeemtok/AILinter/internal/config"
	"github.com/cigdeemtok/AILinter/internal/queue"
	"github.com/cigdeemtok/AILinter/internal/store"
	"github.com/cigdeemtok/AILinter/internal/worker"
)

// Standalone worker process. Several of these can run against the same
// stream and consumer group; the broker hands each pending message to
// exactly one of them at a time.
func main() {
	logger := log.New(os.Stdout, "[ailinter-worker] ", log.LstdFlags|log.LUTC|log.Lmicroseconds)

	cfg, err := config.Load(".env", ".env.local")
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.RedisAddr == "" {
		logger.Fatalf("REDIS_ADDR is required for a standalone worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resultStore, err := store.NewRedisResultStore(ctx, store.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      time.Duration(cfg.ResultTTLSeconds) * time.Second,
	})
	if err != nil {
		logger.Fatalf("initialize result store: %v", err)
	}
	defer resultStore.Close()

	streams, err := queue.NewStreamsQueue(ctx, queue.StreamsConfig{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		Stream:      cfg.Stream,
		DLQStream:   cfg.DLQStream,
		Group:       cfg.Group,
		Consumer:    cfg.Consumer,
		ReclaimIdle: time.Duration(cfg.ReclaimIdleMS) * time.Millisecond,
	})
	if err != nil {
		logger.Fatalf("initialize work queue: %v", err)
	}
	defer streams.Close()

	analyzer := ai.NewGeminiClient(ai.GeminiClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		Timeout:    time.Duration(cfg.GeminiTimeoutMS) * time.Millisecond,
		MaxRetries: cfg.GeminiMaxRetries,
	})
	if !analyzer.Available() {
		logger.Printf("GEMINI_API_KEY not configured, analyses will fail until it is set")
	}

	processor := worker.NewProcessor(
		streams,
		resultStore,
		analyzer,
		time.Duration(cfg.AnalyzeTimeoutMS)*time.Millisecond,
		logger,
	)

	logger.Printf("worker started consumer=%s stream=%s group=%s", cfg.Consumer, cfg.Stream, cfg.Group)
	processor.Start(ctx)
	logger.Printf("worker stopped")
}
