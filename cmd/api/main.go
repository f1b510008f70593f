package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cigdeemtok/AILinter/internal/ai"
	"github.com/cigdeemtok/AILinter/internal/config"
	httpserver "github.com/cigdeemtok/AILinter/internal/http"
	"github.com/cigdeemtok/AILinter/internal/http/handlers"
	"github.com/cigdeemtok/AILinter/internal/queue"
	"github.com/cigdeemtok/AILinter/internal/service"
	"github.com/cigdeemtok/AILinter/internal/store"
	"github.com/cigdeemtok/AILinter/internal/worker"
)

func main() {
	logger := log.New(os.Stdout, "[ailinter-api] ", log.LstdFlags|log.LUTC|log.Lmicroseconds)

	cfg, err := config.Load(".env", ".env.local")
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resultStore, storeCloser := setupStore(ctx, cfg, logger)
	defer storeCloser()

	producer, consumer, queuePing, queueCloser := setupQueue(ctx, cfg, logger)
	defer queueCloser()

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

	submitter := service.NewSubmitter(producer, resultStore)
	reader := service.NewReader(resultStore)
	api := handlers.NewAPI(submitter, reader, resultStore, queuePing)

	handler := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Logger:         logger,
		AuthToken:      cfg.AuthToken,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	if cfg.WorkerEnabled {
		processor := worker.NewProcessor(
			consumer,
			resultStore,
			analyzer,
			time.Duration(cfg.AnalyzeTimeoutMS)*time.Millisecond,
			logger,
		)
		group.Go(func() error {
			logger.Printf("embedded worker started consumer=%s", cfg.Consumer)
			processor.Start(groupCtx)
			return nil
		})
	} else {
		logger.Printf("embedded worker disabled by configuration")
	}

	group.Go(func() error {
		logger.Printf("api listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Printf("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Printf("server stopped with error: %v", err)
	}
}

func setupStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.ResultStore, func()) {
	ttl := time.Duration(cfg.ResultTTLSeconds) * time.Second

	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using in-memory result store")
		return store.NewMemoryResultStore(ttl), func() {}
	}

	redisStore, err := store.NewRedisResultStore(ctx, store.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      ttl,
	})
	if err != nil {
		logger.Printf("failed to initialize redis result store, fallback to memory: %v", err)
		return store.NewMemoryResultStore(ttl), func() {}
	}
	logger.Printf("redis result store initialized")
	return redisStore, func() {
		_ = redisStore.Close()
	}
}

func setupQueue(
	ctx context.Context,
	cfg config.Config,
	logger *log.Logger,
) (queue.Producer, queue.Consumer, handlers.Pinger, func()) {
	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not configured, using local queue fallback")
		local := queue.NewLocalQueue(512, logger)
		return local, local, local, func() {}
	}

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
		logger.Printf("failed to initialize redis streams queue, fallback to local: %v", err)
		local := queue.NewLocalQueue(512, logger)
		return local, local, local, func() {}
	}

	logger.Printf("redis streams queue initialized stream=%s group=%s", cfg.Stream, cfg.Group)
	return streams, streams, streams, func() {
		_ = streams.Close()
	}
}
