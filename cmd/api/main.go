package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/fluencycoach/internal/analysis"
	"github.com/nikhilbhutani/fluencycoach/internal/api"
	"github.com/nikhilbhutani/fluencycoach/internal/audio"
	"github.com/nikhilbhutani/fluencycoach/internal/cache"
	"github.com/nikhilbhutani/fluencycoach/internal/config"
	"github.com/nikhilbhutani/fluencycoach/internal/database"
	"github.com/nikhilbhutani/fluencycoach/internal/enrich"
	"github.com/nikhilbhutani/fluencycoach/internal/llm"
	"github.com/nikhilbhutani/fluencycoach/internal/mentor"
	"github.com/nikhilbhutani/fluencycoach/internal/metrics"
	"github.com/nikhilbhutani/fluencycoach/internal/queue"
	"github.com/nikhilbhutani/fluencycoach/internal/store"
	"github.com/nikhilbhutani/fluencycoach/internal/stt"
	"github.com/nikhilbhutani/fluencycoach/internal/translate"
	"github.com/nikhilbhutani/fluencycoach/internal/usage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var closers []func() error

	deps := api.Deps{}

	// Database connection (optional: history and usage degrade without it)
	var resultStore store.Store
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, analyses will not be saved", "error", err)
		resultStore = store.Unavailable{Cause: err}
	} else {
		closers = append(closers, func() error { db.Close(); return nil })

		if err := database.RunMigrations(db); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		resultStore = store.NewPostgresStore(db)
		deps.DB = db
		deps.Usage = usage.NewService(db)
	}
	deps.History = resultStore

	// Redis connection (optional: translation cache and usage queue)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	closers = append(closers, rdb.Close)
	redisCache := cache.NewCache(rdb, "fluencycoach:")
	deps.Cache = redisCache

	var gwOpts []llm.Option
	var translateCache *cache.Cache
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache and usage ledger", "error", err)
	} else {
		translateCache = redisCache
		queueClient := queue.NewClient(cfg.Redis)
		closers = append(closers, queueClient.Close)
		gwOpts = append(gwOpts, llm.WithUsageRecorder(queueClient))
	}

	gateway := llm.NewGateway(cfg.LLM, gwOpts...)

	transcriber, err := stt.New(cfg.STT)
	if err != nil {
		slog.Error("failed to configure speech recognition", "error", err)
		os.Exit(1)
	}

	deps.Analyzer = analysis.NewPipeline(
		audio.NewNormalizer(audio.NewFFmpegDecoder(cfg.Audio.FFmpegPath), cfg.Audio.TempDir, cfg.Audio.SampleRate),
		transcriber,
		metrics.NewEngine(cfg.Metrics.Fillers, nil),
		enrich.New(gateway, enrich.WhatlangDetector{}),
		resultStore,
		cfg.Pipeline.CapabilityTimeout,
	)
	deps.Models = gateway
	deps.Mentor = mentor.New(gateway, cfg.Pipeline.CapabilityTimeout)

	translator, err := translate.New(cfg.Translate, gateway, translateCache, cfg.Pipeline.CapabilityTimeout)
	if err != nil {
		slog.Error("failed to configure translation", "error", err)
		os.Exit(1)
	}
	deps.Translator = translator

	router := api.NewRouter(cfg, deps)
	closers = append(closers, func() error { router.Close(); return nil })

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Pipeline.CapabilityTimeout*3 + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"stt", transcriber.Name(),
			"llm", cfg.LLM.DefaultProvider,
			"translate", cfg.Translate.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	var closeErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			closeErr = multierror.Append(closeErr, err)
		}
	}
	if closeErr != nil {
		slog.Warn("errors while releasing resources", "error", closeErr)
	}
	slog.Info("server stopped")
}
