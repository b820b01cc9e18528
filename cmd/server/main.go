package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/doldm1/sai2-exam-generator/internal/ai"
	"github.com/doldm1/sai2-exam-generator/internal/document"
	"github.com/doldm1/sai2-exam-generator/internal/exam"
	"github.com/doldm1/sai2-exam-generator/internal/generator"
	"github.com/doldm1/sai2-exam-generator/internal/httpapi"
	"github.com/doldm1/sai2-exam-generator/internal/platform/cache"
	"github.com/doldm1/sai2-exam-generator/internal/platform/config"
	"github.com/doldm1/sai2-exam-generator/internal/platform/database"
	"github.com/doldm1/sai2-exam-generator/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// AI providers: OpenAI first, DeepSeek as fallback.
	router := ai.NewRouter()
	if cfg.AI.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.AI.OpenAI.APIKey))
		slog.Info("AI provider registered", "provider", "openai", "model", cfg.AI.OpenAI.Model)
	}
	if cfg.AI.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.AI.DeepSeek.APIKey))
		slog.Info("AI provider registered", "provider", "deepseek")
	}

	genOpts := []generator.Option{
		generator.WithModel(cfg.AI.OpenAI.Model),
		generator.WithTemperature(cfg.Generation.Temperature),
	}
	if cfg.Generation.Strict {
		genOpts = append(genOpts, generator.WithStrictValidation())
	}
	gen := generator.New(router, genOpts...)

	serverOpts := []httpapi.Option{
		httpapi.WithUploadDir(cfg.Upload.Dir),
		httpapi.WithMaxUpload(cfg.Upload.MaxBytes),
		httpapi.WithMaxQuestionCount(cfg.Generation.MaxCount),
		httpapi.WithReadinessCheck("ai", router.HealthCheck),
	}

	// Sessions live in memory unless Redis is configured.
	var sessions session.Store = session.NewMemoryStore()
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		ttl := time.Duration(cfg.Cache.SessionTTL) * time.Hour
		sessions = session.NewRedisStore(c, ttl)
		serverOpts = append(serverOpts, httpapi.WithReadinessCheck("cache", c.HealthCheck))
		slog.Info("session store", "backend", "redis", "ttl", ttl)
	} else {
		slog.Info("session store", "backend", "memory")
	}

	// The attempt log is optional and only kept when a database is configured.
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		attempts, err := session.NewPostgresAttemptStore(ctx, db.Pool)
		if err != nil {
			slog.Error("failed to init attempt store", "error", err)
			os.Exit(1)
		}
		serverOpts = append(serverOpts,
			httpapi.WithAttemptLogger(attempts),
			httpapi.WithReadinessCheck("database", db.HealthCheck),
		)
		slog.Info("attempt log enabled")
	}

	if cfg.Generation.TopicRules != "" {
		rules, err := exam.LoadTopicRules(cfg.Generation.TopicRules)
		if err != nil {
			slog.Error("failed to load topic rules", "path", cfg.Generation.TopicRules, "error", err)
			os.Exit(1)
		}
		serverOpts = append(serverOpts, httpapi.WithAggregator(exam.NewAggregator(rules)))
		slog.Info("topic rules loaded", "path", cfg.Generation.TopicRules, "rules", len(rules))
	}

	api := httpapi.New(sessions, document.NewPopplerExtractor(), gen, serverOpts...)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
