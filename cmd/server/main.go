package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"storyloom.app/api/common/id"
	"storyloom.app/api/common/llm"
	"storyloom.app/api/common/logger"
	"storyloom.app/api/common/otel"
	"storyloom.app/api/core/config"
	"storyloom.app/api/core/db"
	"storyloom.app/api/internal/http/middleware"
	httprouter "storyloom.app/api/internal/http/router"
	"storyloom.app/api/internal/service"
	"storyloom.app/api/internal/store"
	"storyloom.app/api/internal/stream"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "storyloom starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream_prefix", cfg.Redis.StreamPrefix)

	publisher := stream.NewPublisher(redisClient, cfg.Redis.StreamPrefix, slog.Default())
	defer publisher.Close()

	revisionLLM, err := llm.New(ctx, llmConfig(cfg.RevisionLLM))
	if err != nil {
		slog.ErrorContext(ctx, "failed to create revision llm client", "error", err)
		os.Exit(1)
	}
	draftLLM, err := llm.New(ctx, llmConfig(cfg.DraftLLM))
	if err != nil {
		slog.ErrorContext(ctx, "failed to create draft llm client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "generation clients ready",
		"revision_model", revisionLLM.Model(),
		"draft_model", draftLLM.Model())

	stores := store.NewStores(database)
	services := service.NewServices(stores, revisionLLM, draftLLM, publisher, cfg.DraftLLM)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, redisClient, publisher)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation and SSE responses can be slow; the write timeout has to
		// outlive a full model call.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, redisClient *redis.Client, publisher *stream.Publisher) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, redisClient, publisher)

	return router
}

func llmConfig(cfg config.LLMConfig) llm.Config {
	return llm.Config{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		TopK:        cfg.TopK,
	}
}

const banner = `
 ___ _                 _
/ __| |_ ___ _ _ _  _ | |   ___  ___ _ __
\__ \  _/ _ \ '_| || || |__/ _ \/ _ \ '  \
|___/\__\___/_|  \_, ||____\___/\___/_|_|_|
                 |__/
`
