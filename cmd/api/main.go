package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/TalionSlade/bankassist/cmd/mainconfig"
	"github.com/TalionSlade/bankassist/internal/api/router"
	appconfig "github.com/TalionSlade/bankassist/internal/config"
	"github.com/TalionSlade/bankassist/internal/conversation"
	"github.com/TalionSlade/bankassist/internal/crm"
	"github.com/TalionSlade/bankassist/pkg/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting bankassist API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("redis not available", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	sessions := conversation.NewSessionStore(redisClient, cfg.SessionTTL)

	store, cleanup, err := buildCRMStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize CRM store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	llm, model, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}

	engine := conversation.NewEngine(llm, sessions, store, logger,
		conversation.WithModel(model),
		conversation.WithMaxTokens(int32(cfg.LLMMaxTokens)),
		conversation.WithTemperature(float32(cfg.LLMTemperature)),
		conversation.WithOptionExtractor(conversation.NewOptionExtractor(llm, model)),
	)

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(engine, logger),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildCRMStore returns the Postgres-backed store when DATABASE_URL is set
// and an in-memory store otherwise, which keeps local development free of
// infrastructure.
func buildCRMStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (crm.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory CRM store")
		return crm.NewMemoryStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return crm.NewPostgresStore(pool), pool.Close, nil
}

// buildLLMClient assembles the configured provider, optionally stacking
// Bedrock over Gemini as a fallback chain.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, string, error) {
	newBedrock := func() (conversation.LLMClient, error) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg)), nil
	}

	switch cfg.LLMProvider {
	case "bedrock":
		client, err := newBedrock()
		return client, cfg.BedrockModelID, err

	case "gemini":
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		return client, cfg.GeminiModelID, err

	case "bedrock+gemini":
		primary, err := newBedrock()
		if err != nil {
			return nil, "", err
		}
		fallback, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, "", err
		}
		return conversation.NewFallbackLLMClient(primary, fallback, logger.Logger), cfg.BedrockModelID, nil

	default:
		return nil, "", &appconfig.ConfigurationError{Setting: "LLM_PROVIDER", Reason: "has unknown value"}
	}
}
