package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/huddleworks/huddle-engine/pkg/auth"
	"github.com/huddleworks/huddle-engine/pkg/config"
	"github.com/huddleworks/huddle-engine/pkg/database"
	"github.com/huddleworks/huddle-engine/pkg/handlers"
	"github.com/huddleworks/huddle-engine/pkg/llm"
	"github.com/huddleworks/huddle-engine/pkg/middleware"
	"github.com/huddleworks/huddle-engine/pkg/repositories"
	"github.com/huddleworks/huddle-engine/pkg/services"
	"github.com/huddleworks/huddle-engine/pkg/video"
)

// Version is set at build time via ldflags
var Version = "dev"

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Host),
		zap.Bool("redis", cfg.Redis.Host != ""),
		zap.Bool("summarizer", cfg.Summarizer.IsAvailable()))

	ctx := context.Background()

	// Migrations run over database/sql; the app itself uses pgx pools.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, migrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	tokenIssuer, err := video.NewTokenIssuer(
		cfg.Video.APIKey,
		cfg.Video.APISecret,
		time.Duration(cfg.Video.TokenTTLMins)*time.Minute,
	)
	if err != nil {
		logger.Fatal("Failed to create video token issuer", zap.Error(err))
	}

	var generator services.SummaryGenerator
	if cfg.Summarizer.IsAvailable() {
		llmClient, err := llm.NewClient(&llm.Config{
			Endpoint: cfg.Summarizer.LLMBaseURL,
			Model:    cfg.Summarizer.LLMModel,
			APIKey:   cfg.Summarizer.APIKey,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create LLM client", zap.Error(err))
		}
		generator = llmClient
	}

	agentRepo := repositories.NewAgentRepository(db)
	meetingRepo := repositories.NewMeetingRepository(db)

	agentService := services.NewAgentService(agentRepo, logger)
	meetingService := services.NewMeetingService(meetingRepo, logger)
	summarizer := services.NewSummarizer(meetingRepo, generator, logger)
	callService := services.NewCallService(meetingRepo, tokenIssuer, summarizer, redisClient, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	agentsHandler := handlers.NewAgentsHandler(agentService, logger)
	agentsHandler.RegisterRoutes(mux, authMiddleware)

	meetingsHandler := handlers.NewMeetingsHandler(meetingService, logger)
	meetingsHandler.RegisterRoutes(mux, authMiddleware)

	callsHandler := handlers.NewCallsHandler(callService, cfg, logger)
	callsHandler.RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
		logger.Info("Starting huddle-engine with TLS",
			zap.String("addr", addr), zap.String("version", cfg.Version))
		err = http.ListenAndServeTLS(addr, cfg.TLSCertPath, cfg.TLSKeyPath, handler)
	} else {
		logger.Info("Starting huddle-engine",
			zap.String("addr", addr), zap.String("version", cfg.Version))
		err = http.ListenAndServe(addr, handler)
	}
	if err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds a production logger outside local environments and a
// human-readable development logger otherwise.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
