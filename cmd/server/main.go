// Package main is the entry point for the ACE API server.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/digi0/ACE/internal/advisor"
	"github.com/digi0/ACE/internal/config"
	"github.com/digi0/ACE/internal/database"
	"github.com/digi0/ACE/internal/handler"
	"github.com/digi0/ACE/internal/llm"
	"github.com/digi0/ACE/internal/repository"
	"github.com/digi0/ACE/internal/risk"
	"github.com/digi0/ACE/internal/service"
	"github.com/digi0/ACE/internal/vault"
)

// stores groups the repositories selected by configuration.
type stores struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	chats    repository.ChatRepository
	policies repository.PolicyRepository
}

func main() {
	// Setup structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Starting ACE API",
		slog.String("environment", cfg.Server.Environment),
		slog.Int("port", cfg.Server.Port),
		slog.String("store", cfg.Store.Backend),
		slog.String("session_store", cfg.Store.SessionBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components := map[string]handler.Pinger{}
	var st stores

	switch cfg.Store.Backend {
	case "postgres":
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Info("Connected to PostgreSQL")

		if err := database.Migrate(cfg.Database, 0); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Database migrations completed")

		st = stores{
			users:    repository.NewUserRepository(db.Pool()),
			sessions: repository.NewSessionRepository(db.Pool()),
			chats:    repository.NewChatRepository(db.Pool()),
			policies: repository.NewPolicyRepository(db.Pool()),
		}
		components["database"] = db
	default:
		mem := repository.NewMemoryStore()
		st = stores{
			users:    mem.Users(),
			sessions: mem.Sessions(),
			chats:    mem.Chats(),
			policies: vault.NewFileStore(cfg.Vault.Path),
		}
	}

	if cfg.Store.SessionBackend == "redis" {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		logger.Info("Connected to Redis")

		st.sessions = repository.NewRedisSessionRepository(rdb.Client())
		components["redis"] = rdb
	}

	policyVault, err := vault.Open(ctx, st.policies, logger)
	if err != nil {
		log.Fatalf("Failed to open policy vault: %v", err)
	}

	classifier, err := risk.LoadClassifier(cfg.Risk.RulesFile)
	if err != nil {
		log.Fatalf("Failed to load risk rules: %v", err)
	}

	provider, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create model provider: %v", err)
	}
	logger.Info("Model provider ready", slog.String("provider", provider.Name()))

	gateway := advisor.NewGateway(provider,
		advisor.WithTimeout(cfg.LLM.Timeout),
		advisor.WithHistoryWindow(cfg.Chat.HistoryWindow),
		advisor.WithLogger(logger),
	)

	authSvc := service.NewAuthService(cfg.Auth, st.users, st.sessions, logger)
	oauthSvc := service.NewOAuthService(cfg.Auth, st.users, st.sessions, logger)
	chatSvc := service.NewChatService(st.chats, gateway, classifier, policyVault,
		service.ChatOptions{RequireProfile: cfg.Chat.RequireProfile}, logger)
	intelSvc, err := service.NewIntelligenceService(cfg.Intelligence)
	if err != nil {
		log.Fatalf("Failed to configure intelligence: %v", err)
	}

	cleaner := service.NewSessionCleaner(authSvc, cfg.Auth.SessionCleanupInterval, logger)
	go func() {
		if err := cleaner.Run(ctx); err != nil {
			logger.Error("session cleaner stopped", slog.String("error", err.Error()))
		}
	}()

	r := handler.NewRouter(handler.Deps{
		Auth:           authSvc,
		OAuth:          oauthSvc,
		Chats:          chatSvc,
		Intelligence:   intelSvc,
		Vault:          policyVault,
		Cookies:        handler.SessionCookies{Name: cfg.Auth.CookieName, MaxAge: cfg.Auth.SessionExpiry},
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.LLM.Timeout + 30*time.Second,
		Components:     components,
		Logger:         logger,
	})

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  time.Minute,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Shutting down server", slog.String("signal", sig.String()))
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	logger.Info("Server stopped gracefully")
}
