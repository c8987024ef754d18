// Command server runs the forms service: HTTP API, Postgres-backed
// repositories, transactional email, rate limiting, and the admin routes.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/nartaq/forms-service/internal/analytics"
	"github.com/nartaq/forms-service/internal/api"
	"github.com/nartaq/forms-service/internal/auth"
	"github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/notifier"
	"github.com/nartaq/forms-service/internal/pkg/logger"
	"github.com/nartaq/forms-service/internal/ratelimit"
	"github.com/nartaq/forms-service/internal/repository/postgres"
	"github.com/nartaq/forms-service/internal/service/forms"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime())
	if err := db.Ping(); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	logger.Info("database connected")

	// Email delivery mode, resolved once for the process lifetime.
	sender, err := notifier.SelectSender(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email sender: %v", err)
	}
	mailer := notifier.New(sender, cfg.Mail)

	// Analytics
	var analyticsSink forms.Analytics
	var emitter *analytics.Emitter
	if cfg.Analytics.Enabled {
		emitter = analytics.NewEmitter(analytics.LogSink{}, cfg.Analytics.BufferSize)
		analyticsSink = emitter
	}

	// Forms pipeline
	formsSvc := forms.NewService(
		postgres.NewNewsletterRepo(db),
		postgres.NewInvestorRepo(db),
		postgres.NewCareerRepo(db),
		mailer,
		analyticsSink,
	)

	// Rate limiting (optional, fail-open)
	var limiter *ratelimit.Limiter
	if cfg.Redis.URL != "" && cfg.RateLimit.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable at startup, limiter will fail open", "error", err.Error())
		}
		limiter = ratelimit.New(rdb, cfg.RateLimit)
		logger.Info("rate limiter enabled",
			"per_minute", cfg.RateLimit.PerMinute,
			"window_seconds", cfg.RateLimit.WindowSeconds)
	}

	// Admin auth (optional)
	var authManager *auth.Manager
	if cfg.Auth.Enabled && cfg.Auth.GoogleClientID != "" {
		baseURL := os.Getenv("PUBLIC_BASE_URL")
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		}
		authManager = auth.NewManager(cfg.Auth, baseURL)
		authManager.StartSessionCleanup(ctx)
		logger.Info("admin auth enabled", "allowed_domain", cfg.Auth.AllowedDomain)
	}

	handlers := api.NewHandlers(formsSvc, mailer, db, mailer.Mode())
	server := api.NewServer(cfg.Server, handlers, authManager, limiter)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		logger.Info("server starting", "addr", addr, "mode", sender.Name())
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err.Error())
	}

	// In-flight welcome/confirmation emails finish before exit.
	formsSvc.Wait()
	if emitter != nil {
		emitter.Close()
	}
	logger.Info("server stopped")
}
