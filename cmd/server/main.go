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

	"github.com/redis/go-redis/v9"

	"github.com/outreachlabs/dealpilot/internal/api"
	"github.com/outreachlabs/dealpilot/internal/config"
	"github.com/outreachlabs/dealpilot/internal/dedupe"
	"github.com/outreachlabs/dealpilot/internal/dispatch"
	"github.com/outreachlabs/dealpilot/internal/gateway"
	"github.com/outreachlabs/dealpilot/internal/mailbox"
	"github.com/outreachlabs/dealpilot/internal/negotiation"
	"github.com/outreachlabs/dealpilot/internal/pkg/logger"
	"github.com/outreachlabs/dealpilot/internal/repository/postgres"
	"github.com/outreachlabs/dealpilot/internal/webhook"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactPII)

	if cfg.Webhook.Secret == "" {
		log.Fatal("webhook secret is not set (WEBHOOK_SECRET or webhook.secret)")
	}

	// Lead and campaign store
	if cfg.Database.URL == "" {
		log.Fatal("database URL is not set (DATABASE_URL or database.url)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		log.Fatalf("Failed to ping database: %v", err)
	}
	cancelPing()

	leadRepo := postgres.NewLeadRepo(db)
	campaignRepo := postgres.NewCampaignRepo(db)

	// Dedupe store. The gateway degrades open on outages unless
	// dedupe.required is set; a dead Redis at boot is still fatal so the
	// misconfiguration surfaces immediately.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var dedupeStore dedupe.Store = dedupe.Disabled{}
	if cfg.Dedupe.Enabled {
		pingCtx, cancelPing = context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancelPing()
			log.Fatalf("Failed to ping redis: %v", err)
		}
		cancelPing()
		dedupeStore = dedupe.NewRedisStore(redisClient, cfg.Dedupe.TTL())
	} else {
		logger.Warn("event dedupe disabled, webhook replays will be reprocessed")
	}

	engine, err := negotiation.New()
	if err != nil {
		log.Fatalf("Failed to build negotiation engine: %v", err)
	}

	var dispatcher gateway.Dispatcher = dispatch.Disabled{}
	if cfg.Dispatch.Enabled {
		dispatcher = dispatch.NewMailboxDispatcher(mailbox.NewClient(cfg.Mailbox))
	} else {
		logger.Warn("outbound dispatch disabled, drafts will be dropped")
	}

	verifier := webhook.NewVerifier(cfg.Webhook.Secret, cfg.Webhook.Tolerance())

	gw := gateway.New(verifier, dedupeStore, engine, leadRepo, campaignRepo, dispatcher, gateway.Config{
		DedupeRequired:  cfg.Dedupe.Required,
		DispatchTimeout: cfg.Dispatch.Timeout(),
	})

	server := api.NewServer(cfg.Server, gw, leadRepo, redisClient, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	go func() {
		logger.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err.Error())
	}
	logger.Info("server stopped")
}
