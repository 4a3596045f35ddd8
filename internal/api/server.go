package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/outreachlabs/dealpilot/internal/config"
	"github.com/outreachlabs/dealpilot/internal/gateway"
	"github.com/outreachlabs/dealpilot/internal/repository/postgres"
)

// Server is the HTTP front of the ingestion service.
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer wires the handler set and routes.
func NewServer(cfg config.ServerConfig, gw *gateway.Gateway, leads *postgres.LeadRepo,
	redisClient *redis.Client, db *sql.DB) *Server {
	h := NewHandlers(gw, leads, redisClient, db)
	return &Server{
		config:  cfg,
		handler: SetupRoutes(h),
	}
}

// ListenAndServe starts the HTTP server. Timeouts are tight: the only write
// surface is the webhook, which must answer inside the provider's retry
// window anyway.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
