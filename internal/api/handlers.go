package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/outreachlabs/dealpilot/internal/gateway"
	"github.com/outreachlabs/dealpilot/internal/repository/postgres"
)

// Handlers bundles the dependencies of the HTTP endpoints.
type Handlers struct {
	gateway *gateway.Gateway
	leads   *postgres.LeadRepo
	redis   *redis.Client
	db      *sql.DB
	started time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(gw *gateway.Gateway, leads *postgres.LeadRepo, redisClient *redis.Client, db *sql.DB) *Handlers {
	return &Handlers{
		gateway: gw,
		leads:   leads,
		redis:   redisClient,
		db:      db,
		started: time.Now(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
