package api

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck reports liveness plus reachability of the two backing stores.
// Store outages degrade the report but keep the probe at 200: the webhook
// path can still accept (and, for dedupe, degrade open).
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	redisStatus := "ok"
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unreachable"
		}
	} else {
		redisStatus = "disabled"
	}

	dbStatus := "ok"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "unreachable"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"redis":    redisStatus,
		"postgres": dbStatus,
	})
}

// GetStats exposes the gateway's processing counters.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gateway.Counters().Snapshot())
}
