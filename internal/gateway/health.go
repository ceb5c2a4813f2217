package gateway

import (
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// handleHealth returns an http.HandlerFunc for GET /health. The gateway
// has no degraded state of its own; provider failures surface per-run.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Sessions: g.sessionCount(),
		})
	}
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime         time.Duration `json:"uptime_seconds"`
	Sessions       int           `json:"sessions"`
	SQLConnections int           `json:"sql_connections"`
	Runs           statsSnapshot `json:"runs"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime:   time.Since(g.startedAt) / time.Second,
			Sessions: g.sessionCount(),
			Runs:     g.stats.snapshot(),
		}
		if g.sql != nil {
			resp.SQLConnections = len(g.sql.List())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
