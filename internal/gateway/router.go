package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired. The gateway
// binds to loopback by default, so there is no auth layer; anyone who can
// reach it can drive sessions and resolve approvals.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", g.handleHealth())
	r.Get("/status", g.handleStatus())
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(g.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", g.handleCreateSession())
		r.Get("/sessions", g.handleListSessions())
		r.Post("/sessions/{id}/messages", g.handleSendMessage())
		r.Get("/sessions/{id}/transcript", g.handleTranscript())

		r.Get("/approvals/pending", g.handlePendingApproval())
		r.Post("/approvals/{call_id}", g.handleResolveApproval())

		r.Get("/sql/connections", g.handleListConnections())
	})

	return r
}
