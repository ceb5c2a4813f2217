package gateway

import (
	"net/http"

	"github.com/matehq/mate/internal/sqlguard"
)

// handleListConnections lists the open read-only SQL connections.
func (g *Gateway) handleListConnections() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		conns := []sqlguard.ConnInfo{}
		if g.sql != nil {
			conns = g.sql.List()
		}
		writeJSON(w, http.StatusOK, conns)
	}
}
