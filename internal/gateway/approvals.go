package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matehq/mate/internal/tool"
)

// PendingResponse is the JSON response for GET /api/approvals/pending.
type PendingResponse struct {
	Pending bool              `json:"pending"`
	Call    *tool.PendingCall `json:"call,omitempty"`
}

// handlePendingApproval reports whether a dangerous call is waiting on an
// operator decision, and which one.
func (g *Gateway) handlePendingApproval() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.gate == nil {
			writeError(w, http.StatusServiceUnavailable, "approval gate not configured")
			return
		}
		var resp PendingResponse
		if call, ok := g.gate.Pending(); ok {
			resp.Pending = true
			resp.Call = &call
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleResolveApproval delivers an operator decision for the pending
// call. The call id must match the one currently suspended; a stale or
// unknown id is a conflict, not a silent approval.
func (g *Gateway) handleResolveApproval() http.HandlerFunc {
	type request struct {
		Approved bool   `json:"approved"`
		Reason   string `json:"reason"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if g.gate == nil {
			writeError(w, http.StatusServiceUnavailable, "approval gate not configured")
			return
		}

		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		callID := chi.URLParam(r, "call_id")
		if !g.gate.Resolve(callID, tool.Decision{Approved: req.Approved, Reason: req.Reason}) {
			writeError(w, http.StatusConflict, "no decision pending for that call")
			return
		}

		g.logger.Info("approval resolved", "call_id", callID, "approved", req.Approved)
		writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
	}
}
