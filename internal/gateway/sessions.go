package gateway

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matehq/mate/internal/agent"
	"github.com/matehq/mate/internal/provider"
	"github.com/matehq/mate/internal/tool"
)

// sessionJSON is the listing shape for a session.
type sessionJSON struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Turns     int       `json:"turns"`
}

// runJSON is the response for POST /api/sessions/{id}/messages.
type runJSON struct {
	Content    string              `json:"content"`
	Results    []tool.Result       `json:"results,omitempty"`
	Rounds     int                 `json:"rounds"`
	StopReason agent.StopReason    `json:"stop_reason"`
	Usage      provider.TokenUsage `json:"usage"`
	Error      string              `json:"error,omitempty"`
}

// handleCreateSession creates a session seeded with the configured system
// prompt and returns its id.
func (g *Gateway) handleCreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s, err := g.loop.NewSession(g.systemPrompt)
		if err != nil {
			g.logger.Error("session create failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not create session")
			return
		}
		g.addSession(s)
		writeJSON(w, http.StatusCreated, sessionJSON{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
		})
	}
}

// handleListSessions lists the sessions held by this gateway instance.
func (g *Gateway) handleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		g.mu.RLock()
		out := make([]sessionJSON, 0, len(g.sessions))
		for _, s := range g.sessions {
			out = append(out, sessionJSON{
				ID:        s.ID,
				CreatedAt: s.CreatedAt,
				Turns:     len(s.Messages()),
			})
		}
		g.mu.RUnlock()
		writeJSON(w, http.StatusOK, out)
	}
}

// handleSendMessage runs one loop turn synchronously. The response carries
// the final answer, settled tool results, and the stop reason; the request
// blocks for the whole run, including any operator approval waits.
func (g *Gateway) handleSendMessage() http.HandlerFunc {
	type request struct {
		Message string `json:"message"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := g.session(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}

		var req request
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "message must not be empty")
			return
		}

		start := time.Now()
		resp, err := g.loop.Run(r.Context(), s, req.Message)
		if errors.Is(err, agent.ErrSessionBusy) {
			writeError(w, http.StatusConflict, "session already has a run in progress")
			return
		}
		g.stats.recordRun(resp.Usage.TotalTokens, time.Since(start), resp.StopReason == agent.StopReasonProviderError)

		out := runJSON{
			Content:    resp.Content,
			Results:    resp.Results,
			Rounds:     resp.Rounds,
			StopReason: resp.StopReason,
			Usage:      resp.Usage,
		}
		if err != nil {
			out.Error = err.Error()
		}

		code := http.StatusOK
		if resp.StopReason == agent.StopReasonProviderError {
			code = http.StatusBadGateway
		}
		writeJSON(w, code, out)
	}
}

// handleTranscript returns the session's full conversation, including the
// hidden tool-feedback turns the loop records between rounds.
func (g *Gateway) handleTranscript() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := g.session(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		writeJSON(w, http.StatusOK, s.Messages())
	}
}
