// Package gateway exposes the engine over HTTP: sessions and runs, the
// pending-approval surface, SQL connection introspection, health, and
// Prometheus metrics. It binds to loopback by default.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/matehq/mate/internal/agent"
	"github.com/matehq/mate/internal/observability"
	"github.com/matehq/mate/internal/sqlguard"
	"github.com/matehq/mate/internal/tool"
)

// Config holds the gateway's server settings.
type Config struct {
	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8641"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	// Runs block on model rounds and operator approvals; the write
	// timeout has to cover a whole run.
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Minute
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Deps assembles the gateway's collaborators.
type Deps struct {
	Loop         *agent.Loop
	Gate         *tool.Gate
	SQL          *sqlguard.Manager
	Metrics      *observability.Metrics
	Logger       *slog.Logger
	SystemPrompt string
}

// Gateway is the HTTP control surface.
type Gateway struct {
	config       Config
	loop         *agent.Loop
	gate         *tool.Gate
	sql          *sqlguard.Manager
	metrics      *observability.Metrics
	logger       *slog.Logger
	systemPrompt string

	stats     stats
	startedAt time.Time
	server    *http.Server

	mu       sync.RWMutex
	sessions map[string]*agent.Session
}

// New creates a Gateway.
func New(cfg Config, deps Deps) *Gateway {
	cfg.defaults()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Gateway{
		config:       cfg,
		loop:         deps.Loop,
		gate:         deps.Gate,
		sql:          deps.SQL,
		metrics:      metrics,
		logger:       logger,
		systemPrompt: deps.SystemPrompt,
		startedAt:    time.Now(),
		sessions:     make(map[string]*agent.Session),
	}
}

// Start binds the listener and serves in the background.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         g.config.Listen,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Listen)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", g.config.Listen, err)
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Listen)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}

func (g *Gateway) session(id string) (*agent.Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.sessions[id]
	return s, ok
}

func (g *Gateway) addSession(s *agent.Session) {
	g.mu.Lock()
	g.sessions[s.ID] = s
	g.mu.Unlock()
}

func (g *Gateway) sessionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}
