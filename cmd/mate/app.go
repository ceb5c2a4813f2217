package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/matehq/mate/internal/agent"
	"github.com/matehq/mate/internal/config"
	"github.com/matehq/mate/internal/executor"
	"github.com/matehq/mate/internal/history"
	"github.com/matehq/mate/internal/observability"
	"github.com/matehq/mate/internal/provider/openaicompat"
	"github.com/matehq/mate/internal/security"
	"github.com/matehq/mate/internal/sqlguard"
	"github.com/matehq/mate/internal/tool"
)

// app holds the assembled engine and everything that needs closing.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	gate     *tool.Gate
	sql      *sqlguard.Manager
	loop     *agent.Loop
	registry *tool.Registry

	history    *history.Store
	auditFile  *os.File
	tracerStop func(context.Context) error
}

// buildApp wires the full engine from configuration. The notifier decides
// how pending approvals reach the operator: the chat command prompts in the
// terminal, serve relies on the gateway's approval endpoints.
func buildApp(ctx context.Context, cfg *config.Config, notifier tool.Notifier) (*app, error) {
	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.Provider.APIKey)

	logger, err := buildLogger(cfg.Log, redactor)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	var auditWriter *os.File
	if cfg.Audit.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Audit.Path), 0o700); err != nil {
			return nil, fmt.Errorf("audit dir: %w", err)
		}
		auditWriter, err = os.OpenFile(cfg.Audit.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		a.auditFile = auditWriter
	}
	var audit *security.AuditLogger
	if auditWriter != nil {
		audit = security.NewAuditLogger(security.AuditConfig{
			Writer:   auditWriter,
			Redactor: redactor,
		})
	}

	a.metrics = observability.NewMetrics()

	tracer, tracerStop, err := observability.NewTracer(ctx, observability.TraceConfig{
		ServiceName: "mate",
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("tracing: %w", err)
	}
	a.tracerStop = tracerStop

	a.registry = tool.NewRegistry()
	for _, def := range tool.Builtins() {
		if err := a.registry.Register(def); err != nil {
			a.close(ctx)
			return nil, err
		}
	}

	a.gate = tool.NewGate(notifier, cfg.Loop.ApprovalTimeout)

	a.sql = sqlguard.NewManager(sqlguard.ManagerConfig{
		QueryTimeout:   cfg.SQL.QueryTimeout,
		ConnectTimeout: cfg.SQL.ConnectTimeout,
		Redactor:       redactor,
		Audit:          audit,
		Logger:         logger,
	})

	exec := executor.New(executor.Config{
		Registry:    a.registry,
		Gate:        a.gate,
		SQL:         a.sql,
		Metrics:     a.metrics,
		Tracer:      tracer,
		Audit:       audit,
		Logger:      logger,
		CallTimeout: cfg.Loop.CallTimeout,
	})

	client, err := openaicompat.New(cfg.Provider)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	deps := agent.Deps{
		Provider: client,
		Runner:   exec,
		Metrics:  a.metrics,
		Tracer:   tracer,
		Audit:    audit,
		Logger:   logger,
	}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.history = store
		deps.Archive = store
	}

	a.loop = agent.NewLoop(deps, agent.Config{
		MaxRounds: cfg.Loop.MaxRounds,
		Timeout:   cfg.Loop.Timeout,
	})

	return a, nil
}

// systemPrompt is the conversation preamble: the assistant's role followed
// by the tool protocol and catalog.
func (a *app) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are mate, an assistant that can operate the host system ")
	b.WriteString("and query SQL Server databases on the operator's behalf. ")
	b.WriteString("Use tools when a request needs them; once you have what you ")
	b.WriteString("need, answer in plain text without any tool block.\n\n")
	b.WriteString(a.registry.PromptText())
	return b.String()
}

func (a *app) close(ctx context.Context) {
	if a.sql != nil {
		a.sql.CloseAll()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Error("history close failed", "error", err)
		}
	}
	if a.tracerStop != nil {
		if err := a.tracerStop(ctx); err != nil {
			a.logger.Error("tracer shutdown failed", "error", err)
		}
	}
	if a.auditFile != nil {
		_ = a.auditFile.Close()
	}
}

func buildLogger(cfg config.LogConfig, redactor *security.Redactor) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var inner slog.Handler
	switch cfg.Format {
	case "json":
		inner = slog.NewJSONHandler(os.Stderr, opts)
	default:
		inner = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(security.NewRedactingHandler(inner, redactor)), nil
}
