package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matehq/mate/internal/observability"
	"github.com/matehq/mate/internal/provider"
	"github.com/matehq/mate/internal/security"
	"github.com/matehq/mate/internal/tool"
)

// Sentinel errors for loop termination.
var (
	ErrMaxRounds   = errors.New("agent: iteration limit exceeded")
	ErrSessionBusy = errors.New("agent: session is already running")
)

// Archive receives every conversation turn for persistence. Implemented
// by history.Store.
type Archive interface {
	CreateSession(sessionID string) error
	Append(sessionID string, msg provider.Message, hidden bool) error
}

// Deps assembles a Loop's collaborators.
type Deps struct {
	Provider provider.TurnProvider
	Runner   Runner
	// Archive persists turns. Nil disables persistence.
	Archive Archive
	Metrics *observability.Metrics
	Tracer  *observability.Tracer
	Audit   *security.AuditLogger
	Logger  *slog.Logger
}

// Loop drives sessions through reason-act rounds.
type Loop struct {
	provider provider.TurnProvider
	runner   Runner
	archive  Archive
	metrics  *observability.Metrics
	tracer   *observability.Tracer
	audit    *security.AuditLogger
	logger   *slog.Logger
	config   Config
}

// NewLoop creates a Loop.
func NewLoop(deps Deps, cfg Config) *Loop {
	l := &Loop{
		provider: deps.Provider,
		runner:   deps.Runner,
		archive:  deps.Archive,
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
		audit:    deps.Audit,
		logger:   deps.Logger,
		config:   cfg.withDefaults(),
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.metrics == nil {
		l.metrics = observability.NewMetrics()
	}
	if l.tracer == nil {
		l.tracer, _, _ = observability.NewTracer(context.Background(), observability.TraceConfig{})
	}
	return l
}

// NewSession creates a session and registers it with the archive.
func (l *Loop) NewSession(systemPrompt string) (*Session, error) {
	s := NewSession(systemPrompt)
	if l.archive != nil {
		if err := l.archive.CreateSession(s.ID); err != nil {
			return nil, err
		}
	}
	l.audit.Log(security.Event{Type: security.EventSessionStart, SessionID: s.ID})
	return s, nil
}

// Run feeds userMessage into the session and drives rounds until the
// model answers in plain text or a budget runs out. Tool failures are
// absorbed into feedback turns; the returned error is non-nil only for
// provider failures, cancellation, and the iteration ceiling.
func (l *Loop) Run(ctx context.Context, session *Session, userMessage string) (Response, error) {
	if !session.acquire() {
		return Response{}, ErrSessionBusy
	}
	defer session.release()

	l.metrics.ActiveSessions.Inc()
	defer l.metrics.ActiveSessions.Dec()

	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	l.record(session, provider.Message{Role: provider.RoleUser, Content: userMessage}, false)

	var resp Response
	for round := 1; round <= l.config.MaxRounds; round++ {
		resp.Rounds = round

		if err := ctx.Err(); err != nil {
			resp.StopReason = stopReasonForContext(err)
			return resp, err
		}

		roundCtx, span := l.tracer.StartRound(ctx, session.ID, round)

		completion, err := l.complete(roundCtx, session)
		if err != nil {
			observability.RecordError(span, err)
			span.End()
			resp.StopReason = stopReasonForContext(err)
			if resp.StopReason == StopReasonProviderError {
				l.audit.Log(security.Event{
					Type:      security.EventProviderError,
					SessionID: session.ID,
					Detail:    err.Error(),
				})
			}
			return resp, err
		}
		resp.Usage = addUsage(resp.Usage, completion.Usage)

		l.record(session, provider.Message{Role: provider.RoleAssistant, Content: completion.Content}, false)

		calls, parseErrs := tool.Extract(completion.Content)
		if len(calls) == 0 && len(parseErrs) == 0 {
			span.End()
			resp.Content = completion.Content
			resp.StopReason = StopReasonCompleted
			l.metrics.LoopRounds.Observe(float64(round))
			l.logger.Info("run completed", "session_id", session.ID, "rounds", round)
			return resp, nil
		}

		feedback := l.settleRound(roundCtx, session, calls, parseErrs, &resp)
		l.record(session, provider.Message{Role: provider.RoleSystem, Content: feedback}, true)
		span.End()
	}

	resp.StopReason = StopReasonIterationLimit
	l.metrics.LoopRounds.Observe(float64(l.config.MaxRounds))
	l.logger.Warn("run hit iteration ceiling", "session_id", session.ID, "max_rounds", l.config.MaxRounds)
	return resp, ErrMaxRounds
}

// settleRound drains the round's calls strictly in order and renders the
// hidden feedback turn. A denial clears the remaining queue: once the
// operator says no, the rest of the batch must not run on stale approval
// context.
func (l *Loop) settleRound(ctx context.Context, session *Session, calls []tool.Call, parseErrs []tool.ParseError, resp *Response) string {
	var parts []string

	for _, pe := range parseErrs {
		res := tool.Result{
			Tool:    "tool_call",
			Success: false,
			Kind:    tool.KindParseError,
			Error:   fmt.Sprintf("malformed tool call block: %v", pe.Err),
		}
		resp.Results = append(resp.Results, res)
		parts = append(parts, res.Markdown())
	}

	for i, call := range calls {
		res := l.runner.Execute(ctx, call)
		resp.Results = append(resp.Results, res)
		parts = append(parts, res.Markdown())

		if res.Kind == tool.KindPermissionDenied {
			if skipped := len(calls) - i - 1; skipped > 0 {
				parts = append(parts, fmt.Sprintf(
					"⚠️ %d queued tool call(s) were skipped because the operator denied %s.", skipped, call.Tool))
				l.logger.Info("queue cleared after denial",
					"session_id", session.ID, "denied_tool", call.Tool, "skipped", skipped)
			}
			break
		}
	}

	return strings.Join(parts, "\n\n")
}

// complete runs one provider round with tracing and metrics.
func (l *Loop) complete(ctx context.Context, session *Session) (provider.CompletionResponse, error) {
	model := l.provider.ModelName()
	ctx, span := l.tracer.StartCompletion(ctx, model)
	defer span.End()

	start := time.Now()
	completion, err := l.provider.Complete(ctx, provider.CompletionRequest{
		Messages: session.Messages(),
	})
	seconds := time.Since(start).Seconds()

	if err != nil {
		observability.RecordError(span, err)
		l.metrics.RecordProviderRequest(model, "error", seconds)
		return provider.CompletionResponse{}, err
	}
	l.metrics.RecordProviderRequest(model, "success", seconds)
	return completion, nil
}

// record appends a turn to the session and the archive.
func (l *Loop) record(session *Session, msg provider.Message, hidden bool) {
	session.append(msg)
	if l.archive == nil {
		return
	}
	if err := l.archive.Append(session.ID, msg, hidden); err != nil {
		l.logger.Error("archive append failed", "session_id", session.ID, "error", err)
	}
}

func stopReasonForContext(err error) StopReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return StopReasonTimeout
	case errors.Is(err, context.Canceled):
		return StopReasonCancelled
	default:
		return StopReasonProviderError
	}
}

func addUsage(a, b provider.TokenUsage) provider.TokenUsage {
	return provider.TokenUsage{
		PromptTokens:     a.PromptTokens + b.PromptTokens,
		CompletionTokens: a.CompletionTokens + b.CompletionTokens,
		TotalTokens:      a.TotalTokens + b.TotalTokens,
	}
}
