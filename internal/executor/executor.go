// Package executor settles tool calls. Dispatch is a closed switch over
// the builtin catalog rather than a handler map: the compiler sees every
// reachable capability, and a call that names anything else settles as an
// unknown-tool failure without side effects.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matehq/mate/internal/observability"
	"github.com/matehq/mate/internal/security"
	"github.com/matehq/mate/internal/sqlguard"
	"github.com/matehq/mate/internal/tool"
)

const defaultCallTimeout = 60 * time.Second

// Config assembles an Executor's collaborators.
type Config struct {
	Registry *tool.Registry
	// Gate handles dangerous calls. A nil gate denies every dangerous
	// call outright.
	Gate *tool.Gate
	// SQL backs the sql_* tools. Nil settles them as connection errors.
	SQL     *sqlguard.Manager
	Metrics *observability.Metrics
	Tracer  *observability.Tracer
	Audit   *security.AuditLogger
	Logger  *slog.Logger

	// CallTimeout bounds every execution uniformly. Defaults to 60s. The
	// approval wait is not counted against it.
	CallTimeout time.Duration

	// RunShell overrides shell spawning in tests.
	RunShell func(ctx context.Context, command string) (string, error)
	// OpenURL overrides the OS browser handoff in tests.
	OpenURL func(rawURL string) error
}

// Executor runs extracted calls to completion. Every accepted call yields
// exactly one Result; failures are classified, never raised.
type Executor struct {
	registry    *tool.Registry
	gate        *tool.Gate
	sql         *sqlguard.Manager
	metrics     *observability.Metrics
	tracer      *observability.Tracer
	audit       *security.AuditLogger
	logger      *slog.Logger
	callTimeout time.Duration

	runShell func(ctx context.Context, command string) (string, error)
	openURL  func(rawURL string) error
}

// New creates an Executor from cfg.
func New(cfg Config) *Executor {
	e := &Executor{
		registry:    cfg.Registry,
		gate:        cfg.Gate,
		sql:         cfg.SQL,
		metrics:     cfg.Metrics,
		tracer:      cfg.Tracer,
		audit:       cfg.Audit,
		logger:      cfg.Logger,
		callTimeout: cfg.CallTimeout,
		runShell:    cfg.RunShell,
		openURL:     cfg.OpenURL,
	}
	if e.callTimeout <= 0 {
		e.callTimeout = defaultCallTimeout
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.metrics == nil {
		e.metrics = observability.NewMetrics()
	}
	if e.tracer == nil {
		e.tracer, _, _ = observability.NewTracer(context.Background(), observability.TraceConfig{})
	}
	if e.runShell == nil {
		e.runShell = runShellCommand
	}
	if e.openURL == nil {
		e.openURL = openInBrowser
	}
	return e
}

// Execute settles one call: lookup, validation, the approval gate for
// dangerous tools, then dispatch under the uniform deadline. It never
// returns an error; every failure is folded into the Result.
func (e *Executor) Execute(ctx context.Context, call tool.Call) tool.Result {
	def, ok := e.registry.Lookup(call.Tool)
	if !ok {
		return e.settle(call, tool.Fail(call.Tool, tool.KindUnknownTool,
			fmt.Errorf("%w: %s", tool.ErrUnknownTool, call.Tool)))
	}

	if err := validateParams(def, call.Params); err != nil {
		return e.settle(call, tool.Fail(call.Tool, tool.KindValidation, err))
	}

	e.audit.Log(security.Event{
		Type:     security.EventToolCall,
		ToolName: call.Tool,
		Detail:   call.String(),
		Metadata: map[string]string{"call_id": call.ID},
	})

	if def.Dangerous {
		if res, denied := e.confirm(ctx, call); denied {
			return e.settle(call, res)
		}
	}

	ctx, span := e.tracer.StartToolExecution(ctx, call.Tool)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	start := time.Now()
	res := e.dispatch(ctx, call)
	seconds := time.Since(start).Seconds()

	if !res.Success {
		observability.RecordError(span, errors.New(res.Error))
		e.metrics.RecordToolExecution(call.Tool, "error", seconds)
	} else {
		e.metrics.RecordToolExecution(call.Tool, "success", seconds)
	}
	return e.settle(call, res)
}

// confirm suspends on the gate. The second return is true when the call
// must not execute; the accompanying Result carries the denial.
func (e *Executor) confirm(ctx context.Context, call tool.Call) (tool.Result, bool) {
	if e.gate == nil {
		e.metrics.RecordApproval("denied")
		return tool.Fail(call.Tool, tool.KindPermissionDenied,
			fmt.Errorf("%w: no approval channel configured", tool.ErrDenied)), true
	}

	decision, err := e.gate.Await(ctx, call)
	outcome := "approved"
	switch {
	case errors.Is(err, tool.ErrDecisionTimeout):
		outcome = "timeout"
	case !decision.Approved:
		outcome = "denied"
	}
	e.metrics.RecordApproval(outcome)
	e.audit.Log(security.Event{
		Type:     security.EventApproval,
		ToolName: call.Tool,
		Detail:   outcome,
		Metadata: map[string]string{"call_id": call.ID, "reason": decision.Reason},
	})

	if decision.Approved && err == nil {
		return tool.Result{}, false
	}

	reason := decision.Reason
	if reason == "" {
		reason = "operator rejected the call"
	}
	return tool.Fail(call.Tool, tool.KindPermissionDenied,
		fmt.Errorf("%w: %s", tool.ErrDenied, reason)), true
}

// dispatch is the closed capability switch. Adding a tool to the catalog
// without a case here is a compile-time gap a reviewer sees, not a
// runtime registry miss.
func (e *Executor) dispatch(ctx context.Context, call tool.Call) (res tool.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool handler panicked", "tool", call.Tool, "panic", r)
			res = tool.Fail(call.Tool, tool.KindExecution,
				fmt.Errorf("executor: handler panicked: %v", r))
		}
	}()

	switch call.Tool {
	case tool.ShellExecute:
		return e.shellExecute(ctx, call)
	case tool.FileRead:
		return e.fileRead(call)
	case tool.FileWrite:
		return e.fileWrite(call)
	case tool.FileList:
		return e.fileList(call)
	case tool.ProcessList:
		return e.processList(ctx, call)
	case tool.SystemInfo:
		return e.systemInfo(call)
	case tool.BrowserOpen:
		return e.browserOpen(call)
	case tool.WebSearch:
		return e.webSearch(call)
	case tool.MapOpen:
		return e.mapOpen(call)
	case tool.YouTubeSearch:
		return e.youtubeSearch(call)
	case tool.SQLConnect:
		return e.sqlConnect(ctx, call)
	case tool.SQLQuery:
		return e.sqlQuery(ctx, call)
	case tool.SQLListTables:
		return e.sqlListTables(ctx, call)
	case tool.SQLDescribeTable:
		return e.sqlDescribeTable(ctx, call)
	case tool.SQLDisconnect:
		return e.sqlDisconnect(call)
	default:
		// Registered but not dispatchable: fail closed.
		return tool.Fail(call.Tool, tool.KindUnknownTool,
			fmt.Errorf("%w: %s", tool.ErrUnknownTool, call.Tool))
	}
}

// settle records the result and returns it. Timeout classification was
// applied by the handlers; here the result is final.
func (e *Executor) settle(call tool.Call, res tool.Result) tool.Result {
	e.audit.Log(security.Event{
		Type:     security.EventToolResult,
		ToolName: res.Tool,
		Detail:   security.Truncate(resultDetail(res), 512),
		Metadata: map[string]string{"call_id": call.ID, "success": fmt.Sprintf("%t", res.Success)},
	})
	if res.Success {
		e.logger.Info("tool call settled", "tool", res.Tool, "call_id", call.ID)
	} else {
		e.logger.Warn("tool call failed", "tool", res.Tool, "call_id", call.ID,
			"kind", string(res.Kind), "error", res.Error)
	}
	return res
}

func resultDetail(res tool.Result) string {
	if res.Success {
		return res.Output
	}
	return res.Error
}
