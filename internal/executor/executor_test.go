package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/matehq/mate/internal/tool"
)

type execEnv struct {
	exec     *Executor
	shellRan *bool
	opened   *[]string
}

// newTestExecutor wires an executor with recording hooks. decide is
// applied to every dangerous call through the gate notifier.
func newTestExecutor(t *testing.T, decide func(tool.PendingCall) tool.Decision) execEnv {
	t.Helper()

	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltins(registry); err != nil {
		t.Fatal(err)
	}

	var gate *tool.Gate
	if decide != nil {
		gate = tool.NewGate(tool.NotifierFunc(func(p tool.PendingCall) {
			gate.Resolve(p.CallID, decide(p))
		}), time.Second)
	}

	shellRan := false
	opened := []string{}
	e := New(Config{
		Registry: registry,
		Gate:     gate,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		RunShell: func(ctx context.Context, command string) (string, error) {
			shellRan = true
			return "ran: " + command, nil
		},
		OpenURL: func(rawURL string) error {
			opened = append(opened, rawURL)
			return nil
		},
	})
	return execEnv{exec: e, shellRan: &shellRan, opened: &opened}
}

func approveAll(tool.PendingCall) tool.Decision {
	return tool.Decision{Approved: true}
}

func denyAll(tool.PendingCall) tool.Decision {
	return tool.Decision{Approved: false, Reason: "not on my machine"}
}

func TestExecuteUnknownTool(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, nil)
	res := env.exec.Execute(context.Background(), tool.Call{ID: "c1", Tool: "format_disk"})
	if res.Success || res.Kind != tool.KindUnknownTool {
		t.Fatalf("got %+v, want unknown_tool failure", res)
	}
}

func TestExecuteMissingRequiredParam(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, approveAll)
	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "c1", Tool: tool.ShellExecute, Params: map[string]any{},
	})
	if res.Success || res.Kind != tool.KindValidation {
		t.Fatalf("got %+v, want validation failure", res)
	}
	if *env.shellRan {
		t.Error("validation failure must prevent the side effect")
	}
}

func TestExecuteRejectsUndeclaredParam(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, nil)
	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "c1", Tool: tool.FileRead, Params: map[string]any{"path": "/tmp/x", "mode": "fast"},
	})
	if res.Kind != tool.KindValidation {
		t.Fatalf("got %+v, want validation failure", res)
	}
}

func TestExecuteDangerousDenied(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, denyAll)
	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "c1", Tool: tool.ShellExecute, Params: map[string]any{"command": "rm -rf /"},
	})
	if res.Success || res.Kind != tool.KindPermissionDenied {
		t.Fatalf("got %+v, want permission_denied", res)
	}
	if !strings.Contains(res.Error, "not on my machine") {
		t.Errorf("denial reason missing from error: %q", res.Error)
	}
	if *env.shellRan {
		t.Error("denied call must never spawn a process")
	}
}

func TestExecuteDangerousApproved(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, approveAll)
	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "c1", Tool: tool.ShellExecute, Params: map[string]any{"command": "uptime"},
	})
	if !res.Success {
		t.Fatalf("approved call failed: %+v", res)
	}
	if !*env.shellRan {
		t.Error("approved call should execute")
	}
	if res.Output != "ran: uptime" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

func TestExecuteDangerousWithoutGateIsDenied(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, nil)
	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "c1", Tool: tool.ShellExecute, Params: map[string]any{"command": "uptime"},
	})
	if res.Kind != tool.KindPermissionDenied {
		t.Fatalf("got %+v, want permission_denied", res)
	}
	if *env.shellRan {
		t.Error("call must fail closed without an approval channel")
	}
}

func TestExecuteApprovalTimeoutDenies(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltins(registry); err != nil {
		t.Fatal(err)
	}
	// Notifier never resolves; the gate deadline must deny.
	gate := tool.NewGate(tool.NotifierFunc(func(tool.PendingCall) {}), 20*time.Millisecond)

	shellRan := false
	e := New(Config{
		Registry: registry,
		Gate:     gate,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		RunShell: func(context.Context, string) (string, error) {
			shellRan = true
			return "", nil
		},
	})

	res := e.Execute(context.Background(), tool.Call{
		ID: "c1", Tool: tool.ShellExecute, Params: map[string]any{"command": "uptime"},
	})
	if res.Kind != tool.KindPermissionDenied {
		t.Fatalf("got %+v, want permission_denied", res)
	}
	if shellRan {
		t.Error("timed-out approval must deny")
	}
}

func TestExecutePanicRecovery(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, nil)
	env.exec.runShell = func(context.Context, string) (string, error) {
		panic("handler bug")
	}
	// process_list routes through the shell hook and is not dangerous.
	res := env.exec.Execute(context.Background(), tool.Call{ID: "c1", Tool: tool.ProcessList})
	if res.Success || res.Kind != tool.KindExecution {
		t.Fatalf("got %+v, want execution failure from recovered panic", res)
	}
	if !strings.Contains(res.Error, "panicked") {
		t.Errorf("error should mention the panic: %q", res.Error)
	}
}

func TestExecuteDeadlineClassifiedAsTimeout(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltins(registry); err != nil {
		t.Fatal(err)
	}
	e := New(Config{
		Registry:    registry,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		CallTimeout: 20 * time.Millisecond,
		RunShell: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	})

	res := e.Execute(context.Background(), tool.Call{ID: "c1", Tool: tool.ProcessList})
	if res.Kind != tool.KindTimeout {
		t.Fatalf("got %+v, want timeout failure", res)
	}
}

func TestExecuteShellFailureKeepsOutput(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, approveAll)
	env.exec.runShell = func(context.Context, string) (string, error) {
		return "", errors.New("exit code 2: no such directory")
	}
	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "c1", Tool: tool.ShellExecute, Params: map[string]any{"command": "ls /nope"},
	})
	if res.Success || res.Kind != tool.KindExecution {
		t.Fatalf("got %+v, want execution failure", res)
	}
	if !strings.Contains(res.Error, "no such directory") {
		t.Errorf("command output missing from error: %q", res.Error)
	}
}

func TestSQLUnavailable(t *testing.T) {
	t.Parallel()

	env := newTestExecutor(t, nil)
	res := env.exec.Execute(context.Background(), tool.Call{
		ID: "c1", Tool: tool.SQLQuery,
		Params: map[string]any{"connection_id": "x", "query": "SELECT 1"},
	})
	if res.Kind != tool.KindConnection {
		t.Fatalf("got %+v, want connection failure", res)
	}
}
