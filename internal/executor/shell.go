package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/matehq/mate/internal/security"
	"github.com/matehq/mate/internal/tool"
)

// maxCommandOutput bounds what a command can feed back into the
// conversation.
const maxCommandOutput = 16 * 1024

func (e *Executor) shellExecute(ctx context.Context, call tool.Call) tool.Result {
	command := stringParam(call.Params, "command")

	out, err := e.runShell(ctx, command)
	if err != nil {
		return tool.Fail(call.Tool, execKind(ctx, err), fmt.Errorf("executor: %s: %w", command, err))
	}
	if out == "" {
		out = "(command produced no output)"
	}
	return tool.Ok(call.Tool, security.Truncate(out, maxCommandOutput))
}

// runShellCommand is the production shell spawner. Stderr is folded into
// the output so the model sees diagnostics; a non-zero exit settles as a
// failure carrying whatever the command printed.
func runShellCommand(ctx context.Context, command string) (string, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "bash", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := stdout.String()
	if stderr.Len() > 0 {
		out = strings.TrimRight(out, "\n") + "\n" + stderr.String()
	}
	out = strings.TrimSpace(out)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("exit code %d: %s", exitErr.ExitCode(), out)
		}
		return "", err
	}
	return out, nil
}

// execKind classifies a handler error: a deadline expiry is reported as a
// timeout, everything else as an execution failure.
func execKind(ctx context.Context, err error) tool.Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return tool.KindTimeout
	}
	return tool.KindExecution
}
