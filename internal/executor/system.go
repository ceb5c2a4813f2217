package executor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/matehq/mate/internal/tool"
)

// maxProcessLines bounds the process listing fed back to the model.
const maxProcessLines = 50

func (e *Executor) processList(ctx context.Context, call tool.Call) tool.Result {
	command := "ps axo pid,pcpu,pmem,comm --sort=-pcpu"
	if runtime.GOOS == "darwin" {
		command = "ps axo pid,pcpu,pmem,comm -r"
	} else if runtime.GOOS == "windows" {
		command = "tasklist"
	}

	out, err := e.runShell(ctx, command)
	if err != nil {
		return tool.Fail(call.Tool, execKind(ctx, err), fmt.Errorf("executor: process list: %w", err))
	}

	lines := strings.Split(out, "\n")
	if len(lines) > maxProcessLines+1 {
		total := len(lines) - 1
		lines = lines[:maxProcessLines+1]
		lines = append(lines, fmt.Sprintf("... (%d processes total, showing top %d)", total, maxProcessLines))
	}
	return tool.Ok(call.Tool, strings.Join(lines, "\n"))
}

func (e *Executor) systemInfo(call tool.Call) tool.Result {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "unknown"
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	info := fmt.Sprintf(
		"hostname: %s\nos: %s\narch: %s\ncpus: %d\nprocess memory: %.1f MiB\nworking directory: %s\nlocal time: %s",
		hostname,
		runtime.GOOS,
		runtime.GOARCH,
		runtime.NumCPU(),
		float64(mem.Sys)/(1024*1024),
		wd,
		time.Now().Format(time.RFC1123),
	)
	return tool.Ok(call.Tool, info)
}
