// Package agent implements the bounded reasoning loop: the model takes a
// turn, the engine extracts and settles its tool calls, the results go
// back as hidden feedback turns, and the cycle repeats until the model
// answers in plain text or a budget runs out.
package agent

import (
	"context"
	"time"

	"github.com/matehq/mate/internal/provider"
	"github.com/matehq/mate/internal/tool"
)

// StopReason describes why a run terminated.
type StopReason string

// Run termination reasons.
const (
	StopReasonCompleted      StopReason = "completed"
	StopReasonIterationLimit StopReason = "iteration_limit_exceeded"
	StopReasonTimeout        StopReason = "timeout"
	StopReasonCancelled      StopReason = "cancelled"
	StopReasonProviderError  StopReason = "provider_error"
)

// Default values for Config.
const (
	DefaultMaxRounds = 10
	DefaultTimeout   = 5 * time.Minute
)

// Config controls the loop's budgets.
type Config struct {
	// MaxRounds is the maximum number of provider rounds per run. The
	// counter advances exactly once per cycle, whether or not the cycle
	// produced tool calls.
	MaxRounds int

	// Timeout bounds one run's wall-clock duration.
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Response is the outcome of one run.
type Response struct {
	// Content is the model's final plain-text answer. Empty when the run
	// stopped on a budget or error.
	Content string

	// Results are the settled tool results, in execution order.
	Results []tool.Result

	// Rounds is how many provider rounds the run consumed.
	Rounds int

	StopReason StopReason
	Usage      provider.TokenUsage
}

// Runner settles one extracted call. Satisfied by executor.Executor;
// tests substitute fakes.
type Runner interface {
	Execute(ctx context.Context, call tool.Call) tool.Result
}
