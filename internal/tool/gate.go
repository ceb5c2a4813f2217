package tool

import (
	"context"
	"sync"
	"time"
)

// GateState is the confirmation gate's current phase.
type GateState int

// Gate states. The gate holds at most one pending call at a time because
// the loop drains calls strictly sequentially.
const (
	GateIdle GateState = iota
	GateAwaitingDecision
)

// Decision is an operator's answer to a pending dangerous call.
type Decision struct {
	Approved bool
	Reason   string
}

// PendingCall is the notification payload emitted when a dangerous call
// suspends the queue: the tool name and its full parameter set.
type PendingCall struct {
	CallID string         `json:"call_id"`
	Tool   string         `json:"tool"`
	Params map[string]any `json:"parameters"`
}

// Notifier receives pending-call notifications. Implementations surface
// them to the operator (terminal prompt, HTTP control surface, ...). Notify
// must not block: the gate waits for Resolve, not for Notify to return.
type Notifier interface {
	Notify(pending PendingCall)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(PendingCall)

// Notify implements Notifier.
func (f NotifierFunc) Notify(p PendingCall) { f(p) }

// Gate is the suspend/resume boundary that enforces operator approval for
// dangerous calls. It is modeled as an explicit suspended state plus a
// resumption entry point keyed by the pending call's id, so the
// surrounding application can poll or push the decision asynchronously.
type Gate struct {
	mu       sync.Mutex
	state    GateState
	pending  *PendingCall
	decision chan Decision
	notifier Notifier
	timeout  time.Duration
}

// NewGate creates an idle gate. A zero timeout disables the deadline and
// the gate waits for a decision until the context is cancelled.
func NewGate(notifier Notifier, timeout time.Duration) *Gate {
	return &Gate{notifier: notifier, timeout: timeout}
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Pending returns the call awaiting a decision, if any. Parameters are
// returned as supplied by the model; callers that display them are
// responsible for redaction.
func (g *Gate) Pending() (PendingCall, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GateAwaitingDecision || g.pending == nil {
		return PendingCall{}, false
	}
	return *g.pending, true
}

// Await suspends on call until an operator decision arrives. It transitions
// the gate to AwaitingDecision, emits the notification, and blocks. Timeout
// and context cancellation both resolve as deny-by-default so a dangerous
// call can never slip through an abandoned prompt.
//
// The returned error is ErrGateBusy if a decision is already pending, and
// ErrDecisionTimeout when the deadline expired; in both cases the Decision
// reports Approved == false.
func (g *Gate) Await(ctx context.Context, call Call) (Decision, error) {
	g.mu.Lock()
	if g.state != GateIdle {
		g.mu.Unlock()
		return Decision{Approved: false, Reason: "gate busy"}, ErrGateBusy
	}
	pending := PendingCall{CallID: call.ID, Tool: call.Tool, Params: call.Params}
	ch := make(chan Decision, 1)
	g.state = GateAwaitingDecision
	g.pending = &pending
	g.decision = ch
	g.mu.Unlock()

	if g.notifier != nil {
		g.notifier.Notify(pending)
	}

	var deadline <-chan time.Time
	if g.timeout > 0 {
		timer := time.NewTimer(g.timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case d := <-ch:
		g.settle()
		return d, nil
	case <-deadline:
		if d, ok := g.settle(); ok {
			return d, nil
		}
		return Decision{Approved: false, Reason: "approval timed out"}, ErrDecisionTimeout
	case <-ctx.Done():
		if d, ok := g.settle(); ok {
			return d, nil
		}
		return Decision{Approved: false, Reason: "cancelled"}, ctx.Err()
	}
}

// settle returns the gate to idle under the lock. A decision that Resolve
// delivered concurrently with a timeout or cancellation is drained and
// honored, so Resolve reporting true always means the decision took
// effect; once settle returns, any later Resolve reports false.
func (g *Gate) settle() (Decision, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var d Decision
	var ok bool
	select {
	case d = <-g.decision:
		ok = true
	default:
	}
	g.state = GateIdle
	g.pending = nil
	g.decision = nil
	return d, ok
}

// Resolve delivers a decision for the pending call identified by callID.
// It reports whether the decision was accepted; a decision for a
// non-pending call is a no-op and returns false.
func (g *Gate) Resolve(callID string, d Decision) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GateAwaitingDecision || g.pending == nil || g.pending.CallID != callID {
		return false
	}
	// The channel holds one decision and pending is cleared with it, so
	// this send never blocks and a duplicate decision reports false.
	g.decision <- d
	g.pending = nil
	return true
}
