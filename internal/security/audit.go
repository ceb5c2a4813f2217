package security

import (
	"encoding/json"
	"io"
	"sync"
	"time"
	"unicode/utf8"
)

// EventType categorizes audit events.
type EventType string

// Audit event types for every security-relevant engine interaction.
const (
	EventToolCall      EventType = "tool_call"
	EventToolResult    EventType = "tool_result"
	EventApproval      EventType = "approval"
	EventGuardReject   EventType = "guard_reject"
	EventConnect       EventType = "sql_connect"
	EventDisconnect    EventType = "sql_disconnect"
	EventSessionStart  EventType = "session_start"
	EventSessionEnd    EventType = "session_end"
	EventProviderError EventType = "provider_error"
)

// maxDetailLen bounds the Detail field so a large tool output cannot
// bloat the audit trail.
const maxDetailLen = 4096

// Event is a single audit log entry.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	ToolName  string            `json:"tool_name,omitempty"`
	Detail    string            `json:"detail,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditConfig configures the audit logger.
type AuditConfig struct {
	// Writer receives JSONL output. Nil means events only reach OnEvent.
	Writer io.Writer

	// Redactor, if non-nil, is applied to Detail and Metadata values.
	Redactor *Redactor

	// OnEvent, if non-nil, is invoked for every event (used in tests).
	OnEvent func(Event)

	// Now overrides time.Now for testing.
	Now func() time.Time
}

// AuditLogger writes structured audit events as JSONL with redaction
// and detail truncation.
type AuditLogger struct {
	writer   io.Writer
	redactor *Redactor
	onEvent  func(Event)
	now      func() time.Time
	mu       sync.Mutex
}

// NewAuditLogger creates an audit logger from cfg.
func NewAuditLogger(cfg AuditConfig) *AuditLogger {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AuditLogger{
		writer:   cfg.Writer,
		redactor: cfg.Redactor,
		onEvent:  cfg.OnEvent,
		now:      now,
	}
}

// Log records an event. The timestamp is set here; Detail is truncated
// and redacted. The caller's Metadata map is never mutated.
func (l *AuditLogger) Log(event Event) {
	if l == nil {
		return
	}
	event.Timestamp = l.now()
	event.Detail = Truncate(event.Detail, maxDetailLen)

	if len(event.Metadata) > 0 {
		cp := make(map[string]string, len(event.Metadata))
		for k, v := range event.Metadata {
			cp[k] = v
		}
		event.Metadata = cp
	}

	if l.redactor != nil {
		event.Detail = l.redactor.Redact(event.Detail)
		for k, v := range event.Metadata {
			event.Metadata[k] = l.redactor.Redact(v)
		}
	}

	// Callback and write share one lock so event order is consistent.
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.onEvent != nil {
		l.onEvent(event)
	}
	if l.writer != nil {
		_ = json.NewEncoder(l.writer).Encode(event)
	}
}

// Truncate shortens s to at most n bytes, backing up to a rune boundary
// so multi-byte characters are never split.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := n
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "...(truncated)"
}
