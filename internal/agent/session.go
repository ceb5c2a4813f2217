package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matehq/mate/internal/provider"
)

// Session is one conversation. The loop appends turns to it; the
// conversation accumulates across runs so a follow-up message sees the
// full context, including earlier hidden feedback turns.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	messages []provider.Message
	running  bool
}

// NewSession creates a session seeded with the system prompt.
func NewSession(systemPrompt string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	if systemPrompt != "" {
		s.messages = append(s.messages, provider.Message{
			Role:    provider.RoleSystem,
			Content: systemPrompt,
		})
	}
	return s
}

// Messages returns a copy of the conversation.
func (s *Session) Messages() []provider.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]provider.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) append(msg provider.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

// acquire marks the session as running. A session runs at most one loop
// at a time.
func (s *Session) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
