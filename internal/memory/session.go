// Package memory holds conversation state: a bounded in-process session
// history and a long-term JSON preference store shared across sessions.
package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"autopilot/internal/protocol"
)

// Session is the per-conversation message ring. It keeps the most recent
// MaxHistory exchanges (2x MaxHistory messages); older turns fall off the
// front. Safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	messages   []protocol.Message
	maxHistory int
}

// NewSession returns a session keeping maxHistory exchanges.
func NewSession(maxHistory int) *Session {
	if maxHistory <= 0 {
		maxHistory = 8
	}
	return &Session{maxHistory: maxHistory}
}

// Add appends one message, evicting the oldest when the ring is full.
func (s *Session) Add(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, protocol.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if limit := s.maxHistory * 2; len(s.messages) > limit {
		s.messages = s.messages[len(s.messages)-limit:]
	}
}

// Messages returns a copy of the current history.
func (s *Session) Messages() []protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// HistoryString renders the last five messages for prompt injection, each
// truncated to 200 characters.
func (s *Session) HistoryString() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.messages) > 5 {
		start = len(s.messages) - 5
	}

	var b strings.Builder
	for _, m := range s.messages[start:] {
		content := m.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		fmt.Fprintf(&b, "%s: %s\n", m.Role, content)
	}
	return b.String()
}

// Stats summarizes the retained history.
func (s *Session) Stats() protocol.ConversationStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := protocol.ConversationStats{TotalMessages: len(s.messages)}
	for _, m := range s.messages {
		switch m.Role {
		case "user":
			stats.UserMessages++
		case "assistant":
			stats.AssistantMessages++
		}
	}
	return stats
}

// Clear drops the history.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
