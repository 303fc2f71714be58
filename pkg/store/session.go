package store

import (
	"sync"
	"time"
)

// ReferencePrefix is the URI scheme of object references.
const ReferencePrefix = "gs://"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DocumentRef is one loan document resolved during context initialization.
type DocumentRef struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	// Reference marks Content as an object URI rather than inline text.
	Reference bool `json:"reference"`
}

// IsReference reports whether Content points at an object to be analyzed by the model directly.
func (d DocumentRef) IsReference() bool {
	return d.Reference
}

type DocumentSummary struct {
	Filename  string `json:"filename"`
	Summary   string `json:"summary"`
	Processed bool   `json:"processed"`
}

// Turn is one role-tagged message of a session conversation.
type Turn struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionContext represents the in-memory state needed to answer questions for a loan review session.
// Everything except Conversations is fixed once the context is stored.
type SessionContext struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	LoanName    string `json:"loan_name"`
	UserRole    string `json:"user_role"`
	Institution string `json:"institution"`
	AIFocus     string `json:"ai_focus"`
	Language    string `json:"language"`
	Region      string `json:"region"`

	Documents         []DocumentRef     `json:"documents"`
	DocumentSummaries []DocumentSummary `json:"document_summaries"`

	mu            sync.RWMutex
	conversations []Turn
}

// NewSessionContext seeds a context with an existing conversation log (may be nil).
func NewSessionContext(sessionID string, history []Turn) *SessionContext {
	turns := make([]Turn, len(history))
	copy(turns, history)
	return &SessionContext{
		SessionID:     sessionID,
		conversations: turns,
	}
}

// AppendExchange records a question and its answer, in that order.
func (s *SessionContext) AppendExchange(question, answer string, askedAt, answeredAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = append(s.conversations,
		Turn{Role: RoleUser, Message: question, Timestamp: askedAt.UTC()},
		Turn{Role: RoleAssistant, Message: answer, Timestamp: answeredAt.UTC()},
	)
}

// Conversations returns a copy of the full conversation log.
func (s *SessionContext) Conversations() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// RecentTurns returns a copy of at most the last n turns.
func (s *SessionContext) RecentTurns(n int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return []Turn{}
	}
	start := len(s.conversations) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(s.conversations)-start)
	copy(out, s.conversations[start:])
	return out
}

func (s *SessionContext) ConversationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// ProcessedSummaries counts the summaries produced successfully.
func (s *SessionContext) ProcessedSummaries() int {
	n := 0
	for _, summary := range s.DocumentSummaries {
		if summary.Processed {
			n++
		}
	}
	return n
}
