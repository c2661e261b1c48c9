package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	At             time.Time `json:"at"`
	ExtractedFacts Facts     `json:"extracted_facts,omitempty"`
	Intent         Intent    `json:"intent,omitempty"`
	ToolsInvoked   []string  `json:"tools_invoked,omitempty"`
}

// Session is the per-conversation state that survives across turns.
type Session struct {
	ID             string           `json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	LastActivity   time.Time        `json:"last_activity"`
	Facts          map[Field]*Fact  `json:"facts"`
	History        []Turn           `json:"history"`
	Contradictions []*Contradiction `json:"contradictions"`
	CurrentEntry   string           `json:"current_entry,omitempty"`
	Failures       []FailureRecord  `json:"failures,omitempty"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		Facts:        make(map[Field]*Fact),
	}
}

// Snapshot returns the current value of every populated field.
func (s *Session) Snapshot() Facts {
	out := make(Facts, len(s.Facts))
	for field, f := range s.Facts {
		out[field] = f.Value
	}
	return out
}

// AppendTurn adds t to history and evicts the oldest entries beyond limit.
func (s *Session) AppendTurn(t Turn, limit int) {
	s.History = append(s.History, t)
	if limit > 0 && len(s.History) > limit {
		s.History = append([]Turn(nil), s.History[len(s.History)-limit:]...)
	}
}

// Expired reports whether the session has been idle for longer than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.LastActivity) > ttl
}
