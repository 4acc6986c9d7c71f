// Package memory keeps per-session conversation history in process memory.
package memory

import "sync"

// maxTurns bounds history to the most recent 5 exchanges.
const maxTurns = 10

// Turn is one message in a conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Store is a concurrency-safe mapping from session identifier to an ordered,
// bounded list of conversation turns. Sessions live for the process lifetime
// unless cleared explicitly.
type Store struct {
	mu   sync.RWMutex
	data map[string][]Turn
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{data: make(map[string][]Turn)}
}

// Append adds a turn to the session, creating it on first use, then drops the
// oldest turns beyond the cap.
func (s *Store) Append(sessionID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[sessionID], turn)
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	s.data[sessionID] = history
}

// History returns a copy of the session's turns, oldest first.
func (s *Store) History(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[sessionID]
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}

// Clear deletes the session entirely.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, sessionID)
}
