package chatconnect

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the conversation-log collaborator the aggregator finalizes into.
// The log is append-only and ordered: insertion order is chronological order
// is semantic order. Messages are never mutated or removed individually,
// only bulk-cleared.
type Store interface {
	// Append adds a message to the end of the log.
	Append(msg Message)

	// Messages returns the log in order. The returned slice is a snapshot;
	// mutating it does not affect the store.
	Messages() []Message

	// Clear removes every message.
	Clear()

	// SessionID returns the unique identifier of this session.
	SessionID() string
}

// MemoryStore is an in-process Store. It serializes access so a UI reader
// and the aggregator's finalize step never race, though the design assumes
// one generation in flight per session.
type MemoryStore struct {
	mu        sync.Mutex
	sessionID string
	messages  []Message
}

// NewMemoryStore creates an empty store with a fresh session id.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessionID: uuid.NewString(),
	}
}

func (s *MemoryStore) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *MemoryStore) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Message, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

func (s *MemoryStore) SessionID() string {
	return s.sessionID
}
