package convlog

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a simple in-process log for local/dev use and tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	turns  []Turn
	nextID int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Append(_ context.Context, userText, aiText string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turn := Turn{
		ID:        s.nextID,
		Timestamp: time.Now().UTC(),
		UserText:  userText,
		AIText:    aiText,
	}
	s.nextID++
	s.turns = append(s.turns, turn)
	return turn, nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.turns) == 0 {
		return nil, nil
	}
	if limit > len(s.turns) {
		limit = len(s.turns)
	}
	out := make([]Turn, limit)
	copy(out, s.turns[len(s.turns)-limit:])
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
