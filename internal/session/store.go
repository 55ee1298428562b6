// Package session remembers, per user, the question index that is waiting
// for a clarified answer.
//
// Stores guarantee that a single Get/Set/Delete is atomic. They do not
// serialize whole requests for the same user: two concurrent requests from one
// user may both observe the same pending entry.
package session

import (
	"context"
	"sync"
)

type Store interface {
	Get(ctx context.Context, userID string) (index int, ok bool, err error)
	Set(ctx context.Context, userID string, index int) error
	Delete(ctx context.Context, userID string) error
	Close() error
}

// MemoryStore keeps entries for the process lifetime. There is no expiry.
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: map[string]int{}}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.pending[userID]
	return idx, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, userID string, index int) error {
	s.mu.Lock()
	s.pending[userID] = index
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.pending, userID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *MemoryStore) Close() error { return nil }
