package revocation

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local Store. Expired entries are dropped on
// lookup and on every Revoke.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Revoke(ctx context.Context, token string, until time.Time) error {
	now := s.now()
	if !until.After(now) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, exp := range s.entries {
		if !exp.After(now) {
			delete(s.entries, k)
		}
	}
	s.entries[Digest(token)] = until
	return nil
}

func (s *MemoryStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	exp, ok := s.entries[Digest(token)]
	s.mu.RUnlock()

	return ok && exp.After(s.now()), nil
}

// Len returns the number of entries currently held, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
