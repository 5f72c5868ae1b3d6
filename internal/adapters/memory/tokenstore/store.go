package tokenstore

import (
	"context"
	"sync"

	"github.com/burhani-guards/guards-api/internal/domain"
)

// Store is an in-memory implementation of tokenstore.Store.
// It is safe for concurrent use. Construct one at startup and inject it; there is no package-level map.
type Store struct {
	mu sync.RWMutex
	m  map[string]domain.Identity
}

func NewStore() *Store {
	return &Store{
		m: make(map[string]domain.Identity),
	}
}

func (s *Store) Store(ctx context.Context, token string, id domain.Identity) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = id
	return nil
}

func (s *Store) Resolve(ctx context.Context, token string) (domain.Identity, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.m[token]
	return id, ok, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}

// Len reports the number of live tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
