package snapshotrepo

import (
	"context"
	"sync"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/snapshotrepo"
)

// Repo is an in-memory implementation of snapshotrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[string]snapshotrepo.Snapshot
}

func NewRepo() *Repo {
	return &Repo{m: make(map[string]snapshotrepo.Snapshot)}
}

func (r *Repo) Upsert(ctx context.Context, s snapshotrepo.Snapshot) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Email = domain.NormalizeEmail(s.Email)
	r.m[s.Email] = s
	return nil
}

func (r *Repo) Get(ctx context.Context, email string) (snapshotrepo.Snapshot, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[domain.NormalizeEmail(email)]
	if !ok {
		return snapshotrepo.Snapshot{}, snapshotrepo.ErrNotFound
	}
	return s, nil
}
