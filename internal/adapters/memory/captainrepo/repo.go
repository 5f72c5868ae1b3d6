package captainrepo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/captainrepo"
)

// Repo is an in-memory implementation of captainrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu      sync.RWMutex
	nextID  domain.CaptainID
	byID    map[domain.CaptainID]captainrepo.Captain
	idByITS map[string]domain.CaptainID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.CaptainID]captainrepo.Captain),
		idByITS: make(map[string]domain.CaptainID),
	}
}

func (r *Repo) GetByITSID(ctx context.Context, itsID string) (captainrepo.Captain, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByITS[strings.TrimSpace(itsID)]
	if !ok {
		return captainrepo.Captain{}, captainrepo.ErrNotFound
	}
	return cloneCaptain(r.byID[id]), nil
}

func (r *Repo) SetNewPasswordHash(ctx context.Context, id domain.CaptainID, hash string, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return captainrepo.ErrNotFound
	}
	c.NewPasswordHash = &hash
	c.UpdatedAt = at
	r.byID[id] = cloneCaptain(c)
	return nil
}

func (r *Repo) Upsert(ctx context.Context, c captainrepo.Captain) (domain.CaptainID, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.idByITS[c.ITSID]; ok {
		existing := r.byID[id]
		existing.FullName = c.FullName
		existing.Email = c.Email
		existing.PasswordHash = c.PasswordHash
		existing.IsActive = c.IsActive
		existing.UpdatedAt = c.UpdatedAt
		r.byID[id] = cloneCaptain(existing)
		return id, nil
	}
	r.nextID++
	c.ID = r.nextID
	r.byID[c.ID] = cloneCaptain(c)
	r.idByITS[c.ITSID] = c.ID
	return c.ID, nil
}

func cloneCaptain(c captainrepo.Captain) captainrepo.Captain {
	out := c
	if c.PasswordHash != nil {
		v := *c.PasswordHash
		out.PasswordHash = &v
	}
	if c.NewPasswordHash != nil {
		v := *c.NewPasswordHash
		out.NewPasswordHash = &v
	}
	return out
}
