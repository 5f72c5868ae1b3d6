package miqaatrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/miqaatrepo"
)

// Membership is the slice of the in-memory miqaat_members table the event repository needs:
// the member→event join for ListForMember and the cascade on Delete.
type Membership interface {
	MiqaatIDsForMember(ctx context.Context, memberID domain.MemberID) ([]domain.MiqaatID, error)
	DeleteByMiqaat(ctx context.Context, miqaatID domain.MiqaatID) error
}

// Repo is an in-memory implementation of miqaatrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	membership Membership

	mu     sync.RWMutex
	nextID domain.MiqaatID
	byID   map[domain.MiqaatID]miqaatrepo.Miqaat
}

// NewRepo constructs the repository. membership may be nil, in which case ListForMember is always
// empty and Delete cascades nowhere.
func NewRepo(membership Membership) *Repo {
	return &Repo{
		membership: membership,
		byID:       make(map[domain.MiqaatID]miqaatrepo.Miqaat),
	}
}

func (r *Repo) Create(ctx context.Context, m miqaatrepo.Miqaat) (domain.MiqaatID, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.byID[m.ID] = cloneMiqaat(m)
	return m.ID, nil
}

func (r *Repo) Save(ctx context.Context, m miqaatrepo.Miqaat) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[m.ID]
	if !ok {
		return miqaatrepo.ErrNotFound
	}
	m.CreatedAt = existing.CreatedAt
	r.byID[m.ID] = cloneMiqaat(m)
	return nil
}

func (r *Repo) SetApproval(ctx context.Context, id domain.MiqaatID, status domain.ApprovalStatus, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return miqaatrepo.ErrNotFound
	}
	m.AdminApproval = status
	m.UpdatedAt = at
	r.byID[id] = m
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.MiqaatID) error {
	r.mu.Lock()
	if _, ok := r.byID[id]; !ok {
		r.mu.Unlock()
		return miqaatrepo.ErrNotFound
	}
	delete(r.byID, id)
	r.mu.Unlock()

	if r.membership != nil {
		return r.membership.DeleteByMiqaat(ctx, id)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MiqaatID) (miqaatrepo.Miqaat, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return miqaatrepo.Miqaat{}, miqaatrepo.ErrNotFound
	}
	return cloneMiqaat(m), nil
}

func (r *Repo) List(ctx context.Context) ([]miqaatrepo.Miqaat, error) {
	return r.filter(ctx, func(miqaatrepo.Miqaat) bool { return true })
}

func (r *Repo) ListByCaptainName(ctx context.Context, captainName string) ([]miqaatrepo.Miqaat, error) {
	return r.filter(ctx, func(m miqaatrepo.Miqaat) bool { return m.CaptainName == captainName })
}

func (r *Repo) ListForMember(ctx context.Context, memberID domain.MemberID) ([]miqaatrepo.Miqaat, error) {
	if r.membership == nil {
		return []miqaatrepo.Miqaat{}, nil
	}
	ids, err := r.membership.MiqaatIDsForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	set := make(map[domain.MiqaatID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return r.filter(ctx, func(m miqaatrepo.Miqaat) bool {
		_, ok := set[m.ID]
		return ok
	})
}

func (r *Repo) filter(ctx context.Context, keep func(miqaatrepo.Miqaat) bool) ([]miqaatrepo.Miqaat, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]miqaatrepo.Miqaat, 0)
	for _, m := range r.byID {
		if keep(m) {
			out = append(out, cloneMiqaat(m))
		}
	}
	sortMiqaats(out)
	return out, nil
}

func sortMiqaats(ms []miqaatrepo.Miqaat) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].ID > ms[j].ID
		}
		return ms[i].CreatedAt.After(ms[j].CreatedAt)
	})
}

func cloneMiqaat(m miqaatrepo.Miqaat) miqaatrepo.Miqaat {
	out := m
	if m.About != nil {
		v := *m.About
		out.About = &v
	}
	return out
}
