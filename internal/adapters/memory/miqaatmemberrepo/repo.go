package miqaatmemberrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
	"github.com/burhani-guards/guards-api/internal/ports/out/miqaatmemberrepo"
)

type key struct {
	memberID domain.MemberID
	miqaatID domain.MiqaatID
}

// Repo is an in-memory implementation of miqaatmemberrepo.Repository.
// It reads the member set from a member repository when enrolling a jamaat.
// It is safe for concurrent use.
type Repo struct {
	members memberrepo.Repository

	mu sync.RWMutex
	m  map[key]domain.ApprovalStatus
}

func NewRepo(members memberrepo.Repository) *Repo {
	return &Repo{
		members: members,
		m:       make(map[key]domain.ApprovalStatus),
	}
}

func (r *Repo) EnrollJamaat(ctx context.Context, miqaatID domain.MiqaatID, jamaat string) (int, error) {
	active, err := r.members.List(ctx, false)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	added := 0
	for _, m := range active {
		if m.Jamaat == nil || *m.Jamaat != jamaat {
			continue
		}
		k := key{memberID: m.ID, miqaatID: miqaatID}
		if _, ok := r.m[k]; ok {
			continue
		}
		r.m[k] = domain.ApprovalPending
		added++
	}
	return added, nil
}

func (r *Repo) Get(ctx context.Context, memberID domain.MemberID, miqaatID domain.MiqaatID) (miqaatmemberrepo.Row, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.m[key{memberID: memberID, miqaatID: miqaatID}]
	if !ok {
		return miqaatmemberrepo.Row{}, miqaatmemberrepo.ErrNotFound
	}
	return miqaatmemberrepo.Row{MemberID: memberID, MiqaatID: miqaatID, Status: st}, nil
}

func (r *Repo) SetStatus(ctx context.Context, memberID domain.MemberID, miqaatID domain.MiqaatID, status domain.ApprovalStatus) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{memberID: memberID, miqaatID: miqaatID}
	if _, ok := r.m[k]; !ok {
		return miqaatmemberrepo.ErrNotFound
	}
	r.m[k] = status
	return nil
}

func (r *Repo) ListByMiqaat(ctx context.Context, miqaatID domain.MiqaatID) ([]miqaatmemberrepo.Row, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]miqaatmemberrepo.Row, 0)
	for k, st := range r.m {
		if k.miqaatID == miqaatID {
			out = append(out, miqaatmemberrepo.Row{MemberID: k.memberID, MiqaatID: k.miqaatID, Status: st})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

// MiqaatIDsForMember lists the events a member is tracked on. The in-memory event repository uses
// it to answer ListForMember.
func (r *Repo) MiqaatIDsForMember(ctx context.Context, memberID domain.MemberID) ([]domain.MiqaatID, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MiqaatID, 0)
	for k := range r.m {
		if k.memberID == memberID {
			out = append(out, k.miqaatID)
		}
	}
	return out, nil
}

// DeleteByMiqaat drops every row for the event, mirroring ON DELETE CASCADE.
func (r *Repo) DeleteByMiqaat(ctx context.Context, miqaatID domain.MiqaatID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.m {
		if k.miqaatID == miqaatID {
			delete(r.m, k)
		}
	}
	return nil
}
