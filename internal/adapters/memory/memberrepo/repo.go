package memberrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
)

// Repo is an in-memory implementation of memberrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	nextID  domain.MemberID
	byID    map[domain.MemberID]memberrepo.Member
	idByITS map[string]domain.MemberID
	idByEml map[string]domain.MemberID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.MemberID]memberrepo.Member),
		idByITS: make(map[string]domain.MemberID),
		idByEml: make(map[string]domain.MemberID),
	}
}

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) (domain.MemberID, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(m.ITSID, m.Email, 0) {
		return 0, memberrepo.ErrAlreadyExists
	}
	r.nextID++
	m.ID = r.nextID
	r.put(m)
	return m.ID, nil
}

func (r *Repo) Update(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[m.ID]
	if !ok {
		return memberrepo.ErrNotFound
	}
	if r.taken(m.ITSID, m.Email, m.ID) {
		return memberrepo.ErrAlreadyExists
	}
	delete(r.idByITS, existing.ITSID)
	delete(r.idByEml, domain.NormalizeEmail(existing.Email))

	// Password hashes are owned by SetNewPasswordHash.
	m.PasswordHash = existing.PasswordHash
	m.NewPasswordHash = existing.NewPasswordHash
	m.CreatedAt = existing.CreatedAt
	r.put(m)
	return nil
}

func (r *Repo) SetNewPasswordHash(ctx context.Context, id domain.MemberID, hash string, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return memberrepo.ErrNotFound
	}
	m.NewPasswordHash = &hash
	m.UpdatedAt = at
	r.byID[id] = cloneMember(m)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return cloneMember(m), nil
}

func (r *Repo) GetByITSID(ctx context.Context, itsID string) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByITS[strings.TrimSpace(itsID)]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return cloneMember(r.byID[id]), nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEml[domain.NormalizeEmail(email)]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return cloneMember(r.byID[id]), nil
}

func (r *Repo) List(ctx context.Context, includeInactive bool) ([]memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]memberrepo.Member, 0, len(r.byID))
	for _, m := range r.byID {
		if !includeInactive && !m.IsActive {
			continue
		}
		out = append(out, cloneMember(m))
	}
	sortMembersByFullName(out)
	return out, nil
}

func (r *Repo) CountByJamiyatJamaat(ctx context.Context) (domain.JamiyatJamaatCounts, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	jamiyats := make(map[string]int)
	jamaats := make(map[string]int)
	for _, m := range r.byID {
		if !m.IsActive {
			continue
		}
		if m.Jamiyat != nil && *m.Jamiyat != "" {
			jamiyats[*m.Jamiyat]++
		}
		if m.Jamaat != nil && *m.Jamaat != "" {
			jamaats[*m.Jamaat]++
		}
	}
	return domain.JamiyatJamaatCounts{
		Jamiyats: sortedCounts(jamiyats),
		Jamaats:  sortedCounts(jamaats),
	}, nil
}

// taken reports whether itsID or email belongs to a member other than self. Caller holds mu.
func (r *Repo) taken(itsID, email string, self domain.MemberID) bool {
	if id, ok := r.idByITS[itsID]; ok && id != self {
		return true
	}
	if id, ok := r.idByEml[domain.NormalizeEmail(email)]; ok && id != self {
		return true
	}
	return false
}

// put stores m and its lookup keys. Caller holds mu.
func (r *Repo) put(m memberrepo.Member) {
	r.byID[m.ID] = cloneMember(m)
	r.idByITS[m.ITSID] = m.ID
	r.idByEml[domain.NormalizeEmail(m.Email)] = m.ID
}

func sortedCounts(in map[string]int) []domain.GroupCount {
	out := make([]domain.GroupCount, 0, len(in))
	for name, n := range in {
		out = append(out, domain.GroupCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func cloneMember(m memberrepo.Member) memberrepo.Member {
	out := m
	out.Profile = cloneStringPtr(m.Profile)
	out.Roles = cloneIntPtr(m.Roles)
	out.Jamiyat = cloneStringPtr(m.Jamiyat)
	out.Jamaat = cloneStringPtr(m.Jamaat)
	out.Gender = cloneStringPtr(m.Gender)
	out.Age = cloneIntPtr(m.Age)
	out.Contact = cloneStringPtr(m.Contact)
	out.PasswordHash = cloneStringPtr(m.PasswordHash)
	out.NewPasswordHash = cloneStringPtr(m.NewPasswordHash)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortMembersByFullName(ms []memberrepo.Member) {
	sort.Slice(ms, func(i, j int) bool {
		fi := strings.ToLower(ms[i].FullName)
		fj := strings.ToLower(ms[j].FullName)
		if fi == fj {
			return ms[i].ID < ms[j].ID
		}
		return fi < fj
	})
}
