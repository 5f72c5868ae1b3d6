package contracttest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
	captainrepoport "github.com/burhani-guards/guards-api/internal/ports/out/captainrepo"
	memberrepoport "github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
	miqaatmemberrepoport "github.com/burhani-guards/guards-api/internal/ports/out/miqaatmemberrepo"
	miqaatrepoport "github.com/burhani-guards/guards-api/internal/ports/out/miqaatrepo"
	snapshotrepoport "github.com/burhani-guards/guards-api/internal/ports/out/snapshotrepo"
)

type CleanupFunc = func()

// Repos is one linked set of repositories sharing a backing store, so that cross-table behavior
// (jamaat enrollment, cascades) can be exercised.
type Repos struct {
	Members       memberrepoport.Repository
	Captains      captainrepoport.Repository
	Miqaats       miqaatrepoport.Repository
	MiqaatMembers miqaatmemberrepoport.Repository
	Snapshots     snapshotrepoport.Repository
}

type ReposFactory func(t *testing.T) (Repos, CleanupFunc)

func open(t *testing.T, newRepos ReposFactory) Repos {
	t.Helper()
	r, cleanup := newRepos(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	return r
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// seedMember inserts an active or inactive member of the given jamaat.
func seedMember(t *testing.T, repo memberrepoport.Repository, its, name, jamaat string, active bool) domain.MemberID {
	t.Helper()
	now := time.Unix(1000, 0).UTC()
	id, err := repo.Create(context.Background(), memberrepoport.Member{
		ITSID:     its,
		FullName:  name,
		Email:     its + "@example.com",
		Rank:      "Member",
		Roles:     intPtr(int(domain.RoleMember)),
		Jamiyat:   strPtr("Poona"),
		Jamaat:    strPtr(jamaat),
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed member %s: %v", its, err)
	}
	return id
}

func seedMiqaat(t *testing.T, repo miqaatrepoport.Repository, name, jamaat, captain string, from time.Time) domain.MiqaatID {
	t.Helper()
	now := time.Unix(2000, 0).UTC()
	id, err := repo.Create(context.Background(), miqaatrepoport.Miqaat{
		Name:           name,
		Jamaat:         jamaat,
		Jamiyat:        "Poona",
		FromDate:       from,
		TillDate:       from.AddDate(0, 0, 1),
		VolunteerLimit: 10,
		AdminApproval:  domain.ApprovalPending,
		CaptainName:    captain,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("seed miqaat %s: %v", name, err)
	}
	return id
}

func RunMemberRepo(t *testing.T, newRepos ReposFactory) {
	t.Helper()
	ctx := context.Background()
	repo := open(t, newRepos).Members

	now := time.Unix(1000, 0).UTC()
	aID, err := repo.Create(ctx, memberrepoport.Member{
		ITSID:        "40000001",
		FullName:     "Alice Johnson",
		Email:        "alice@example.com",
		Rank:         "Captain",
		Roles:        intPtr(int(domain.RoleCaptain)),
		Jamiyat:      strPtr("Poona"),
		Jamaat:       strPtr("POONA"),
		Gender:       strPtr("F"),
		Age:          intPtr(31),
		Contact:      strPtr("555-0101"),
		PasswordHash: strPtr("seed-hash"),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if aID == 0 {
		t.Fatalf("expected generated id")
	}

	got, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ITSID != "40000001" || got.FullName != "Alice Johnson" || got.Roles == nil || *got.Roles != int(domain.RoleCaptain) {
		t.Fatalf("unexpected member: %#v", got)
	}
	if got.Age == nil || *got.Age != 31 || got.Contact == nil || *got.Contact != "555-0101" {
		t.Fatalf("unexpected optional fields: %#v", got)
	}
	if got.PasswordHash == nil || *got.PasswordHash != "seed-hash" || got.NewPasswordHash != nil {
		t.Fatalf("unexpected hashes: %v %v", got.PasswordHash, got.NewPasswordHash)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt=%v want %v", got.CreatedAt, now)
	}
	if _, err := repo.GetByITSID(ctx, "40000001"); err != nil {
		t.Fatalf("GetByITSID: %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "alice@example.com"); err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if _, err := repo.GetByID(ctx, aID+1000); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing err=%v, want ErrNotFound", err)
	}
	if _, err := repo.GetByITSID(ctx, "nope"); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("GetByITSID missing err=%v, want ErrNotFound", err)
	}

	// ITS id and email uniqueness.
	if _, err := repo.Create(ctx, memberrepoport.Member{
		ITSID: "40000001", FullName: "Dup", Email: "other@example.com", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}); !errors.Is(err, memberrepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate ITS err=%v, want ErrAlreadyExists", err)
	}
	if _, err := repo.Create(ctx, memberrepoport.Member{
		ITSID: "40000099", FullName: "Dup", Email: "alice@example.com", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}); !errors.Is(err, memberrepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate email err=%v, want ErrAlreadyExists", err)
	}

	// Update overwrites profile columns but never the hashes.
	got.FullName = "Alice J"
	got.Contact = nil
	got.PasswordHash = nil
	got.UpdatedAt = now.Add(time.Hour)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	upd, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if upd.FullName != "Alice J" || upd.Contact != nil {
		t.Fatalf("update not applied: %#v", upd)
	}
	if upd.PasswordHash == nil || *upd.PasswordHash != "seed-hash" {
		t.Fatalf("Update touched PasswordHash: %v", upd.PasswordHash)
	}
	if err := repo.Update(ctx, memberrepoport.Member{ID: aID + 1000, ITSID: "x", Email: "x@example.com"}); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("Update missing err=%v, want ErrNotFound", err)
	}

	if err := repo.SetNewPasswordHash(ctx, aID, "user-hash", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("SetNewPasswordHash: %v", err)
	}
	withNew, _ := repo.GetByID(ctx, aID)
	if withNew.NewPasswordHash == nil || *withNew.NewPasswordHash != "user-hash" {
		t.Fatalf("NewPasswordHash=%v", withNew.NewPasswordHash)
	}
	if err := repo.SetNewPasswordHash(ctx, aID+1000, "h", now); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("SetNewPasswordHash missing err=%v, want ErrNotFound", err)
	}

	// Deterministic list ordering by fullName (case-insensitive), inactive filtered.
	seedMember(t, repo, "40000002", "bob", "KHADKI (POONA)", true)
	seedMember(t, repo, "40000003", "Carol", "POONA", false)
	all, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].FullName != "Alice J" || all[1].FullName != "bob" {
		t.Fatalf("unexpected ordering: %#v", all)
	}
	active, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active=%d want 2", len(active))
	}

	counts, err := repo.CountByJamiyatJamaat(ctx)
	if err != nil {
		t.Fatalf("CountByJamiyatJamaat: %v", err)
	}
	if len(counts.Jamiyats) != 1 || counts.Jamiyats[0] != (domain.GroupCount{Name: "Poona", Count: 2}) {
		t.Fatalf("jamiyats=%#v", counts.Jamiyats)
	}
	if len(counts.Jamaats) != 2 ||
		counts.Jamaats[0] != (domain.GroupCount{Name: "KHADKI (POONA)", Count: 1}) ||
		counts.Jamaats[1] != (domain.GroupCount{Name: "POONA", Count: 1}) {
		t.Fatalf("jamaats=%#v", counts.Jamaats)
	}
}

func RunCaptainRepo(t *testing.T, newRepos ReposFactory) {
	t.Helper()
	ctx := context.Background()
	repo := open(t, newRepos).Captains

	now := time.Unix(1000, 0).UTC()
	id, err := repo.Upsert(ctx, captainrepoport.Captain{
		ITSID:        "30375370",
		FullName:     "Captain One",
		Email:        "captain@example.com",
		PasswordHash: strPtr("seed-1"),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.SetNewPasswordHash(ctx, id, "user-hash", now); err != nil {
		t.Fatalf("SetNewPasswordHash: %v", err)
	}

	// Re-seeding overwrites name and the seeded hash but keeps the user's password.
	id2, err := repo.Upsert(ctx, captainrepoport.Captain{
		ITSID:        "30375370",
		FullName:     "Captain Renamed",
		Email:        "captain@example.com",
		PasswordHash: strPtr("seed-2"),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if id2 != id {
		t.Fatalf("Upsert id=%d want %d", id2, id)
	}
	got, err := repo.GetByITSID(ctx, "30375370")
	if err != nil {
		t.Fatalf("GetByITSID: %v", err)
	}
	if got.FullName != "Captain Renamed" || got.PasswordHash == nil || *got.PasswordHash != "seed-2" {
		t.Fatalf("unexpected captain: %#v", got)
	}
	if got.NewPasswordHash == nil || *got.NewPasswordHash != "user-hash" {
		t.Fatalf("NewPasswordHash=%v want user-hash", got.NewPasswordHash)
	}
	if _, err := repo.GetByITSID(ctx, "1"); !errors.Is(err, captainrepoport.ErrNotFound) {
		t.Fatalf("GetByITSID missing err=%v, want ErrNotFound", err)
	}
}

func RunMiqaatRepo(t *testing.T, newRepos ReposFactory) {
	t.Helper()
	ctx := context.Background()
	repos := open(t, newRepos)
	repo := repos.Miqaats

	d1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	about := "Ashara duty"
	now := time.Unix(2000, 0).UTC()
	e1, err := repo.Create(ctx, miqaatrepoport.Miqaat{
		Name:           "Ashara",
		Jamaat:         "POONA",
		Jamiyat:        "Poona",
		FromDate:       d1,
		TillDate:       d1.AddDate(0, 0, 9),
		VolunteerLimit: 40,
		About:          &about,
		AdminApproval:  domain.ApprovalPending,
		CaptainName:    "Captain One",
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(ctx, e1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Ashara" || got.AdminApproval != domain.ApprovalPending || got.CaptainName != "Captain One" {
		t.Fatalf("unexpected miqaat: %#v", got)
	}
	if !got.FromDate.Equal(d1) || !got.TillDate.Equal(d1.AddDate(0, 0, 9)) {
		t.Fatalf("dates=%v..%v", got.FromDate, got.TillDate)
	}
	if got.About == nil || *got.About != about || got.VolunteerLimit != 40 {
		t.Fatalf("unexpected fields: %#v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt=%v want %v", got.CreatedAt, now)
	}

	e2 := seedMiqaat(t, repo, "Urs", "KHADKI (POONA)", "Captain Two", d2)

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != e2 || list[1].ID != e1 {
		t.Fatalf("unexpected ordering: %#v", list)
	}
	mine, err := repo.ListByCaptainName(ctx, "Captain One")
	if err != nil {
		t.Fatalf("ListByCaptainName: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != e1 {
		t.Fatalf("ListByCaptainName=%#v", mine)
	}

	// Save is a full overwrite.
	got.Name = "Ashara 1447"
	got.About = nil
	got.UpdatedAt = now.Add(time.Hour)
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, _ := repo.GetByID(ctx, e1)
	if saved.Name != "Ashara 1447" || saved.About != nil || !saved.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected saved: %#v", saved)
	}
	if err := repo.Save(ctx, miqaatrepoport.Miqaat{ID: e2 + 1000}); !errors.Is(err, miqaatrepoport.ErrNotFound) {
		t.Fatalf("Save missing err=%v, want ErrNotFound", err)
	}

	if err := repo.SetApproval(ctx, e1, domain.ApprovalRejected, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("SetApproval: %v", err)
	}
	rej, _ := repo.GetByID(ctx, e1)
	if rej.AdminApproval != domain.ApprovalRejected || rej.Name != "Ashara 1447" {
		t.Fatalf("SetApproval changed more than approval: %#v", rej)
	}
	if err := repo.SetApproval(ctx, e2+1000, domain.ApprovalApproved, now); !errors.Is(err, miqaatrepoport.ErrNotFound) {
		t.Fatalf("SetApproval missing err=%v, want ErrNotFound", err)
	}

	// ListForMember follows miqaat_members; Delete cascades.
	m1 := seedMember(t, repos.Members, "40000011", "M1", "POONA", true)
	if _, err := repos.MiqaatMembers.EnrollJamaat(ctx, e1, "POONA"); err != nil {
		t.Fatalf("EnrollJamaat: %v", err)
	}
	forMember, err := repo.ListForMember(ctx, m1)
	if err != nil {
		t.Fatalf("ListForMember: %v", err)
	}
	if len(forMember) != 1 || forMember[0].ID != e1 {
		t.Fatalf("ListForMember=%#v", forMember)
	}

	if err := repo.Delete(ctx, e1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, e1); !errors.Is(err, miqaatrepoport.ErrNotFound) {
		t.Fatalf("GetByID after delete err=%v, want ErrNotFound", err)
	}
	if _, err := repos.MiqaatMembers.Get(ctx, m1, e1); !errors.Is(err, miqaatmemberrepoport.ErrNotFound) {
		t.Fatalf("miqaat member row survived delete: err=%v", err)
	}
	if err := repo.Delete(ctx, e1); !errors.Is(err, miqaatrepoport.ErrNotFound) {
		t.Fatalf("Delete missing err=%v, want ErrNotFound", err)
	}

	t.Run("lists follow creation order", func(t *testing.T) {
		runMiqaatCreationOrder(t, newRepos)
	})
}

// runMiqaatCreationOrder lists the most recently created event first, whatever its dates.
func runMiqaatCreationOrder(t *testing.T, newRepos ReposFactory) {
	t.Helper()
	ctx := context.Background()
	repo := open(t, newRepos).Miqaats

	create := func(name string, from, created time.Time) domain.MiqaatID {
		id, err := repo.Create(ctx, miqaatrepoport.Miqaat{
			Name:          name,
			Jamaat:        "POONA",
			Jamiyat:       "Poona",
			FromDate:      from,
			TillDate:      from,
			AdminApproval: domain.ApprovalPending,
			CaptainName:   "Captain One",
			CreatedAt:     created,
			UpdatedAt:     created,
		})
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
		return id
	}
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	older := create("Older", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), base)
	newer := create("Newer", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), base.Add(1500*time.Millisecond))

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer || list[1].ID != older {
		t.Fatalf("unexpected ordering: %#v", list)
	}
}

func RunMiqaatMemberRepo(t *testing.T, newRepos ReposFactory) {
	t.Helper()
	ctx := context.Background()
	repos := open(t, newRepos)
	repo := repos.MiqaatMembers

	m1 := seedMember(t, repos.Members, "40000021", "M1", "POONA", true)
	m2 := seedMember(t, repos.Members, "40000022", "M2", "POONA", true)
	inactive := seedMember(t, repos.Members, "40000023", "Gone", "POONA", false)
	other := seedMember(t, repos.Members, "40000024", "Elsewhere", "KHADKI (POONA)", true)

	e1 := seedMiqaat(t, repos.Miqaats, "E1", "POONA", "Captain One", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	added, err := repo.EnrollJamaat(ctx, e1, "POONA")
	if err != nil {
		t.Fatalf("EnrollJamaat: %v", err)
	}
	if added != 2 {
		t.Fatalf("added=%d want 2", added)
	}
	rows, err := repo.ListByMiqaat(ctx, e1)
	if err != nil {
		t.Fatalf("ListByMiqaat: %v", err)
	}
	if len(rows) != 2 || rows[0].MemberID != m1 || rows[1].MemberID != m2 {
		t.Fatalf("rows=%#v", rows)
	}
	for _, r := range rows {
		if r.Status != domain.ApprovalPending {
			t.Fatalf("status=%q want Pending", r.Status)
		}
	}
	for _, id := range []domain.MemberID{inactive, other} {
		if _, err := repo.Get(ctx, id, e1); !errors.Is(err, miqaatmemberrepoport.ErrNotFound) {
			t.Fatalf("member %d enrolled unexpectedly: err=%v", id, err)
		}
	}

	// An answered status survives re-enrollment, and nothing is duplicated.
	if err := repo.SetStatus(ctx, m1, e1, domain.ApprovalApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	added, err = repo.EnrollJamaat(ctx, e1, "POONA")
	if err != nil {
		t.Fatalf("EnrollJamaat again: %v", err)
	}
	if added != 0 {
		t.Fatalf("second enroll added=%d want 0", added)
	}
	got, err := repo.Get(ctx, m1, e1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.ApprovalApproved {
		t.Fatalf("status reset to %q", got.Status)
	}
	rows, _ = repo.ListByMiqaat(ctx, e1)
	if len(rows) != 2 {
		t.Fatalf("rows after re-enroll=%d want 2", len(rows))
	}

	// Newly qualifying members are picked up on the next enrollment.
	m3 := seedMember(t, repos.Members, "40000025", "M3", "POONA", true)
	added, err = repo.EnrollJamaat(ctx, e1, "POONA")
	if err != nil || added != 1 {
		t.Fatalf("third enroll added=%d err=%v, want 1", added, err)
	}
	if _, err := repo.Get(ctx, m3, e1); err != nil {
		t.Fatalf("Get m3: %v", err)
	}

	if err := repo.SetStatus(ctx, other, e1, domain.ApprovalRejected); !errors.Is(err, miqaatmemberrepoport.ErrNotFound) {
		t.Fatalf("SetStatus untracked err=%v, want ErrNotFound", err)
	}

	t.Run("concurrent enrollment", func(t *testing.T) {
		runConcurrentEnroll(t, newRepos)
	})
}

// runConcurrentEnroll races several approvals of the same event. Every qualifying member ends up
// with exactly one row and the reported counts add up to the rows inserted.
func runConcurrentEnroll(t *testing.T, newRepos ReposFactory) {
	t.Helper()
	ctx := context.Background()
	repos := open(t, newRepos)

	const members, workers = 12, 8
	for i := 0; i < members; i++ {
		seedMember(t, repos.Members, fmt.Sprintf("4100%04d", i), fmt.Sprintf("Racer %02d", i), "POONA", true)
	}
	e1 := seedMiqaat(t, repos.Miqaats, "Race", "POONA", "Captain One", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
		errs  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := repos.MiqaatMembers.EnrollJamaat(ctx, e1, "POONA")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			total += added
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("EnrollJamaat errs=%v", errs)
	}
	rows, err := repos.MiqaatMembers.ListByMiqaat(ctx, e1)
	if err != nil {
		t.Fatalf("ListByMiqaat: %v", err)
	}
	if len(rows) != members {
		t.Fatalf("rows=%d want %d", len(rows), members)
	}
	seen := map[domain.MemberID]bool{}
	for _, r := range rows {
		if seen[r.MemberID] {
			t.Fatalf("member %d enrolled twice", r.MemberID)
		}
		seen[r.MemberID] = true
	}
	if total != members {
		t.Fatalf("added counts sum to %d, want %d", total, members)
	}
}

func RunSnapshotRepo(t *testing.T, newRepos ReposFactory) {
	t.Helper()
	ctx := context.Background()
	repo := open(t, newRepos).Snapshots

	t1 := time.Unix(3000, 0).UTC()
	if err := repo.Upsert(ctx, snapshotrepoport.Snapshot{
		Email: "alice@example.com", DisplayName: "Alice", Role: "member", LastLogin: t1,
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	t2 := t1.Add(time.Hour)
	if err := repo.Upsert(ctx, snapshotrepoport.Snapshot{
		Email: "alice@example.com", DisplayName: "Alice B", Role: "captain", LastLogin: t2,
	}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	got, err := repo.Get(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DisplayName != "Alice B" || got.Role != "captain" || !got.LastLogin.Equal(t2) {
		t.Fatalf("unexpected snapshot: %#v", got)
	}
	if _, err := repo.Get(ctx, "nobody@example.com"); !errors.Is(err, snapshotrepoport.ErrNotFound) {
		t.Fatalf("Get missing err=%v, want ErrNotFound", err)
	}
}
