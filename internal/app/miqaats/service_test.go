package miqaats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/burhani-guards/guards-api/internal/adapters/memory"
	memclock "github.com/burhani-guards/guards-api/internal/adapters/memory/clock"
	"github.com/burhani-guards/guards-api/internal/app/apperr"
	"github.com/burhani-guards/guards-api/internal/app/members"
	"github.com/burhani-guards/guards-api/internal/app/miqaats"
	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/platform/logging"
	"github.com/burhani-guards/guards-api/internal/platform/password"
	portmemberrepo "github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
)

var (
	captain = domain.Identity{Kind: domain.IdentityCaptain, ID: 1, ITSID: "30375370", FullName: "Captain Saheb", Role: domain.RoleCaptain}
	admin   = domain.Identity{Kind: domain.IdentityMember, ID: 99, FullName: "Admin", Role: domain.RoleResourceAdmin}
)

type rowCounter struct{ n int }

func (c *rowCounter) AddFanOutRows(n int) { c.n += n }

type fixture struct {
	svc    *miqaats.Service
	stores *memory.Stores
	clk    *memclock.ManualClock
	rows   *rowCounter
}

func newFixture(t *testing.T, opts ...miqaats.Option) *fixture {
	t.Helper()
	f := &fixture{
		stores: memory.NewStores(),
		clk:    memclock.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		rows:   &rowCounter{},
	}
	opts = append([]miqaats.Option{miqaats.WithRecorder(f.rows), miqaats.WithLogger(logging.Discard())}, opts...)
	f.svc = miqaats.NewService(miqaats.Deps{
		Miqaats:       f.stores.Miqaats,
		MiqaatMembers: f.stores.MiqaatMembers,
		Clock:         f.clk,
	}, opts...)
	return f
}

func strPtr(s string) *string { return &s }

func (f *fixture) member(t *testing.T, its, jamaat string, active bool) domain.MemberID {
	t.Helper()
	id, err := f.stores.Members.Create(context.Background(), portmemberrepo.Member{
		ITSID:     its,
		FullName:  "Member " + its,
		Email:     its + "@example.com",
		Jamiyat:   strPtr("Poona"),
		Jamaat:    strPtr(jamaat),
		IsActive:  active,
		CreatedAt: f.clk.Now(),
		UpdatedAt: f.clk.Now(),
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return id
}

func input(jamaat string) miqaats.Input {
	return miqaats.Input{
		Name:           "  Urs   Mubarak ",
		Jamaat:         jamaat,
		Jamiyat:        "Poona",
		FromDate:       time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC),
		TillDate:       time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		VolunteerLimit: 25,
	}
}

func (f *fixture) create(t *testing.T, jamaat string) domain.Miqaat {
	t.Helper()
	m, err := f.svc.Create(context.Background(), captain, input(jamaat))
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	return m
}

func requireKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != want {
		t.Fatalf("err=%v (type=%T), want kind %v", err, err, want)
	}
}

func statuses(t *testing.T, f *fixture, id domain.MiqaatID) map[domain.MemberID]domain.ApprovalStatus {
	t.Helper()
	rows, err := f.svc.ListMemberStatuses(context.Background(), id)
	if err != nil {
		t.Fatalf("ListMemberStatuses err=%v", err)
	}
	out := map[domain.MemberID]domain.ApprovalStatus{}
	for _, r := range rows {
		out[r.MemberID] = r.Status
	}
	return out
}

func TestCreate_NonCaptainRejectedBeforeWrite(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, actor := range []domain.Identity{admin, {Kind: domain.IdentityMember, ID: 2, Role: domain.RoleMember}} {
		_, err := f.svc.Create(context.Background(), actor, input("POONA"))
		requireKind(t, err, apperr.KindAccessDenied)
	}
	all, err := f.svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll err=%v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no events, got %d", len(all))
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	created := f.create(t, "POONA")
	got, err := f.svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID err=%v", err)
	}
	if got.AdminApproval != domain.ApprovalPending {
		t.Fatalf("adminApproval=%q", got.AdminApproval)
	}
	if got.CaptainName != "Captain Saheb" {
		t.Fatalf("captainName=%q", got.CaptainName)
	}
	if got.Name != "Urs Mubarak" {
		t.Fatalf("name=%q", got.Name)
	}
	if !got.FromDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("fromDate=%v, want truncated to the day", got.FromDate)
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	cases := map[string]func(*miqaats.Input){
		"blank name":     func(in *miqaats.Input) { in.Name = "  " },
		"blank jamaat":   func(in *miqaats.Input) { in.Jamaat = "" },
		"blank jamiyat":  func(in *miqaats.Input) { in.Jamiyat = "" },
		"missing dates":  func(in *miqaats.Input) { in.FromDate = time.Time{} },
		"till < from":    func(in *miqaats.Input) { in.TillDate = in.FromDate.AddDate(0, 0, -1) },
		"negative limit": func(in *miqaats.Input) { in.VolunteerLimit = -1 },
	}
	for name, mutate := range cases {
		in := input("POONA")
		mutate(&in)
		_, err := f.svc.Create(context.Background(), captain, in)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("%s: err=%v", name, err)
		}
	}

	// Same calendar day is a valid single-day event.
	in := input("POONA")
	in.TillDate = time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	if _, err := f.svc.Create(context.Background(), captain, in); err != nil {
		t.Fatalf("single-day Create err=%v", err)
	}
}

func TestApproval_FansOutToActiveJamaatMembers(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	m1 := f.member(t, "1", "POONA", true)
	m2 := f.member(t, "2", "POONA", true)
	f.member(t, "3", "POONA", false)
	f.member(t, "4", "KHADKI", true)

	e1 := f.create(t, "POONA")
	got, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved")
	if err != nil {
		t.Fatalf("UpdateApprovalStatus err=%v", err)
	}
	if got.AdminApproval != domain.ApprovalApproved {
		t.Fatalf("adminApproval=%q", got.AdminApproval)
	}

	rows := statuses(t, f, e1.ID)
	if len(rows) != 2 || rows[m1] != domain.ApprovalPending || rows[m2] != domain.ApprovalPending {
		t.Fatalf("rows=%v", rows)
	}
	if f.rows.n != 2 {
		t.Fatalf("recorded rows=%d", f.rows.n)
	}
}

func TestApproval_ReapprovalKeepsAnsweredStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	m1 := f.member(t, "1", "POONA", true)
	e1 := f.create(t, "POONA")

	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("approve err=%v", err)
	}
	if err := f.svc.UpdateMemberMiqaatStatus(context.Background(), m1, e1.ID, "Approved"); err != nil {
		t.Fatalf("UpdateMemberMiqaatStatus err=%v", err)
	}
	before := statuses(t, f, e1.ID)

	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("re-approve err=%v", err)
	}
	after := statuses(t, f, e1.ID)
	if len(after) != len(before) || after[m1] != domain.ApprovalApproved {
		t.Fatalf("before=%v after=%v", before, after)
	}
	if f.rows.n != 1 {
		t.Fatalf("re-approval inserted rows: total=%d", f.rows.n)
	}
}

func TestApproval_ReapprovalPicksUpNewMembers(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.member(t, "1", "POONA", true)
	e1 := f.create(t, "POONA")
	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("approve err=%v", err)
	}

	late := f.member(t, "2", "POONA", true)
	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("re-approve err=%v", err)
	}
	if rows := statuses(t, f, e1.ID); rows[late] != domain.ApprovalPending || len(rows) != 2 {
		t.Fatalf("rows=%v", rows)
	}
}

func TestApproval_RejectedAndPendingDoNotFanOut(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.member(t, "1", "POONA", true)
	e1 := f.create(t, "POONA")

	for _, st := range []string{"Rejected", "Pending"} {
		if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, st); err != nil {
			t.Fatalf("%s err=%v", st, err)
		}
	}
	if rows := statuses(t, f, e1.ID); len(rows) != 0 {
		t.Fatalf("rows=%v", rows)
	}

	_, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "approved")
	requireKind(t, err, apperr.KindValidation)
	_, err = f.svc.UpdateApprovalStatus(context.Background(), 404, "Approved")
	requireKind(t, err, apperr.KindNotFound)
}

func TestUpdate_OverwritesAndFansOutOnApproved(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	m1 := f.member(t, "1", "KHADKI", true)
	e1 := f.create(t, "POONA")

	in := input("KHADKI")
	in.Name = "Ashara"
	in.About = strPtr("  evening duty ")
	f.clk.Advance(time.Hour)
	got, err := f.svc.Update(context.Background(), e1.ID, in)
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if got.Name != "Ashara" || got.Jamaat != "KHADKI" || got.About == nil || *got.About != "evening duty" {
		t.Fatalf("got=%+v", got)
	}
	if got.AdminApproval != domain.ApprovalPending || got.CaptainName != "Captain Saheb" {
		t.Fatalf("approval/captain changed without being supplied: %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("updatedAt=%v createdAt=%v", got.UpdatedAt, got.CreatedAt)
	}
	if rows := statuses(t, f, e1.ID); len(rows) != 0 {
		t.Fatalf("fan-out ran without approval: %v", rows)
	}

	in.AdminApproval = strPtr("Approved")
	if _, err := f.svc.Update(context.Background(), e1.ID, in); err != nil {
		t.Fatalf("Update(Approved) err=%v", err)
	}
	if rows := statuses(t, f, e1.ID); rows[m1] != domain.ApprovalPending {
		t.Fatalf("rows=%v", rows)
	}
}

func TestUpdate_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	e1 := f.create(t, "POONA")

	bad := input("POONA")
	bad.AdminApproval = strPtr("Maybe")
	_, err := f.svc.Update(context.Background(), e1.ID, bad)
	requireKind(t, err, apperr.KindValidation)

	got, _ := f.svc.GetByID(context.Background(), e1.ID)
	if got.Name != e1.Name {
		t.Fatalf("rejected update was written: %+v", got)
	}

	_, err = f.svc.Update(context.Background(), 12345, input("POONA"))
	requireKind(t, err, apperr.KindNotFound)
}

func TestUpdate_BlankApprovalKeepsCurrent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	m1 := f.member(t, "1", "POONA", true)
	e1 := f.create(t, "POONA")
	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("UpdateApprovalStatus err=%v", err)
	}

	for _, blank := range []string{"", "   "} {
		in := input("POONA")
		in.Name = "Renamed"
		in.AdminApproval = strPtr(blank)
		got, err := f.svc.Update(context.Background(), e1.ID, in)
		if err != nil {
			t.Fatalf("Update(approval=%q) err=%v", blank, err)
		}
		if got.AdminApproval != domain.ApprovalApproved || got.Name != "Renamed" {
			t.Fatalf("Update(approval=%q)=%+v", blank, got)
		}
	}
	if rows := statuses(t, f, e1.ID); len(rows) != 1 || rows[m1] != domain.ApprovalPending {
		t.Fatalf("rows=%v", rows)
	}
}

func TestApproval_JamaatCodeMatchesMemberJamaat(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	msvc := members.NewService(members.Deps{
		Members: f.stores.Members,
		Hasher:  password.NewBcrypt(4),
		Clock:   f.clk,
	}, members.WithLogger(logging.Discard()))

	code := "11"
	added, err := msvc.Add(context.Background(), members.AddInput{
		ITSID:    "501",
		FullName: "Coded Member",
		Email:    "coded@example.com",
		Jamaat:   &code,
	})
	if err != nil {
		t.Fatalf("Add err=%v", err)
	}

	e1 := f.create(t, "11")
	if e1.Jamaat != "POONA" {
		t.Fatalf("jamaat=%q, want the catalogue name", e1.Jamaat)
	}
	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("UpdateApprovalStatus err=%v", err)
	}
	if rows := statuses(t, f, e1.ID); len(rows) != 1 || rows[added.ID] != domain.ApprovalPending {
		t.Fatalf("rows=%v, want member %d enrolled", rows, added.ID)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	m1 := f.member(t, "1", "POONA", true)
	e1 := f.create(t, "POONA")
	e2 := f.create(t, "POONA")
	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("approve err=%v", err)
	}

	err := f.svc.Delete(context.Background(), 777)
	requireKind(t, err, apperr.KindNotFound)
	if all, _ := f.svc.GetAll(context.Background()); len(all) != 2 {
		t.Fatalf("delete of a missing id changed state: %d events", len(all))
	}

	if err := f.svc.Delete(context.Background(), e1.ID); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	_, err = f.svc.GetByID(context.Background(), e1.ID)
	requireKind(t, err, apperr.KindNotFound)

	mine, err := f.svc.GetMiqaatsForCurrentUser(context.Background(), m1, domain.RoleMember, "")
	if err != nil {
		t.Fatalf("GetMiqaatsForCurrentUser err=%v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("member rows survived delete: %+v", mine)
	}
	if _, err := f.svc.GetByID(context.Background(), e2.ID); err != nil {
		t.Fatalf("unrelated event removed: %v", err)
	}
}

func TestGetMiqaatsForCurrentUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	m1 := f.member(t, "1", "POONA", true)
	other := domain.Identity{Kind: domain.IdentityCaptain, ID: 2, FullName: "Other Captain", Role: domain.RoleCaptain}

	// e1 is created first but starts later; lists follow creation order.
	early := input("POONA")
	early.FromDate = early.FromDate.AddDate(0, 1, 0)
	early.TillDate = early.TillDate.AddDate(0, 1, 0)
	e1, err := f.svc.Create(context.Background(), captain, early)
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	f.clk.Advance(time.Minute)
	e2, err := f.svc.Create(context.Background(), captain, input("POONA"))
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if _, err := f.svc.Create(context.Background(), other, input("POONA")); err != nil {
		t.Fatalf("Create err=%v", err)
	}

	mine, err := f.svc.GetMiqaatsForCurrentUser(context.Background(), 0, domain.RoleCaptain, captain.FullName)
	if err != nil {
		t.Fatalf("captain list err=%v", err)
	}
	if len(mine) != 2 || mine[0].ID != e2.ID || mine[1].ID != e1.ID {
		t.Fatalf("captain list=%+v, want most recently created first", mine)
	}

	tracked, err := f.svc.GetMiqaatsForCurrentUser(context.Background(), m1, domain.RoleMember, "")
	if err != nil {
		t.Fatalf("member list err=%v", err)
	}
	if len(tracked) != 0 {
		t.Fatalf("member tracked before approval: %+v", tracked)
	}
	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("approve err=%v", err)
	}
	tracked, _ = f.svc.GetMiqaatsForCurrentUser(context.Background(), m1, domain.RoleMember, "")
	if len(tracked) != 1 || tracked[0].ID != e1.ID {
		t.Fatalf("member list=%+v", tracked)
	}
}

func TestUpdateMemberMiqaatStatus_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	m1 := f.member(t, "1", "POONA", true)
	e1 := f.create(t, "POONA")

	err := f.svc.UpdateMemberMiqaatStatus(context.Background(), m1, e1.ID, "Approved")
	requireKind(t, err, apperr.KindNotFound)

	if _, err := f.svc.UpdateApprovalStatus(context.Background(), e1.ID, "Approved"); err != nil {
		t.Fatalf("approve err=%v", err)
	}
	err = f.svc.UpdateMemberMiqaatStatus(context.Background(), m1, e1.ID, "Yes")
	requireKind(t, err, apperr.KindValidation)
	if rows := statuses(t, f, e1.ID); rows[m1] != domain.ApprovalPending {
		t.Fatalf("invalid status written: %v", rows)
	}

	if err := f.svc.UpdateMemberMiqaatStatus(context.Background(), m1, e1.ID, "Rejected"); err != nil {
		t.Fatalf("UpdateMemberMiqaatStatus err=%v", err)
	}
	// The member's answer is independent of the event's own approval.
	got, _ := f.svc.GetByID(context.Background(), e1.ID)
	if got.AdminApproval != domain.ApprovalApproved {
		t.Fatalf("adminApproval=%q", got.AdminApproval)
	}
}

func TestDisplayZone_OutputOnly(t *testing.T) {
	t.Parallel()
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}
	f := newFixture(t, miqaats.WithDisplayZone(ist))

	created := f.create(t, "POONA")
	if created.CreatedAt.Location() != ist {
		t.Fatalf("createdAt zone=%v", created.CreatedAt.Location())
	}
	if !created.CreatedAt.Equal(f.clk.Now()) {
		t.Fatalf("createdAt instant changed: %v vs %v", created.CreatedAt, f.clk.Now())
	}

	stored, err := f.stores.Miqaats.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("repo GetByID err=%v", err)
	}
	if stored.CreatedAt.Location() != time.UTC {
		t.Fatalf("stored zone=%v", stored.CreatedAt.Location())
	}
	if created.FromDate.Location() != time.UTC || created.FromDate.Day() != 10 {
		t.Fatalf("fromDate shifted: %v", created.FromDate)
	}
}
