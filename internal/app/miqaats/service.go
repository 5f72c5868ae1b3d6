// Package miqaats runs the event workflow: creation by a captain, admin approval, and the fan-out of
// per-member tracking rows when an event is approved.
package miqaats

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/burhani-guards/guards-api/internal/app/apperr"
	"github.com/burhani-guards/guards-api/internal/domain"
	clockport "github.com/burhani-guards/guards-api/internal/ports/out/clock"
	"github.com/burhani-guards/guards-api/internal/ports/out/miqaatmemberrepo"
	"github.com/burhani-guards/guards-api/internal/ports/out/miqaatrepo"
)

type Deps struct {
	Miqaats       miqaatrepo.Repository
	MiqaatMembers miqaatmemberrepo.Repository
	Clock         clockport.Clock
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithDisplayZone sets the zone timestamps are rendered in on output. Stored values stay UTC.
func WithDisplayZone(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

type Service struct {
	miqaats miqaatrepo.Repository
	roster  miqaatmemberrepo.Repository
	clk     clockport.Clock

	loc *time.Location
	log *slog.Logger
	rec Recorder
}

func NewService(d Deps, opts ...Option) *Service {
	s := &Service{
		miqaats: d.Miqaats,
		roster:  d.MiqaatMembers,
		clk:     d.Clock,
		loc:     time.UTC,
		log:     slog.Default(),
		rec:     nopRecorder{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create persists a new Pending event authored by actor. Only a Captain may create; the check
// happens before anything is written.
func (s *Service) Create(ctx context.Context, actor domain.Identity, in Input) (domain.Miqaat, error) {
	if actor.Role != domain.RoleCaptain {
		return domain.Miqaat{}, apperr.AccessDenied("only a Captain may create a miqaat")
	}
	m, err := normalizeInput(in)
	if err != nil {
		return domain.Miqaat{}, err
	}

	now := s.clk.Now()
	m.AdminApproval = domain.ApprovalPending
	m.CaptainName = actor.FullName
	m.CreatedAt = now
	m.UpdatedAt = now

	id, err := s.miqaats.Create(ctx, m)
	if err != nil {
		return domain.Miqaat{}, err
	}
	m.ID = id
	s.log.InfoContext(ctx, "miqaat created", "miqaat_id", id, "jamaat", m.Jamaat, "captain", m.CaptainName)
	return s.toDomain(m), nil
}

// Update overwrites the editable fields of an event. A blank approval counts as not supplied.
// When an approval is supplied and it is Approved, the fan-out runs, even if the event was
// already Approved.
func (s *Service) Update(ctx context.Context, id domain.MiqaatID, in Input) (domain.Miqaat, error) {
	var approval *domain.ApprovalStatus
	if in.AdminApproval != nil && strings.TrimSpace(*in.AdminApproval) != "" {
		st, err := parseStatus("adminApproval", *in.AdminApproval)
		if err != nil {
			return domain.Miqaat{}, err
		}
		approval = &st
	}
	next, err := normalizeInput(in)
	if err != nil {
		return domain.Miqaat{}, err
	}

	cur, err := s.miqaats.GetByID(ctx, id)
	if err != nil {
		return domain.Miqaat{}, mapNotFound(err)
	}
	next.ID = cur.ID
	next.CaptainName = cur.CaptainName
	next.CreatedAt = cur.CreatedAt
	next.AdminApproval = cur.AdminApproval
	if approval != nil {
		next.AdminApproval = *approval
	}
	next.UpdatedAt = s.clk.Now()

	if err := s.miqaats.Save(ctx, next); err != nil {
		return domain.Miqaat{}, mapNotFound(err)
	}
	if approval != nil && *approval == domain.ApprovalApproved {
		if err := s.fanOut(ctx, next); err != nil {
			return domain.Miqaat{}, err
		}
	}
	return s.toDomain(next), nil
}

// UpdateApprovalStatus changes only the approval (and updatedAt). Approved triggers the fan-out.
func (s *Service) UpdateApprovalStatus(ctx context.Context, id domain.MiqaatID, status string) (domain.Miqaat, error) {
	st, err := parseStatus("status", status)
	if err != nil {
		return domain.Miqaat{}, err
	}
	if err := s.miqaats.SetApproval(ctx, id, st, s.clk.Now()); err != nil {
		return domain.Miqaat{}, mapNotFound(err)
	}
	m, err := s.miqaats.GetByID(ctx, id)
	if err != nil {
		return domain.Miqaat{}, mapNotFound(err)
	}
	s.log.InfoContext(ctx, "miqaat approval changed", "miqaat_id", id, "status", string(st))
	if st == domain.ApprovalApproved {
		if err := s.fanOut(ctx, m); err != nil {
			return domain.Miqaat{}, err
		}
	}
	return s.toDomain(m), nil
}

// fanOut enrolls every active member of the event's jamaat that is not yet tracked. Existing rows,
// answered or not, are left as they are.
func (s *Service) fanOut(ctx context.Context, m miqaatrepo.Miqaat) error {
	added, err := s.roster.EnrollJamaat(ctx, m.ID, m.Jamaat)
	if err != nil {
		return err
	}
	s.rec.AddFanOutRows(added)
	s.log.InfoContext(ctx, "miqaat members enrolled", "miqaat_id", m.ID, "jamaat", m.Jamaat, "added", added)
	return nil
}

// Delete removes the event and, through the store, its member rows.
func (s *Service) Delete(ctx context.Context, id domain.MiqaatID) error {
	if err := s.miqaats.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}
	s.log.InfoContext(ctx, "miqaat deleted", "miqaat_id", id)
	return nil
}

func (s *Service) GetAll(ctx context.Context) ([]domain.Miqaat, error) {
	ms, err := s.miqaats.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.toDomainList(ms), nil
}

func (s *Service) GetByID(ctx context.Context, id domain.MiqaatID) (domain.Miqaat, error) {
	m, err := s.miqaats.GetByID(ctx, id)
	if err != nil {
		return domain.Miqaat{}, mapNotFound(err)
	}
	return s.toDomain(m), nil
}

// GetMiqaatsForCurrentUser returns a captain's own events, or the events a member is tracked on.
func (s *Service) GetMiqaatsForCurrentUser(ctx context.Context, userID domain.MemberID, role domain.Role, captainName string) ([]domain.Miqaat, error) {
	var (
		ms  []miqaatrepo.Miqaat
		err error
	)
	if role == domain.RoleCaptain {
		ms, err = s.miqaats.ListByCaptainName(ctx, captainName)
	} else {
		ms, err = s.miqaats.ListForMember(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return s.toDomainList(ms), nil
}

// UpdateMemberMiqaatStatus records a member's own response. Ownership is checked by the caller.
func (s *Service) UpdateMemberMiqaatStatus(ctx context.Context, memberID domain.MemberID, miqaatID domain.MiqaatID, status string) error {
	st, err := parseStatus("status", status)
	if err != nil {
		return err
	}
	if err := s.roster.SetStatus(ctx, memberID, miqaatID, st); err != nil {
		if errors.Is(err, miqaatmemberrepo.ErrNotFound) {
			return apperr.NotFound("MIQAAT_MEMBER_NOT_FOUND", "member is not tracked on this miqaat")
		}
		return err
	}
	s.log.InfoContext(ctx, "miqaat member status changed",
		"miqaat_id", miqaatID,
		"member_id", memberID,
		"status", string(st),
	)
	return nil
}

// ListMemberStatuses returns the tracked members of an event with their responses.
func (s *Service) ListMemberStatuses(ctx context.Context, id domain.MiqaatID) ([]domain.MiqaatMember, error) {
	if _, err := s.miqaats.GetByID(ctx, id); err != nil {
		return nil, mapNotFound(err)
	}
	rows, err := s.roster.ListByMiqaat(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MiqaatMember, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.MiqaatMember{MemberID: r.MemberID, MiqaatID: r.MiqaatID, Status: r.Status})
	}
	return out, nil
}

func normalizeInput(in Input) (miqaatrepo.Miqaat, error) {
	name := domain.NormalizeHumanName(in.Name)
	if name == "" {
		return miqaatrepo.Miqaat{}, apperr.Validation("miqaatName", "must be non-empty")
	}
	jamaat := domain.ResolveJamaat(in.Jamaat)
	if jamaat == "" {
		return miqaatrepo.Miqaat{}, apperr.Validation("jamaat", "must be non-empty")
	}
	jamiyat := domain.ResolveJamiyat(in.Jamiyat)
	if jamiyat == "" {
		return miqaatrepo.Miqaat{}, apperr.Validation("jamiyat", "must be non-empty")
	}
	if in.FromDate.IsZero() {
		return miqaatrepo.Miqaat{}, apperr.Validation("fromDate", "must be set")
	}
	if in.TillDate.IsZero() {
		return miqaatrepo.Miqaat{}, apperr.Validation("tillDate", "must be set")
	}
	from := domain.TruncateToDate(in.FromDate)
	till := domain.TruncateToDate(in.TillDate)
	if till.Before(from) {
		return miqaatrepo.Miqaat{}, apperr.Validation("tillDate", "must not be before fromDate")
	}
	if in.VolunteerLimit < 0 {
		return miqaatrepo.Miqaat{}, apperr.Validation("volunteerLimit", "must be zero or greater")
	}

	var about *string
	if in.About != nil {
		if a := strings.TrimSpace(*in.About); a != "" {
			about = &a
		}
	}
	return miqaatrepo.Miqaat{
		Name:           name,
		Jamaat:         jamaat,
		Jamiyat:        jamiyat,
		FromDate:       from,
		TillDate:       till,
		VolunteerLimit: in.VolunteerLimit,
		About:          about,
	}, nil
}

func parseStatus(field, s string) (domain.ApprovalStatus, error) {
	st, err := domain.ParseApprovalStatus(s)
	if err != nil {
		return "", apperr.Validation(field, err.Error())
	}
	return st, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, miqaatrepo.ErrNotFound) {
		return apperr.NotFound("MIQAAT_NOT_FOUND", "miqaat not found")
	}
	return err
}

// toDomain renders timestamps in the display zone. Dates are calendar days and are not shifted.
func (s *Service) toDomain(m miqaatrepo.Miqaat) domain.Miqaat {
	var about *string
	if m.About != nil {
		a := *m.About
		about = &a
	}
	return domain.Miqaat{
		ID:             m.ID,
		Name:           m.Name,
		Jamaat:         m.Jamaat,
		Jamiyat:        m.Jamiyat,
		FromDate:       m.FromDate,
		TillDate:       m.TillDate,
		VolunteerLimit: m.VolunteerLimit,
		About:          about,
		AdminApproval:  m.AdminApproval,
		CaptainName:    m.CaptainName,
		CreatedAt:      m.CreatedAt.In(s.loc),
		UpdatedAt:      m.UpdatedAt.In(s.loc),
	}
}

func (s *Service) toDomainList(ms []miqaatrepo.Miqaat) []domain.Miqaat {
	out := make([]domain.Miqaat, 0, len(ms))
	for _, m := range ms {
		out = append(out, s.toDomain(m))
	}
	return out
}
