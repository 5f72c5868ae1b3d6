// Package members administers member records and the self-service profile.
package members

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/burhani-guards/guards-api/internal/app/apperr"
	"github.com/burhani-guards/guards-api/internal/domain"
	clockport "github.com/burhani-guards/guards-api/internal/ports/out/clock"
	"github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
	passwordport "github.com/burhani-guards/guards-api/internal/ports/out/password"
)

type Deps struct {
	Members memberrepo.Repository
	Hasher  passwordport.Hasher
	Clock   clockport.Clock
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

type Service struct {
	repo   memberrepo.Repository
	hasher passwordport.Hasher
	clk    clockport.Clock
	log    *slog.Logger
}

func NewService(d Deps, opts ...Option) *Service {
	s := &Service{
		repo:   d.Members,
		hasher: d.Hasher,
		clk:    d.Clock,
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]domain.Member, error) {
	ms, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id domain.MemberID) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return m.ToDomain(), nil
}

// GetProfile returns the caller's own record. A deactivated member has no profile.
func (s *Service) GetProfile(ctx context.Context, id domain.MemberID) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	if !m.IsActive {
		return domain.Member{}, notFound()
	}
	return m.ToDomain(), nil
}

// Add registers a member. Uniqueness of ITS id and email is checked before the insert.
func (s *Service) Add(ctx context.Context, in AddInput) (domain.Member, error) {
	its := strings.TrimSpace(in.ITSID)
	if its == "" {
		return domain.Member{}, apperr.Validation("itsId", "must be non-empty")
	}
	fullName := domain.NormalizeHumanName(in.FullName)
	if fullName == "" {
		return domain.Member{}, apperr.Validation("fullName", "must be non-empty")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return domain.Member{}, err
	}
	role, err := resolveRole(in.Roles, in.Rank)
	if err != nil {
		return domain.Member{}, err
	}
	if in.Age != nil && *in.Age < 0 {
		return domain.Member{}, apperr.Validation("age", "must be zero or greater")
	}
	if err := s.ensureUnique(ctx, its, email, 0); err != nil {
		return domain.Member{}, err
	}

	var seeded *string
	if in.Password != nil && *in.Password != "" {
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return domain.Member{}, err
		}
		seeded = &h
	}

	now := s.clk.Now()
	code := role.Code()
	m := memberrepo.Member{
		ITSID:        its,
		FullName:     fullName,
		Email:        email,
		Roles:        &code,
		Rank:         role.Text(),
		Jamiyat:      resolveGroup(in.Jamiyat, domain.ResolveJamiyat),
		Jamaat:       resolveGroup(in.Jamaat, domain.ResolveJamaat),
		Gender:       trimmedOrNil(in.Gender),
		Age:          cloneIntPtr(in.Age),
		Contact:      trimmedOrNil(in.Contact),
		PasswordHash: seeded,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.repo.Create(ctx, m)
	if err != nil {
		if errors.Is(err, memberrepo.ErrAlreadyExists) {
			return domain.Member{}, alreadyExists()
		}
		return domain.Member{}, err
	}
	m.ID = id
	s.log.InfoContext(ctx, "member added", "member_id", id, "its_id", its, "role", role.Slug())
	return m.ToDomain(), nil
}

// Edit is the admin edit of any member.
func (s *Service) Edit(ctx context.Context, id domain.MemberID, in EditInput) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}

	if in.ITSID.IsSpecified() {
		its := ""
		if !in.ITSID.IsNull() {
			its = strings.TrimSpace(in.ITSID.Value())
		}
		if its == "" {
			return domain.Member{}, apperr.Validation("itsId", "must be non-empty")
		}
		m.ITSID = its
	}
	if in.FullName.IsSpecified() {
		if err := applyFullName(&m, in.FullName); err != nil {
			return domain.Member{}, err
		}
	}
	if in.Email.IsSpecified() {
		if err := applyEmail(&m, in.Email); err != nil {
			return domain.Member{}, err
		}
	}
	if in.Roles.IsSpecified() || in.Rank.IsSpecified() {
		var code *int
		if in.Roles.IsSpecified() && !in.Roles.IsNull() {
			v := in.Roles.Value()
			code = &v
		}
		rank := ""
		if in.Rank.IsSpecified() && !in.Rank.IsNull() {
			rank = in.Rank.Value()
		}
		role, err := resolveRole(code, rank)
		if err != nil {
			return domain.Member{}, err
		}
		c := role.Code()
		m.Roles = &c
		m.Rank = role.Text()
	}
	applyGroup(&m.Jamiyat, in.Jamiyat, domain.ResolveJamiyat)
	applyGroup(&m.Jamaat, in.Jamaat, domain.ResolveJamaat)
	applyText(&m.Gender, in.Gender)
	applyText(&m.Contact, in.Contact)
	if in.Age.IsSpecified() {
		if in.Age.IsNull() {
			m.Age = nil
		} else {
			age := in.Age.Value()
			if age < 0 {
				return domain.Member{}, apperr.Validation("age", "must be zero or greater")
			}
			m.Age = &age
		}
	}
	if in.IsActive.IsSpecified() {
		if in.IsActive.IsNull() {
			return domain.Member{}, apperr.Validation("isActive", "cannot be null")
		}
		m.IsActive = in.IsActive.Value()
	}

	if err := s.ensureUnique(ctx, m.ITSID, m.Email, m.ID); err != nil {
		return domain.Member{}, err
	}
	return s.save(ctx, m)
}

// EditProfile is the self-service edit. Only name, email and contact can change.
func (s *Service) EditProfile(ctx context.Context, id domain.MemberID, in ProfileInput) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	if !m.IsActive {
		return domain.Member{}, notFound()
	}

	if in.FullName.IsSpecified() {
		if err := applyFullName(&m, in.FullName); err != nil {
			return domain.Member{}, err
		}
	}
	if in.Email.IsSpecified() {
		if err := applyEmail(&m, in.Email); err != nil {
			return domain.Member{}, err
		}
		if err := s.ensureUnique(ctx, "", m.Email, m.ID); err != nil {
			return domain.Member{}, err
		}
	}
	applyText(&m.Contact, in.Contact)
	return s.save(ctx, m)
}

// Delete deactivates the member. Rows are never removed.
func (s *Service) Delete(ctx context.Context, id domain.MemberID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if !m.IsActive {
		return nil
	}
	m.IsActive = false
	if _, err := s.save(ctx, m); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "member deactivated", "member_id", id, "its_id", m.ITSID)
	return nil
}

// UpdateProfileImage records the relative path of an already stored image.
func (s *Service) UpdateProfileImage(ctx context.Context, id domain.MemberID, relPath string) (domain.Member, error) {
	if strings.TrimSpace(relPath) == "" {
		return domain.Member{}, apperr.Validation("profile", "must be non-empty")
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	m.Profile = &relPath
	return s.save(ctx, m)
}

func (s *Service) JamiyatJamaatCounts(ctx context.Context) (domain.JamiyatJamaatCounts, error) {
	return s.repo.CountByJamiyatJamaat(ctx)
}

func (s *Service) save(ctx context.Context, m memberrepo.Member) (domain.Member, error) {
	m.UpdatedAt = s.clk.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		switch {
		case errors.Is(err, memberrepo.ErrNotFound):
			return domain.Member{}, notFound()
		case errors.Is(err, memberrepo.ErrAlreadyExists):
			return domain.Member{}, alreadyExists()
		}
		return domain.Member{}, err
	}
	return m.ToDomain(), nil
}

// ensureUnique looks up the ITS id and email, inactive rows included. An empty its skips the ITS
// check.
func (s *Service) ensureUnique(ctx context.Context, its, email string, self domain.MemberID) error {
	if its != "" {
		m, err := s.repo.GetByITSID(ctx, its)
		switch {
		case err == nil && m.ID != self:
			return apperr.Conflict("ITS_ID_ALREADY_IN_USE", "ITS id is already registered")
		case err != nil && !errors.Is(err, memberrepo.ErrNotFound):
			return err
		}
	}
	m, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && m.ID != self:
		return apperr.Conflict("EMAIL_ALREADY_IN_USE", "email address is already in use")
	case err != nil && !errors.Is(err, memberrepo.ErrNotFound):
		return err
	}
	return nil
}

func applyFullName(m *memberrepo.Member, o Optional[string]) error {
	if o.IsNull() {
		return apperr.Validation("fullName", "cannot be null")
	}
	name := domain.NormalizeHumanName(o.Value())
	if name == "" {
		return apperr.Validation("fullName", "must be non-empty")
	}
	m.FullName = name
	return nil
}

func applyEmail(m *memberrepo.Member, o Optional[string]) error {
	if o.IsNull() {
		return apperr.Validation("email", "cannot be null")
	}
	email, err := normalizeEmail(o.Value())
	if err != nil {
		return err
	}
	m.Email = email
	return nil
}

func applyText(dst **string, o Optional[string]) {
	if !o.IsSpecified() {
		return
	}
	if o.IsNull() {
		*dst = nil
		return
	}
	v := o.Value()
	*dst = trimmedOrNil(&v)
}

func applyGroup(dst **string, o Optional[string], resolve func(string) string) {
	if !o.IsSpecified() {
		return
	}
	if o.IsNull() {
		*dst = nil
		return
	}
	v := o.Value()
	*dst = resolveGroup(&v, resolve)
}

// resolveGroup stores the catalogue name when given a known numeric code, otherwise the trimmed text.
func resolveGroup(p *string, resolve func(string) string) *string {
	v := trimmedOrNil(p)
	if v == nil {
		return nil
	}
	r := resolve(*v)
	return &r
}

func resolveRole(code *int, rank string) (domain.Role, error) {
	if code != nil {
		r := domain.Role(*code)
		if !r.Valid() {
			return domain.RoleUnspecified, apperr.Validation("roles", "must be a rank code between 1 and 8")
		}
		return r, nil
	}
	if strings.TrimSpace(rank) != "" {
		r := domain.RoleFromText(rank)
		if !r.Valid() {
			return domain.RoleUnspecified, apperr.Validation("rank", "unknown rank")
		}
		return r, nil
	}
	return domain.RoleMember, nil
}

func normalizeEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if err := validateEmail(email); err != nil {
		return "", apperr.Validation("email", err.Error())
	}
	return email, nil
}

var emailValidator = validator.New()

func validateEmail(email string) error {
	if email == "" {
		return errors.New("must be non-empty")
	}
	if err := emailValidator.Var(email, "email"); err != nil {
		return errors.New("must be a valid email address")
	}
	return nil
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func mapNotFound(err error) error {
	if errors.Is(err, memberrepo.ErrNotFound) {
		return notFound()
	}
	return err
}

func notFound() error {
	return apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
}

func alreadyExists() error {
	return apperr.Conflict("MEMBER_ALREADY_EXISTS", "ITS id or email is already registered")
}
