// Package auth authenticates members and captains, issues bearer tokens and manages passwords.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/burhani-guards/guards-api/internal/app/apperr"
	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/captainrepo"
	clockport "github.com/burhani-guards/guards-api/internal/ports/out/clock"
	"github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
	passwordport "github.com/burhani-guards/guards-api/internal/ports/out/password"
	"github.com/burhani-guards/guards-api/internal/ports/out/snapshotrepo"
	"github.com/burhani-guards/guards-api/internal/ports/out/tokenstore"
)

// DefaultCaptainITS is the only ITS number accepted by captain login unless configured otherwise.
const DefaultCaptainITS = "30375370"

type Deps struct {
	Members   memberrepo.Repository
	Captains  captainrepo.Repository
	Snapshots snapshotrepo.Repository
	Tokens    tokenstore.Store
	Hasher    passwordport.Hasher
	Issuer    TokenIssuer
	Clock     clockport.Clock
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

// WithCaptainITS overrides the single accepted captain ITS number.
func WithCaptainITS(its string) Option {
	return func(s *Service) {
		if its = strings.TrimSpace(its); its != "" {
			s.captainITS = its
		}
	}
}

type Service struct {
	members   memberrepo.Repository
	captains  captainrepo.Repository
	snapshots snapshotrepo.Repository
	tokens    tokenstore.Store
	hasher    passwordport.Hasher
	issuer    TokenIssuer
	clk       clockport.Clock

	captainITS string
	log        *slog.Logger
	rec        Recorder
}

func NewService(d Deps, opts ...Option) *Service {
	s := &Service{
		members:    d.Members,
		captains:   d.Captains,
		snapshots:  d.Snapshots,
		tokens:     d.Tokens,
		hasher:     d.Hasher,
		issuer:     d.Issuer,
		clk:        d.Clock,
		captainITS: DefaultCaptainITS,
		log:        slog.Default(),
		rec:        nopRecorder{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Login authenticates a member by ITS id or email.
func (s *Service) Login(ctx context.Context, identifier, password string) (Session, error) {
	sess, err := s.loginMember(ctx, identifier, password, false)
	s.observe(kindMember, err)
	return sess, err
}

// LoginAdmin is Login restricted to Resource Admins. The role is checked after the credentials,
// so a wrong password still reads as invalid credentials.
func (s *Service) LoginAdmin(ctx context.Context, identifier, password string) (Session, error) {
	sess, err := s.loginMember(ctx, identifier, password, true)
	s.observe(kindAdmin, err)
	return sess, err
}

func (s *Service) loginMember(ctx context.Context, identifier, password string, adminOnly bool) (Session, error) {
	m, err := s.lookupMember(ctx, identifier)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return Session{}, apperr.InvalidCredentials()
		}
		return Session{}, err
	}
	if !m.IsActive {
		return Session{}, apperr.InvalidCredentials()
	}
	requiresChange, ok := s.checkPassword(password, m.PasswordHash, m.NewPasswordHash)
	if !ok {
		return Session{}, apperr.InvalidCredentials()
	}

	member := m.ToDomain()
	if adminOnly && member.Role != domain.RoleResourceAdmin {
		return Session{}, apperr.AccessDenied("only a Resource Admin may sign in here")
	}

	id := domain.Identity{
		Kind:                   domain.IdentityMember,
		ID:                     int64(member.ID),
		ITSID:                  member.ITSID,
		FullName:               member.FullName,
		Email:                  member.Email,
		Role:                   member.Role,
		RequiresPasswordChange: requiresChange,
	}
	tok, err := s.establish(ctx, id)
	if err != nil {
		return Session{}, err
	}
	s.log.InfoContext(ctx, "member signed in",
		"member_id", member.ID,
		"its_id", member.ITSID,
		"role", member.Role.Slug(),
		"requires_password_change", requiresChange,
	)
	return Session{Token: tok, Identity: id, Member: &member}, nil
}

// LoginCaptain authenticates the captain account. Only the configured captain ITS number is accepted.
func (s *Service) LoginCaptain(ctx context.Context, itsNumber, password string) (Session, error) {
	sess, err := s.loginCaptain(ctx, itsNumber, password)
	s.observe(kindCaptain, err)
	return sess, err
}

func (s *Service) loginCaptain(ctx context.Context, itsNumber, password string) (Session, error) {
	its := strings.TrimSpace(itsNumber)
	if its != s.captainITS {
		return Session{}, apperr.InvalidCredentials()
	}
	c, err := s.captains.GetByITSID(ctx, its)
	if err != nil {
		if errors.Is(err, captainrepo.ErrNotFound) {
			return Session{}, apperr.InvalidCredentials()
		}
		return Session{}, err
	}
	if !c.IsActive {
		return Session{}, apperr.InvalidCredentials()
	}
	requiresChange, ok := s.checkPassword(password, c.PasswordHash, c.NewPasswordHash)
	if !ok {
		return Session{}, apperr.InvalidCredentials()
	}

	id := domain.Identity{
		Kind:                   domain.IdentityCaptain,
		ID:                     int64(c.ID),
		ITSID:                  c.ITSID,
		FullName:               c.FullName,
		Email:                  c.Email,
		Role:                   domain.RoleCaptain,
		RequiresPasswordChange: requiresChange,
	}
	tok, err := s.establish(ctx, id)
	if err != nil {
		return Session{}, err
	}
	s.log.InfoContext(ctx, "captain signed in", "captain_id", c.ID, "its_id", c.ITSID)
	return Session{
		Token:    tok,
		Identity: id,
		Captain: &domain.Captain{
			ID:       c.ID,
			ITSID:    c.ITSID,
			FullName: c.FullName,
			Email:    c.Email,
			IsActive: c.IsActive,
		},
	}, nil
}

// ChangePassword sets the user-chosen password of a member. There is no old-password check and no
// history: once set, the new hash is the only one consulted at login.
func (s *Service) ChangePassword(ctx context.Context, identifier, newPassword, confirmPassword string) error {
	if err := validatePasswordChange(identifier, newPassword, confirmPassword); err != nil {
		return err
	}
	m, err := s.lookupMember(ctx, identifier)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return memberNotFound()
		}
		return err
	}
	if !m.IsActive {
		return memberNotFound()
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.members.SetNewPasswordHash(ctx, m.ID, hash, s.clk.Now()); err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return memberNotFound()
		}
		return err
	}
	s.log.InfoContext(ctx, "member password changed", "member_id", m.ID, "its_id", m.ITSID)
	return nil
}

// ChangeCaptainPassword is ChangePassword for the captain account.
func (s *Service) ChangeCaptainPassword(ctx context.Context, itsNumber, newPassword, confirmPassword string) error {
	if err := validatePasswordChange(itsNumber, newPassword, confirmPassword); err != nil {
		return err
	}
	its := strings.TrimSpace(itsNumber)
	if its != s.captainITS {
		return captainNotFound()
	}
	c, err := s.captains.GetByITSID(ctx, its)
	if err != nil {
		if errors.Is(err, captainrepo.ErrNotFound) {
			return captainNotFound()
		}
		return err
	}
	if !c.IsActive {
		return captainNotFound()
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.captains.SetNewPasswordHash(ctx, c.ID, hash, s.clk.Now()); err != nil {
		if errors.Is(err, captainrepo.ErrNotFound) {
			return captainNotFound()
		}
		return err
	}
	s.log.InfoContext(ctx, "captain password changed", "captain_id", c.ID)
	return nil
}

// Logout revokes the token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, token)
}

func (s *Service) lookupMember(ctx context.Context, identifier string) (memberrepo.Member, error) {
	ident := strings.TrimSpace(identifier)
	if ident == "" {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	if domain.LooksLikeEmail(ident) {
		return s.members.GetByEmail(ctx, domain.NormalizeEmail(ident))
	}
	return s.members.GetByITSID(ctx, ident)
}

// checkPassword applies the dual-hash rule: a user-chosen hash, when present, is the only one checked.
// Otherwise the seeded hash is checked and a password change is required.
func (s *Service) checkPassword(plain string, seeded, chosen *string) (requiresChange, ok bool) {
	if chosen != nil && *chosen != "" {
		return false, s.hasher.Verify(plain, *chosen)
	}
	if seeded != nil && *seeded != "" {
		return true, s.hasher.Verify(plain, *seeded)
	}
	return false, false
}

// establish records the login snapshot and binds a fresh token to id.
func (s *Service) establish(ctx context.Context, id domain.Identity) (string, error) {
	subject := id.ITSID
	if subject == "" {
		subject = strconv.FormatInt(id.ID, 10)
	}
	tok, err := s.issuer.Issue(subject, id.Role)
	if err != nil {
		return "", err
	}
	if email := domain.NormalizeEmail(id.Email); email != "" {
		if err := s.snapshots.Upsert(ctx, snapshotrepo.Snapshot{
			Email:       email,
			DisplayName: id.FullName,
			Role:        id.Role.Slug(),
			LastLogin:   s.clk.Now(),
		}); err != nil {
			return "", err
		}
	}
	if err := s.tokens.Store(ctx, tok, id); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *Service) observe(kind string, err error) {
	outcome := "success"
	switch apperr.KindOf(err) {
	case apperr.KindUnknown:
		if err != nil {
			outcome = "error"
		}
	case apperr.KindUnauthorized:
		outcome = "invalid_credentials"
	case apperr.KindAccessDenied:
		outcome = "denied"
	default:
		outcome = "rejected"
	}
	s.rec.ObserveLogin(kind, outcome)
}

func validatePasswordChange(identifier, newPassword, confirmPassword string) error {
	switch {
	case strings.TrimSpace(identifier) == "":
		return apperr.Validation("identifier", "must be non-empty")
	case newPassword == "":
		return apperr.Validation("newPassword", "must be non-empty")
	case confirmPassword == "":
		return apperr.Validation("confirmPassword", "must be non-empty")
	case newPassword != confirmPassword:
		return apperr.Validation("confirmPassword", "must match newPassword")
	}
	return nil
}

func memberNotFound() error {
	return apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
}

func captainNotFound() error {
	return apperr.NotFound("CAPTAIN_NOT_FOUND", "captain not found")
}
