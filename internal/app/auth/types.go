package auth

import "github.com/burhani-guards/guards-api/internal/domain"

// Session is the result of a successful login.
//
// Exactly one of Member and Captain is set, matching Identity.Kind.
type Session struct {
	Token    string
	Identity domain.Identity

	Member  *domain.Member
	Captain *domain.Captain
}

// TokenIssuer mints opaque bearer tokens.
type TokenIssuer interface {
	Issue(subject string, role domain.Role) (string, error)
}

// Recorder receives login outcomes for metrics.
type Recorder interface {
	ObserveLogin(kind, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLogin(string, string) {}

const (
	kindMember  = "member"
	kindAdmin   = "admin"
	kindCaptain = "captain"
)
