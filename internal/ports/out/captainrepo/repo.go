package captainrepo

import (
	"context"
	"errors"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
)

// ErrNotFound indicates no captain exists for the lookup key.
var ErrNotFound = errors.New("captain not found")

// Captain is the persistence shape of the captains table.
type Captain struct {
	ID       domain.CaptainID
	ITSID    string
	FullName string
	Email    string

	PasswordHash    *string
	NewPasswordHash *string

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	GetByITSID(ctx context.Context, itsID string) (Captain, error)

	SetNewPasswordHash(ctx context.Context, id domain.CaptainID, hash string, at time.Time) error

	// Upsert inserts the captain or, when the ITS id exists, overwrites name, email and the seeded
	// password hash. The user-chosen NewPasswordHash is left as stored.
	Upsert(ctx context.Context, c Captain) (domain.CaptainID, error)
}
