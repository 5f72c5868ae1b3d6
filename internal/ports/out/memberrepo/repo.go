package memberrepo

import (
	"context"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
)

// Member is the persistence shape used by the member repository (the members table).
// It is an internal record, not an HTTP DTO.
type Member struct {
	ID      domain.MemberID
	Profile *string
	ITSID   string

	// Rank is the legacy free-text rank; Roles is the numeric rank code and wins when set.
	Rank  string
	Roles *int

	Jamiyat *string
	Jamaat  *string

	FullName string
	Gender   *string
	// Email is stored normalized (trimmed, lower-case).
	Email   string
	Age     *int
	Contact *string

	// PasswordHash is the seeded/temporary password; NewPasswordHash is the user-chosen one.
	// When NewPasswordHash is set it is the only hash consulted at login.
	PasswordHash    *string
	NewPasswordHash *string

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted members.
//
// Lookups by ITS id and email return inactive rows too; callers decide what inactive means.
// List returns results ordered by FullName ascending (then ID) to keep behavior deterministic.
type Repository interface {
	// Create inserts m and returns the generated id. ErrAlreadyExists on a duplicate ITS id or email.
	Create(ctx context.Context, m Member) (domain.MemberID, error)

	// Update overwrites every profile column of an existing row. Password hashes are not touched.
	Update(ctx context.Context, m Member) error

	SetNewPasswordHash(ctx context.Context, id domain.MemberID, hash string, at time.Time) error

	GetByID(ctx context.Context, id domain.MemberID) (Member, error)
	GetByITSID(ctx context.Context, itsID string) (Member, error)
	GetByEmail(ctx context.Context, email string) (Member, error)

	List(ctx context.Context, includeInactive bool) ([]Member, error)

	// CountByJamiyatJamaat counts active members grouped by jamiyat and by jamaat, ordered by name.
	// Members with no jamiyat (or jamaat) are left out of that grouping.
	CountByJamiyatJamaat(ctx context.Context) (domain.JamiyatJamaatCounts, error)
}
