package miqaatrepo

import (
	"context"
	"errors"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
)

// ErrNotFound indicates the requested event does not exist.
var ErrNotFound = errors.New("miqaat not found")

// Miqaat is the persistence shape of the local_miqaat table.
// Times are stored in UTC; FromDate and TillDate carry midnight UTC.
type Miqaat struct {
	ID             domain.MiqaatID
	Name           string
	Jamaat         string
	Jamiyat        string
	FromDate       time.Time
	TillDate       time.Time
	VolunteerLimit int
	About          *string
	AdminApproval  domain.ApprovalStatus
	CaptainName    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted events.
//
// List methods return the most recently created first, then ID descending.
type Repository interface {
	// Create inserts m and returns the generated id.
	Create(ctx context.Context, m Miqaat) (domain.MiqaatID, error)
	// Save overwrites every column of an existing event.
	Save(ctx context.Context, m Miqaat) error
	SetApproval(ctx context.Context, id domain.MiqaatID, status domain.ApprovalStatus, at time.Time) error
	// Delete removes the event; its miqaat_members rows go with it.
	Delete(ctx context.Context, id domain.MiqaatID) error

	GetByID(ctx context.Context, id domain.MiqaatID) (Miqaat, error)
	List(ctx context.Context) ([]Miqaat, error)
	ListByCaptainName(ctx context.Context, captainName string) ([]Miqaat, error)
	// ListForMember returns events the member has a miqaat_members row for.
	ListForMember(ctx context.Context, memberID domain.MemberID) ([]Miqaat, error)
}
