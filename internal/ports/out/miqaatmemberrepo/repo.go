package miqaatmemberrepo

import (
	"context"
	"errors"

	"github.com/burhani-guards/guards-api/internal/domain"
)

// ErrNotFound indicates no row exists for the (member, miqaat) pair.
var ErrNotFound = errors.New("miqaat member not found")

// Row is one member's tracked response to an event, keyed by (MemberID, MiqaatID).
type Row struct {
	MemberID domain.MemberID
	MiqaatID domain.MiqaatID
	Status   domain.ApprovalStatus
}

type Repository interface {
	// EnrollJamaat inserts a Pending row for every active member whose jamaat equals jamaat and who
	// has no row for the event yet. Existing rows are never modified, so repeated or concurrent calls
	// are safe. It returns the number of rows inserted.
	EnrollJamaat(ctx context.Context, miqaatID domain.MiqaatID, jamaat string) (int, error)

	Get(ctx context.Context, memberID domain.MemberID, miqaatID domain.MiqaatID) (Row, error)
	// SetStatus updates an existing row; ErrNotFound if the pair is not tracked.
	SetStatus(ctx context.Context, memberID domain.MemberID, miqaatID domain.MiqaatID, status domain.ApprovalStatus) error

	// ListByMiqaat returns rows ordered by MemberID.
	ListByMiqaat(ctx context.Context, miqaatID domain.MiqaatID) ([]Row, error)
}
