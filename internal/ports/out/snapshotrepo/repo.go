package snapshotrepo

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no snapshot exists for the email.
var ErrNotFound = errors.New("member snapshot not found")

// Snapshot is the login audit record kept in member_snapshots, one per email.
type Snapshot struct {
	Email       string
	DisplayName string
	Role        string
	LastLogin   time.Time
}

type Repository interface {
	// Upsert inserts or overwrites the snapshot keyed by Email.
	Upsert(ctx context.Context, s Snapshot) error
	Get(ctx context.Context, email string) (Snapshot, error)
}
