package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/snapshotrepo"
)

// SnapshotRepo implements snapshotrepo.Repository over member_snapshots.
type SnapshotRepo struct {
	s *Store
}

var _ snapshotrepo.Repository = (*SnapshotRepo)(nil)

func (r *SnapshotRepo) Upsert(ctx context.Context, snap snapshotrepo.Snapshot) error {
	q := r.s.d.Upsert("member_snapshots",
		[]string{"email", "display_name", "role", "last_login"},
		[]string{"email"},
		[]string{"display_name", "role", "last_login"},
	)
	if _, err := r.s.exec(ctx, q,
		domain.NormalizeEmail(snap.Email),
		snap.DisplayName,
		snap.Role,
		r.s.d.Time(snap.LastLogin),
	); err != nil {
		return fmt.Errorf("upsert member snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) Get(ctx context.Context, email string) (snapshotrepo.Snapshot, error) {
	var (
		snap      snapshotrepo.Snapshot
		lastLogin dbTime
	)
	err := r.s.queryRow(ctx, `
		SELECT email, display_name, role, last_login
		FROM member_snapshots
		WHERE email = ?`, domain.NormalizeEmail(email)).Scan(&snap.Email, &snap.DisplayName, &snap.Role, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshotrepo.Snapshot{}, snapshotrepo.ErrNotFound
		}
		return snapshotrepo.Snapshot{}, fmt.Errorf("get member snapshot: %w", err)
	}
	snap.LastLogin = lastLogin.Time
	return snap, nil
}
