package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/captainrepo"
)

// CaptainRepo implements captainrepo.Repository over the captains table.
type CaptainRepo struct {
	s *Store
}

var _ captainrepo.Repository = (*CaptainRepo)(nil)

func (r *CaptainRepo) GetByITSID(ctx context.Context, itsID string) (captainrepo.Captain, error) {
	var (
		c                         captainrepo.Captain
		id                        int64
		email                     sql.NullString
		passwordHash, newPassword sql.NullString
		createdAt, updatedAt      dbTime
	)
	err := r.s.queryRow(ctx, `
		SELECT id, its_number, name, email, password_hash, new_password_hash, is_active, created_at, updated_at
		FROM captains
		WHERE its_number = ?`, strings.TrimSpace(itsID)).Scan(
		&id, &c.ITSID, &c.FullName, &email, &passwordHash, &newPassword, &c.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return captainrepo.Captain{}, captainrepo.ErrNotFound
		}
		return captainrepo.Captain{}, fmt.Errorf("get captain: %w", err)
	}
	c.ID = domain.CaptainID(id)
	c.Email = email.String
	c.PasswordHash = stringPtr(passwordHash)
	c.NewPasswordHash = stringPtr(newPassword)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return c, nil
}

func (r *CaptainRepo) SetNewPasswordHash(ctx context.Context, id domain.CaptainID, hash string, at time.Time) error {
	res, err := r.s.exec(ctx, `UPDATE captains SET new_password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, r.s.d.Time(at), int64(id))
	if err != nil {
		return fmt.Errorf("update captain password: %w", err)
	}
	return affected(res, captainrepo.ErrNotFound)
}

func (r *CaptainRepo) Upsert(ctx context.Context, c captainrepo.Captain) (domain.CaptainID, error) {
	q := r.s.d.Upsert("captains",
		[]string{"its_number", "name", "email", "password_hash", "is_active", "created_at", "updated_at"},
		[]string{"its_number"},
		[]string{"name", "email", "password_hash", "is_active", "updated_at"},
	)
	var email any
	if c.Email != "" {
		email = c.Email
	}
	if _, err := r.s.exec(ctx, q,
		c.ITSID,
		c.FullName,
		email,
		nullableString(c.PasswordHash),
		c.IsActive,
		r.s.d.Time(c.CreatedAt),
		r.s.d.Time(c.UpdatedAt),
	); err != nil {
		return 0, fmt.Errorf("upsert captain: %w", err)
	}

	var id int64
	if err := r.s.queryRow(ctx, `SELECT id FROM captains WHERE its_number = ?`, c.ITSID).Scan(&id); err != nil {
		return 0, fmt.Errorf("read captain id: %w", err)
	}
	return domain.CaptainID(id), nil
}
