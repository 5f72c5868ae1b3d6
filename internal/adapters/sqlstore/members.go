package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
)

const memberColumns = `id, profile, its_id, member_rank, roles, jamiyat, jamaat, full_name, gender, email, age,
	contact, password_hash, new_password_hash, is_active, created_at, updated_at`

// MemberRepo implements memberrepo.Repository over the members table.
type MemberRepo struct {
	s *Store
}

var _ memberrepo.Repository = (*MemberRepo)(nil)

func (r *MemberRepo) Create(ctx context.Context, m memberrepo.Member) (domain.MemberID, error) {
	id, err := r.s.insertID(ctx, `
		INSERT INTO members (
			profile, its_id, member_rank, roles, jamiyat, jamaat, full_name, gender, email, age,
			contact, password_hash, new_password_hash, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(m.Profile),
		m.ITSID,
		m.Rank,
		nullableInt(m.Roles),
		nullableString(m.Jamiyat),
		nullableString(m.Jamaat),
		m.FullName,
		nullableString(m.Gender),
		domain.NormalizeEmail(m.Email),
		nullableInt(m.Age),
		nullableString(m.Contact),
		nullableString(m.PasswordHash),
		nullableString(m.NewPasswordHash),
		m.IsActive,
		r.s.d.Time(m.CreatedAt),
		r.s.d.Time(m.UpdatedAt),
	)
	if err != nil {
		if r.s.d.IsUniqueViolation(err) {
			return 0, memberrepo.ErrAlreadyExists
		}
		return 0, fmt.Errorf("insert member: %w", err)
	}
	return domain.MemberID(id), nil
}

func (r *MemberRepo) Update(ctx context.Context, m memberrepo.Member) error {
	res, err := r.s.exec(ctx, `
		UPDATE members
		SET profile = ?,
		    its_id = ?,
		    member_rank = ?,
		    roles = ?,
		    jamiyat = ?,
		    jamaat = ?,
		    full_name = ?,
		    gender = ?,
		    email = ?,
		    age = ?,
		    contact = ?,
		    is_active = ?,
		    updated_at = ?
		WHERE id = ?`,
		nullableString(m.Profile),
		m.ITSID,
		m.Rank,
		nullableInt(m.Roles),
		nullableString(m.Jamiyat),
		nullableString(m.Jamaat),
		m.FullName,
		nullableString(m.Gender),
		domain.NormalizeEmail(m.Email),
		nullableInt(m.Age),
		nullableString(m.Contact),
		m.IsActive,
		r.s.d.Time(m.UpdatedAt),
		int64(m.ID),
	)
	if err != nil {
		if r.s.d.IsUniqueViolation(err) {
			return memberrepo.ErrAlreadyExists
		}
		return fmt.Errorf("update member: %w", err)
	}
	return affected(res, memberrepo.ErrNotFound)
}

func (r *MemberRepo) SetNewPasswordHash(ctx context.Context, id domain.MemberID, hash string, at time.Time) error {
	res, err := r.s.exec(ctx, `UPDATE members SET new_password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, r.s.d.Time(at), int64(id))
	if err != nil {
		return fmt.Errorf("update member password: %w", err)
	}
	return affected(res, memberrepo.ErrNotFound)
}

func (r *MemberRepo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	return r.getOne(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, int64(id))
}

func (r *MemberRepo) GetByITSID(ctx context.Context, itsID string) (memberrepo.Member, error) {
	return r.getOne(ctx, `SELECT `+memberColumns+` FROM members WHERE its_id = ?`, strings.TrimSpace(itsID))
}

func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	return r.getOne(ctx, `SELECT `+memberColumns+` FROM members WHERE email = ?`, domain.NormalizeEmail(email))
}

func (r *MemberRepo) List(ctx context.Context, includeInactive bool) ([]memberrepo.Member, error) {
	q := `SELECT ` + memberColumns + ` FROM members`
	var args []any
	if !includeInactive {
		q += ` WHERE is_active = ?`
		args = append(args, true)
	}
	q += ` ORDER BY LOWER(full_name), id`

	rows, err := r.s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	out := make([]memberrepo.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MemberRepo) CountByJamiyatJamaat(ctx context.Context) (domain.JamiyatJamaatCounts, error) {
	jamiyats, err := r.countBy(ctx, "jamiyat")
	if err != nil {
		return domain.JamiyatJamaatCounts{}, err
	}
	jamaats, err := r.countBy(ctx, "jamaat")
	if err != nil {
		return domain.JamiyatJamaatCounts{}, err
	}
	return domain.JamiyatJamaatCounts{Jamiyats: jamiyats, Jamaats: jamaats}, nil
}

// countBy groups active members by column, which is always one of two constants.
func (r *MemberRepo) countBy(ctx context.Context, column string) ([]domain.GroupCount, error) {
	rows, err := r.s.query(ctx, fmt.Sprintf(`
		SELECT %[1]s, COUNT(*)
		FROM members
		WHERE is_active = ? AND %[1]s IS NOT NULL AND %[1]s <> ''
		GROUP BY %[1]s
		ORDER BY %[1]s`, column), true)
	if err != nil {
		return nil, fmt.Errorf("count members by %s: %w", column, err)
	}
	defer rows.Close()

	out := make([]domain.GroupCount, 0)
	for rows.Next() {
		var gc domain.GroupCount
		if err := rows.Scan(&gc.Name, &gc.Count); err != nil {
			return nil, err
		}
		out = append(out, gc)
	}
	return out, rows.Err()
}

func (r *MemberRepo) getOne(ctx context.Context, query string, args ...any) (memberrepo.Member, error) {
	m, err := scanMember(r.s.queryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return memberrepo.Member{}, memberrepo.ErrNotFound
		}
		return memberrepo.Member{}, err
	}
	return m, nil
}

func scanMember(row rowScanner) (memberrepo.Member, error) {
	var (
		m                         memberrepo.Member
		id                        int64
		profile, jamiyat, jamaat  sql.NullString
		gender, contact           sql.NullString
		passwordHash, newPassword sql.NullString
		roles, age                sql.NullInt64
		createdAt, updatedAt      dbTime
	)
	if err := row.Scan(
		&id,
		&profile,
		&m.ITSID,
		&m.Rank,
		&roles,
		&jamiyat,
		&jamaat,
		&m.FullName,
		&gender,
		&m.Email,
		&age,
		&contact,
		&passwordHash,
		&newPassword,
		&m.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return memberrepo.Member{}, err
	}
	m.ID = domain.MemberID(id)
	m.Profile = stringPtr(profile)
	m.Roles = intPtr(roles)
	m.Jamiyat = stringPtr(jamiyat)
	m.Jamaat = stringPtr(jamaat)
	m.Gender = stringPtr(gender)
	m.Age = intPtr(age)
	m.Contact = stringPtr(contact)
	m.PasswordHash = stringPtr(passwordHash)
	m.NewPasswordHash = stringPtr(newPassword)
	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time
	return m, nil
}
