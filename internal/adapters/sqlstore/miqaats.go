package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/miqaatrepo"
)

const miqaatColumns = `m.id, m.miqaat_name, m.jamaat, m.jamiyat, m.from_date, m.till_date, m.volunteer_limit,
	m.about_miqaat, m.admin_approval, m.captain_name, m.created_at, m.updated_at`

const miqaatOrder = ` ORDER BY m.created_at DESC, m.id DESC`

// MiqaatRepo implements miqaatrepo.Repository over local_miqaat.
type MiqaatRepo struct {
	s *Store
}

var _ miqaatrepo.Repository = (*MiqaatRepo)(nil)

func (r *MiqaatRepo) Create(ctx context.Context, m miqaatrepo.Miqaat) (domain.MiqaatID, error) {
	id, err := r.s.insertID(ctx, `
		INSERT INTO local_miqaat (
			miqaat_name, jamaat, jamiyat, from_date, till_date, volunteer_limit,
			about_miqaat, admin_approval, captain_name, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name,
		m.Jamaat,
		m.Jamiyat,
		r.s.d.Date(m.FromDate),
		r.s.d.Date(m.TillDate),
		m.VolunteerLimit,
		nullableString(m.About),
		string(m.AdminApproval),
		m.CaptainName,
		r.s.d.Time(m.CreatedAt),
		r.s.d.Time(m.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert miqaat: %w", err)
	}
	return domain.MiqaatID(id), nil
}

func (r *MiqaatRepo) Save(ctx context.Context, m miqaatrepo.Miqaat) error {
	res, err := r.s.exec(ctx, `
		UPDATE local_miqaat
		SET miqaat_name = ?,
		    jamaat = ?,
		    jamiyat = ?,
		    from_date = ?,
		    till_date = ?,
		    volunteer_limit = ?,
		    about_miqaat = ?,
		    admin_approval = ?,
		    captain_name = ?,
		    updated_at = ?
		WHERE id = ?`,
		m.Name,
		m.Jamaat,
		m.Jamiyat,
		r.s.d.Date(m.FromDate),
		r.s.d.Date(m.TillDate),
		m.VolunteerLimit,
		nullableString(m.About),
		string(m.AdminApproval),
		m.CaptainName,
		r.s.d.Time(m.UpdatedAt),
		int64(m.ID),
	)
	if err != nil {
		return fmt.Errorf("update miqaat: %w", err)
	}
	return affected(res, miqaatrepo.ErrNotFound)
}

func (r *MiqaatRepo) SetApproval(ctx context.Context, id domain.MiqaatID, status domain.ApprovalStatus, at time.Time) error {
	res, err := r.s.exec(ctx, `UPDATE local_miqaat SET admin_approval = ?, updated_at = ? WHERE id = ?`,
		string(status), r.s.d.Time(at), int64(id))
	if err != nil {
		return fmt.Errorf("update miqaat approval: %w", err)
	}
	return affected(res, miqaatrepo.ErrNotFound)
}

func (r *MiqaatRepo) Delete(ctx context.Context, id domain.MiqaatID) error {
	res, err := r.s.exec(ctx, `DELETE FROM local_miqaat WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("delete miqaat: %w", err)
	}
	return affected(res, miqaatrepo.ErrNotFound)
}

func (r *MiqaatRepo) GetByID(ctx context.Context, id domain.MiqaatID) (miqaatrepo.Miqaat, error) {
	m, err := scanMiqaat(r.s.queryRow(ctx, `SELECT `+miqaatColumns+` FROM local_miqaat m WHERE m.id = ?`, int64(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return miqaatrepo.Miqaat{}, miqaatrepo.ErrNotFound
		}
		return miqaatrepo.Miqaat{}, fmt.Errorf("get miqaat: %w", err)
	}
	return m, nil
}

func (r *MiqaatRepo) List(ctx context.Context) ([]miqaatrepo.Miqaat, error) {
	return r.list(ctx, `SELECT `+miqaatColumns+` FROM local_miqaat m`+miqaatOrder)
}

func (r *MiqaatRepo) ListByCaptainName(ctx context.Context, captainName string) ([]miqaatrepo.Miqaat, error) {
	return r.list(ctx, `SELECT `+miqaatColumns+` FROM local_miqaat m WHERE m.captain_name = ?`+miqaatOrder, captainName)
}

func (r *MiqaatRepo) ListForMember(ctx context.Context, memberID domain.MemberID) ([]miqaatrepo.Miqaat, error) {
	return r.list(ctx, `
		SELECT `+miqaatColumns+`
		FROM local_miqaat m
		INNER JOIN miqaat_members mm ON mm.miqaat_id = m.id
		WHERE mm.member_id = ?`+miqaatOrder, int64(memberID))
}

func (r *MiqaatRepo) list(ctx context.Context, query string, args ...any) ([]miqaatrepo.Miqaat, error) {
	rows, err := r.s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list miqaats: %w", err)
	}
	defer rows.Close()

	out := make([]miqaatrepo.Miqaat, 0)
	for rows.Next() {
		m, err := scanMiqaat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMiqaat(row rowScanner) (miqaatrepo.Miqaat, error) {
	var (
		m                    miqaatrepo.Miqaat
		id                   int64
		about                sql.NullString
		approval             string
		fromDate, tillDate   dbDate
		createdAt, updatedAt dbTime
	)
	if err := row.Scan(
		&id,
		&m.Name,
		&m.Jamaat,
		&m.Jamiyat,
		&fromDate,
		&tillDate,
		&m.VolunteerLimit,
		&about,
		&approval,
		&m.CaptainName,
		&createdAt,
		&updatedAt,
	); err != nil {
		return miqaatrepo.Miqaat{}, err
	}
	m.ID = domain.MiqaatID(id)
	m.FromDate = fromDate.Time
	m.TillDate = tillDate.Time
	m.About = stringPtr(about)
	m.AdminApproval = domain.ApprovalStatus(approval)
	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time
	return m, nil
}
