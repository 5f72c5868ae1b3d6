package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/ports/out/miqaatmemberrepo"
)

// MiqaatMemberRepo implements miqaatmemberrepo.Repository over miqaat_members.
type MiqaatMemberRepo struct {
	s *Store
}

var _ miqaatmemberrepo.Repository = (*MiqaatMemberRepo)(nil)

// EnrollJamaat is a single INSERT ... SELECT. NOT EXISTS keeps existing rows out of the candidate
// set so the affected count is exact; the insert-if-absent clause only absorbs a concurrent
// approval racing on the same keys.
func (r *MiqaatMemberRepo) EnrollJamaat(ctx context.Context, miqaatID domain.MiqaatID, jamaat string) (int, error) {
	q := r.s.d.InsertIfAbsent("miqaat_members", `(member_id, miqaat_id, status)
		SELECT mb.id, lm.id, 'Pending'
		FROM members mb
		INNER JOIN local_miqaat lm ON lm.id = ?
		WHERE mb.jamaat = ? AND mb.is_active = ?
		  AND NOT EXISTS (
		      SELECT 1 FROM miqaat_members x
		      WHERE x.member_id = mb.id AND x.miqaat_id = lm.id
		  )`, "member_id", "miqaat_id")
	res, err := r.s.exec(ctx, q, int64(miqaatID), jamaat, true)
	if err != nil {
		return 0, fmt.Errorf("enroll jamaat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *MiqaatMemberRepo) Get(ctx context.Context, memberID domain.MemberID, miqaatID domain.MiqaatID) (miqaatmemberrepo.Row, error) {
	var status string
	err := r.s.queryRow(ctx, `SELECT status FROM miqaat_members WHERE member_id = ? AND miqaat_id = ?`,
		int64(memberID), int64(miqaatID)).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return miqaatmemberrepo.Row{}, miqaatmemberrepo.ErrNotFound
		}
		return miqaatmemberrepo.Row{}, fmt.Errorf("get miqaat member: %w", err)
	}
	return miqaatmemberrepo.Row{MemberID: memberID, MiqaatID: miqaatID, Status: domain.ApprovalStatus(status)}, nil
}

func (r *MiqaatMemberRepo) SetStatus(ctx context.Context, memberID domain.MemberID, miqaatID domain.MiqaatID, status domain.ApprovalStatus) error {
	res, err := r.s.exec(ctx, `UPDATE miqaat_members SET status = ? WHERE member_id = ? AND miqaat_id = ?`,
		string(status), int64(memberID), int64(miqaatID))
	if err != nil {
		return fmt.Errorf("update miqaat member status: %w", err)
	}
	return affected(res, miqaatmemberrepo.ErrNotFound)
}

func (r *MiqaatMemberRepo) ListByMiqaat(ctx context.Context, miqaatID domain.MiqaatID) ([]miqaatmemberrepo.Row, error) {
	rows, err := r.s.query(ctx, `
		SELECT member_id, status
		FROM miqaat_members
		WHERE miqaat_id = ?
		ORDER BY member_id`, int64(miqaatID))
	if err != nil {
		return nil, fmt.Errorf("list miqaat members: %w", err)
	}
	defer rows.Close()

	out := make([]miqaatmemberrepo.Row, 0)
	for rows.Next() {
		var (
			memberID int64
			status   string
		)
		if err := rows.Scan(&memberID, &status); err != nil {
			return nil, err
		}
		out = append(out, miqaatmemberrepo.Row{
			MemberID: domain.MemberID(memberID),
			MiqaatID: miqaatID,
			Status:   domain.ApprovalStatus(status),
		})
	}
	return out, rows.Err()
}
