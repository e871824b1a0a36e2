package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/store"
)

type membershipsRepo struct {
	db dbtx
}

const membershipColumns = `id, team_id, user_id, role, member_type, active, created_at, updated_at`

func scanMembership(row interface{ Scan(dest ...any) error }) (domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(
		&m.ID,
		&m.TeamID,
		&m.UserID,
		&m.Role,
		&m.MemberType,
		&m.Active,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membershipsRepo) GetMembership(ctx context.Context, teamID, userID string) (domain.Membership, error) {
	return scanMembership(r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE team_id = ? AND user_id = ? AND active = 1`,
		teamID, userID))
}

func (r *membershipsRepo) ListTeamMemberships(ctx context.Context, teamID string) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE team_id = ? AND active = 1 ORDER BY created_at ASC, id ASC`,
		teamID)
	if err != nil {
		return nil, err
	}
	return collectMemberships(rows)
}

func (r *membershipsRepo) ListUserMemberships(ctx context.Context, userID string) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE user_id = ? AND active = 1 ORDER BY created_at ASC, id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	return collectMemberships(rows)
}

func collectMemberships(rows *sql.Rows) ([]domain.Membership, error) {
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, team_id, user_id, role, member_type, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.TeamID, m.UserID, m.Role, m.MemberType, m.Active, now, now,
	)
	return mapConstraint(err)
}

func (r *membershipsRepo) UpdateMembershipRole(ctx context.Context, teamID, userID string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET role = ?, updated_at = ?
		 WHERE team_id = ? AND user_id = ? AND active = 1`,
		role, time.Now().UTC(), teamID, userID,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *membershipsRepo) DeactivateMembership(ctx context.Context, teamID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET active = 0, updated_at = ?
		 WHERE team_id = ? AND user_id = ? AND active = 1`,
		time.Now().UTC(), teamID, userID,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *membershipsRepo) ReactivateMembership(ctx context.Context, teamID, userID string, role domain.Role) error {
	// Several inactive rows may exist for the pair; only the newest comes back.
	res, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET active = 1, role = ?, updated_at = ?
		 WHERE id = (
		 	SELECT id FROM memberships
		 	WHERE team_id = ? AND user_id = ? AND active = 0
		 	ORDER BY created_at DESC LIMIT 1
		 )`,
		role, time.Now().UTC(), teamID, userID,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func requireRowChanged(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
