package sqlite

import (
	"context"
	"time"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
)

type teamsRepo struct {
	db dbtx
}

const teamColumns = `id, name, subdomain, owner_id, status, created_at, updated_at`

func (r *teamsRepo) scanTeam(row interface{ Scan(dest ...any) error }) (domain.Team, error) {
	var t domain.Team
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Subdomain,
		&t.OwnerID,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.Team{}, mapNotFound(err)
	}
	return t, nil
}

func (r *teamsRepo) GetTeamByID(ctx context.Context, id string) (domain.Team, error) {
	return r.scanTeam(r.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
}

func (r *teamsRepo) GetTeamBySubdomain(ctx context.Context, subdomain string) (domain.Team, error) {
	return r.scanTeam(r.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE subdomain = ? AND status = 'active'`, subdomain))
}

func (r *teamsRepo) CreateTeam(ctx context.Context, t domain.Team) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, subdomain, owner_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Subdomain, t.OwnerID, t.Status, now, now,
	)
	return mapConstraint(err)
}

func (r *teamsRepo) UpdateTeamOwner(ctx context.Context, teamID string, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE teams SET owner_id = ?, updated_at = ? WHERE id = ?`,
		ownerID, time.Now().UTC(), teamID,
	)
	return err
}

func (r *teamsRepo) UpdateTeamName(ctx context.Context, teamID string, name string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE teams SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), teamID,
	)
	return err
}

func (r *teamsRepo) MarkTeamDeleted(ctx context.Context, teamID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE teams SET status = 'deleted', updated_at = ? WHERE id = ?`,
		time.Now().UTC(), teamID,
	)
	return err
}
