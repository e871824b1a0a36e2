package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/store"
)

type transfersRepo struct {
	db dbtx
}

const transferColumns = `id, team_id, initiated_by, target_user_id, target_email,
	target_first_name, target_last_name, message, token_hash, status,
	expires_at, completed_at, completed_by, created_at, updated_at`

func scanTransfer(row interface{ Scan(dest ...any) error }) (domain.OwnershipTransfer, error) {
	var (
		t           domain.OwnershipTransfer
		targetUser  sql.NullString
		completedAt sql.NullTime
		completedBy sql.NullString
	)
	err := row.Scan(
		&t.ID,
		&t.TeamID,
		&t.InitiatedBy,
		&targetUser,
		&t.TargetEmail,
		&t.TargetFirstName,
		&t.TargetLastName,
		&t.Message,
		&t.TokenHash,
		&t.Status,
		&t.ExpiresAt,
		&completedAt,
		&completedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.OwnershipTransfer{}, mapNotFound(err)
	}
	t.TargetUserID = mapNullString(targetUser)
	t.CompletedAt = mapNullTimePtr(completedAt)
	t.CompletedBy = mapNullString(completedBy)
	return t, nil
}

func (r *transfersRepo) CreateTransfer(ctx context.Context, t domain.OwnershipTransfer) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ownership_transfers (
			id, team_id, initiated_by, target_user_id, target_email,
			target_first_name, target_last_name, message, token_hash, status,
			expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TeamID, t.InitiatedBy, mapStringNull(t.TargetUserID), t.TargetEmail,
		t.TargetFirstName, t.TargetLastName, t.Message, t.TokenHash, t.Status,
		t.ExpiresAt, now, now,
	)
	return mapConstraint(err)
}

func (r *transfersRepo) GetTransferByID(ctx context.Context, id string) (domain.OwnershipTransfer, error) {
	return scanTransfer(r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM ownership_transfers WHERE id = ?`, id))
}

func (r *transfersRepo) GetTransferByTokenHash(ctx context.Context, hash string) (domain.OwnershipTransfer, error) {
	return scanTransfer(r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM ownership_transfers WHERE token_hash = ?`, hash))
}

func (r *transfersRepo) GetPendingTransferForTeam(ctx context.Context, teamID string) (domain.OwnershipTransfer, error) {
	return scanTransfer(r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM ownership_transfers
		 WHERE team_id = ? AND status = 'pending'`, teamID))
}

func (r *transfersRepo) ListTransfersForTeam(ctx context.Context, teamID string) ([]domain.OwnershipTransfer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM ownership_transfers
		 WHERE team_id = ? ORDER BY created_at DESC, id DESC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OwnershipTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SettleTransferIfPending is the single mutation that leaves the pending
// state. The status guard in the WHERE clause makes racing settlements
// first-write-wins; losers observe zero affected rows.
func (r *transfersRepo) SettleTransferIfPending(ctx context.Context, id string, status domain.TransferStatus, completedBy string) error {
	now := time.Now().UTC()

	var completedAt sql.NullTime
	if status == domain.TransferCompleted {
		completedAt = sql.NullTime{Time: now, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE ownership_transfers
		 SET status = ?, completed_at = ?, completed_by = ?, updated_at = ?
		 WHERE id = ? AND status = 'pending'`,
		status, completedAt, mapStringNull(completedBy), now, id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrStaleUpdate
	}
	return nil
}
