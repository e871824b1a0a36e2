package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/store"
	"github.com/sidelinehq/sideline/pkg/cryptox"
	"github.com/sidelinehq/sideline/pkg/idx"
	"github.com/sidelinehq/sideline/pkg/slogx"
)

// DefaultTransferTTL is how long a pending transfer stays redeemable.
const DefaultTransferTTL = 7 * 24 * time.Hour

var (
	ErrInvalidTransferRequest      = errors.New("invalid transfer request")
	ErrTransferNotFound            = errors.New("transfer not found")
	ErrTransferNotPending          = errors.New("transfer is no longer pending")
	ErrTransferExpired             = errors.New("transfer has expired")
	ErrTransferAlreadyPending      = errors.New("team already has a pending transfer")
	ErrTransferTargetNotRegistered = errors.New("transfer target has no account")
	ErrTransferTargetIsOwner       = errors.New("transfer target already owns the team")
	ErrTransferWrongUser           = errors.New("transfer is addressed to a different user")
)

type TransferService struct {
	Store store.Store
	TTL   time.Duration // Zero means DefaultTransferTTL
}

func (s *TransferService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTransferTTL
}

// Initiate opens a pending ownership transfer and returns the record together
// with the raw redemption token. Only the fingerprint is stored; the token is
// shown exactly once. The target may not have an account yet, in which case
// only the email and name triple is recorded and the user id binds at
// completion time.
func (s *TransferService) Initiate(
	ctx context.Context,
	teamID, initiatorID string,
	targetEmail, targetFirstName, targetLastName, message string,
) (domain.OwnershipTransfer, string, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	targetEmail = normalizeEmail(targetEmail)
	if teamID == "" || initiatorID == "" || targetEmail == "" || !strings.Contains(targetEmail, "@") {
		return domain.OwnershipTransfer{}, "", ErrInvalidTransferRequest
	}

	// 2. The team must exist and the target must not already own it
	team, err := s.Store.Teams().GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OwnershipTransfer{}, "", ErrTeamNotFound
		}
		return domain.OwnershipTransfer{}, "", err
	}

	// 3. Bind the target user id now if the address is registered
	var targetUserID string
	target, err := s.Store.Users().GetUserByEmail(ctx, targetEmail)
	switch {
	case err == nil:
		if target.ID == team.OwnerID {
			return domain.OwnershipTransfer{}, "", ErrTransferTargetIsOwner
		}
		targetUserID = target.ID
	case errors.Is(err, store.ErrNotFound):
		// Unregistered target; completion will require registration first.
	default:
		return domain.OwnershipTransfer{}, "", err
	}

	// 4. Generate and fingerprint the redemption token
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate transfer token", slog.Any("error", err))
		return domain.OwnershipTransfer{}, "", err
	}

	transfer := domain.OwnershipTransfer{
		ID:              idx.New().String(),
		TeamID:          teamID,
		InitiatedBy:     initiatorID,
		TargetUserID:    targetUserID,
		TargetEmail:     targetEmail,
		TargetFirstName: strings.TrimSpace(targetFirstName),
		TargetLastName:  strings.TrimSpace(targetLastName),
		Message:         strings.TrimSpace(message),
		TokenHash:       cryptox.FingerprintToken(token),
		Status:          domain.TransferPending,
		ExpiresAt:       time.Now().UTC().Add(s.ttl()),
	}

	// 5. Insert; the partial unique index enforces one pending per team
	if err := s.Store.Transfers().CreateTransfer(ctx, transfer); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.OwnershipTransfer{}, "", ErrTransferAlreadyPending
		}
		log.Error("failed to create transfer", slog.Any("error", err))
		return domain.OwnershipTransfer{}, "", err
	}

	log.Info("ownership transfer initiated",
		slog.String("transfer_id", transfer.ID),
		slog.String("team_id", teamID),
		slog.String("initiated_by", initiatorID),
		slog.Time("expires_at", transfer.ExpiresAt),
	)

	// 6. Return the raw token (not the fingerprint)
	return transfer, token, nil
}

// Get returns a transfer by id, expiring it lazily first.
func (s *TransferService) Get(ctx context.Context, transferID string) (domain.OwnershipTransfer, error) {
	transfer, err := s.Store.Transfers().GetTransferByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OwnershipTransfer{}, ErrTransferNotFound
		}
		return domain.OwnershipTransfer{}, err
	}
	return s.expireLazily(ctx, transfer), nil
}

// ListForTeam returns every transfer of a team, newest first, with lazy
// expiry applied.
func (s *TransferService) ListForTeam(ctx context.Context, teamID string) ([]domain.OwnershipTransfer, error) {
	transfers, err := s.Store.Transfers().ListTransfersForTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	for i, t := range transfers {
		transfers[i] = s.expireLazily(ctx, t)
	}
	return transfers, nil
}

// Cancel settles a pending transfer as cancelled. Racing completions win by
// settling first; a transfer found already settled reports its actual fate.
func (s *TransferService) Cancel(ctx context.Context, transferID string) (domain.OwnershipTransfer, error) {
	log := slogx.FromContext(ctx)

	transfer, err := s.Get(ctx, transferID)
	if err != nil {
		return domain.OwnershipTransfer{}, err
	}
	if transfer.Status != domain.TransferPending {
		return domain.OwnershipTransfer{}, s.settledError(transfer)
	}

	err = s.Store.Transfers().SettleTransferIfPending(ctx, transferID, domain.TransferCancelled, "")
	if errors.Is(err, store.ErrStaleUpdate) {
		// Lost the race; report what actually happened.
		transfer, rerr := s.Store.Transfers().GetTransferByID(ctx, transferID)
		if rerr != nil {
			return domain.OwnershipTransfer{}, rerr
		}
		return domain.OwnershipTransfer{}, s.settledError(transfer)
	}
	if err != nil {
		return domain.OwnershipTransfer{}, err
	}

	log.Info("ownership transfer cancelled",
		slog.String("transfer_id", transferID),
		slog.String("team_id", transfer.TeamID),
	)
	return s.Store.Transfers().GetTransferByID(ctx, transferID)
}

// Complete redeems a transfer token and performs the owner swap. The caller
// must be the registered user the transfer is addressed to. The previous
// owner is demoted to admin, the new owner's membership is created or
// promoted, and the team's owner-of-record changes, all in one transaction
// guarded by the pending-status compare-and-set.
func (s *TransferService) Complete(
	ctx context.Context,
	rawToken string,
	callerID string,
) (domain.OwnershipTransfer, error) {
	log := slogx.FromContext(ctx)

	if rawToken == "" || callerID == "" {
		return domain.OwnershipTransfer{}, ErrInvalidTransferRequest
	}

	// 1. Look the transfer up by token fingerprint
	fingerprint := cryptox.FingerprintToken(rawToken)
	transfer, err := s.Store.Transfers().GetTransferByTokenHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OwnershipTransfer{}, ErrTransferNotFound
		}
		return domain.OwnershipTransfer{}, err
	}

	// 2. Lazy expiry before any further checks
	transfer = s.expireLazily(ctx, transfer)
	if transfer.Status != domain.TransferPending {
		return domain.OwnershipTransfer{}, s.settledError(transfer)
	}

	// 3. The caller must be the addressed target
	caller, err := s.Store.Users().GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OwnershipTransfer{}, ErrUnauthenticated
		}
		return domain.OwnershipTransfer{}, err
	}
	if transfer.TargetUserID != "" {
		if caller.ID != transfer.TargetUserID {
			return domain.OwnershipTransfer{}, ErrTransferWrongUser
		}
	} else {
		// The target had no account at initiation; it must exist now and be
		// the caller.
		target, err := s.Store.Users().GetUserByEmail(ctx, transfer.TargetEmail)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.OwnershipTransfer{}, ErrTransferTargetNotRegistered
			}
			return domain.OwnershipTransfer{}, err
		}
		if target.ID != caller.ID {
			return domain.OwnershipTransfer{}, ErrTransferWrongUser
		}
	}

	// 4. Swap ownership atomically
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Settle first: the status guard decides concurrent completions,
		// cancellations and expiries.
		if err := tx.Transfers().SettleTransferIfPending(ctx, transfer.ID, domain.TransferCompleted, caller.ID); err != nil {
			return err
		}

		team, err := tx.Teams().GetTeamByID(ctx, transfer.TeamID)
		if err != nil {
			return err
		}

		// Previous owner keeps access as an admin.
		if team.OwnerID != caller.ID {
			if err := tx.Memberships().UpdateMembershipRole(ctx, team.ID, team.OwnerID, domain.RoleAdmin); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		// Promote, revive, or create the new owner's membership.
		if _, err := tx.Memberships().GetMembership(ctx, team.ID, caller.ID); err == nil {
			if err := tx.Memberships().UpdateMembershipRole(ctx, team.ID, caller.ID, domain.RoleOwner); err != nil {
				return err
			}
		} else if errors.Is(err, store.ErrNotFound) {
			if err := tx.Memberships().ReactivateMembership(ctx, team.ID, caller.ID, domain.RoleOwner); err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					return err
				}
				if err := tx.Memberships().CreateMembership(ctx, domain.Membership{
					ID:         idx.New().String(),
					TeamID:     team.ID,
					UserID:     caller.ID,
					Role:       domain.RoleOwner,
					MemberType: domain.MemberTypeStaff,
					Active:     true,
				}); err != nil {
					return err
				}
			}
		} else {
			return err
		}

		return tx.Teams().UpdateTeamOwner(ctx, team.ID, caller.ID)
	})
	if errors.Is(err, store.ErrStaleUpdate) {
		// Lost the race; report what actually happened.
		transfer, rerr := s.Store.Transfers().GetTransferByID(ctx, transfer.ID)
		if rerr != nil {
			return domain.OwnershipTransfer{}, rerr
		}
		return domain.OwnershipTransfer{}, s.settledError(transfer)
	}
	if err != nil {
		log.Error("failed to complete transfer",
			slog.String("transfer_id", transfer.ID),
			slog.Any("error", err),
		)
		return domain.OwnershipTransfer{}, err
	}

	log.Info("ownership transfer completed",
		slog.String("transfer_id", transfer.ID),
		slog.String("team_id", transfer.TeamID),
		slog.String("new_owner_id", caller.ID),
	)
	return s.Store.Transfers().GetTransferByID(ctx, transfer.ID)
}

// expireLazily settles a pending transfer past its deadline as expired.
// There is no background sweeper; expiry happens on first observation. A
// racing settlement is fine, the re-read reflects whoever won.
func (s *TransferService) expireLazily(ctx context.Context, t domain.OwnershipTransfer) domain.OwnershipTransfer {
	if t.Status != domain.TransferPending || time.Now().Before(t.ExpiresAt) {
		return t
	}

	err := s.Store.Transfers().SettleTransferIfPending(ctx, t.ID, domain.TransferExpired, "")
	if err != nil && !errors.Is(err, store.ErrStaleUpdate) {
		slogx.FromContext(ctx).Error("failed to expire transfer",
			slog.String("transfer_id", t.ID),
			slog.Any("error", err),
		)
		return t
	}

	settled, err := s.Store.Transfers().GetTransferByID(ctx, t.ID)
	if err != nil {
		return t
	}
	return settled
}

// settledError maps a settled transfer to the conflict the caller sees.
func (s *TransferService) settledError(t domain.OwnershipTransfer) error {
	if t.Status == domain.TransferExpired {
		return ErrTransferExpired
	}
	return ErrTransferNotPending
}
