package store

import (
	"context"
	"errors"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStaleUpdate is returned by compare-and-set style updates when the
	// row no longer satisfies the guard condition (e.g. a transfer that is
	// no longer pending). Callers translate it into a domain conflict.
	ErrStaleUpdate = errors.New("store: stale update")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. We can change having the sub-repos as methods later but we do it
// now so we can have more control and actively stop people from accidently
// doing transactions within transactions.
type Store interface {
	Users() Users
	Teams() Teams
	Memberships() Memberships
	Transfers() Transfers

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., the
	// owner swap when a transfer completes).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and transfer target lookup.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// SetPlatformAdmin flips the platform_admin flag.
	SetPlatformAdmin(ctx context.Context, userID string, admin bool) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Teams interface {
	// GetTeamByID returns a team by id.
	GetTeamByID(ctx context.Context, id string) (domain.Team, error)

	// GetTeamBySubdomain returns the active team registered for a subdomain.
	GetTeamBySubdomain(ctx context.Context, subdomain string) (domain.Team, error)

	// CreateTeam inserts a new team (id is ULID; subdomain must be unique).
	CreateTeam(ctx context.Context, t domain.Team) error

	// UpdateTeamOwner changes the owner-of-record and bumps updated_at.
	UpdateTeamOwner(ctx context.Context, teamID string, ownerID string) error

	// UpdateTeamName renames a team.
	UpdateTeamName(ctx context.Context, teamID string, name string) error

	// MarkTeamDeleted soft-deletes a team.
	MarkTeamDeleted(ctx context.Context, teamID string) error
}

type Memberships interface {
	// GetMembership returns the active membership for a user in a team.
	GetMembership(ctx context.Context, teamID, userID string) (domain.Membership, error)

	// ListTeamMemberships returns all active memberships of a team.
	ListTeamMemberships(ctx context.Context, teamID string) ([]domain.Membership, error)

	// ListUserMemberships returns all active memberships of a user,
	// oldest first. The first entry is the default-team fallback.
	ListUserMemberships(ctx context.Context, userID string) ([]domain.Membership, error)

	// CreateMembership inserts a new active membership (id is ULID).
	CreateMembership(ctx context.Context, m domain.Membership) error

	// UpdateMembershipRole changes the role of an active membership.
	UpdateMembershipRole(ctx context.Context, teamID, userID string, role domain.Role) error

	// DeactivateMembership flips active=0 so the row stays for audit.
	DeactivateMembership(ctx context.Context, teamID, userID string) error

	// ReactivateMembership flips active=1 on a previously deactivated
	// membership and sets the given role.
	ReactivateMembership(ctx context.Context, teamID, userID string, role domain.Role) error
}

type Transfers interface {
	// CreateTransfer writes a new pending transfer (token_hash is the
	// SHA-256 fingerprint of the opaque transfer token).
	CreateTransfer(ctx context.Context, t domain.OwnershipTransfer) error

	// GetTransferByID returns a transfer regardless of status.
	GetTransferByID(ctx context.Context, id string) (domain.OwnershipTransfer, error)

	// GetTransferByTokenHash returns a transfer by token fingerprint when redeeming.
	GetTransferByTokenHash(ctx context.Context, hash string) (domain.OwnershipTransfer, error)

	// GetPendingTransferForTeam returns the at-most-one pending transfer of a team.
	GetPendingTransferForTeam(ctx context.Context, teamID string) (domain.OwnershipTransfer, error)

	// ListTransfersForTeam returns all transfers of a team, newest first.
	ListTransfersForTeam(ctx context.Context, teamID string) ([]domain.OwnershipTransfer, error)

	// SettleTransferIfPending moves a transfer out of pending in one guarded
	// update. It returns ErrStaleUpdate when the row was already settled,
	// which is how concurrent complete/cancel/expire races are decided.
	// completedBy is only recorded for the completed status.
	SettleTransferIfPending(ctx context.Context, id string, status domain.TransferStatus, completedBy string) error
}
