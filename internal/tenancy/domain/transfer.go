package domain

import "time"

// TransferStatus is the ownership-transfer state machine. Pending is the only
// non-terminal state; completed, cancelled and expired are sinks.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
	TransferExpired   TransferStatus = "expired"
)

// Terminal reports whether no transition may leave s.
func (s TransferStatus) Terminal() bool {
	return s == TransferCompleted || s == TransferCancelled || s == TransferExpired
}

// OwnershipTransfer is a time-limited, single-use, token-addressed handover of
// a team's owner role. The target may be an existing user (TargetUserID set)
// or a not-yet-registered address (email/name triple only). Records are never
// deleted; the status column is the audit trail.
type OwnershipTransfer struct {
	ID              string
	TeamID          string
	InitiatedBy     string
	TargetUserID    string // Empty when the target had no account at initiation
	TargetEmail     string
	TargetFirstName string
	TargetLastName  string
	Message         string
	TokenHash       string // SHA-256 fingerprint; the raw token is returned once
	Status          TransferStatus
	ExpiresAt       time.Time
	CompletedAt     *time.Time
	CompletedBy     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
