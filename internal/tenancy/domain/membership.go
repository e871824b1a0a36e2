package domain

import "time"

// Membership ties one user to one team with a role. At most one active
// membership exists per (team, user) pair, and every team holds exactly one
// active membership with RoleOwner once created.
type Membership struct {
	ID         string
	TeamID     string
	UserID     string
	Role       Role
	MemberType MemberType
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
