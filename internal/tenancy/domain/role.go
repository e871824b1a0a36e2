package domain

import "errors"

// Role is the ordered team-scoped role hierarchy. A role held in one team
// says nothing about access to any other team.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// ErrUnknownRole reports a role string outside the hierarchy.
var ErrUnknownRole = errors.New("domain: unknown role")

// rank orders roles for comparison. Higher rank wins.
var rank = map[Role]int{
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// ParseRole validates a role string against the hierarchy.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// Compare reports the ordering between r and other.
// Returns -1 if r<other, 0 if equal, +1 if r>other.
// Unknown roles rank below every known role.
func (r Role) Compare(other Role) int {
	a := rank[r]
	b := rank[other]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SatisfiesMinimum reports whether r grants at least the access of minimum.
// An unknown held role never satisfies any known minimum.
func (r Role) SatisfiesMinimum(minimum Role) bool {
	if !r.Valid() {
		return false
	}
	return r.Compare(minimum) >= 0
}

// MemberType classifies what kind of participant a membership represents.
// It is carried on memberships and token claims but never consulted by
// authorization checks.
type MemberType string

const (
	MemberTypeStaff    MemberType = "staff"
	MemberTypeAthlete  MemberType = "athlete"
	MemberTypeGuardian MemberType = "guardian"
)
