package service

import (
	"errors"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/pkg/jwtx"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrAccessDenied    = errors.New("access denied")
)

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated(claims *jwtx.Claims) error {
	if claims == nil || claims.Subject == "" {
		return ErrUnauthenticated
	}
	return nil
}

// RequireMinimumRole checks that the caller holds at least the given role in
// the team. Platform admins pass regardless of membership. The membership
// list baked into the token is authoritative for its lifetime; role changes
// take effect on the next mint.
func RequireMinimumRole(claims *jwtx.Claims, teamID string, minimum domain.Role) error {
	if err := RequireAuthenticated(claims); err != nil {
		return err
	}
	if claims.PlatformAdmin {
		return nil
	}

	m, ok := claims.MembershipFor(teamID)
	if !ok {
		return ErrAccessDenied
	}
	if !domain.Role(m.Role).SatisfiesMinimum(minimum) {
		return ErrAccessDenied
	}
	return nil
}

// RequireMember checks active membership in the team with any role.
func RequireMember(claims *jwtx.Claims, teamID string) error {
	return RequireMinimumRole(claims, teamID, domain.RoleMember)
}

// RequireOwnership restricts an operation to the team owner (or a platform
// admin).
func RequireOwnership(claims *jwtx.Claims, teamID string) error {
	return RequireMinimumRole(claims, teamID, domain.RoleOwner)
}

// RequirePlatformAdmin restricts an operation to platform operators.
func RequirePlatformAdmin(claims *jwtx.Claims) error {
	if err := RequireAuthenticated(claims); err != nil {
		return err
	}
	if !claims.PlatformAdmin {
		return ErrAccessDenied
	}
	return nil
}
