package service

import (
	"testing"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func claimsWithRole(teamID string, role domain.Role) *jwtx.Claims {
	c := &jwtx.Claims{
		Memberships: []jwtx.MembershipClaim{
			{TeamID: teamID, Role: string(role)},
		},
	}
	c.Subject = "user-1"
	return c
}

func TestRequireAuthenticated(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, RequireAuthenticated(nil), ErrUnauthenticated)
	require.ErrorIs(t, RequireAuthenticated(&jwtx.Claims{}), ErrUnauthenticated)
	require.NoError(t, RequireAuthenticated(claimsWithRole("t1", domain.RoleMember)))
}

func TestRequireMinimumRole(t *testing.T) {
	t.Parallel()

	t.Run("role ordering is member < admin < owner", func(t *testing.T) {
		owner := claimsWithRole("t1", domain.RoleOwner)
		require.NoError(t, RequireMinimumRole(owner, "t1", domain.RoleMember))
		require.NoError(t, RequireMinimumRole(owner, "t1", domain.RoleAdmin))
		require.NoError(t, RequireMinimumRole(owner, "t1", domain.RoleOwner))

		admin := claimsWithRole("t1", domain.RoleAdmin)
		require.NoError(t, RequireMinimumRole(admin, "t1", domain.RoleAdmin))
		require.ErrorIs(t, RequireMinimumRole(admin, "t1", domain.RoleOwner), ErrAccessDenied)

		member := claimsWithRole("t1", domain.RoleMember)
		require.NoError(t, RequireMinimumRole(member, "t1", domain.RoleMember))
		require.ErrorIs(t, RequireMinimumRole(member, "t1", domain.RoleAdmin), ErrAccessDenied)
	})

	t.Run("non-members are denied", func(t *testing.T) {
		c := claimsWithRole("t1", domain.RoleOwner)
		require.ErrorIs(t, RequireMinimumRole(c, "other-team", domain.RoleMember), ErrAccessDenied)
	})

	t.Run("unknown role in token never satisfies", func(t *testing.T) {
		c := claimsWithRole("t1", domain.Role("superuser"))
		require.ErrorIs(t, RequireMinimumRole(c, "t1", domain.RoleMember), ErrAccessDenied)
	})

	t.Run("platform admin bypasses membership entirely", func(t *testing.T) {
		c := &jwtx.Claims{PlatformAdmin: true}
		c.Subject = "op-1"
		require.NoError(t, RequireMinimumRole(c, "any-team", domain.RoleOwner))
	})

	t.Run("anonymous callers are unauthenticated, not denied", func(t *testing.T) {
		require.ErrorIs(t, RequireMinimumRole(nil, "t1", domain.RoleMember), ErrUnauthenticated)
	})
}

func TestRequirePlatformAdmin(t *testing.T) {
	t.Parallel()

	member := claimsWithRole("t1", domain.RoleOwner)
	require.ErrorIs(t, RequirePlatformAdmin(member), ErrAccessDenied)

	op := &jwtx.Claims{PlatformAdmin: true}
	op.Subject = "op-1"
	require.NoError(t, RequirePlatformAdmin(op))
}
