package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleCompare(t *testing.T) {
	t.Parallel()

	require.Equal(t, -1, RoleMember.Compare(RoleAdmin))
	require.Equal(t, -1, RoleMember.Compare(RoleOwner))
	require.Equal(t, -1, RoleAdmin.Compare(RoleOwner))
	require.Equal(t, 1, RoleOwner.Compare(RoleAdmin))
	require.Equal(t, 1, RoleAdmin.Compare(RoleMember))
	require.Equal(t, 0, RoleAdmin.Compare(RoleAdmin))
}

func TestRoleSatisfiesMinimum(t *testing.T) {
	t.Parallel()

	cases := []struct {
		held    Role
		minimum Role
		want    bool
	}{
		{RoleMember, RoleMember, true},
		{RoleMember, RoleAdmin, false},
		{RoleMember, RoleOwner, false},
		{RoleAdmin, RoleMember, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleOwner, false},
		{RoleOwner, RoleMember, true},
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleOwner, true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.held.SatisfiesMinimum(tc.minimum),
			"held=%s minimum=%s", tc.held, tc.minimum)
	}
}

func TestRoleSatisfiesMinimumUnknownHeld(t *testing.T) {
	t.Parallel()

	require.False(t, Role("superuser").SatisfiesMinimum(RoleMember))
	require.False(t, Role("").SatisfiesMinimum(RoleMember))
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	r, err := ParseRole("admin")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, r)

	_, err = ParseRole("Admin")
	require.ErrorIs(t, err, ErrUnknownRole)

	_, err = ParseRole("")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestTransferStatusTerminal(t *testing.T) {
	t.Parallel()

	require.False(t, TransferPending.Terminal())
	require.True(t, TransferCompleted.Terminal())
	require.True(t, TransferCancelled.Terminal())
	require.True(t, TransferExpired.Terminal())
}
