package tenantctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetTeamAtMostOnce(t *testing.T) {
	t.Parallel()

	tc := New()
	require.False(t, tc.IsSet())

	require.NoError(t, tc.SetTeam("team-1", "eagles"))
	require.True(t, tc.IsSet())

	id, ok := tc.TeamID()
	require.True(t, ok)
	require.Equal(t, "team-1", id)

	sub, ok := tc.Subdomain()
	require.True(t, ok)
	require.Equal(t, "eagles", sub)

	require.ErrorIs(t, tc.SetTeam("team-2", ""), ErrAlreadyResolved)

	// The first resolution survives the failed second attempt.
	id, _ = tc.TeamID()
	require.Equal(t, "team-1", id)
}

func TestSubdomainAbsentForClaimsResolution(t *testing.T) {
	t.Parallel()

	tc := New()
	require.NoError(t, tc.SetTeam("team-1", ""))

	_, ok := tc.Subdomain()
	require.False(t, ok)
}

func TestClearIdempotent(t *testing.T) {
	t.Parallel()

	tc := New()

	// Clearing a never-set holder is safe.
	tc.Clear()
	require.False(t, tc.IsSet())

	require.NoError(t, tc.SetTeam("team-1", "eagles"))
	for range 3 {
		tc.Clear()
		require.False(t, tc.IsSet())

		_, ok := tc.TeamID()
		require.False(t, ok)
		_, ok = tc.Subdomain()
		require.False(t, ok)
	}

	// A cleared holder accepts a fresh resolution.
	require.NoError(t, tc.SetTeam("team-2", ""))
	id, ok := tc.TeamID()
	require.True(t, ok)
	require.Equal(t, "team-2", id)
}

func TestContextPlumbing(t *testing.T) {
	t.Parallel()

	require.Nil(t, From(context.Background()))

	_, ok := CurrentTeamID(context.Background())
	require.False(t, ok)

	tc := New()
	ctx := Inject(context.Background(), tc)
	require.Same(t, tc, From(ctx))

	require.NoError(t, tc.SetTeam("team-9", ""))
	id, ok := CurrentTeamID(ctx)
	require.True(t, ok)
	require.Equal(t, "team-9", id)
}
