package jwtx_test

import (
	"testing"
	"time"

	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewEphemeralKeyManager(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   "test-issuer",
		Audience: []string{"test-audience"},
		NumKeys:  1,
	})

	require.NoError(t, err)
	require.NotNil(t, km)
	require.NotNil(t, km.Verifier)
	require.NotNil(t, km.KeySet)
	require.True(t, km.IsReady())
	require.Equal(t, 1, km.NumSigners())
	require.NotNil(t, km.GetSigner())
}

func TestNewEphemeralKeyManagerRequiresIssuer(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err)
}

func TestNewEphemeralKeyManagerDefaultsAndCaps(t *testing.T) {
	t.Run("defaults to three keys", func(t *testing.T) {
		km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
			Issuer: "test-issuer",
		})
		require.NoError(t, err)
		require.Equal(t, 3, km.NumSigners())
	})

	t.Run("caps at ten keys", func(t *testing.T) {
		km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
			Issuer:  "test-issuer",
			NumKeys: 50,
		})
		require.NoError(t, err)
		require.Equal(t, 10, km.NumSigners())
	})
}

func TestKeyManagerSignAndVerifyRoundTrip(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   "test-issuer",
		Audience: []string{"test-audience"},
		NumKeys:  3,
	})
	require.NoError(t, err)

	claims := jwtx.NewIdentityClaims(
		"user-1",
		"user-1@example.com",
		"First",
		"Last",
		false,
		[]jwtx.MembershipClaim{{TeamID: "team-1", Role: "owner"}},
		time.Minute,
		"test-issuer",
		[]string{"test-audience"},
		time.Now().UTC(),
	)

	// Any signer in the set must produce a token the shared verifier accepts.
	for range 5 {
		signer := km.GetSigner()
		require.NotNil(t, signer)

		token, err := signer.Sign(claims)
		require.NoError(t, err)

		parsed, err := km.Verifier.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "user-1", parsed.Subject)
		require.Equal(t, claims.Memberships, parsed.Memberships)
	}
}
