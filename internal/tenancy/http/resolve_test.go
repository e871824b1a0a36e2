package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/store/drivers/sqlite"
	"github.com/sidelinehq/sideline/internal/tenancy/tenantctx"
	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/idx"
	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestSubdomainFromHost(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"eagles.sideline.app", "eagles"},
		{"eagles.sideline.app:8080", "eagles"},
		{"EAGLES.Sideline.App", "eagles"},
		{"eagles.sideline.app.", "eagles"},
		{"u18s.clubs.sideline.app", "u18s"},
		{"sideline.app", ""},
		{"localhost", ""},
		{"localhost:8080", ""},
		{"127.0.0.1", ""},
		{"127.0.0.1:8080", ""},
		{"[::1]:8080", ""},
		{"api.sideline.app", ""},
		{"www.sideline.app", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			require.Equal(t, tc.want, subdomainFromHost(tc.host))
		})
	}
}

type resolverEnv struct {
	store    *sqlite.Store
	resolver *TenantResolver
}

func newResolverEnv(t *testing.T, production bool) *resolverEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	return &resolverEnv{
		store:    s,
		resolver: &TenantResolver{Store: s, Production: production},
	}
}

// seedTeam creates a team with a fresh owner and returns both.
func (e *resolverEnv) seedTeam(t *testing.T, subdomain string) (domain.Team, domain.User) {
	t.Helper()
	ctx := context.Background()

	owner := domain.User{
		ID:           idx.New().String(),
		Email:        subdomain + "-owner@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, e.store.Users().CreateUser(ctx, owner))

	team := domain.Team{
		ID:        idx.New().String(),
		Name:      subdomain,
		Subdomain: subdomain,
		OwnerID:   owner.ID,
		Status:    domain.TeamStatusActive,
	}
	require.NoError(t, e.store.Teams().CreateTeam(ctx, team))
	require.NoError(t, e.store.Memberships().CreateMembership(ctx, domain.Membership{
		ID:         idx.New().String(),
		TeamID:     team.ID,
		UserID:     owner.ID,
		Role:       domain.RoleOwner,
		MemberType: domain.MemberTypeStaff,
		Active:     true,
	}))
	return team, owner
}

// do runs one request through the resolver middleware and reports the tenant
// context the inner handler observed.
func (e *resolverEnv) do(t *testing.T, r *http.Request) (*httptest.ResponseRecorder, string, string) {
	t.Helper()

	var teamID, subdomain string
	inner := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tc := tenantctx.From(req.Context())
		require.NotNil(t, tc, "middleware must inject a tenant context")
		teamID, _ = tc.TeamID()
		subdomain, _ = tc.Subdomain()
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.resolver.Middleware()(inner).ServeHTTP(rec, r)
	return rec, teamID, subdomain
}

func claimsFor(userID string, platformAdmin bool, memberships ...jwtx.MembershipClaim) jwtx.Claims {
	return jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		PlatformAdmin:    platformAdmin,
		Memberships:      memberships,
	}
}

func requestAs(host, path string, claims *jwtx.Claims) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "http://"+host+path, nil)
	r.Host = host
	if claims != nil {
		ctx := context.WithValue(r.Context(), httpx.CtxKeyUserID, claims.Subject)
		ctx = context.WithValue(ctx, httpx.CtxKeyClaims, *claims)
		r = r.WithContext(ctx)
	}
	return r
}

func TestResolveFromHost(t *testing.T) {
	env := newResolverEnv(t, true)
	team, owner := env.seedTeam(t, "eagles")

	t.Run("anonymous request on a team host resolves the team", func(t *testing.T) {
		rec, teamID, sub := env.do(t, requestAs("eagles.sideline.app", "/v1/livez", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, team.ID, teamID)
		require.Equal(t, "eagles", sub)
	})

	t.Run("member resolves with subdomain attached", func(t *testing.T) {
		claims := claimsFor(owner.ID, false, jwtx.MembershipClaim{TeamID: team.ID, Role: "owner"})
		rec, teamID, sub := env.do(t, requestAs("eagles.sideline.app", "/v1/team", &claims))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, team.ID, teamID)
		require.Equal(t, "eagles", sub)
	})

	t.Run("unknown subdomain is a terminal 404", func(t *testing.T) {
		claims := claimsFor(owner.ID, false, jwtx.MembershipClaim{TeamID: team.ID, Role: "owner"})
		rec, teamID, _ := env.do(t, requestAs("nobody.sideline.app", "/v1/team", &claims))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Empty(t, teamID)
		require.Contains(t, rec.Body.String(), "team_not_found")
	})

	t.Run("authenticated non-member is denied", func(t *testing.T) {
		claims := claimsFor(idx.New().String(), false)
		rec, _, _ := env.do(t, requestAs("eagles.sideline.app", "/v1/team", &claims))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "access_denied")
	})

	t.Run("platform admin needs no membership", func(t *testing.T) {
		claims := claimsFor(idx.New().String(), true)
		rec, teamID, _ := env.do(t, requestAs("eagles.sideline.app", "/v1/team", &claims))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, team.ID, teamID)
	})

	t.Run("apex host leaves the context unset", func(t *testing.T) {
		rec, teamID, _ := env.do(t, requestAs("sideline.app", "/v1/livez", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, teamID)
	})
}

func TestResolveDevOverride(t *testing.T) {
	t.Run("header addresses a team outside production", func(t *testing.T) {
		env := newResolverEnv(t, false)
		team, _ := env.seedTeam(t, "eagles")

		r := requestAs("localhost:8080", "/v1/livez", nil)
		r.Header.Set("X-Team-Subdomain", "Eagles")

		rec, teamID, sub := env.do(t, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, team.ID, teamID)
		require.Equal(t, "eagles", sub)
	})

	t.Run("claims resolution beats the header", func(t *testing.T) {
		env := newResolverEnv(t, false)
		eagles, owner := env.seedTeam(t, "eagles")
		env.seedTeam(t, "hawks")

		claims := claimsFor(owner.ID, false, jwtx.MembershipClaim{TeamID: eagles.ID, Role: "owner"})
		r := requestAs("localhost:8080", "/v1/team", &claims)
		r.Header.Set("X-Team-Subdomain", "hawks")

		rec, teamID, sub := env.do(t, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, eagles.ID, teamID, "a caller with a membership never reaches the override")
		require.Empty(t, sub)
	})

	t.Run("header failures are terminal like host failures", func(t *testing.T) {
		env := newResolverEnv(t, false)
		_, owner := env.seedTeam(t, "eagles")

		claims := claimsFor(owner.ID, false)
		r := requestAs("localhost:8080", "/v1/team", &claims)
		r.Header.Set("X-Team-Subdomain", "nobody")

		rec, _, _ := env.do(t, r)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("production ignores the header and falls through to claims", func(t *testing.T) {
		env := newResolverEnv(t, true)
		team, owner := env.seedTeam(t, "eagles")

		claims := claimsFor(owner.ID, false, jwtx.MembershipClaim{TeamID: team.ID, Role: "owner"})
		r := requestAs("localhost:8080", "/v1/team", &claims)
		r.Header.Set("X-Team-Subdomain", "nobody")

		rec, teamID, sub := env.do(t, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, team.ID, teamID, "claims fallback should have picked the membership")
		require.Empty(t, sub, "claims-resolved context carries no subdomain")
	})
}

func TestResolveFromClaims(t *testing.T) {
	env := newResolverEnv(t, true)
	first, owner := env.seedTeam(t, "eagles")
	second, _ := env.seedTeam(t, "hawks")

	ctx := context.Background()
	require.NoError(t, env.store.Memberships().CreateMembership(ctx, domain.Membership{
		ID:         idx.New().String(),
		TeamID:     second.ID,
		UserID:     owner.ID,
		Role:       domain.RoleMember,
		MemberType: domain.MemberTypeStaff,
		Active:     true,
	}))

	bothTeams := claimsFor(owner.ID, false,
		jwtx.MembershipClaim{TeamID: first.ID, Role: "owner"},
		jwtx.MembershipClaim{TeamID: second.ID, Role: "member"},
	)

	t.Run("oldest membership wins by default", func(t *testing.T) {
		rec, teamID, sub := env.do(t, requestAs("sideline.app", "/v1/team", &bothTeams))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, first.ID, teamID)
		require.Empty(t, sub)
	})

	t.Run("X-Team-ID picks another of the caller's teams", func(t *testing.T) {
		r := requestAs("sideline.app", "/v1/team", &bothTeams)
		r.Header.Set("X-Team-ID", second.ID)
		rec, teamID, _ := env.do(t, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, second.ID, teamID)
	})

	t.Run("a useless hint is ignored, not fatal", func(t *testing.T) {
		r := requestAs("sideline.app", "/v1/team", &bothTeams)
		r.Header.Set("X-Team-ID", idx.New().String())
		rec, teamID, _ := env.do(t, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, first.ID, teamID)
	})

	t.Run("platform admin may hint any existing team", func(t *testing.T) {
		admin := claimsFor(idx.New().String(), true)
		r := requestAs("sideline.app", "/v1/team", &admin)
		r.Header.Set("X-Team-ID", second.ID)
		rec, teamID, _ := env.do(t, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, second.ID, teamID)
	})

	t.Run("admin hint for a missing team is ignored", func(t *testing.T) {
		admin := claimsFor(idx.New().String(), true)
		r := requestAs("sideline.app", "/v1/team", &admin)
		r.Header.Set("X-Team-ID", idx.New().String())
		rec, teamID, _ := env.do(t, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, teamID)
	})

	t.Run("anonymous caller proceeds with no tenant", func(t *testing.T) {
		rec, teamID, _ := env.do(t, requestAs("sideline.app", "/v1/livez", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, teamID)
	})

	t.Run("caller without memberships proceeds with no tenant", func(t *testing.T) {
		lonely := claimsFor(idx.New().String(), false)
		rec, teamID, _ := env.do(t, requestAs("sideline.app", "/v1/userinfo", &lonely))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, teamID)
	})
}
