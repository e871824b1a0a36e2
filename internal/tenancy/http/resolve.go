package http

import (
	"errors"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/sidelinehq/sideline/internal/tenancy/store"
	"github.com/sidelinehq/sideline/internal/tenancy/tenantctx"
	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/sidelinehq/sideline/pkg/slogx"
	"github.com/sidelinehq/sideline/pkg/tenantsdk"
)

// platformLabels are host labels routed to the platform itself; they never
// resolve to a team.
var platformLabels = []string{"api", "www"}

// TenantResolver derives the tenant a request addresses and attaches it as a
// request-scoped tenant context. Sources are tried in a fixed order:
//
//  1. An already-resolved context is left alone.
//  2. The request host: on a deep enough host, the first label is treated as
//     a team subdomain. An unknown subdomain or a caller without membership
//     in the addressed team ends the request; no later source runs.
//  3. Token claims: the X-Team-ID header picks one of the caller's teams,
//     otherwise the oldest membership wins. This source never fails the
//     request; a useless hint is ignored.
//  4. The X-Team-Subdomain header, honoured outside production only and only
//     when the claims named no team, with the same semantics as the host.
//
// Anonymous requests without a team-addressing host simply proceed with no
// tenant context.
type TenantResolver struct {
	Store store.Store

	// Production disables the X-Team-Subdomain override.
	Production bool
}

// Middleware wires the resolver into a handler chain. Every request gets a
// fresh tenant context that is cleared when the request finishes, whatever
// path the handler takes.
func (t *TenantResolver) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := tenantctx.New()
			defer tc.Clear()

			r = r.WithContext(tenantctx.Inject(r.Context(), tc))

			if apiErr := t.resolve(r, tc); apiErr != nil {
				apiErr.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (t *TenantResolver) resolve(r *http.Request, tc *tenantctx.Context) *tenantsdk.APIError {
	if tc.IsSet() {
		return nil
	}

	ctx := r.Context()
	claims := httpx.ClaimsFromContext(ctx)

	// Host addressing is authoritative when present.
	if sub := subdomainFromHost(r.Host); sub != "" {
		return t.resolveSubdomain(r, tc, claims, sub)
	}

	// Claims fallback. Best effort only; a useless hint is ignored.
	if claims != nil {
		if hint := strings.TrimSpace(r.Header.Get("X-Team-ID")); hint != "" {
			if t.setFromTeamID(r, tc, claims, hint) {
				return nil
			}
		}

		if len(claims.Memberships) > 0 {
			t.setTeam(r, tc, claims.Memberships[0].TeamID, "")
			return nil
		}
	}

	// Dev override mirrors host addressing without DNS. It is consulted last,
	// only when neither the host nor the caller's claims named a team.
	if !t.Production {
		if sub := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Team-Subdomain"))); sub != "" {
			return t.resolveSubdomain(r, tc, claims, sub)
		}
	}

	return nil
}

// resolveSubdomain settles the request against one subdomain. Failures here
// are terminal: a request that explicitly addresses a team either gets that
// team or an error, never a silent fallback.
func (t *TenantResolver) resolveSubdomain(
	r *http.Request,
	tc *tenantctx.Context,
	claims *jwtx.Claims,
	subdomain string,
) *tenantsdk.APIError {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	team, err := t.Store.Teams().GetTeamBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return tenantsdk.ErrTeamNotFound
		}
		log.Error("tenant resolution failed", "subdomain", subdomain, "err", err)
		return tenantsdk.ErrServerError
	}

	// Authenticated callers must belong to the addressed team. Platform
	// admins are exempt.
	if claims != nil && !claims.PlatformAdmin {
		if _, ok := claims.MembershipFor(team.ID); !ok {
			log.Warn("caller lacks membership in addressed team",
				"team_id", team.ID,
				"user_id", claims.Subject,
			)
			return tenantsdk.ErrAccessDenied
		}
	}

	t.setTeam(r, tc, team.ID, team.Subdomain)
	return nil
}

// setFromTeamID honours the X-Team-ID hint when it names a team the caller
// can act in. Reports whether the context was set.
func (t *TenantResolver) setFromTeamID(r *http.Request, tc *tenantctx.Context, claims *jwtx.Claims, teamID string) bool {
	if _, ok := claims.MembershipFor(teamID); ok {
		t.setTeam(r, tc, teamID, "")
		return true
	}

	// Platform admins may act in teams they hold no membership in, but the
	// team must exist. A miss just ignores the hint.
	if claims.PlatformAdmin {
		team, err := t.Store.Teams().GetTeamByID(r.Context(), teamID)
		if err == nil {
			t.setTeam(r, tc, team.ID, "")
			return true
		}
	}
	return false
}

func (t *TenantResolver) setTeam(r *http.Request, tc *tenantctx.Context, teamID, subdomain string) {
	if err := tc.SetTeam(teamID, subdomain); err != nil {
		// Set-at-most-once violated; resolver ordering bug.
		slogx.FromContext(r.Context()).Error("tenant context already resolved",
			"team_id", teamID, "err", err)
	}
}

// subdomainFromHost extracts the team label from a request host. Hosts with
// two or fewer labels (apex domains, localhost, IPs) carry no team, and
// platform labels are skipped.
func subdomainFromHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if net.ParseIP(host) != nil {
		return ""
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return ""
	}

	sub := labels[0]
	if sub == "" || slices.Contains(platformLabels, sub) {
		return ""
	}
	return sub
}
