package http

import (
	"net/http"

	"github.com/sidelinehq/sideline/internal/tenancy/tenantctx"
	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/tenantsdk"
)

type UserInfoHandler struct{}

// HandleUserInfo godoc
//
//	@Summary		Get the caller's identity
//	@Description	Returns the authenticated user's profile, their memberships and the tenant context resolved for this request.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tenantsdk.UserInfoResponse	"the caller's identity"
//	@Failure		401	{object}	tenantsdk.ErrorResponse		"missing or invalid token"
//	@Router			/v1/userinfo [get].
func (h *UserInfoHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := httpx.ClaimsFromContext(ctx)
	if claims == nil {
		tenantsdk.ErrUnauthenticated.WriteError(w)
		return
	}

	info := userInfoFromClaims(*claims)

	// Attach the tenant context when the resolver picked a team. The
	// subdomain is present only for host or header resolved requests.
	if tc := tenantctx.From(ctx); tc != nil {
		if teamID, ok := tc.TeamID(); ok {
			current := &tenantsdk.TeamContext{TeamID: teamID}
			if sub, ok := tc.Subdomain(); ok {
				current.Subdomain = sub
			}
			info.CurrentTeam = current
		}
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, info)
}
