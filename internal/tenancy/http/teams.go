package http

import (
	"encoding/json"
	"net/http"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/service"
	"github.com/sidelinehq/sideline/internal/tenancy/tenantctx"
	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/tenantsdk"
)

type TeamsHandler struct {
	TeamService *service.TeamService
}

// HandleCreate godoc
//
//	@Summary		Create a team
//	@Description	Provisions a team addressed by a unique subdomain. The caller becomes its owner.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.CreateTeamRequest	true	"Team details"
//	@Success		201		{object}	tenantsdk.TeamResponse		"the new team"
//	@Failure		400		{object}	tenantsdk.ErrorResponse		"invalid or reserved subdomain"
//	@Failure		409		{object}	tenantsdk.ErrorResponse		"subdomain taken"
//	@Router			/v1/teams [post].
func (h *TeamsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		tenantsdk.ErrUnauthenticated.WriteError(w)
		return
	}

	var req tenantsdk.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	team, err := h.TeamService.CreateTeam(ctx, req.Name, req.Subdomain, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, teamResponse(team))
}

// HandleGet godoc
//
//	@Summary		Get a team
//	@Description	Returns a team by id. Requires membership in the team (platform admins exempt).
//	@Tags			Teams
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string					true	"Team ID"
//	@Success		200	{object}	tenantsdk.TeamResponse	"the team"
//	@Failure		403	{object}	tenantsdk.ErrorResponse	"not a member"
//	@Failure		404	{object}	tenantsdk.ErrorResponse	"team not found"
//	@Router			/v1/teams/{id} [get].
func (h *TeamsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := r.PathValue("id")

	if err := service.RequireMember(httpx.ClaimsFromContext(ctx), teamID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	team, err := h.TeamService.GetTeam(ctx, teamID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, teamResponse(team))
}

// HandleCurrent godoc
//
//	@Summary		Get the current team
//	@Description	Returns the team the request resolved to via host subdomain, dev override, or token claims.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tenantsdk.TeamResponse	"the resolved team"
//	@Failure		404	{object}	tenantsdk.ErrorResponse	"no tenant context"
//	@Router			/v1/teams/current [get].
func (h *TeamsHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamID, ok := tenantctx.CurrentTeamID(ctx)
	if !ok {
		tenantsdk.ErrTeamNotFound.WriteError(w)
		return
	}

	team, err := h.TeamService.GetTeam(ctx, teamID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, teamResponse(team))
}

// HandleListMembers godoc
//
//	@Summary		List team members
//	@Description	Returns the active members of a team. Requires membership.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string						true	"Team ID"
//	@Success		200	{array}		tenantsdk.MemberResponse	"active members"
//	@Failure		403	{object}	tenantsdk.ErrorResponse		"not a member"
//	@Router			/v1/teams/{id}/members [get].
func (h *TeamsHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := r.PathValue("id")

	if err := service.RequireMember(httpx.ClaimsFromContext(ctx), teamID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	members, err := h.TeamService.ListMembers(ctx, teamID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tenantsdk.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleAddMember godoc
//
//	@Summary		Add a member
//	@Description	Adds an existing user to the team. Requires the admin role; the owner role cannot be granted here.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Team ID"
//	@Param			request	body		tenantsdk.AddMemberRequest	true	"Member details"
//	@Success		201		{object}	tenantsdk.MemberResponse	"the new membership"
//	@Failure		403		{object}	tenantsdk.ErrorResponse		"requires admin role"
//	@Failure		409		{object}	tenantsdk.ErrorResponse		"already a member"
//	@Router			/v1/teams/{id}/members [post].
func (h *TeamsHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := r.PathValue("id")

	if err := service.RequireMinimumRole(httpx.ClaimsFromContext(ctx), teamID, domain.RoleAdmin); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tenantsdk.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	memberType := domain.MemberType(req.MemberType)
	if memberType == "" {
		memberType = domain.MemberTypeStaff
	}

	m, err := h.TeamService.AddMember(ctx, teamID, req.UserID, domain.Role(req.Role), memberType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, memberResponse(m))
}

// HandleUpdateMemberRole godoc
//
//	@Summary		Change a member's role
//	@Description	Moves a member between the member and admin roles. The owner role never changes here; ownership moves only through a completed transfer.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Team ID"
//	@Param			userID	path		string								true	"User ID"
//	@Param			request	body		tenantsdk.UpdateMemberRoleRequest	true	"New role"
//	@Success		200		{object}	tenantsdk.MemberResponse			"the updated membership"
//	@Failure		403		{object}	tenantsdk.ErrorResponse				"requires admin role"
//	@Failure		409		{object}	tenantsdk.ErrorResponse				"owner role is immutable"
//	@Router			/v1/teams/{id}/members/{userID} [patch].
func (h *TeamsHandler) HandleUpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := r.PathValue("id")

	if err := service.RequireMinimumRole(httpx.ClaimsFromContext(ctx), teamID, domain.RoleAdmin); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tenantsdk.UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	m, err := h.TeamService.UpdateMemberRole(ctx, teamID, r.PathValue("userID"), domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, memberResponse(m))
}

// HandleRemoveMember godoc
//
//	@Summary		Remove a member
//	@Description	Deactivates a membership. The owner cannot be removed.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Team ID"
//	@Param			userID	path	string	true	"User ID"
//	@Success		204		"membership deactivated"
//	@Failure		403		{object}	tenantsdk.ErrorResponse	"requires admin role"
//	@Failure		409		{object}	tenantsdk.ErrorResponse	"owner cannot be removed"
//	@Router			/v1/teams/{id}/members/{userID} [delete].
func (h *TeamsHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := r.PathValue("id")

	if err := service.RequireMinimumRole(httpx.ClaimsFromContext(ctx), teamID, domain.RoleAdmin); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.TeamService.RemoveMember(ctx, teamID, r.PathValue("userID")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func teamResponse(t domain.Team) tenantsdk.TeamResponse {
	return tenantsdk.TeamResponse{
		ID:        t.ID,
		Name:      t.Name,
		Subdomain: t.Subdomain,
		OwnerID:   t.OwnerID,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func memberResponse(m domain.Membership) tenantsdk.MemberResponse {
	return tenantsdk.MemberResponse{
		UserID:     m.UserID,
		Role:       string(m.Role),
		MemberType: string(m.MemberType),
		Since:      m.CreatedAt,
	}
}
