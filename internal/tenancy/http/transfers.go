package http

import (
	"encoding/json"
	"net/http"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/service"
	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/sidelinehq/sideline/pkg/tenantsdk"
)

type TransfersHandler struct {
	TransferService *service.TransferService
}

// HandleInitiate godoc
//
//	@Summary		Initiate an ownership transfer
//	@Description	Opens a pending transfer of the team's owner role and returns the one-time redemption token. Owner only. A team holds at most one pending transfer.
//	@Tags			Transfers
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Team ID"
//	@Param			request	body		tenantsdk.InitiateTransferRequest	true	"Transfer details"
//	@Success		201		{object}	tenantsdk.InitiateTransferResponse	"transfer and one-time token"
//	@Failure		403		{object}	tenantsdk.ErrorResponse				"requires owner role"
//	@Failure		409		{object}	tenantsdk.ErrorResponse				"transfer already pending"
//	@Router			/v1/teams/{id}/transfers [post].
func (h *TransfersHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := r.PathValue("id")
	claims := httpx.ClaimsFromContext(ctx)

	if err := service.RequireOwnership(claims, teamID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tenantsdk.InitiateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	transfer, token, err := h.TransferService.Initiate(ctx, teamID, claims.Subject,
		req.TargetEmail, req.TargetFirstName, req.TargetLastName, req.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, tenantsdk.InitiateTransferResponse{
		Transfer: transferResponse(transfer),
		Token:    token,
	})
}

// HandleListForTeam godoc
//
//	@Summary		List a team's transfers
//	@Description	Returns every transfer of the team, newest first. Requires the admin role.
//	@Tags			Transfers
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string						true	"Team ID"
//	@Success		200	{array}		tenantsdk.TransferResponse	"transfers, newest first"
//	@Failure		403	{object}	tenantsdk.ErrorResponse		"requires admin role"
//	@Router			/v1/teams/{id}/transfers [get].
func (h *TransfersHandler) HandleListForTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := r.PathValue("id")

	if err := service.RequireMinimumRole(httpx.ClaimsFromContext(ctx), teamID, domain.RoleAdmin); err != nil {
		writeServiceError(w, r, err)
		return
	}

	transfers, err := h.TransferService.ListForTeam(ctx, teamID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tenantsdk.TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, transferResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get a transfer
//	@Description	Returns a transfer by id. Visible to the team's admins and the transfer target.
//	@Tags			Transfers
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string						true	"Transfer ID"
//	@Success		200	{object}	tenantsdk.TransferResponse	"the transfer"
//	@Failure		404	{object}	tenantsdk.ErrorResponse		"transfer not found"
//	@Router			/v1/transfers/{id} [get].
func (h *TransfersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := httpx.ClaimsFromContext(ctx)

	transfer, err := h.TransferService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.authorizeView(claims, transfer); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, transferResponse(transfer))
}

// HandleCancel godoc
//
//	@Summary		Cancel a transfer
//	@Description	Settles a pending transfer as cancelled. Only the team's owner may cancel. Cancelled transfers keep their record; the team may open a new transfer.
//	@Tags			Transfers
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string						true	"Transfer ID"
//	@Success		200	{object}	tenantsdk.TransferResponse	"the cancelled transfer"
//	@Failure		409	{object}	tenantsdk.ErrorResponse		"transfer already settled"
//	@Failure		410	{object}	tenantsdk.ErrorResponse		"transfer expired"
//	@Router			/v1/transfers/{id} [delete].
func (h *TransfersHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := httpx.ClaimsFromContext(ctx)

	transfer, err := h.TransferService.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := service.RequireOwnership(claims, transfer.TeamID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	cancelled, err := h.TransferService.Cancel(ctx, transfer.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, transferResponse(cancelled))
}

// HandleComplete godoc
//
//	@Summary		Complete a transfer
//	@Description	Redeems a transfer token and swaps ownership: the caller becomes owner, the previous owner is demoted to admin. The caller must be the registered user the transfer is addressed to.
//	@Tags			Transfers
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.CompleteTransferRequest	true	"The one-time token"
//	@Success		200		{object}	tenantsdk.TransferResponse			"the completed transfer"
//	@Failure		403		{object}	tenantsdk.ErrorResponse				"addressed to a different user"
//	@Failure		409		{object}	tenantsdk.ErrorResponse				"target not registered or transfer settled"
//	@Failure		410		{object}	tenantsdk.ErrorResponse				"transfer expired"
//	@Router			/v1/transfers/complete [post].
func (h *TransfersHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		tenantsdk.ErrUnauthenticated.WriteError(w)
		return
	}

	var req tenantsdk.CompleteTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	transfer, err := h.TransferService.Complete(ctx, req.Token, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, transferResponse(transfer))
}

// authorizeView lets the team's admins and the transfer target read a
// transfer record.
func (h *TransfersHandler) authorizeView(claims *jwtx.Claims, transfer domain.OwnershipTransfer) error {
	if err := service.RequireAuthenticated(claims); err != nil {
		return err
	}
	if claims.Subject == transfer.TargetUserID {
		return nil
	}
	return service.RequireMinimumRole(claims, transfer.TeamID, domain.RoleAdmin)
}

func transferResponse(t domain.OwnershipTransfer) tenantsdk.TransferResponse {
	return tenantsdk.TransferResponse{
		ID:              t.ID,
		TeamID:          t.TeamID,
		InitiatedBy:     t.InitiatedBy,
		TargetUserID:    t.TargetUserID,
		TargetEmail:     t.TargetEmail,
		TargetFirstName: t.TargetFirstName,
		TargetLastName:  t.TargetLastName,
		Message:         t.Message,
		Status:          string(t.Status),
		ExpiresAt:       t.ExpiresAt,
		CompletedAt:     t.CompletedAt,
		CompletedBy:     t.CompletedBy,
		CreatedAt:       t.CreatedAt,
	}
}
