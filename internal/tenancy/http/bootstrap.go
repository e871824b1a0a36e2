package http

import (
	"encoding/json"
	"net/http"

	"github.com/sidelinehq/sideline/internal/tenancy/service"
	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/tenantsdk"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// HandleBootstrap godoc
//
//	@Summary		Bootstrap the platform
//	@Description	Creates the first platform administrator on an empty system. Requires the pre-configured bootstrap token and works exactly once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.BootstrapRequest	true	"Bootstrap token and admin details"
//	@Success		201		{object}	tenantsdk.BootstrapResponse	"the new admin's user id"
//	@Failure		401		{object}	tenantsdk.ErrorResponse		"wrong bootstrap token"
//	@Failure		409		{object}	tenantsdk.ErrorResponse		"already bootstrapped"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) HandleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenantsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	admin, err := h.BootstrapService.Bootstrap(ctx, req.Token, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, tenantsdk.BootstrapResponse{
		AdminUserID: admin.ID,
	})
}
