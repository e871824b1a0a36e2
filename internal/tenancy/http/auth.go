package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sidelinehq/sideline/internal/tenancy/domain"
	"github.com/sidelinehq/sideline/internal/tenancy/service"
	"github.com/sidelinehq/sideline/internal/tenancy/store"
	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/sidelinehq/sideline/pkg/tenantsdk"
)

type AuthHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates an account and returns an access token. Registration grants no team access; teams come via membership or an ownership transfer.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	tenantsdk.AuthResponse		"access_token, token_type, expires_in, user"
//	@Failure		400		{object}	tenantsdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	tenantsdk.ErrorResponse		"email already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenantsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.UserService.Register(ctx, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeAuthResponse(w, r, user, http.StatusCreated)
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for an access token embedding the caller's full membership list.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tenantsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	tenantsdk.AuthResponse	"access_token, token_type, expires_in, user"
//	@Failure		401		{object}	tenantsdk.ErrorResponse	"invalid credentials"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenantsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tenantsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.UserService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeAuthResponse(w, r, user, http.StatusOK)
}

// HandleRefreshContext godoc
//
//	@Summary		Refresh membership claims
//	@Description	Re-mints the caller's access token from current membership state. Clients call this after their roles or teams change; the old token stays valid until it expires.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tenantsdk.AuthResponse	"access_token, token_type, expires_in, user"
//	@Failure		401	{object}	tenantsdk.ErrorResponse	"missing or invalid token"
//	@Router			/v1/auth/refresh-context [post].
func (h *AuthHandler) HandleRefreshContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		tenantsdk.ErrUnauthenticated.WriteError(w)
		return
	}

	user, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		// A token for a user that no longer exists is no token at all.
		if errors.Is(err, store.ErrNotFound) {
			tenantsdk.ErrUnauthenticated.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	h.writeAuthResponse(w, r, user, http.StatusOK)
}

func (h *AuthHandler) writeAuthResponse(w http.ResponseWriter, r *http.Request, user domain.User, status int) {
	token, claims, err := h.TokenService.IssueForUser(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, status, tenantsdk.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds()),
		User:        userInfoFromClaims(claims),
	})
}

func userInfoFromClaims(claims jwtx.Claims) tenantsdk.UserInfoResponse {
	memberships := make([]tenantsdk.MembershipInfo, 0, len(claims.Memberships))
	for _, m := range claims.Memberships {
		memberships = append(memberships, tenantsdk.MembershipInfo{
			TeamID:     m.TeamID,
			Role:       m.Role,
			MemberType: m.MemberType,
		})
	}
	return tenantsdk.UserInfoResponse{
		UserID:        claims.Subject,
		Email:         claims.Email,
		FirstName:     claims.FirstName,
		LastName:      claims.LastName,
		PlatformAdmin: claims.PlatformAdmin,
		Memberships:   memberships,
	}
}
