package http

import (
	"net/http"

	"github.com/sidelinehq/sideline/pkg/httpx"
	"github.com/sidelinehq/sideline/pkg/jwtx"
	"github.com/sidelinehq/sideline/pkg/tenantsdk"
)

// JWKSHandler exposes the JSON Web Key Set for public key discovery.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify JWTs.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	tenantsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, tenantsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
