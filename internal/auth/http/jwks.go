package http

import (
	"net/http"

	"github.com/recipic-shop/recipic/pkg/authapi"
	"github.com/recipic-shop/recipic/pkg/httpx"
	"github.com/recipic-shop/recipic/pkg/jwtx"
)

// JWKSHandler exposes the JSON Web Key Set for public key discovery.
//
//	@Summary		Get JWKS
//	@Description	Returns the public keys used to verify access and refresh tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authapi.JWKSResponse
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authapi.JWKSResponse(keys.PublicJWKS()))
	}
}
