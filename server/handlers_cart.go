package server

import (
	"net/http"

	"github.com/jrsteele09/go-token-gateway/apimodel"
	"github.com/jrsteele09/go-token-gateway/cookies"
)

// CartTokenHandler issues or extends the cart token and stores it in the cart cookie.
func (s *Server) CartTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := bearerToken(r)
		if accessToken == "" {
			accessToken = cookies.Read(r, s.config.GetAccessCookieName())
		}

		result := s.carts.EnsureCartToken(r.Context(), cookies.Read(r, s.config.GetCartCookieName()), accessToken)
		if !result.OK {
			writeRaw(w, result.Status, result.ContentType, result.ErrorBody)
			return
		}

		writeJSON(w, http.StatusOK, apimodel.CartTokenResponse{
			Data: apimodel.CartTokenData{
				Token:     result.Identity.Token,
				ExpiresAt: result.Identity.ExpiresAtRaw,
				Reused:    result.Reused,
			},
		}, result.Cookie)
	}
}
