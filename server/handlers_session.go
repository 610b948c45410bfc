package server

import (
	"net/http"

	"github.com/jrsteele09/go-token-gateway/apimodel"
	"github.com/jrsteele09/go-token-gateway/cookies"
)

// RefreshHandler exchanges the refresh cookie for a new access token, rotating the cookie when the upstream does.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := s.refresher.Refresh(r.Context(), cookies.Read(r, s.config.GetRefreshCookieName()))
		if !result.OK {
			writeRaw(w, result.Status, result.ContentType, result.ErrorBody)
			return
		}

		writeJSON(w, http.StatusOK, apimodel.TokenResponse{
			Data: apimodel.TokenData{Token: result.Token.AccessToken},
		}, result.Cookie)
	}
}

// LogoutHandler always succeeds and always clears the refresh cookie
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := s.invalidator.Logout(r.Context(), cookies.Read(r, s.config.GetRefreshCookieName()), bearerToken(r))
		writeJSON(w, http.StatusOK, apimodel.LogoutResponse{Success: true}, result.Cookie)
	}
}
