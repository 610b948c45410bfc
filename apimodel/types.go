package apimodel

import "encoding/json"

// RefreshRequest is the body sent to the upstream refresh endpoint.
// The same token also travels in the upstream's refresh cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned to the browser from POST /auth/refresh.
// Only the access token is exposed; the refresh token stays in its httpOnly cookie.
type TokenResponse struct {
	Data TokenData `json:"data"`
}

type TokenData struct {
	// Token is the short-lived access token. The browser holds it in memory only.
	Token string `json:"token"`
}

// CartTokenResponse is returned to the browser from POST /cart/token/generate.
type CartTokenResponse struct {
	Data CartTokenData `json:"data"`
}

type CartTokenData struct {
	Token string `json:"token"`

	// ExpiresAt echoes the upstream's expiry verbatim, e.g. "2026-11-18T10:00:00Z" or 1795000000.
	// Omitted when the upstream did not send one.
	ExpiresAt json.RawMessage `json:"expires_at,omitempty"`

	// Reused is true when the upstream extended the cart token the browser already had.
	Reused bool `json:"reused"`
}

// LogoutResponse is always {"success": true}.
type LogoutResponse struct {
	Success bool `json:"success"`
}
