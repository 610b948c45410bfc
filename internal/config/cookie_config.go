package config

import (
	"net/http"
	"strings"
	"time"
)

const (
	refreshCookieNameEnvVar = "REFRESH_COOKIE_NAME"
	cartCookieNameEnvVar    = "CART_COOKIE_NAME"
	accessCookieNameEnvVar  = "ACCESS_COOKIE_NAME"
	cookieSameSiteEnvVar    = "COOKIE_SAMESITE"
	cookieSecureEnvVar      = "COOKIE_SECURE"
)

// DefaultCookieLifetime applies to rotated refresh cookies and to cart cookies without a usable expiry.
const DefaultCookieLifetime = 30 * 24 * time.Hour

type CookieConfig interface {
	GetRefreshCookieName() string
	GetCartCookieName() string
	GetAccessCookieName() string
	GetCookieSameSite() http.SameSite
	GetCookieSecure() bool
}

type Cookies struct{}

var _ CookieConfig = Cookies{}

func (Cookies) GetRefreshCookieName() string {
	return GetEnv(refreshCookieNameEnvVar, "refresh_token")
}

func (Cookies) GetCartCookieName() string {
	return GetEnv(cartCookieNameEnvVar, "cart_token")
}

// GetAccessCookieName names a cookie the gateway may read an access token from. The gateway never writes it.
func (Cookies) GetAccessCookieName() string {
	return GetEnv(accessCookieNameEnvVar, "access_token")
}

func (Cookies) GetCookieSameSite() http.SameSite {
	switch strings.ToLower(GetEnv(cookieSameSiteEnvVar, "lax")) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (Cookies) GetCookieSecure() bool {
	return GetEnvBool(cookieSecureEnvVar, true)
}
