package config

import (
	"strings"
	"time"
)

const (
	upstreamBaseURLEnvVar       = "UPSTREAM_BASE_URL"
	upstreamTimeoutEnvVar       = "UPSTREAM_TIMEOUT"
	upstreamRefreshCookieEnvVar = "UPSTREAM_REFRESH_COOKIE_NAME"
)

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

// GetUpstreamBaseURL returns the backend API base without a trailing slash (e.g. "https://api.example.com/v1")
func (Upstream) GetUpstreamBaseURL() string {
	return strings.TrimRight(GetEnv(upstreamBaseURLEnvVar, "http://localhost:9000"), "/")
}

func (Upstream) GetUpstreamTimeout() time.Duration {
	return GetEnvDuration(upstreamTimeoutEnvVar, 10*time.Second)
}

// GetUpstreamRefreshCookieName is the cookie name the upstream reads the refresh token from.
func (Upstream) GetUpstreamRefreshCookieName() string {
	return GetEnv(upstreamRefreshCookieEnvVar, "refresh_token")
}
