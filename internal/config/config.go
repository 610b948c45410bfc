package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	UpstreamConfig
	CookieConfig
	CoordinationConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type UpstreamConfig interface {
	GetUpstreamBaseURL() string
	GetUpstreamTimeout() time.Duration
	GetUpstreamRefreshCookieName() string
}

type CoordinationConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetCoordinationLockTTL() time.Duration
	GetCoordinationResultTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Upstream
	Cookies
	Coordination
}

func New() Config {
	return mainConfig{}
}
