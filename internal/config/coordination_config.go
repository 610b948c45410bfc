package config

import "time"

const (
	redisAddrEnvVar      = "REDIS_ADDR"
	redisPasswordEnvVar  = "REDIS_PASSWORD"
	coordLockTTLEnvVar   = "COORDINATION_LOCK_TTL"
	coordResultTTLEnvVar = "COORDINATION_RESULT_TTL"
)

type Coordination struct{}

var _ CoordinationConfig = Coordination{}

// GetRedisAddr enables cross-instance coordination when non-empty.
func (Coordination) GetRedisAddr() string {
	return GetEnv(redisAddrEnvVar, "")
}

func (Coordination) GetRedisPassword() string {
	return GetEnv(redisPasswordEnvVar, "")
}

func (Coordination) GetCoordinationLockTTL() time.Duration {
	return GetEnvDuration(coordLockTTLEnvVar, 15*time.Second)
}

func (Coordination) GetCoordinationResultTTL() time.Duration {
	return GetEnvDuration(coordResultTTLEnvVar, 5*time.Second)
}
