package coordinator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-token-gateway/internal/config"
	"github.com/jrsteele09/go-token-gateway/internal/errors"
	"github.com/jrsteele09/go-token-gateway/upstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	defaultKeyPrefix    = "token-gateway:coord:"
	defaultPollInterval = 25 * time.Millisecond
	releaseTimeout      = 2 * time.Second
)

// releaseScript deletes the lock only if this caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis coordinates callers across gateway instances sharing one Redis.
// Within a process callers are first collapsed locally, so at most one goroutine per
// instance contends for the distributed lock.
type Redis struct {
	client       redis.UniversalClient
	group        singleflight.Group
	keyPrefix    string
	lockTTL      time.Duration
	resultTTL    time.Duration
	pollInterval time.Duration
}

var _ Coordinator = (*Redis)(nil)

type RedisOption func(*Redis)

func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.keyPrefix = prefix
	}
}

func WithPollInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.pollInterval = d
	}
}

func NewRedis(client redis.UniversalClient, cfg config.CoordinationConfig, opts ...RedisOption) *Redis {
	r := &Redis{
		client:       client,
		keyPrefix:    defaultKeyPrefix,
		lockTTL:      cfg.GetCoordinationLockTTL(),
		resultTTL:    cfg.GetCoordinationResultTTL(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect builds a Redis client from config and checks it is reachable.
func Connect(ctx context.Context, cfg config.CoordinationConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(errors.ErrCoordinationUnavailable, "ping %s: %v", cfg.GetRedisAddr(), err)
	}
	return client, nil
}

type outcome struct {
	resp   *upstream.Response
	remote bool
}

func (r *Redis) Do(ctx context.Context, key string, fn Func) (*upstream.Response, bool, error) {
	if key == "" {
		resp, err := fn(ctx)
		return resp, false, err
	}

	v, err, shared := r.group.Do(key, func() (interface{}, error) {
		resp, remote, err := r.doDistributed(ctx, key, fn)
		return outcome{resp: resp, remote: remote}, err
	})
	if err != nil {
		return nil, shared, err
	}
	o := v.(outcome)
	return o.resp, shared || o.remote, nil
}

func (r *Redis) doDistributed(ctx context.Context, key string, fn Func) (*upstream.Response, bool, error) {
	lockKey := r.keyPrefix + "lock:" + key
	resultKey := r.keyPrefix + "result:" + key
	owner := uuid.NewString()

	acquired, err := r.client.SetNX(ctx, lockKey, owner, r.lockTTL).Result()
	if err != nil {
		log.Warn().Err(err).Msg("coordination store unavailable, calling upstream without distributed lock")
		resp, err := fn(ctx)
		return resp, false, err
	}

	if acquired {
		defer r.release(lockKey, owner)
		resp, err := fn(ctx)
		if err == nil && resp != nil {
			r.publish(ctx, resultKey, resp)
		}
		return resp, false, err
	}

	if resp, ok := r.awaitResult(ctx, lockKey, resultKey); ok {
		return resp, true, nil
	}

	// The lock holder failed or vanished without publishing; make the call ourselves.
	resp, err := fn(ctx)
	return resp, false, err
}

func (r *Redis) publish(ctx context.Context, resultKey string, resp *upstream.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode coordinated result")
		return
	}
	if err := r.client.Set(ctx, resultKey, data, r.resultTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to publish coordinated result")
	}
}

func (r *Redis) release(lockKey, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := releaseScript.Run(ctx, r.client, []string{lockKey}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("failed to release coordination lock")
	}
}

// awaitResult polls for the lock holder's published response until the lock is gone or expires.
func (r *Redis) awaitResult(ctx context.Context, lockKey, resultKey string) (*upstream.Response, bool) {
	deadline := time.NewTimer(r.lockTTL)
	defer deadline.Stop()
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		if resp, ok := r.readResult(ctx, resultKey); ok {
			return resp, true
		}

		exists, err := r.client.Exists(ctx, lockKey).Result()
		if err != nil {
			return nil, false
		}
		if exists == 0 {
			// Released between the two reads: the result may have just landed.
			return r.readResult(ctx, resultKey)
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-deadline.C:
			return nil, false
		case <-ticker.C:
		}
	}
}

func (r *Redis) readResult(ctx context.Context, resultKey string) (*upstream.Response, bool) {
	data, err := r.client.Get(ctx, resultKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("failed to read coordinated result")
		}
		return nil, false
	}
	var resp upstream.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Warn().Err(err).Msg("failed to decode coordinated result")
		return nil, false
	}
	return &resp, true
}
